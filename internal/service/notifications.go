package service

import (
	"context"

	"github.com/allichat/server/internal/models"
	"github.com/allichat/server/internal/store"
)

type NotificationService struct {
	notifications store.NotificationStore
	notifier      Notifier
}

func NewNotificationService(notifications store.NotificationStore) *NotificationService {
	return &NotificationService{notifications: notifications, notifier: nopNotifier{}}
}

func (s *NotificationService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *NotificationService) UnreadFor(ctx context.Context, user string) ([]models.Notification, error) {
	return s.notifications.UnreadFor(ctx, user)
}

func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	if err := s.notifications.MarkRead(ctx, id); err != nil {
		return err
	}
	s.notifier.NotificationsChanged()
	return nil
}
