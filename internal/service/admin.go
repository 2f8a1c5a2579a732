package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allichat/server/internal/models"
	"github.com/allichat/server/internal/store"
)

type AdminService struct {
	users         store.UserStore
	rooms         store.RoomStore
	messages      store.MessageStore
	announcements store.AnnouncementStore
	notifier      Notifier
}

func NewAdminService(users store.UserStore, rooms store.RoomStore, messages store.MessageStore, announcements store.AnnouncementStore) *AdminService {
	return &AdminService{
		users:         users,
		rooms:         rooms,
		messages:      messages,
		announcements: announcements,
		notifier:      nopNotifier{},
	}
}

func (s *AdminService) SetNotifier(n Notifier) {
	s.notifier = n
}

// requireAdmin re-reads the caller's role from the store so a revoked
// admin cannot keep acting on a stale token.
func (s *AdminService) requireAdmin(ctx context.Context, name string) error {
	user, err := s.users.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("looking up caller: %w", err)
	}
	if user == nil || !user.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (s *AdminService) SetMuted(ctx context.Context, caller, target string, muted bool) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	if err := s.users.SetMuted(ctx, target, muted); err != nil {
		return err
	}
	s.notifier.UsersChanged()
	return nil
}

func (s *AdminService) SetBanned(ctx context.Context, caller, target string, banned bool) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	if err := s.users.SetBanned(ctx, target, banned); err != nil {
		return err
	}
	s.notifier.UsersChanged()
	return nil
}

// SudoSend posts a message under another user's name. The impersonated
// sender's mute and ban flags are deliberately not consulted; the
// message is tagged so the audit trail survives.
func (s *AdminService) SudoSend(ctx context.Context, caller, asUser, roomID, content string) (*models.Message, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	target, err := s.users.Get(ctx, asUser)
	if err != nil {
		return nil, fmt.Errorf("looking up target user: %w", err)
	}
	if target == nil {
		return nil, store.ErrNotFound
	}
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("looking up room: %w", err)
	}
	if room == nil {
		return nil, store.ErrNotFound
	}

	msg := &models.Message{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Sender:    asUser,
		Content:   content,
		Status:    models.StatusSent,
		IsSudo:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating sudo message: %w", err)
	}
	s.notifier.MessagesChanged(roomID)
	return msg, nil
}

type AnnouncementInput struct {
	Content  string
	Link     string
	LinkText string
	FontSize int
}

func (s *AdminService) CreateAnnouncement(ctx context.Context, caller string, in AnnouncementInput) (*models.Announcement, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, ErrEmptyContent
	}
	if in.FontSize <= 0 {
		in.FontSize = 14
	}
	a := &models.Announcement{
		ID:        uuid.NewString(),
		Content:   in.Content,
		Link:      in.Link,
		LinkText:  in.LinkText,
		FontSize:  in.FontSize,
		CreatedBy: caller,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.announcements.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("creating announcement: %w", err)
	}
	s.notifier.AnnouncementsChanged()
	return a, nil
}

func (s *AdminService) DeleteAnnouncement(ctx context.Context, caller, id string) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	if err := s.announcements.Delete(ctx, id); err != nil {
		return err
	}
	s.notifier.AnnouncementsChanged()
	return nil
}
