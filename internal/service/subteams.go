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

type SubteamService struct {
	subteams      store.SubteamStore
	users         store.UserStore
	notifications store.NotificationStore
	notifier      Notifier
}

func NewSubteamService(subteams store.SubteamStore, users store.UserStore, notifications store.NotificationStore) *SubteamService {
	return &SubteamService{
		subteams:      subteams,
		users:         users,
		notifications: notifications,
		notifier:      nopNotifier{},
	}
}

func (s *SubteamService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *SubteamService) Create(ctx context.Context, creator, name, description, color string) (*models.Subteam, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	team := &models.Subteam{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Color:       color,
		Members:     []string{creator},
		CreatedBy:   creator,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.subteams.Create(ctx, team); err != nil {
		return nil, fmt.Errorf("creating subteam: %w", err)
	}
	s.notifier.SubteamsChanged()
	return team, nil
}

func (s *SubteamService) Update(ctx context.Context, caller, id, name, description, color string) error {
	team, err := s.subteams.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("looking up subteam: %w", err)
	}
	if team == nil {
		return store.ErrNotFound
	}
	if !team.HasMember(caller) {
		return ErrForbidden
	}
	if name = strings.TrimSpace(name); name == "" {
		name = team.Name
	}
	if err := s.subteams.Update(ctx, id, name, description, color); err != nil {
		return fmt.Errorf("updating subteam: %w", err)
	}
	s.notifier.SubteamsChanged()
	return nil
}

// AddMember adds the target to the subteam and leaves an invite
// notification for them. Only existing members may invite.
func (s *SubteamService) AddMember(ctx context.Context, caller, id, target string) error {
	team, err := s.subteams.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("looking up subteam: %w", err)
	}
	if team == nil {
		return store.ErrNotFound
	}
	if !team.HasMember(caller) {
		return ErrForbidden
	}
	if team.HasMember(target) {
		return nil
	}
	user, err := s.users.Get(ctx, target)
	if err != nil {
		return fmt.Errorf("looking up target user: %w", err)
	}
	if user == nil {
		return store.ErrNotFound
	}

	if err := s.subteams.AddMember(ctx, id, target); err != nil {
		return err
	}
	note := &models.Notification{
		ID:          uuid.NewString(),
		Type:        models.NotificationSubteamInvite,
		SubteamID:   team.ID,
		SubteamName: team.Name,
		FromUser:    caller,
		ToUser:      target,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.notifications.Create(ctx, note); err != nil {
		return fmt.Errorf("creating invite notification: %w", err)
	}
	s.notifier.SubteamsChanged()
	s.notifier.NotificationsChanged()
	return nil
}

func (s *SubteamService) Delete(ctx context.Context, caller, id string) error {
	team, err := s.subteams.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("looking up subteam: %w", err)
	}
	if team == nil {
		return store.ErrNotFound
	}
	if team.CreatedBy != caller {
		return ErrNotCreator
	}
	if err := s.subteams.Delete(ctx, id); err != nil {
		return err
	}
	s.notifier.SubteamsChanged()
	return nil
}

func (s *SubteamService) ListFor(ctx context.Context, member string) ([]models.Subteam, error) {
	return s.subteams.ListByMember(ctx, member)
}
