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

type RoomService struct {
	rooms      store.RoomStore
	users      store.UserStore
	notifier   Notifier
	globalName string
}

func NewRoomService(rooms store.RoomStore, users store.UserStore, globalName string) *RoomService {
	return &RoomService{
		rooms:      rooms,
		users:      users,
		notifier:   nopNotifier{},
		globalName: globalName,
	}
}

func (s *RoomService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *RoomService) GlobalName() string {
	return s.globalName
}

func (s *RoomService) CreateGroup(ctx context.Context, creator, name, emoji string, isPublic bool) (*models.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	room := &models.Room{
		ID:           uuid.NewString(),
		Name:         name,
		Type:         models.RoomTypeGroup,
		Participants: []string{creator},
		CreatedBy:    creator,
		IsPublic:     isPublic,
		Emoji:        emoji,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("creating group: %w", err)
	}
	s.notifier.RoomsChanged()
	return room, nil
}

// StartDirect returns the existing direct room for the pair when one
// exists. The existence check and the create are separate requests, so
// two users opening the same DM at the same instant can still produce
// duplicate rooms; there is no uniqueness constraint in the store.
func (s *RoomService) StartDirect(ctx context.Context, creator, recipient string) (*models.Room, error) {
	if recipient == "" || recipient == creator {
		return nil, ErrEmptyName
	}
	other, err := s.users.Get(ctx, recipient)
	if err != nil {
		return nil, fmt.Errorf("looking up recipient: %w", err)
	}
	if other == nil {
		return nil, store.ErrNotFound
	}

	existing, err := s.rooms.FindDirect(ctx, creator, recipient)
	if err != nil {
		return nil, fmt.Errorf("checking existing direct room: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	room := &models.Room{
		ID:           uuid.NewString(),
		Name:         recipient,
		Type:         models.RoomTypeDirect,
		Participants: []string{creator, recipient},
		CreatedBy:    creator,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("creating direct room: %w", err)
	}
	s.notifier.RoomsChanged()
	return room, nil
}

func (s *RoomService) Join(ctx context.Context, user, roomID string) error {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return fmt.Errorf("looking up room: %w", err)
	}
	if room == nil {
		return store.ErrNotFound
	}
	if err := s.rooms.AddParticipant(ctx, roomID, user); err != nil {
		return err
	}
	s.notifier.RoomsChanged()
	return nil
}

// Leave removes the user from the room; if the leaver is the creator
// and the last participant, the room is deleted instead. Reports
// whether the room was deleted.
func (s *RoomService) Leave(ctx context.Context, user, roomID string) (bool, error) {
	deleted, err := s.rooms.RemoveParticipantOrDelete(ctx, roomID, user)
	if err != nil {
		return false, err
	}
	s.notifier.RoomsChanged()
	if deleted {
		s.notifier.MessagesChanged(roomID)
	}
	return deleted, nil
}

func (s *RoomService) VisibleTo(ctx context.Context, user string) ([]models.Room, error) {
	return s.rooms.VisibleTo(ctx, user, s.globalName)
}

func (s *RoomService) DiscoverPublic(ctx context.Context, user string) ([]models.Room, error) {
	return s.rooms.PublicNotJoined(ctx, user)
}

// EnsureGlobalRoom creates the always-visible global room on first
// startup if no room carries the configured name yet.
func (s *RoomService) EnsureGlobalRoom(ctx context.Context) error {
	rooms, err := s.rooms.VisibleTo(ctx, "", s.globalName)
	if err != nil {
		return err
	}
	for _, r := range rooms {
		if r.Name == s.globalName {
			return nil
		}
	}
	room := &models.Room{
		ID:        uuid.NewString(),
		Name:      s.globalName,
		Type:      models.RoomTypeGroup,
		CreatedBy: "system",
		IsPublic:  true,
		CreatedAt: time.Now().UTC(),
	}
	return s.rooms.Create(ctx, room)
}
