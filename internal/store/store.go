// Package store defines the persistence interfaces consumed by the
// service layer. Getters return (nil, nil) when the row does not exist;
// mutations that require an existing row return ErrNotFound.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/allichat/server/internal/models"
)

var ErrNotFound = errors.New("not found")

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, name string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	SetOnline(ctx context.Context, name string, online bool) error
	SetMuted(ctx context.Context, name string, muted bool) error
	SetBanned(ctx context.Context, name string, banned bool) error
	UpdateLastSeen(ctx context.Context, name string, t time.Time) error
}

type RoomStore interface {
	Create(ctx context.Context, r *models.Room) error
	Get(ctx context.Context, id string) (*models.Room, error)
	// VisibleTo returns rooms where the user is a participant, public
	// rooms, and the distinguished global room, ordered by creation
	// time then id.
	VisibleTo(ctx context.Context, user, globalName string) ([]models.Room, error)
	PublicNotJoined(ctx context.Context, user string) ([]models.Room, error)
	FindDirect(ctx context.Context, a, b string) (*models.Room, error)
	AddParticipant(ctx context.Context, roomID, user string) error
	// RemoveParticipantOrDelete removes the user from the participant
	// list; if the leaver is the creator and the last participant the
	// room document itself is deleted instead. Returns whether the
	// room was deleted.
	RemoveParticipantOrDelete(ctx context.Context, roomID, user string) (bool, error)
}

type MessageStore interface {
	Create(ctx context.Context, m *models.Message) error
	Get(ctx context.Context, id string) (*models.Message, error)
	// ListByRoom returns messages ordered by send time ascending, with
	// reaction sets materialized.
	ListByRoom(ctx context.Context, roomID string) ([]models.Message, error)
	UpdateContent(ctx context.Context, id, content string, editedAt time.Time) error
	SetStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	// AddReaction is an atomic set-add; it reports false when the
	// reactor was already present. RemoveReaction is the atomic
	// counterpart; an emoji key exists iff its reactor set is
	// non-empty, by construction.
	AddReaction(ctx context.Context, messageID, emoji, reactor string) (bool, error)
	RemoveReaction(ctx context.Context, messageID, emoji, reactor string) error
}

type AnnouncementStore interface {
	Create(ctx context.Context, a *models.Announcement) error
	List(ctx context.Context) ([]models.Announcement, error)
	Delete(ctx context.Context, id string) error
}

type SubteamStore interface {
	Create(ctx context.Context, s *models.Subteam) error
	Get(ctx context.Context, id string) (*models.Subteam, error)
	ListByMember(ctx context.Context, member string) ([]models.Subteam, error)
	Update(ctx context.Context, id, name, description, color string) error
	AddMember(ctx context.Context, id, member string) error
	Delete(ctx context.Context, id string) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	UnreadFor(ctx context.Context, user string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// DocumentStore is the target of the offline import utility: a generic
// (collection, key) -> fields document table with upsert semantics.
type DocumentStore interface {
	Put(ctx context.Context, collection, key string, fields map[string]any) error
}
