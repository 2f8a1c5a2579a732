package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/allichat/server/internal/models"
	"github.com/allichat/server/internal/store"
)

const (
	maxImageBytes = 5 * 1024 * 1024
	maxImageDim   = 4096
)

type MessageService struct {
	users    store.UserStore
	rooms    store.RoomStore
	messages store.MessageStore
	notifier Notifier
}

func NewMessageService(users store.UserStore, rooms store.RoomStore, messages store.MessageStore) *MessageService {
	return &MessageService{
		users:    users,
		rooms:    rooms,
		messages: messages,
		notifier: nopNotifier{},
	}
}

func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

type SendInput struct {
	RoomID    string `json:"room_id"`
	Content   string `json:"content"`
	Image     string `json:"image,omitempty"`
	ReplyToID string `json:"reply_to_id,omitempty"`
}

// Send validates the sender against the current user document (not a
// cached snapshot) before writing: muted and banned users produce no
// message write.
func (s *MessageService) Send(ctx context.Context, sender string, in SendInput) (*models.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" && in.Image == "" {
		return nil, ErrEmptyContent
	}
	if in.Image != "" {
		if err := validateImage(in.Image); err != nil {
			return nil, err
		}
	}

	user, err := s.users.Get(ctx, sender)
	if err != nil {
		return nil, fmt.Errorf("looking up sender: %w", err)
	}
	if user == nil {
		return nil, store.ErrNotFound
	}
	if user.IsBanned {
		return nil, ErrBanned
	}
	if user.IsMuted {
		return nil, ErrMuted
	}

	room, err := s.rooms.Get(ctx, in.RoomID)
	if err != nil {
		return nil, fmt.Errorf("looking up room: %w", err)
	}
	if room == nil {
		return nil, store.ErrNotFound
	}
	if !room.HasParticipant(sender) {
		return nil, ErrNotParticipant
	}

	msg := &models.Message{
		ID:        uuid.NewString(),
		RoomID:    room.ID,
		Sender:    sender,
		Content:   content,
		Image:     in.Image,
		IsImage:   in.Image != "",
		Status:    models.StatusSent,
		CreatedAt: time.Now().UTC(),
	}
	if in.ReplyToID != "" {
		// Denormalized copy taken now; edits or deletion of the
		// original are not reflected in the quote.
		target, err := s.messages.Get(ctx, in.ReplyToID)
		if err != nil {
			return nil, fmt.Errorf("looking up reply target: %w", err)
		}
		if target != nil {
			msg.ReplyTo = &models.ReplyRef{
				ID:      target.ID,
				Sender:  target.Sender,
				Content: target.Content,
			}
		}
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	s.notifier.MessagesChanged(room.ID)
	return msg, nil
}

func (s *MessageService) Edit(ctx context.Context, editor, messageID, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}
	msg, err := s.messages.Get(ctx, messageID)
	if err != nil {
		return fmt.Errorf("looking up message: %w", err)
	}
	if msg == nil {
		return store.ErrNotFound
	}
	if msg.Sender != editor {
		return ErrNotSender
	}
	if err := s.messages.UpdateContent(ctx, messageID, content, time.Now().UTC()); err != nil {
		return err
	}
	s.notifier.MessagesChanged(msg.RoomID)
	return nil
}

// Delete is an admin moderation action.
func (s *MessageService) Delete(ctx context.Context, actor, messageID string) error {
	user, err := s.users.Get(ctx, actor)
	if err != nil {
		return fmt.Errorf("looking up actor: %w", err)
	}
	if user == nil || !user.IsAdmin() {
		return ErrForbidden
	}
	msg, err := s.messages.Get(ctx, messageID)
	if err != nil {
		return fmt.Errorf("looking up message: %w", err)
	}
	if msg == nil {
		return store.ErrNotFound
	}
	if err := s.messages.Delete(ctx, messageID); err != nil {
		return err
	}
	s.notifier.MessagesChanged(msg.RoomID)
	return nil
}

// ToggleReaction adds the reactor to the emoji's set, or removes them
// if already present. Both legs are atomic set operations at the store
// level, so two users reacting at the same instant cannot lose an
// update.
func (s *MessageService) ToggleReaction(ctx context.Context, reactor, messageID, emoji string) error {
	msg, err := s.messages.Get(ctx, messageID)
	if err != nil {
		return fmt.Errorf("looking up message: %w", err)
	}
	if msg == nil {
		return store.ErrNotFound
	}

	added, err := s.messages.AddReaction(ctx, messageID, emoji, reactor)
	if err != nil {
		return err
	}
	if !added {
		if err := s.messages.RemoveReaction(ctx, messageID, emoji, reactor); err != nil {
			return err
		}
	}
	s.notifier.MessagesChanged(msg.RoomID)
	return nil
}

// SearchByRoom filters the room history by a case-insensitive match on
// message content or sender name. An empty query returns everything.
func (s *MessageService) SearchByRoom(ctx context.Context, roomID, query string) ([]models.Message, error) {
	msgs, err := s.messages.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return msgs, nil
	}
	matched := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if strings.Contains(strings.ToLower(m.Content), query) ||
			strings.Contains(strings.ToLower(m.Sender), query) {
			matched = append(matched, m)
		}
	}
	return matched, nil
}

func (s *MessageService) ListByRoom(ctx context.Context, roomID string) ([]models.Message, error) {
	return s.messages.ListByRoom(ctx, roomID)
}

// PromoteRead transitions each message to read. Writes are issued
// concurrently with no ordering guarantee between them; failures are
// logged and do not stop the rest.
func (s *MessageService) PromoteRead(ctx context.Context, roomID string, messageIDs []string) {
	if len(messageIDs) == 0 {
		return
	}
	var (
		wg       sync.WaitGroup
		promoted atomic.Int64
	)
	for _, id := range messageIDs {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := s.messages.SetStatus(ctx, id, models.StatusRead); err != nil {
				slog.Error("failed to promote message to read", "message_id", id, "error", err)
				return
			}
			promoted.Add(1)
		}(id)
	}
	wg.Wait()
	// Announcing a change when nothing was written would loop the
	// listeners back into another promotion attempt.
	if promoted.Load() > 0 {
		s.notifier.MessagesChanged(roomID)
	}
}

func validateImage(payload string) error {
	if !strings.HasPrefix(payload, "data:image/") {
		return ErrNotImage
	}
	idx := strings.Index(payload, ";base64,")
	if idx < 0 {
		return ErrNotImage
	}
	encoded := payload[idx+len(";base64,"):]
	// Decoded size is ~3/4 of the base64 length.
	if len(encoded)/4*3 > maxImageBytes {
		return ErrImageTooLarge
	}
	// DecodeConfig reads only the header, so this stays cheap even for
	// payloads near the size cap.
	cfg, _, err := image.DecodeConfig(base64.NewDecoder(base64.StdEncoding, strings.NewReader(encoded)))
	if err != nil {
		return ErrNotImage
	}
	if cfg.Width > maxImageDim || cfg.Height > maxImageDim {
		return ErrImageTooLarge
	}
	return nil
}
