package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/allichat/server/internal/models"
	"github.com/allichat/server/internal/store"
)

type MessageStore struct {
	db *sql.DB
}

func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
}

const messageColumns = `id, room_id, sender, content, image, is_image,
	reply_to_id, reply_to_sender, reply_to_content,
	status, edited, edited_at, is_sudo, created_at`

func scanMessage(row interface{ Scan(...any) error }) (*models.Message, error) {
	var m models.Message
	var replyID, replySender, replyContent sql.NullString
	err := row.Scan(&m.ID, &m.RoomID, &m.Sender, &m.Content, &m.Image, &m.IsImage,
		&replyID, &replySender, &replyContent,
		&m.Status, &m.Edited, &m.EditedAt, &m.IsSudo, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if replyID.Valid {
		m.ReplyTo = &models.ReplyRef{
			ID:      replyID.String,
			Sender:  replySender.String,
			Content: replyContent.String,
		}
	}
	return &m, nil
}

func (s *MessageStore) Create(ctx context.Context, m *models.Message) error {
	var replyID, replySender, replyContent sql.NullString
	if m.ReplyTo != nil {
		replyID = sql.NullString{String: m.ReplyTo.ID, Valid: true}
		replySender = sql.NullString{String: m.ReplyTo.Sender, Valid: true}
		replyContent = sql.NullString{String: m.ReplyTo.Content, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, room_id, sender, content, image, is_image,
		    reply_to_id, reply_to_sender, reply_to_content, status, is_sudo, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.RoomID, m.Sender, m.Content, m.Image, m.IsImage,
		replyID, replySender, replyContent, m.Status, m.IsSudo, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (s *MessageStore) Get(ctx context.Context, id string) (*models.Message, error) {
	m, err := scanMessage(s.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	if err := s.attachReactions(ctx, map[string]*models.Message{m.ID: m},
		`SELECT message_id, emoji, reactor FROM message_reactions
		 WHERE message_id = $1 ORDER BY created_at`, m.ID); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MessageStore) ListByRoom(ctx context.Context, roomID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE room_id = $1 ORDER BY created_at, id`, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	byID := make(map[string]*models.Message)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
		byID[m.ID] = &messages[len(messages)-1]
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if messages == nil {
		return []models.Message{}, nil
	}

	err = s.attachReactions(ctx, byID,
		`SELECT r.message_id, r.emoji, r.reactor
		 FROM message_reactions r
		 JOIN messages m ON m.id = r.message_id
		 WHERE m.room_id = $1 ORDER BY r.created_at`, roomID)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *MessageStore) attachReactions(ctx context.Context, byID map[string]*models.Message, query string, args ...any) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query reactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var messageID, emoji, reactor string
		if err := rows.Scan(&messageID, &emoji, &reactor); err != nil {
			return err
		}
		m, ok := byID[messageID]
		if !ok {
			continue
		}
		if m.Reactions == nil {
			m.Reactions = make(map[string][]string)
		}
		m.Reactions[emoji] = append(m.Reactions[emoji], reactor)
	}
	return rows.Err()
}

func (s *MessageStore) UpdateContent(ctx context.Context, id, content string, editedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET content = $2, edited = TRUE, edited_at = $3 WHERE id = $1`,
		id, content, editedAt)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *MessageStore) SetStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *MessageStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func (s *MessageStore) AddReaction(ctx context.Context, messageID, emoji, reactor string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO message_reactions (message_id, emoji, reactor)
		 VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		messageID, emoji, reactor)
	if err != nil {
		return false, fmt.Errorf("failed to add reaction: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *MessageStore) RemoveReaction(ctx context.Context, messageID, emoji, reactor string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM message_reactions WHERE message_id = $1 AND emoji = $2 AND reactor = $3`,
		messageID, emoji, reactor)
	if err != nil {
		return fmt.Errorf("failed to remove reaction: %w", err)
	}
	return nil
}
