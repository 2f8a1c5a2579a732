package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/allichat/server/internal/models"
	"github.com/allichat/server/internal/store"
)

type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, type, subteam_id, subteam_name, from_user, to_user, read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.Type, n.SubteamID, n.SubteamName, n.FromUser, n.ToUser, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (s *NotificationStore) UnreadFor(ctx context.Context, user string) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, subteam_id, subteam_name, from_user, to_user, read, created_at
		 FROM notifications WHERE to_user = $1 AND NOT read
		 ORDER BY created_at DESC`, user)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var items []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.SubteamID, &n.SubteamName,
			&n.FromUser, &n.ToUser, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, rows.Err()
}

func (s *NotificationStore) MarkRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}
