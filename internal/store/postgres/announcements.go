package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/allichat/server/internal/models"
)

type AnnouncementStore struct {
	db *sql.DB
}

func NewAnnouncementStore(db *sql.DB) *AnnouncementStore {
	return &AnnouncementStore{db: db}
}

func (s *AnnouncementStore) Create(ctx context.Context, a *models.Announcement) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO announcements (id, content, link, link_text, font_size, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Content, a.Link, a.LinkText, a.FontSize, a.CreatedBy, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create announcement: %w", err)
	}
	return nil
}

func (s *AnnouncementStore) List(ctx context.Context) ([]models.Announcement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, link, link_text, font_size, created_by, created_at
		 FROM announcements ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer rows.Close()

	var items []models.Announcement
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.Content, &a.Link, &a.LinkText,
			&a.FontSize, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if items == nil {
		items = []models.Announcement{}
	}
	return items, rows.Err()
}

func (s *AnnouncementStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	return nil
}
