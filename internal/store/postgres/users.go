package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/allichat/server/internal/models"
	"github.com/allichat/server/internal/store"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (display_name, secret_hash, role, allowed_names)
		 VALUES ($1, $2, $3, $4)`,
		u.DisplayName, u.SecretHash, u.Role, pq.Array(u.AllowedNames),
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *UserStore) Get(ctx context.Context, name string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT display_name, secret_hash, role, is_online, is_muted, is_banned,
		        allowed_names, last_seen, created_at
		 FROM users WHERE display_name = $1`,
		name,
	).Scan(&u.DisplayName, &u.SecretHash, &u.Role, &u.IsOnline, &u.IsMuted,
		&u.IsBanned, pq.Array(&u.AllowedNames), &u.LastSeen, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT display_name, role, is_online, is_muted, is_banned,
		        allowed_names, last_seen, created_at
		 FROM users ORDER BY display_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.DisplayName, &u.Role, &u.IsOnline, &u.IsMuted,
			&u.IsBanned, pq.Array(&u.AllowedNames), &u.LastSeen, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, rows.Err()
}

func (s *UserStore) SetOnline(ctx context.Context, name string, online bool) error {
	return s.setFlag(ctx, name, "is_online", online)
}

func (s *UserStore) SetMuted(ctx context.Context, name string, muted bool) error {
	return s.setFlag(ctx, name, "is_muted", muted)
}

func (s *UserStore) SetBanned(ctx context.Context, name string, banned bool) error {
	return s.setFlag(ctx, name, "is_banned", banned)
}

func (s *UserStore) setFlag(ctx context.Context, name, column string, value bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET `+column+` = $1 WHERE display_name = $2`, value, name)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *UserStore) UpdateLastSeen(ctx context.Context, name string, t time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_seen = $1 WHERE display_name = $2`, t, name)
	return err
}
