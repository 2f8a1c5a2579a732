package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/allichat/server/internal/models"
	"github.com/allichat/server/internal/store"
)

type RoomStore struct {
	db *sql.DB
}

func NewRoomStore(db *sql.DB) *RoomStore {
	return &RoomStore{db: db}
}

const roomColumns = `id, name, type, participants, created_by, is_public, emoji, created_at`

func scanRoom(row interface{ Scan(...any) error }) (*models.Room, error) {
	var r models.Room
	err := row.Scan(&r.ID, &r.Name, &r.Type, pq.Array(&r.Participants),
		&r.CreatedBy, &r.IsPublic, &r.Emoji, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RoomStore) Create(ctx context.Context, r *models.Room) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rooms (id, name, type, participants, created_by, is_public, emoji, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.Name, r.Type, pq.Array(r.Participants), r.CreatedBy,
		r.IsPublic, r.Emoji, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (s *RoomStore) Get(ctx context.Context, id string) (*models.Room, error) {
	r, err := scanRoom(s.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return r, nil
}

func (s *RoomStore) VisibleTo(ctx context.Context, user, globalName string) ([]models.Room, error) {
	return s.queryRooms(ctx,
		`SELECT `+roomColumns+` FROM rooms
		 WHERE participants @> ARRAY[$1] OR is_public OR name = $2
		 ORDER BY created_at, id`,
		user, globalName)
}

func (s *RoomStore) PublicNotJoined(ctx context.Context, user string) ([]models.Room, error) {
	return s.queryRooms(ctx,
		`SELECT `+roomColumns+` FROM rooms
		 WHERE type = 'group' AND is_public AND NOT participants @> ARRAY[$1]
		 ORDER BY created_at, id`,
		user)
}

func (s *RoomStore) queryRooms(ctx context.Context, query string, args ...any) ([]models.Room, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *r)
	}
	if rooms == nil {
		rooms = []models.Room{}
	}
	return rooms, rows.Err()
}

func (s *RoomStore) FindDirect(ctx context.Context, a, b string) (*models.Room, error) {
	r, err := scanRoom(s.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms
		 WHERE type = 'direct' AND participants @> ARRAY[$1, $2]
		 LIMIT 1`,
		a, b))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find direct room: %w", err)
	}
	return r, nil
}

func (s *RoomStore) AddParticipant(ctx context.Context, roomID, user string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE rooms SET participants = array_append(participants, $2)
		 WHERE id = $1 AND NOT participants @> ARRAY[$2]`,
		roomID, user,
	)
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	// Zero rows means either the room is missing or the user is
	// already a participant; only the former is an error.
	if n, _ := res.RowsAffected(); n == 0 {
		room, err := s.Get(ctx, roomID)
		if err != nil {
			return err
		}
		if room == nil {
			return store.ErrNotFound
		}
	}
	return nil
}

func (s *RoomStore) RemoveParticipantOrDelete(ctx context.Context, roomID, user string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var createdBy string
	var participants []string
	err = tx.QueryRowContext(ctx,
		`SELECT created_by, participants FROM rooms WHERE id = $1 FOR UPDATE`,
		roomID,
	).Scan(&createdBy, pq.Array(&participants))
	if err != nil {
		if err == sql.ErrNoRows {
			return false, store.ErrNotFound
		}
		return false, fmt.Errorf("failed to lock room: %w", err)
	}

	updated := participants[:0]
	for _, p := range participants {
		if p != user {
			updated = append(updated, p)
		}
	}

	deleted := false
	if createdBy == user && len(updated) == 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, roomID); err != nil {
			return false, fmt.Errorf("failed to delete room: %w", err)
		}
		deleted = true
	} else {
		if _, err := tx.ExecContext(ctx,
			`UPDATE rooms SET participants = $2 WHERE id = $1`,
			roomID, pq.Array(updated)); err != nil {
			return false, fmt.Errorf("failed to update participants: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return deleted, nil
}
