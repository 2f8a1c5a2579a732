package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/allichat/server/internal/models"
	"github.com/allichat/server/internal/store"
)

type SubteamStore struct {
	db *sql.DB
}

func NewSubteamStore(db *sql.DB) *SubteamStore {
	return &SubteamStore{db: db}
}

const subteamColumns = `id, name, description, color, members, created_by, created_at`

func scanSubteam(row interface{ Scan(...any) error }) (*models.Subteam, error) {
	var s models.Subteam
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Color,
		pq.Array(&s.Members), &s.CreatedBy, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *SubteamStore) Create(ctx context.Context, st *models.Subteam) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subteams (id, name, description, color, members, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		st.ID, st.Name, st.Description, st.Color, pq.Array(st.Members),
		st.CreatedBy, st.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create subteam: %w", err)
	}
	return nil
}

func (s *SubteamStore) Get(ctx context.Context, id string) (*models.Subteam, error) {
	st, err := scanSubteam(s.db.QueryRowContext(ctx,
		`SELECT `+subteamColumns+` FROM subteams WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subteam: %w", err)
	}
	return st, nil
}

func (s *SubteamStore) ListByMember(ctx context.Context, member string) ([]models.Subteam, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+subteamColumns+` FROM subteams
		 WHERE members @> ARRAY[$1] ORDER BY created_at, id`, member)
	if err != nil {
		return nil, fmt.Errorf("failed to list subteams: %w", err)
	}
	defer rows.Close()

	var subteams []models.Subteam
	for rows.Next() {
		st, err := scanSubteam(rows)
		if err != nil {
			return nil, err
		}
		subteams = append(subteams, *st)
	}
	if subteams == nil {
		subteams = []models.Subteam{}
	}
	return subteams, rows.Err()
}

func (s *SubteamStore) Update(ctx context.Context, id, name, description, color string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE subteams SET name = $2, description = $3, color = $4 WHERE id = $1`,
		id, name, description, color)
	if err != nil {
		return fmt.Errorf("failed to update subteam: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SubteamStore) AddMember(ctx context.Context, id, member string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE subteams SET members = array_append(members, $2)
		 WHERE id = $1 AND NOT members @> ARRAY[$2]`,
		id, member)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		st, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if st == nil {
			return store.ErrNotFound
		}
	}
	return nil
}

func (s *SubteamStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM subteams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subteam: %w", err)
	}
	return nil
}
