package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// DocumentStore backs the offline import utility. Keys are derived from
// JSON paths by the importer, so re-running an import overwrites rather
// than duplicates.
type DocumentStore struct {
	db *sql.DB
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) Put(ctx context.Context, collection, key string, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, doc_key, data, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (collection, doc_key) DO UPDATE
		 SET data = EXCLUDED.data, updated_at = NOW()`,
		collection, key, data,
	)
	if err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}
	return nil
}
