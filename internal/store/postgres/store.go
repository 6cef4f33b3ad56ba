package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/anhhuy/fueltrack/internal/errs"
)

// Store implements the collection store on a single jsonb-valued table.
type Store struct{ db *DB }

// NewStore constructs a collection store.
func NewStore(db *DB) *Store { return &Store{db: db} }

// Get selects the raw value of a collection.
func (s *Store) Get(ctx context.Context, collection string) ([]byte, error) {
	const q = `SELECT value FROM collections WHERE name=$1`
	var value []byte
	if err := s.db.Pool.QueryRow(ctx, q, collection).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

// Set upserts the full value of a collection.
func (s *Store) Set(ctx context.Context, collection string, value []byte) error {
	const q = `
INSERT INTO collections (name, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	_, err := s.db.Pool.Exec(ctx, q, collection, value)
	return err
}
