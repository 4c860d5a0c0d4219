package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLiteStore keeps entries in the kv_entries table created by
// db.RunSQLiteMigrations.
type SQLiteStore struct {
	db    *sql.DB
	scope string
}

func NewSQLiteStore(db *sql.DB, scope string) *SQLiteStore {
	return &SQLiteStore{db: db, scope: scope}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE scope = ? AND key = ?`, s.scope, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("select %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	const upsert = `
INSERT INTO kv_entries (scope, key, value, updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (scope, key) DO UPDATE
SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
`
	if _, err := s.db.ExecContext(ctx, upsert, s.scope, key, value); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE scope = ? AND key = ?`, s.scope, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
