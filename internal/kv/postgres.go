package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresStore struct {
	pool  DBPool
	scope string
}

func NewPostgresStore(pool DBPool, scope string) *PostgresStore {
	return &PostgresStore{pool: pool, scope: scope}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM storefront_kv WHERE scope=$1 AND key=$2`, s.scope, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("select %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO storefront_kv(scope, key, value)
		VALUES($1, $2, $3)
		ON CONFLICT (scope, key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()
	`, s.scope, key, value)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM storefront_kv WHERE scope=$1 AND key=$2`, s.scope, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
