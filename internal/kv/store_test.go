package kv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/kv"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s kv.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "dominosCart")
	if !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}

	require.NoError(t, s.Set(ctx, "dominosCart", `[]`))
	require.NoError(t, s.Set(ctx, "dominosCart", `[{"name":"Margherita"}]`))

	got, err := s.Get(ctx, "dominosCart")
	require.NoError(t, err)
	require.Equal(t, `[{"name":"Margherita"}]`, got)

	require.NoError(t, s.Set(ctx, "userLocation", "Park Street, Kolkata"))
	require.NoError(t, s.Delete(ctx, "dominosCart"))

	_, err = s.Get(ctx, "dominosCart")
	if !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	loc, err := s.Get(ctx, "userLocation")
	require.NoError(t, err)
	require.Equal(t, "Park Street, Kolkata", loc)

	// deleting a missing key is not an error
	require.NoError(t, s.Delete(ctx, "dominosVisitCount"))
}

func TestMemory(t *testing.T) {
	exerciseStore(t, kv.NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, db.RunSQLiteMigrations(conn, zap.NewNop().Sugar()))

	exerciseStore(t, kv.NewSQLiteStore(conn, "browser-1"))
}

func TestSQLiteStore_ScopesAreIsolated(t *testing.T) {
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, db.RunSQLiteMigrations(conn, zap.NewNop().Sugar()))

	ctx := context.Background()
	a := kv.NewSQLiteStore(conn, "a")
	b := kv.NewSQLiteStore(conn, "b")

	require.NoError(t, a.Set(ctx, "dominosVisitCount", "3"))
	if _, err := b.Get(ctx, "dominosVisitCount"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected scope b to be empty, got %v", err)
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := kv.NewRedisStore(client, "browser-1")
	defer s.Close()

	exerciseStore(t, s)

	require.NoError(t, s.Set(context.Background(), "dominosVisitCount", "2"))
	raw, err := mr.Get("browser-1:dominosVisitCount")
	require.NoError(t, err)
	require.Equal(t, "2", raw)
	require.Zero(t, mr.TTL("browser-1:dominosVisitCount"))
}

func TestRedisStore_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	s := kv.NewRedisStore(client, "browser-1")
	defer s.Close()
	mr.Close()

	_, err := s.Get(context.Background(), "dominosCart")
	if err == nil || errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected connection error, got %v", err)
	}
}
