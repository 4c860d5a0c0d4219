// Package kv holds the durable key-value stores the storefront persists its
// page state to. A store is bound to one scope, the equivalent of one
// browser's local storage.
package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Store is a string-keyed, string-valued durable store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
