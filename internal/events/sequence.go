package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/kv"
)

const sequenceKeyPrefix = "cartEventSequence:"

// Sequencer hands out monotonically increasing sequence numbers per
// partition, persisted in the kv store.
type Sequencer struct {
	kv kv.Store
	mu sync.Mutex
}

func NewSequencer(store kv.Store) *Sequencer {
	return &Sequencer{kv: store}
}

func (s *Sequencer) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	if partitionKey == "" {
		return 0, fmt.Errorf("partition key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := sequenceKeyPrefix + partitionKey
	var last int64
	raw, err := s.kv.Get(ctx, key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return 0, fmt.Errorf("read sequence: %w", err)
	default:
		last, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse sequence %q: %w", raw, err)
		}
	}

	next := last + 1
	if err := s.kv.Set(ctx, key, strconv.FormatInt(next, 10)); err != nil {
		return 0, fmt.Errorf("increment sequence: %w", err)
	}
	return next, nil
}
