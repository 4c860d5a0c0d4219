package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/kv"
)

const VisitCountKey = "dominosVisitCount"

// Visits counts page loads for one storage scope.
type Visits struct {
	kv kv.Store
}

func NewVisits(store kv.Store) *Visits {
	return &Visits{kv: store}
}

// Count returns the stored count; missing or unreadable values count as 0.
func (v *Visits) Count(ctx context.Context) int {
	raw, err := v.kv.Get(ctx, VisitCountKey)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Increment records one more visit and returns the new count. The count is
// returned even when it could not be saved.
func (v *Visits) Increment(ctx context.Context) (int, error) {
	n := v.Count(ctx) + 1
	if err := v.kv.Set(ctx, VisitCountKey, strconv.Itoa(n)); err != nil {
		return n, fmt.Errorf("save visit count: %w", err)
	}
	return n, nil
}
