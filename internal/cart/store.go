// Package cart keeps the storefront cart in memory and mirrors every change
// to a durable kv.Store under the "dominosCart" key.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/kv"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
)

const (
	StorageKey      = "dominosCart"
	DefaultQuantity = 1
)

var (
	ErrIndexOutOfRange = errors.New("cart index out of range")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidItem     = errors.New("invalid cart item")
	ErrEmptyCart       = errors.New("cart is empty")
)

type Store struct {
	kv        kv.Store
	logger    *zap.SugaredLogger
	newID     func() string
	listeners []func(count int)

	mu    sync.Mutex
	items []Item
}

type Option func(*Store)

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithCountListener registers fn to be called with the new item count after
// every successful mutation.
func WithCountListener(fn func(count int)) Option {
	return func(s *Store) { s.listeners = append(s.listeners, fn) }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// Open loads the cart from store. A missing, unreadable or corrupt value
// yields an empty cart; the failure is logged and never returned.
func Open(ctx context.Context, store kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:     store,
		logger: zap.NewNop().Sugar(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.items = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []Item {
	raw, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.logger.Debugf("cart: storage read failed, starting empty: %v", err)
		}
		return []Item{}
	}

	var stored []storedItem
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		s.logger.Debugf("cart: stored cart is corrupt, starting empty: %v", err)
		return []Item{}
	}

	items := make([]Item, 0, len(stored))
	for _, st := range stored {
		items = append(items, s.restore(st))
	}
	return items
}

// storedItem is the persisted shape of a line. Carts written by the old page
// script carry no ids, keep prices as display text and may omit quantity.
type storedItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    json.RawMessage `json:"price"`
	Quantity int             `json:"quantity"`
}

func (s *Store) restore(st storedItem) Item {
	item := Item{ID: st.ID, Name: st.Name, Quantity: st.Quantity}
	if item.ID == "" {
		item.ID = s.newID()
	}
	if item.Quantity < 1 {
		item.Quantity = DefaultQuantity
	}
	if len(st.Price) > 0 {
		if err := json.Unmarshal(st.Price, &item.Price); err != nil {
			s.logger.Debugf("cart: stored price for %q unreadable, counting as 0: %v", st.Name, err)
			item.Price = 0
		}
	}
	return item
}

// Add appends a new line with quantity 1. Identical products are never
// merged.
func (s *Store) Add(ctx context.Context, name string, price money.Amount) (Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if price < 0 {
		return Item{}, fmt.Errorf("%w: negative price", ErrInvalidItem)
	}

	item := Item{ID: s.newID(), Name: name, Price: price, Quantity: DefaultQuantity}

	s.mu.Lock()
	next := append(slices.Clone(s.items), item)
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return Item{}, err
	}
	s.items = next
	count := len(next)
	s.mu.Unlock()

	s.notify(count)
	return item, nil
}

// RemoveAt removes the line at index, shifting later lines down.
func (s *Store) RemoveAt(ctx context.Context, index int) (Item, error) {
	s.mu.Lock()
	if index < 0 || index >= len(s.items) {
		n := len(s.items)
		s.mu.Unlock()
		return Item{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, n)
	}
	removed, count, err := s.removeLocked(ctx, index)
	s.mu.Unlock()
	if err != nil {
		return Item{}, err
	}

	s.notify(count)
	return removed, nil
}

// Remove removes the line with the given id.
func (s *Store) Remove(ctx context.Context, id string) (Item, error) {
	s.mu.Lock()
	index := slices.IndexFunc(s.items, func(it Item) bool { return it.ID == id })
	if index < 0 {
		s.mu.Unlock()
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	removed, count, err := s.removeLocked(ctx, index)
	s.mu.Unlock()
	if err != nil {
		return Item{}, err
	}

	s.notify(count)
	return removed, nil
}

func (s *Store) removeLocked(ctx context.Context, index int) (Item, int, error) {
	removed := s.items[index]
	next := slices.Delete(slices.Clone(s.items), index, index+1)
	if err := s.persist(ctx, next); err != nil {
		return Item{}, 0, err
	}
	s.items = next
	return removed, len(next), nil
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	if err := s.persist(ctx, []Item{}); err != nil {
		s.mu.Unlock()
		return err
	}
	s.items = []Item{}
	s.mu.Unlock()

	s.notify(0)
	return nil
}

// Checkout hands the current lines and their total to fn and empties the cart
// once fn succeeds. The cart stays locked while fn runs, so no line can be
// added or removed between the snapshot and the clear. If fn fails the cart
// is left untouched.
func (s *Store) Checkout(ctx context.Context, fn func(items []Item, total money.Amount) error) error {
	s.mu.Lock()
	if len(s.items) == 0 {
		s.mu.Unlock()
		return ErrEmptyCart
	}
	items := slices.Clone(s.items)
	var total money.Amount
	for _, it := range items {
		total += it.Price
	}
	if err := fn(items, total); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.persist(ctx, []Item{}); err != nil {
		s.mu.Unlock()
		return err
	}
	s.items = []Item{}
	s.mu.Unlock()

	s.notify(0)
	return nil
}

func (s *Store) persist(ctx context.Context, items []Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, string(raw)); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *Store) notify(count int) {
	for _, fn := range s.listeners {
		fn(count)
	}
}

// Items returns a copy of the cart lines in display order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Total is the sum of the line prices. It is only ever displayed.
func (s *Store) Total() money.Amount {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total money.Amount
	for _, it := range s.items {
		total += it.Price
	}
	return total
}

func (s *Store) Badge() Badge {
	return NewBadge(s.Count())
}
