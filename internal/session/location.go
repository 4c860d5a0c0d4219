package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/kv"
)

const (
	LocationKey = "userLocation"

	EstimatedDelivery  = "30-40 mins"
	DefaultDetectDelay = 1500 * time.Millisecond
)

var ErrEmptyLocation = errors.New("location is required")

// DetectableLocations is the fixed set the simulated detection picks from.
var DetectableLocations = []string{
	"Andheri West, Mumbai",
	"Koramangala, Bangalore",
	"Connaught Place, Delhi",
	"Park Street, Kolkata",
	"Anna Nagar, Chennai",
}

// Locations stores the delivery location and simulates detecting it. No
// real geolocation is performed.
type Locations struct {
	kv    kv.Store
	delay time.Duration
	pick  func(n int) int
}

type LocationOption func(*Locations)

func WithDetectDelay(d time.Duration) LocationOption {
	return func(l *Locations) { l.delay = d }
}

// WithPicker replaces the random choice; fn receives the number of
// candidates and returns an index.
func WithPicker(fn func(n int) int) LocationOption {
	return func(l *Locations) { l.pick = fn }
}

func NewLocations(store kv.Store, opts ...LocationOption) *Locations {
	l := &Locations{
		kv:    store,
		delay: DefaultDetectDelay,
		pick:  rand.Intn,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Saved returns the last detected or selected location.
func (l *Locations) Saved(ctx context.Context) (string, bool) {
	loc, err := l.kv.Get(ctx, LocationKey)
	if err != nil || loc == "" {
		return "", false
	}
	return loc, true
}

// Set stores a location chosen by the user.
func (l *Locations) Set(ctx context.Context, location string) error {
	location = strings.TrimSpace(location)
	if location == "" {
		return ErrEmptyLocation
	}
	if err := l.kv.Set(ctx, LocationKey, location); err != nil {
		return fmt.Errorf("save location: %w", err)
	}
	return nil
}

// Detect waits for the detection delay, picks one of DetectableLocations
// and saves it.
func (l *Locations) Detect(ctx context.Context) (string, error) {
	if l.delay > 0 {
		timer := time.NewTimer(l.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	idx := l.pick(len(DetectableLocations))
	if idx < 0 || idx >= len(DetectableLocations) {
		idx = 0
	}
	loc := DetectableLocations[idx]
	if err := l.Set(ctx, loc); err != nil {
		return loc, err
	}
	return loc, nil
}
