// Package feedback stores per-result relevance signals submitted by users.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coderopp/smartneed/internal/domain"
)

const (
	keyPrefix = domain.KeyPrefix + "feedback:"
	ttl       = 30 * 24 * time.Hour
)

// Signal is a user's verdict on a single search result.
type Signal string

const (
	SignalRelevant   Signal = "relevant"
	SignalIrrelevant Signal = "irrelevant"
	SignalPurchased  Signal = "purchased"
)

// Valid reports whether s is a known signal.
func (s Signal) Valid() bool {
	switch s {
	case SignalRelevant, SignalIrrelevant, SignalPurchased:
		return true
	}
	return false
}

type store interface {
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
}

type record struct {
	Signal    Signal    `json:"signal"`
	Timestamp time.Time `json:"ts"`
}

// Repo persists feedback signals keyed by (query, product) pair.
type Repo struct {
	store store
	now   func() time.Time
}

// New creates a feedback repository.
func New(s store) *Repo {
	return &Repo{store: s, now: time.Now}
}

// Submit stores a signal for the given query result. The first signal per
// (queryID, productID) pair wins; replays return accepted=false without
// overwriting.
func (r *Repo) Submit(ctx context.Context, queryID, productID string, signal Signal) (accepted bool, err error) {
	if queryID == "" || productID == "" {
		return false, fmt.Errorf("%w: query id and product id are required", domain.ErrInvalidQuery)
	}
	if !signal.Valid() {
		return false, fmt.Errorf("%w: unknown feedback signal %q", domain.ErrInvalidQuery, signal)
	}

	payload, err := json.Marshal(record{Signal: signal, Timestamp: r.now().UTC()})
	if err != nil {
		return false, fmt.Errorf("%w: encode feedback: %w", domain.ErrInternal, err)
	}

	key := keyPrefix + queryID + ":" + productID
	stored, err := r.store.SetNX(ctx, key, payload, ttl)
	if err != nil {
		return false, fmt.Errorf("%w: store feedback: %w", domain.ErrStoreUnavailable, err)
	}
	return stored, nil
}
