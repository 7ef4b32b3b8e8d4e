// Package catalog owns the in-memory card catalog snapshot. It is an
// explicit context object: the caller constructs one per process, calls Load
// once, and threads it into the resolver by reference.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/edhtools/deckscope/internal/utils"
	"github.com/edhtools/deckscope/pkg/mtg"
)

// Store is the persistence surface the catalog needs.
type Store interface {
	LoadSnapshot(ctx context.Context) ([]mtg.CanonicalCard, error)
	ReplaceSnapshot(ctx context.Context, cards []mtg.CanonicalCard) error
	SnapshotAge(ctx context.Context) (time.Duration, bool, error)
}

// Remote is the card-search API surface.
type Remote interface {
	SearchByName(ctx context.Context, name string) ([]mtg.CanonicalCard, error)
	BulkOracleCards(ctx context.Context) ([]mtg.CanonicalCard, error)
}

const DefaultTTL = 24 * time.Hour

type Catalog struct {
	store  Store
	remote Remote
	ttl    time.Duration

	loaded  bool
	cards   []mtg.CanonicalCard
	byLatin map[string]int
	byID    map[string]int
}

func New(store Store, remote Remote, ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Catalog{store: store, remote: remote, ttl: ttl}
}

// Load populates the snapshot, refreshing from bulk data when the stored
// copy is older than the TTL. Repeat calls no-op.
func (c *Catalog) Load(ctx context.Context) error {
	if c.loaded {
		return nil
	}

	age, ok, err := c.store.SnapshotAge(ctx)
	if err != nil {
		return fmt.Errorf("read catalog age: %w", err)
	}

	if !ok || age > c.ttl {
		fresh, err := c.remote.BulkOracleCards(ctx)
		if err != nil {
			if !ok {
				return fmt.Errorf("refresh catalog: %w", err)
			}
			// A stale snapshot beats no snapshot.
			utils.Log.Warn("catalog refresh failed, using stale snapshot: ", err)
		} else {
			if err := c.store.ReplaceSnapshot(ctx, fresh); err != nil {
				return fmt.Errorf("store catalog snapshot: %w", err)
			}
			utils.Log.Debug("catalog snapshot refreshed: ", len(fresh), " cards")
		}
	}

	cards, err := c.store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load catalog snapshot: %w", err)
	}

	c.cards = cards
	c.byLatin = make(map[string]int, len(cards))
	c.byID = make(map[string]int, len(cards))
	for i, card := range cards {
		// First occurrence wins, matching catalog iteration order.
		latin := mtg.Latinize(card.Name)
		if _, seen := c.byLatin[latin]; !seen {
			c.byLatin[latin] = i
		}
		if _, seen := c.byID[card.ID]; !seen {
			c.byID[card.ID] = i
		}
	}
	c.loaded = true
	return nil
}

// ForceRefresh drops the TTL check and pulls a fresh bulk snapshot.
func (c *Catalog) ForceRefresh(ctx context.Context) error {
	fresh, err := c.remote.BulkOracleCards(ctx)
	if err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}
	if err := c.store.ReplaceSnapshot(ctx, fresh); err != nil {
		return fmt.Errorf("store catalog snapshot: %w", err)
	}
	c.loaded = false
	return c.Load(ctx)
}

// Lookup finds a card by exact latinized name.
func (c *Catalog) Lookup(nameLatin string) (*mtg.CanonicalCard, bool) {
	idx, ok := c.byLatin[nameLatin]
	if !ok {
		return nil, false
	}
	return &c.cards[idx], true
}

// ByID finds a card by its catalog id.
func (c *Catalog) ByID(id string) (*mtg.CanonicalCard, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.cards[idx], true
}

// Snapshot exposes the full catalog in stable iteration order.
func (c *Catalog) Snapshot() []mtg.CanonicalCard {
	return c.cards
}

// Len reports the snapshot size.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// SearchRemote queries the card-search API.
func (c *Catalog) SearchRemote(ctx context.Context, name string) ([]mtg.CanonicalCard, error) {
	return c.remote.SearchByName(ctx, name)
}
