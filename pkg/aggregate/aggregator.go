// Package aggregate folds scraped deck and recommendation observations into
// per-card records and computes the final weighted rankings.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/edhtools/deckscope/internal/utils"
	"github.com/edhtools/deckscope/pkg/mtg"
)

// CardResolver maps a normalized name to a canonical card; (nil, nil) is a
// recoverable miss and the observation entry is skipped.
type CardResolver interface {
	Resolve(ctx context.Context, name string) (*mtg.CanonicalCard, error)
}

// InventoryLookup returns owned copies for a latinized card name. nil means
// no inventory data.
type InventoryLookup func(ctx context.Context, nameLatin string) (int, error)

// State of one analysis run. Observations are only accepted before
// Calculate; getters are only valid after it.
type State int

const (
	StateEmpty State = iota
	StateAccumulating
	StateCalculated
)

// ErrNotCalculated is returned by getters before Calculate has run. The
// policy is deliberate: explicit idempotent Calculate, no implicit
// recomputation hidden inside getters.
var ErrNotCalculated = errors.New("aggregate: Calculate has not been called")

// ErrCalculated rejects observations added after Calculate.
var ErrCalculated = errors.New("aggregate: run already calculated")

// Options configures one run.
type Options struct {
	// OwnedOnly filters every ranked list to cards with inventory copies.
	OwnedOnly bool
	// Inventory provides owned-copies lookups; nil disables inventory data.
	Inventory InventoryLookup
}

// Aggregator owns the CardRecord set for one analysis run. Not safe for
// concurrent use; a run is strictly sequential by design.
type Aggregator struct {
	resolver CardResolver
	opts     Options

	state   State
	records map[string]*CardRecord
	order   []string

	totalDecksAdded int
	similarDecks    int
	skipped         int

	commanderTypes map[mtg.DerivedType]int
	similarTypes   map[mtg.DerivedType]int
}

func New(resolver CardResolver, opts Options) *Aggregator {
	return &Aggregator{
		resolver:       resolver,
		opts:           opts,
		records:        make(map[string]*CardRecord),
		commanderTypes: make(map[mtg.DerivedType]int),
		similarTypes:   make(map[mtg.DerivedType]int),
	}
}

// AddCommanderDeck folds the user's own deck: every card is flagged as a
// commander-deck member at position 0.
func (a *Aggregator) AddCommanderDeck(ctx context.Context, deck mtg.DeckObservation) error {
	if a.state == StateCalculated {
		return ErrCalculated
	}

	for _, entry := range deck.Entries {
		rec, err := a.foldDeckEntry(ctx, entry, deck.Position)
		if err != nil {
			return err
		}
		if rec == nil {
			continue
		}
		rec.SetCommander(true)
		a.commanderTypes[rec.DerivedType] += entry.Copies
	}

	a.totalDecksAdded++
	a.state = StateAccumulating
	return nil
}

// AddSimilarDeck folds one deck scraped from the deck database, ranked by
// its position (1 = most similar).
func (a *Aggregator) AddSimilarDeck(ctx context.Context, deck mtg.DeckObservation) error {
	if a.state == StateCalculated {
		return ErrCalculated
	}

	for _, entry := range deck.Entries {
		rec, err := a.foldDeckEntry(ctx, entry, deck.Position)
		if err != nil {
			return err
		}
		if rec == nil {
			continue
		}
		a.similarTypes[rec.DerivedType] += entry.Copies
	}

	a.totalDecksAdded++
	a.similarDecks++
	a.state = StateAccumulating
	return nil
}

// AddRecommendation folds the recommendation source's suggestion list. A
// single aggregate source: it does not count as a deck.
func (a *Aggregator) AddRecommendation(ctx context.Context, rec mtg.RecommendationObservation) error {
	if a.state == StateCalculated {
		return ErrCalculated
	}

	for _, entry := range rec.Entries {
		record, err := a.resolveEntry(ctx, entry.RawName)
		if err != nil {
			return err
		}
		if record == nil {
			continue
		}
		record.ApplyRecommendation(entry)
	}

	a.state = StateAccumulating
	return nil
}

// foldDeckEntry resolves one deck entry into its record and accumulates the
// copy count. Returns nil for skipped entries (non-cards, misses, basics).
func (a *Aggregator) foldDeckEntry(ctx context.Context, entry mtg.DeckEntry, position int) (*CardRecord, error) {
	rec, err := a.resolveEntry(ctx, entry.RawName)
	if err != nil || rec == nil {
		return nil, err
	}
	rec.AddDeckAmount(entry.Copies)
	rec.SetPosition(position)
	return rec, nil
}

// resolveEntry runs normalize -> resolve -> basic/snow filter and returns
// the (possibly new) record, or nil when the entry is skipped.
func (a *Aggregator) resolveEntry(ctx context.Context, rawName string) (*CardRecord, error) {
	name, ok := mtg.Normalize(rawName)
	if !ok {
		return nil, nil
	}

	card, err := a.resolver.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	if card == nil {
		a.skipped++
		return nil, nil
	}
	if mtg.IsBasicOrSnow(card.TypeLine) {
		return nil, nil
	}

	rec, exists := a.records[card.ID]
	if !exists {
		rec = newCardRecord(card)
		if a.opts.Inventory != nil {
			amount, err := a.opts.Inventory(ctx, rec.SimpleName)
			if err != nil {
				return nil, fmt.Errorf("inventory lookup for %q: %w", rec.SimpleName, err)
			}
			rec.SetInventory(amount)
		}
		a.records[card.ID] = rec
		a.order = append(a.order, card.ID)
	}
	return rec, nil
}

// Calculate runs the weighting formula over every record and seals the run.
// Idempotent: repeat calls no-op.
func (a *Aggregator) Calculate() {
	if a.state == StateCalculated {
		return
	}
	for _, id := range a.order {
		a.records[id].calculate(a.totalDecksAdded)
	}
	if a.skipped > 0 {
		utils.Log.Info("skipped ", a.skipped, " unresolved card names in this run")
	}
	a.state = StateCalculated
}

// State reports where the run is in its lifecycle.
func (a *Aggregator) State() State {
	return a.state
}

// TotalDecksAdded reports how many deck observations were folded in.
func (a *Aggregator) TotalDecksAdded() int {
	return a.totalDecksAdded
}

// Skipped reports how many observation entries were dropped as unresolvable.
func (a *Aggregator) Skipped() int {
	return a.skipped
}

// Ranked returns the records selected by the strategy, stably sorted.
func (a *Aggregator) Ranked(s Strategy) ([]*CardRecord, error) {
	if a.state != StateCalculated {
		return nil, ErrNotCalculated
	}

	var out []*CardRecord
	for _, id := range a.order {
		rec := a.records[id]
		if !s.Include(rec) {
			continue
		}
		if a.opts.OwnedOnly && rec.InventoryAmount == 0 {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return s.Less(out[i], out[j]) })
	return out, nil
}

// MostRecommended lists addition candidates, strongest first.
func (a *Aggregator) MostRecommended() ([]*CardRecord, error) {
	return a.Ranked(Recommend)
}

// LeastPopular lists the commander deck's weakest inclusions first.
func (a *Aggregator) LeastPopular() ([]*CardRecord, error) {
	return a.Ranked(Trim)
}

// PurchaseList lists unowned addition candidates, strongest first. The
// owned-only option does not apply here: a purchase list of owned cards
// would always be empty.
func (a *Aggregator) PurchaseList() ([]*CardRecord, error) {
	if a.state != StateCalculated {
		return nil, ErrNotCalculated
	}

	var out []*CardRecord
	for _, id := range a.order {
		rec := a.records[id]
		if Purchase.Include(rec) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return Purchase.Less(out[i], out[j]) })
	return out, nil
}

// TypeSuggestions compares the commander deck's type balance against the
// average across similar decks.
func (a *Aggregator) TypeSuggestions() ([]TypeSuggestion, error) {
	if a.state != StateCalculated {
		return nil, ErrNotCalculated
	}
	return computeTypeSuggestions(a.commanderTypes, a.similarTypes, a.similarDecks), nil
}

// Record exposes one record by card id, mainly for tests and diagnostics.
func (a *Aggregator) Record(id string) (*CardRecord, bool) {
	rec, ok := a.records[id]
	return rec, ok
}
