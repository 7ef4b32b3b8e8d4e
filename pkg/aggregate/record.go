package aggregate

import (
	"math"

	"github.com/edhtools/deckscope/pkg/mtg"
)

// RecommendationStats is the recommendation source's view of a card.
type RecommendationStats struct {
	Amount  int
	Percent float64
	Synergy float64
}

// DeckStats is the deck-database view of a card. Amount is the exact sum of
// copies across every deck observation that resolved to this card; Percent
// is always recomputed from Amount / totalDecksAdded.
type DeckStats struct {
	Amount  int
	Percent float64
}

// CardRecord is the working unit of aggregation for one analysis run.
// Created the first time any observation resolves to its card id, mutated by
// every later observation of the same id, discarded at the end of the run.
type CardRecord struct {
	ID              string
	SimpleName      string
	DerivedType     mtg.DerivedType
	IsCommander     bool
	InventoryAmount int

	RecommendationStats RecommendationStats
	DeckStats           DeckStats

	// WeightedPercent is the final blended ranking score, computed once per
	// run by the aggregator.
	WeightedPercent float64

	position    int
	positionSet bool
}

func newCardRecord(card *mtg.CanonicalCard) *CardRecord {
	return &CardRecord{
		ID:          card.ID,
		SimpleName:  card.SimpleName(),
		DerivedType: card.DerivedType(),
	}
}

// Position is the authoritativeness rank of the best deck that contributed
// this card; 0 is the primary deck.
func (r *CardRecord) Position() int {
	return r.position
}

// SetPosition adopts n only when no position is set yet or n is more
// authoritative (smaller). Best position wins; never regresses upward.
func (r *CardRecord) SetPosition(n int) {
	if n < 0 {
		return
	}
	if !r.positionSet || n < r.position {
		r.position = n
		r.positionSet = true
	}
}

// ApplyRecommendation overwrites the recommendation stats. Entries without
// a usable amount are dropped silently; each card appears once per
// recommendation source, so last write wins within a run.
func (r *CardRecord) ApplyRecommendation(e mtg.RecommendationEntry) {
	if e.Amount <= 0 {
		return
	}
	r.RecommendationStats = RecommendationStats{
		Amount:  e.Amount,
		Percent: e.Percent,
		Synergy: e.Synergy,
	}
}

// AddDeckAmount accumulates copies across deck observations.
func (r *CardRecord) AddDeckAmount(copies int) {
	if copies <= 0 {
		return
	}
	r.DeckStats.Amount += copies
}

// SetCommander marks the record as part of the commander deck.
func (r *CardRecord) SetCommander(v bool) {
	if v {
		r.IsCommander = true
	}
}

// SetInventory records owned copies; malformed (negative) input is dropped.
func (r *CardRecord) SetInventory(amount int) {
	if amount < 0 {
		return
	}
	r.InventoryAmount = amount
}

// calculate runs the percent/weight formula. The arithmetic (truncation, not
// rounding; squared position weight; double-counted recommendation percent;
// the 300 divisor) is reproduced exactly for compatibility with existing
// expectations.
func (r *CardRecord) calculate(totalDecksAdded int) {
	if totalDecksAdded <= 0 {
		return
	}

	total := float64(totalDecksAdded)
	amount := float64(r.DeckStats.Amount)

	r.DeckStats.Percent = truncate1(amount / total * 100)

	weight := positionWeight(r.position)
	weightedAmount := amount * weight * weight
	weightedPct := math.Min(100, truncate1(weightedAmount/total*100))

	r.WeightedPercent = truncate1((weightedPct + 2*r.RecommendationStats.Percent) / 300 * 100)
}

// positionWeight maps position 0 to 1.100 and position 99 to 1.001;
// anything beyond 99 is clamped to the weakest weight.
func positionWeight(position int) float64 {
	n := 100 - position
	if n < 1 {
		n = 1
	}
	return 1 + float64(n)/1000
}

// truncate1 keeps one decimal place, truncated rather than rounded.
func truncate1(v float64) float64 {
	return math.Floor(v*10) / 10
}
