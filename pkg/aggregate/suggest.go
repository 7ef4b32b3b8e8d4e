package aggregate

import (
	"math"
	"sort"

	"github.com/edhtools/deckscope/pkg/mtg"
)

// TypeSuggestion compares the commander deck's count for one card type with
// the average across the added similar decks. Count is always positive;
// Action says which way to move.
type TypeSuggestion struct {
	Type    mtg.DerivedType
	Action  string // "add" or "remove"
	Count   int
	Have    int
	Average float64
}

// computeTypeSuggestions diffs the commander deck's per-type counts against
// the average per-type counts of the similar decks. Commander has 3
// creatures, average is 7: "add 4 creatures". Commander has 7, average is 3:
// "remove 4 creatures".
func computeTypeSuggestions(commander map[mtg.DerivedType]int, similar map[mtg.DerivedType]int, similarDecks int) []TypeSuggestion {
	if similarDecks <= 0 {
		return nil
	}

	types := make(map[mtg.DerivedType]struct{})
	for t := range commander {
		types[t] = struct{}{}
	}
	for t := range similar {
		types[t] = struct{}{}
	}

	var out []TypeSuggestion
	for t := range types {
		have := commander[t]
		avg := float64(similar[t]) / float64(similarDecks)
		diff := have - int(math.Round(avg))
		if diff == 0 {
			continue
		}

		s := TypeSuggestion{Type: t, Have: have, Average: avg}
		if diff > 0 {
			s.Action = "remove"
			s.Count = diff
		} else {
			s.Action = "add"
			s.Count = -diff
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// CardsTo greedily buckets an already-ranked list by derived type, taking
// from the front up to the budgeted count per type and preserving the
// incoming order within each bucket. budget is consumed; pass a copy if the
// caller still needs it.
func CardsTo(ranked []*CardRecord, budget map[mtg.DerivedType]int) []*CardRecord {
	var out []*CardRecord
	for _, r := range ranked {
		if budget[r.DerivedType] > 0 {
			out = append(out, r)
			budget[r.DerivedType]--
		}
	}
	return out
}

// AddBudget converts suggestions into a per-type budget of cards to add.
func AddBudget(suggestions []TypeSuggestion) map[mtg.DerivedType]int {
	budget := make(map[mtg.DerivedType]int)
	for _, s := range suggestions {
		if s.Action == "add" {
			budget[s.Type] = s.Count
		}
	}
	return budget
}

// RemoveBudget converts suggestions into a per-type budget of cards to cut.
func RemoveBudget(suggestions []TypeSuggestion) map[mtg.DerivedType]int {
	budget := make(map[mtg.DerivedType]int)
	for _, s := range suggestions {
		if s.Action == "remove" {
			budget[s.Type] = s.Count
		}
	}
	return budget
}
