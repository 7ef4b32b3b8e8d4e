package aggregate

import (
	"math"
	"testing"

	"github.com/edhtools/deckscope/pkg/mtg"
)

func TestSetPositionMonotonic(t *testing.T) {
	r := &CardRecord{}

	r.SetPosition(5)
	if r.Position() != 5 {
		t.Fatalf("position = %d, want 5", r.Position())
	}

	r.SetPosition(2)
	if r.Position() != 2 {
		t.Fatalf("position after improvement = %d, want 2", r.Position())
	}

	r.SetPosition(5)
	if r.Position() != 2 {
		t.Fatalf("position must not regress: got %d, want 2", r.Position())
	}

	// Position 0 is representable and wins over everything.
	r.SetPosition(0)
	if r.Position() != 0 {
		t.Fatalf("position = %d, want 0", r.Position())
	}
	r.SetPosition(3)
	if r.Position() != 0 {
		t.Fatalf("position regressed from 0 to %d", r.Position())
	}
}

func TestAddDeckAmountAccumulates(t *testing.T) {
	r := &CardRecord{}
	r.AddDeckAmount(1)
	r.AddDeckAmount(3)
	r.AddDeckAmount(0)  // ignored
	r.AddDeckAmount(-2) // ignored
	if r.DeckStats.Amount != 4 {
		t.Fatalf("deck amount = %d, want 4", r.DeckStats.Amount)
	}
}

func TestApplyRecommendationGuards(t *testing.T) {
	r := &CardRecord{}

	// Entries without a usable amount are dropped.
	r.ApplyRecommendation(mtg.RecommendationEntry{Percent: 50, Synergy: 10})
	if r.RecommendationStats != (RecommendationStats{}) {
		t.Fatalf("malformed entry applied: %+v", r.RecommendationStats)
	}

	r.ApplyRecommendation(mtg.RecommendationEntry{Amount: 1, Percent: 40, Synergy: 5})
	want := RecommendationStats{Amount: 1, Percent: 40, Synergy: 5}
	if r.RecommendationStats != want {
		t.Fatalf("stats = %+v, want %+v", r.RecommendationStats, want)
	}

	// Last write wins.
	r.ApplyRecommendation(mtg.RecommendationEntry{Amount: 2, Percent: 60, Synergy: 1})
	if r.RecommendationStats.Percent != 60 {
		t.Fatalf("last write did not win: %+v", r.RecommendationStats)
	}
}

func TestSetInventoryIgnoresMalformed(t *testing.T) {
	r := &CardRecord{}
	r.SetInventory(3)
	r.SetInventory(-1)
	if r.InventoryAmount != 3 {
		t.Fatalf("inventory = %d, want 3", r.InventoryAmount)
	}
}

func TestWeightFormulaConcreteCase(t *testing.T) {
	// totalDecksAdded=10, amount=5, position=0, recommendation percent=40:
	// positionWeight=1.1, weightedDeckAmount=5*1.21=6.05,
	// weightedDeckPct=floor(6.05/10*1000)/10=60.5,
	// finalPercent=floor((60.5+80)/300*1000)/10=46.8.
	r := &CardRecord{}
	r.AddDeckAmount(5)
	r.SetPosition(0)
	r.ApplyRecommendation(mtg.RecommendationEntry{Amount: 1, Percent: 40})

	r.calculate(10)

	if r.DeckStats.Percent != 50.0 {
		t.Errorf("deck percent = %v, want 50.0", r.DeckStats.Percent)
	}
	if r.WeightedPercent != 46.8 {
		t.Errorf("weighted percent = %v, want 46.8", r.WeightedPercent)
	}
}

func TestWeightFormulaTruncatesNotRounds(t *testing.T) {
	// amount=1 of 3 decks: 33.333...% must truncate to 33.3, never 33.4.
	r := &CardRecord{}
	r.AddDeckAmount(1)
	r.SetPosition(99)
	r.calculate(3)

	if r.DeckStats.Percent != 33.3 {
		t.Errorf("deck percent = %v, want 33.3", r.DeckStats.Percent)
	}
}

func TestWeightedPercentCappedAt100(t *testing.T) {
	// Every deck runs 2 copies: weighted amount exceeds the deck count and
	// the weighted percent must cap at 100.
	r := &CardRecord{}
	r.AddDeckAmount(20)
	r.SetPosition(0)
	r.ApplyRecommendation(mtg.RecommendationEntry{Amount: 1, Percent: 100})
	r.calculate(10)

	// weightedDeckPct capped at 100, final = floor((100+200)/300*1000)/10 = 100.
	if r.WeightedPercent != 100.0 {
		t.Errorf("weighted percent = %v, want 100.0", r.WeightedPercent)
	}
}

func TestPositionWeight(t *testing.T) {
	tests := []struct {
		position int
		want     float64
	}{
		{0, 1.100},
		{1, 1.099},
		{50, 1.050},
		{99, 1.001},
		{150, 1.001}, // clamped
	}
	for _, tc := range tests {
		if got := positionWeight(tc.position); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("positionWeight(%d) = %v, want %v", tc.position, got, tc.want)
		}
	}
}
