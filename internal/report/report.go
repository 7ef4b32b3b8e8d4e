// Package report renders analysis results as plain-text tables.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/edhtools/deckscope/pkg/aggregate"
	"github.com/edhtools/deckscope/pkg/storage"
)

// RankedTable prints up to top ranked records. top <= 0 prints everything.
func RankedTable(out io.Writer, title string, records []*aggregate.CardRecord, top int) {
	fmt.Fprintln(out, title)
	if len(records) == 0 {
		fmt.Fprintln(out, "  (nothing to show)")
		return
	}
	if top > 0 && len(records) > top {
		records = records[:top]
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "CARD\tTYPE\tDECKS%\tREC%\tSYNERGY\tSCORE\tOWNED\t")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\t%.1f\t%.1f\t%d\t\n",
			r.SimpleName, r.DerivedType, r.DeckStats.Percent,
			r.RecommendationStats.Percent, r.RecommendationStats.Synergy,
			r.WeightedPercent, r.InventoryAmount)
	}
	w.Flush()
}

// SuggestionList prints the type-balance suggestions, one line each.
func SuggestionList(out io.Writer, suggestions []aggregate.TypeSuggestion) {
	fmt.Fprintln(out, "Type balance vs similar decks:")
	if len(suggestions) == 0 {
		fmt.Fprintln(out, "  deck matches the average type counts")
		return
	}
	for _, s := range suggestions {
		noun := string(s.Type)
		if s.Count != 1 {
			noun += "s"
		}
		fmt.Fprintf(out, "  %s %d %s (have %d, similar decks average %.1f)\n",
			s.Action, s.Count, noun, s.Have, s.Average)
	}
}

// InventoryTable prints the owned-card list.
func InventoryTable(out io.Writer, items []storage.InventoryItem) {
	if len(items) == 0 {
		fmt.Fprintln(out, "Inventory is empty.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "CARD\tAMOUNT\t")
	total := 0
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%d\t\n", item.Name, item.Amount)
		total += item.Amount
	}
	fmt.Fprintln(w, " \t \t")
	fmt.Fprintf(w, "TOTAL\t%d\t\n", total)
	w.Flush()
}

// StatsTable prints per-table row counts.
func StatsTable(out io.Writer, counts map[string]int, order []string) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "TABLE\tROWS\t")
	for _, name := range order {
		fmt.Fprintf(w, "%s\t%d\t\n", name, counts[name])
	}
	w.Flush()
}
