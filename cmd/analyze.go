package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edhtools/deckscope/internal/report"
	"github.com/edhtools/deckscope/internal/utils"
	"github.com/edhtools/deckscope/pkg/aggregate"
	"github.com/edhtools/deckscope/pkg/catalog"
	"github.com/edhtools/deckscope/pkg/resolver"
	"github.com/edhtools/deckscope/pkg/scryfall"
	"github.com/edhtools/deckscope/pkg/sources"
	"github.com/edhtools/deckscope/pkg/sources/edhrec"
	"github.com/edhtools/deckscope/pkg/sources/tappedout"
)

// aggregateDeck runs the full scrape-and-fold pipeline for one deck URL and
// returns the calculated aggregator. cleanup releases the database and its
// lock; call it once done with the results.
func aggregateDeck(cmd *cobra.Command, deckURL string, similar int, ownedOnly bool) (*aggregate.Aggregator, func(), error) {
	ctx := cmd.Context()

	db, unlock, err := openDatabase(cmd)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		unlock()
		db.Close()
	}

	cat := catalog.New(db, scryfall.NewClient(viper.GetString("scryfall.base_url")),
		time.Duration(viper.GetInt("catalog.ttl_hours"))*time.Hour)
	if err := cat.Load(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("loading card catalog: %w", err)
	}
	utils.Log.Info("catalog ready with ", cat.Len(), " cards")

	driver := sources.NewHTTPDriver()
	decks := tappedout.New(driver, db, viper.GetString("tappedout.base_url"))
	recs := edhrec.New(driver, db, viper.GetString("edhrec.base_url"))

	agg := aggregate.New(resolver.New(cat, db), aggregate.Options{
		OwnedOnly: ownedOnly,
		Inventory: db.InventoryAmount,
	})

	run := func() error {
		deck, err := decks.FetchDeck(ctx, deckURL, 0)
		if err != nil {
			return err
		}
		if err := agg.AddCommanderDeck(ctx, deck); err != nil {
			return err
		}

		links, err := decks.SimilarDeckLinks(ctx, deckURL, similar)
		if err != nil {
			return err
		}
		for i, link := range links {
			other, err := decks.FetchDeck(ctx, link, i+1)
			if err != nil {
				return err
			}
			if err := agg.AddSimilarDeck(ctx, other); err != nil {
				return err
			}
		}

		if deck.Commander == "" {
			utils.Log.Warn("no commander found in deck, skipping recommendations")
			return nil
		}
		theme, err := recs.FetchTheme(ctx, deck.Commander)
		if err != nil {
			return err
		}
		return agg.AddRecommendation(ctx, theme)
	}
	if err := run(); err != nil {
		cleanup()
		return nil, nil, err
	}

	agg.Calculate()
	return agg, cleanup, nil
}

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <deck-url>",
	Short: "Analyze a Commander deck against similar decks and recommendations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		similar, _ := cmd.Flags().GetInt("similar")
		top, _ := cmd.Flags().GetInt("top")
		ownedOnly, _ := cmd.Flags().GetBool("owned-only")

		agg, cleanup, err := aggregateDeck(cmd, args[0], similar, ownedOnly)
		if err != nil {
			return err
		}
		defer cleanup()

		adds, err := agg.MostRecommended()
		if err != nil {
			return err
		}
		cuts, err := agg.LeastPopular()
		if err != nil {
			return err
		}
		suggestions, err := agg.TypeSuggestions()
		if err != nil {
			return err
		}

		report.RankedTable(os.Stdout, "Cards to add:", adds, top)
		fmt.Println()
		report.RankedTable(os.Stdout, "Cards to cut:", cuts, top)
		fmt.Println()
		report.SuggestionList(os.Stdout, suggestions)

		if len(suggestions) > 0 {
			fmt.Println()
			report.RankedTable(os.Stdout, "Swaps to fix type balance, in:",
				aggregate.CardsTo(adds, aggregate.AddBudget(suggestions)), 0)
			fmt.Println()
			report.RankedTable(os.Stdout, "Swaps to fix type balance, out:",
				aggregate.CardsTo(cuts, aggregate.RemoveBudget(suggestions)), 0)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().IntP("similar", "s", 5, "How many similar decks to fold in")
	analyzeCmd.Flags().IntP("top", "t", 25, "How many rows to print per table (0 = all)")
	analyzeCmd.Flags().BoolP("owned-only", "o", false, "Only suggest additions you already own")
}
