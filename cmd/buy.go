package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/edhtools/deckscope/internal/report"
)

// buyCmd represents the buy command
var buyCmd = &cobra.Command{
	Use:   "buy <deck-url>",
	Short: "List the best recommended cards you do not own yet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		similar, _ := cmd.Flags().GetInt("similar")
		top, _ := cmd.Flags().GetInt("top")

		agg, cleanup, err := aggregateDeck(cmd, args[0], similar, false)
		if err != nil {
			return err
		}
		defer cleanup()

		buys, err := agg.PurchaseList()
		if err != nil {
			return err
		}

		report.RankedTable(os.Stdout, "Cards worth buying:", buys, top)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buyCmd)
	buyCmd.Flags().IntP("similar", "s", 5, "How many similar decks to fold in")
	buyCmd.Flags().IntP("top", "t", 25, "How many rows to print per table (0 = all)")
}
