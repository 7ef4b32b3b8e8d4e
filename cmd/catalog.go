package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edhtools/deckscope/pkg/catalog"
	"github.com/edhtools/deckscope/pkg/scryfall"
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local card catalog snapshot",
}

// catalogRefreshCmd represents the refresh command
var catalogRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Download a fresh bulk card catalog, replacing the local snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, unlock, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer unlock()
		defer db.Close()

		cat := catalog.New(db, scryfall.NewClient(viper.GetString("scryfall.base_url")),
			time.Duration(viper.GetInt("catalog.ttl_hours"))*time.Hour)
		if err := cat.ForceRefresh(ctx); err != nil {
			return fmt.Errorf("refreshing card catalog: %w", err)
		}

		fmt.Printf("Catalog refreshed: %d cards.\n", cat.Len())
		return nil
	},
}

// catalogInfoCmd represents the info command
var catalogInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the local catalog snapshot's size and age",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, unlock, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer unlock()
		defer db.Close()

		age, ok, err := db.SnapshotAge(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("No catalog snapshot yet. Run 'deckscope catalog refresh'.")
			return nil
		}

		cards, err := db.LoadSnapshot(ctx)
		if err != nil {
			return err
		}

		ttl := time.Duration(viper.GetInt("catalog.ttl_hours")) * time.Hour
		fmt.Printf("Cards:  %d\n", len(cards))
		fmt.Printf("Age:    %s\n", age.Round(time.Second))
		if age > ttl {
			fmt.Printf("Status: stale (older than %s), will refresh on next analyze\n", ttl)
		} else {
			fmt.Println("Status: fresh")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogRefreshCmd)
	catalogCmd.AddCommand(catalogInfoCmd)
}
