package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edhtools/deckscope/internal/report"
)

// inventoryCmd represents the inventory command
var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Manage your owned-card list",
}

// inventoryImportCmd represents the import command
var inventoryImportCmd = &cobra.Command{
	Use:   "import <csv-file>",
	Short: "Import a Name,Amount CSV into the inventory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		db, unlock, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer unlock()
		defer db.Close()

		count, err := db.ImportInventoryCSV(ctx, f)
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d cards.\n", count)
		return nil
	},
}

// inventoryListCmd represents the list command
var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the inventory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, unlock, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer unlock()
		defer db.Close()

		items, err := db.ListInventory(ctx)
		if err != nil {
			return err
		}

		report.InventoryTable(os.Stdout, items)
		return nil
	},
}

// inventorySetCmd represents the set command
var inventorySetCmd = &cobra.Command{
	Use:   "set <name> <amount>",
	Short: "Set the owned amount for one card",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var amount int
		if _, err := fmt.Sscanf(args[1], "%d", &amount); err != nil {
			return fmt.Errorf("amount must be a number: %q", args[1])
		}

		db, unlock, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer unlock()
		defer db.Close()

		if err := db.UpsertInventory(ctx, args[0], amount); err != nil {
			return err
		}

		fmt.Printf("%s: %d\n", args[0], amount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inventoryCmd)
	inventoryCmd.AddCommand(inventoryImportCmd)
	inventoryCmd.AddCommand(inventoryListCmd)
	inventoryCmd.AddCommand(inventorySetCmd)
}
