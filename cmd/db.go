package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/edhtools/deckscope/internal/report"
	"github.com/edhtools/deckscope/internal/utils"
	"github.com/edhtools/deckscope/pkg/storage"
)

// openDatabase resolves the database path, takes the cross-process lock and
// opens the store. The returned func releases the lock.
func openDatabase(cmd *cobra.Command) (*storage.DB, func(), error) {
	dbPath, _ := cmd.Flags().GetString("dbpath")
	absPath, err := utils.GetAbsDBPath(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, nil, err
	}

	lock, err := utils.NewDBLock(absPath)
	if err != nil {
		return nil, nil, err
	}
	if err := lock.Lock(); err != nil {
		return nil, nil, err
	}

	db, err := storage.Open(absPath)
	if err != nil {
		lock.Unlock()
		return nil, nil, err
	}
	return db, func() {
		if err := lock.Unlock(); err != nil {
			utils.Log.Warn("releasing database lock: ", err)
		}
	}, nil
}

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Interact with the deckscope database",
}

// dbShellCmd represents the shell command
var dbShellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive shell to the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("dbpath")
		absPath, err := utils.GetAbsDBPath(dbPath)
		if err != nil {
			return err
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return fmt.Errorf("database file not found: %s", absPath)
		}

		// Check if sqlite3 is in PATH
		sqlitePath, err := exec.LookPath("sqlite3")
		if err != nil {
			return fmt.Errorf("sqlite3 command not found in your PATH. Please install it to use the db shell")
		}

		// Print schema first
		fmt.Println("--> Database schema:")
		schemaCmd := exec.Command(sqlitePath, absPath, ".schema")
		schemaCmd.Stdout = os.Stdout
		schemaCmd.Stderr = os.Stderr
		if err := schemaCmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: couldn't retrieve schema: %v\n", err)
		}
		fmt.Println("\n--> Starting interactive shell... (Ctrl+D to exit)")

		c := exec.Command(sqlitePath, absPath)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		return c.Run()
	},
}

// dbStatsCmd represents the stats command
var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print statistics about the cards and decks in the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, unlock, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		defer unlock()
		defer db.Close()

		counts, err := db.TableCounts(ctx)
		if err != nil {
			return err
		}

		report.StatsTable(os.Stdout, counts, []string{"cards", "aliases", "inventory", "page_cache"})

		if age, ok, err := db.SnapshotAge(ctx); err != nil {
			return err
		} else if ok {
			fmt.Printf("\nCatalog snapshot age: %s\n", age.Round(time.Second))
		} else {
			fmt.Println("\nNo catalog snapshot yet. Run 'deckscope catalog refresh'.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbShellCmd)
	dbCmd.AddCommand(dbStatsCmd)
}
