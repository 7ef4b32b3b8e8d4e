package storage

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/edhtools/deckscope/pkg/mtg"
)

// InventoryItem is one owned card.
type InventoryItem struct {
	Name   string
	Amount int
}

// UpsertInventory sets the owned amount for a card name.
func (d *DB) UpsertInventory(ctx context.Context, name string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("inventory amount for %q must not be negative", name)
	}
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO inventory(name_latin, name, amount) VALUES(?, ?, ?)
		 ON CONFLICT(name_latin) DO UPDATE SET name = excluded.name, amount = excluded.amount`,
		mtg.Latinize(name), name, amount)
	return err
}

// InventoryAmount returns the owned copies for a latinized card name, zero
// when the card is not in the inventory.
func (d *DB) InventoryAmount(ctx context.Context, nameLatin string) (int, error) {
	var amount int
	err := d.sql.QueryRowContext(ctx, "SELECT amount FROM inventory WHERE name_latin = ?", nameLatin).Scan(&amount)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return amount, nil
}

// ListInventory returns all owned cards ordered by name.
func (d *DB) ListInventory(ctx context.Context) ([]InventoryItem, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT name, amount FROM inventory ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InventoryItem
	for rows.Next() {
		var it InventoryItem
		if err := rows.Scan(&it.Name, &it.Amount); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ImportInventoryCSV reads "Name,Amount" records and upserts each one.
// A header row is skipped when its amount column is not numeric.
// Returns the number of imported rows.
func (d *DB) ImportInventoryCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	imported := 0
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("csv line %d: %w", line, err)
		}
		if len(record) < 2 {
			return imported, fmt.Errorf("csv line %d: expected \"Name,Amount\", got %d fields", line, len(record))
		}

		name := strings.TrimSpace(record[0])
		amount, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			if line == 1 {
				// Header row.
				continue
			}
			return imported, fmt.Errorf("csv line %d: bad amount %q", line, record[1])
		}
		if name == "" {
			return imported, fmt.Errorf("csv line %d: empty card name", line)
		}

		if err := d.UpsertInventory(ctx, name, amount); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
