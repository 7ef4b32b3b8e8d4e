package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/edhtools/deckscope/pkg/mtg"
)

// ReplaceSnapshot atomically swaps the catalog snapshot for a fresh one.
func (d *DB) ReplaceSnapshot(ctx context.Context, cards []mtg.CanonicalCard) (err error) {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM cards"); err != nil {
		return err
	}

	now := time.Now().UTC()
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO cards(id, name, name_latin, type_line, colors, mana_cost, image_uri, legalities, fetched_at) VALUES(?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range cards {
		legalities := ""
		if len(c.Legalities) > 0 {
			raw, merr := json.Marshal(c.Legalities)
			if merr != nil {
				return merr
			}
			legalities = string(raw)
		}
		if _, err = stmt.ExecContext(ctx, c.ID, c.Name, mtg.Latinize(c.Name), c.TypeLine, strings.Join(c.Colors, ","), c.ManaCost, c.ImageURI, legalities, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadSnapshot reads the whole stored catalog in insertion order.
func (d *DB) LoadSnapshot(ctx context.Context) ([]mtg.CanonicalCard, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT id, name, type_line, colors, mana_cost, image_uri, legalities FROM cards ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []mtg.CanonicalCard
	for rows.Next() {
		var c mtg.CanonicalCard
		var colors, legalities string
		if err := rows.Scan(&c.ID, &c.Name, &c.TypeLine, &colors, &c.ManaCost, &c.ImageURI, &legalities); err != nil {
			return nil, err
		}
		if colors != "" {
			c.Colors = strings.Split(colors, ",")
		}
		if legalities != "" {
			if err := json.Unmarshal([]byte(legalities), &c.Legalities); err != nil {
				return nil, err
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SnapshotAge returns how old the stored catalog is. ok is false when no
// snapshot has been stored yet.
func (d *DB) SnapshotAge(ctx context.Context) (time.Duration, bool, error) {
	var fetchedAt time.Time
	err := d.sql.QueryRowContext(ctx, "SELECT fetched_at FROM cards ORDER BY fetched_at ASC LIMIT 1").Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return time.Since(fetchedAt), true, nil
}

// LookupAlias returns the card id a previously seen name variant maps to.
func (d *DB) LookupAlias(ctx context.Context, alias string) (string, bool, error) {
	var id string
	err := d.sql.QueryRowContext(ctx, "SELECT card_id FROM aliases WHERE alias = ?", alias).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// InsertAlias persists a name variant -> card id mapping. Inserting the same
// alias twice violates the resolver contract and surfaces as ErrConstraint.
func (d *DB) InsertAlias(ctx context.Context, alias, cardID string) error {
	_, err := d.sql.ExecContext(ctx, "INSERT INTO aliases(alias, card_id) VALUES(?, ?)", alias, cardID)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrConstraint
	}
	return err
}
