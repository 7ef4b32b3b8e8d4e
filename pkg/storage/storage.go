package storage

import (
	"context"
	"database/sql"
	"errors"

	_ "modernc.org/sqlite"
)

// ErrConstraint marks a unique-constraint violation. The resolver treats a
// duplicate alias insertion as a caller contract violation and aborts.
var ErrConstraint = errors.New("storage: constraint violation")

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS cards (
  id          TEXT PRIMARY KEY,
  name        TEXT NOT NULL,
  name_latin  TEXT NOT NULL,
  type_line   TEXT NOT NULL DEFAULT '',
  colors      TEXT NOT NULL DEFAULT '',
  mana_cost   TEXT NOT NULL DEFAULT '',
  image_uri   TEXT NOT NULL DEFAULT '',
  legalities  TEXT NOT NULL DEFAULT '',
  fetched_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_cards_latin ON cards(name_latin);
CREATE TABLE IF NOT EXISTS aliases (
  alias       TEXT PRIMARY KEY,
  card_id     TEXT NOT NULL,
  created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS inventory (
  name_latin  TEXT PRIMARY KEY,
  name        TEXT NOT NULL,
  amount      INTEGER NOT NULL CHECK (amount >= 0)
);
CREATE TABLE IF NOT EXISTS page_cache (
  kind        TEXT NOT NULL,
  key         TEXT NOT NULL,
  payload     TEXT NOT NULL,
  fetched_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (kind, key)
);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// TableCounts returns row counts for the stats command.
func (d *DB) TableCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, table := range []string{"cards", "aliases", "inventory", "page_cache"} {
		var n int
		if err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, err
		}
		counts[table] = n
	}
	return counts, nil
}
