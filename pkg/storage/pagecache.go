package storage

import (
	"context"
	"database/sql"
	"time"
)

// Cache kinds. TTLs differ per kind: decks go stale faster than links and
// recommendation pages.
const (
	CacheKindDeck           = "deck"
	CacheKindDeckLinks      = "deck-links"
	CacheKindRecommendation = "recommendation"
)

// CacheGetFresh returns the cached payload for (kind, key) when it is newer
// than ttl. ok is false on a miss or a stale entry.
func (d *DB) CacheGetFresh(ctx context.Context, kind, key string, ttl time.Duration) ([]byte, bool, error) {
	var payload string
	var fetchedAt time.Time
	err := d.sql.QueryRowContext(ctx, "SELECT payload, fetched_at FROM page_cache WHERE kind = ? AND key = ?", kind, key).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if time.Since(fetchedAt) > ttl {
		return nil, false, nil
	}
	return []byte(payload), true, nil
}

// CachePut stores or refreshes the payload for (kind, key).
func (d *DB) CachePut(ctx context.Context, kind, key string, payload []byte) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO page_cache(kind, key, payload, fetched_at) VALUES(?, ?, ?, ?)
		 ON CONFLICT(kind, key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		kind, key, string(payload), time.Now().UTC())
	return err
}
