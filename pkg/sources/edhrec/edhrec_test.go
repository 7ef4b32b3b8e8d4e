package edhrec

import (
	"context"
	"testing"
	"time"

	"github.com/edhtools/deckscope/pkg/sources"
)

const themePage = `<html><head><title>Atraxa, Praetors' Voice</title></head><body>
<div class="card-tile">
  <span class="card-name">Sol Ring</span>
  <div class="card-label">99% of 5000 decks<br>+2% synergy</div>
</div>
<div class="card-tile">
  <span class="card-name">Astral Cornucopia</span>
  <div class="card-label">40% of 5000 decks<br>+38% synergy</div>
</div>
<div class="card-tile">
  <span class="card-name"></span>
  <div class="card-label">10% of 5000 decks</div>
</div>
</body></html>`

type fakeDriver struct {
	html  string
	calls int
	urls  []string
}

func (d *fakeDriver) Navigate(_ context.Context, url string) (sources.Page, error) {
	d.calls++
	d.urls = append(d.urls, url)
	return sources.ParsePage(url, []byte(d.html))
}

type memCache struct {
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) CacheGetFresh(_ context.Context, kind, key string, _ time.Duration) ([]byte, bool, error) {
	payload, ok := c.entries[kind+"/"+key]
	return payload, ok, nil
}

func (c *memCache) CachePut(_ context.Context, kind, key string, payload []byte) error {
	c.entries[kind+"/"+key] = payload
	return nil
}

func TestFetchTheme(t *testing.T) {
	driver := &fakeDriver{html: themePage}
	s := New(driver, nil, "https://example.test")

	obs, err := s.FetchTheme(context.Background(), "Atraxa, Praetors' Voice")
	if err != nil {
		t.Fatal(err)
	}

	if driver.urls[0] != "https://example.test/commanders/atraxa-praetors-voice" {
		t.Fatalf("scraped wrong url: %s", driver.urls[0])
	}
	if obs.Theme != "atraxa-praetors-voice" {
		t.Fatalf("theme = %q", obs.Theme)
	}
	if len(obs.Entries) != 2 {
		t.Fatalf("entries = %d, want 2 (nameless tile skipped)", len(obs.Entries))
	}

	first := obs.Entries[0]
	if first.RawName != "Sol Ring" || first.Amount != 1 || first.Percent != 99 || first.Synergy != 2 {
		t.Fatalf("first entry = %+v", first)
	}
	second := obs.Entries[1]
	if second.Percent != 40 || second.Synergy != 38 {
		t.Fatalf("second entry = %+v", second)
	}
}

func TestFetchThemeUsesCache(t *testing.T) {
	driver := &fakeDriver{html: themePage}
	cache := newMemCache()
	s := New(driver, cache, "https://example.test")
	ctx := context.Background()

	if _, err := s.FetchTheme(ctx, "Atraxa, Praetors' Voice"); err != nil {
		t.Fatal(err)
	}
	obs, err := s.FetchTheme(ctx, "Atraxa, Praetors' Voice")
	if err != nil {
		t.Fatal(err)
	}

	if driver.calls != 1 {
		t.Fatalf("driver called %d times, want 1", driver.calls)
	}
	if len(obs.Entries) != 2 {
		t.Fatalf("cached entries = %d, want 2", len(obs.Entries))
	}
}

func TestFetchThemeEmptyName(t *testing.T) {
	s := New(&fakeDriver{html: themePage}, nil, "")
	if _, err := s.FetchTheme(context.Background(), "!!!"); err == nil {
		t.Fatal("expected error for unusable commander name")
	}
}
