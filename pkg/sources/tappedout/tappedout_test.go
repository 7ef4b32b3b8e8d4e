package tappedout

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/edhtools/deckscope/pkg/sources"
)

const deckPage = `<html><head><title>Atraxa Superfriends</title></head><body>
<a class="card-link" data-name="Atraxa, Praetors' Voice" data-qty="1" data-board="cmdr">Atraxa, Praetors' Voice</a>
<a class="card-link" data-name="Sol Ring" data-qty="1">Sol Ring</a>
<a class="card-link" data-name="Forest" data-qty="12">Forest</a>
<a class="card-link" data-qty="1">Deepglow Skate</a>
<a class="card-link" data-name="" data-qty="1"></a>
</body></html>`

const similarPage = `<html><body>
<a href="/mtg-decks/atraxa-superfriends/">this deck</a>
<a href="/mtg-decks/first-similar/">first</a>
<a href="/mtg-decks/second-similar/">second</a>
<a href="/mtg-decks/first-similar/">first again</a>
<a href="/mtg-decks/third-similar/">third</a>
<a href="/users/someone/">not a deck</a>
</body></html>`

type fakeDriver struct {
	html  string
	calls int
}

func (d *fakeDriver) Navigate(_ context.Context, url string) (sources.Page, error) {
	d.calls++
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

func TestFetchDeck(t *testing.T) {
	s := New(&fakeDriver{html: deckPage}, nil, "")

	obs, err := s.FetchDeck(context.Background(), "https://tappedout.net/mtg-decks/atraxa-superfriends/", 3)
	if err != nil {
		t.Fatal(err)
	}

	if obs.Position != 3 {
		t.Fatalf("position = %d", obs.Position)
	}
	if obs.Commander != "Atraxa, Praetors' Voice" {
		t.Fatalf("commander = %q", obs.Commander)
	}
	// Nameless entries are dropped; text is the fallback for a missing
	// data-name attribute.
	if len(obs.Entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(obs.Entries))
	}
	if obs.Entries[2].RawName != "Forest" || obs.Entries[2].Copies != 12 {
		t.Fatalf("third entry = %+v", obs.Entries[2])
	}
	if obs.Entries[3].RawName != "Deepglow Skate" || obs.Entries[3].Copies != 1 {
		t.Fatalf("fallback entry = %+v", obs.Entries[3])
	}
}

func TestFetchDeckUsesCacheWithFreshPosition(t *testing.T) {
	driver := &fakeDriver{html: deckPage}
	s := New(driver, newMemCache(), "")
	ctx := context.Background()
	url := "https://tappedout.net/mtg-decks/atraxa-superfriends/"

	if _, err := s.FetchDeck(ctx, url, 1); err != nil {
		t.Fatal(err)
	}
	obs, err := s.FetchDeck(ctx, url, 7)
	if err != nil {
		t.Fatal(err)
	}

	if driver.calls != 1 {
		t.Fatalf("driver called %d times, want 1", driver.calls)
	}
	// The cached decklist is reused but the position belongs to this run.
	if obs.Position != 7 {
		t.Fatalf("cached position = %d, want 7", obs.Position)
	}
	if obs.Commander != "Atraxa, Praetors' Voice" {
		t.Fatalf("cached commander = %q", obs.Commander)
	}
}

func TestSimilarDeckLinks(t *testing.T) {
	s := New(&fakeDriver{html: similarPage}, nil, "https://tappedout.net")

	links, err := s.SimilarDeckLinks(context.Background(), "https://tappedout.net/mtg-decks/atraxa-superfriends/", 2)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"https://tappedout.net/mtg-decks/first-similar/",
		"https://tappedout.net/mtg-decks/second-similar/",
	}
	if !reflect.DeepEqual(links, want) {
		t.Fatalf("links = %v, want %v", links, want)
	}
}

func TestSimilarDeckLinksCacheKeepsFullList(t *testing.T) {
	driver := &fakeDriver{html: similarPage}
	s := New(driver, newMemCache(), "https://tappedout.net")
	ctx := context.Background()
	url := "https://tappedout.net/mtg-decks/atraxa-superfriends/"

	if _, err := s.SimilarDeckLinks(ctx, url, 1); err != nil {
		t.Fatal(err)
	}
	links, err := s.SimilarDeckLinks(ctx, url, 3)
	if err != nil {
		t.Fatal(err)
	}

	if driver.calls != 1 {
		t.Fatalf("driver called %d times, want 1", driver.calls)
	}
	if len(links) != 3 {
		t.Fatalf("cached links = %d, want 3", len(links))
	}
}
