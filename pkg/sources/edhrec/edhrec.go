package edhrec

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/edhtools/deckscope/internal/utils"
	"github.com/edhtools/deckscope/pkg/mtg"
	"github.com/edhtools/deckscope/pkg/sources"
	"github.com/edhtools/deckscope/pkg/storage"
)

const (
	DefaultBaseURL = "https://edhrec.com"

	// Recommendation pages shift slowly; two weeks between refetches.
	DefaultTTL = 14 * 24 * time.Hour
)

var (
	percentRe = regexp.MustCompile(`(\d+(?:\.\d+)?)%\s+of\s+\d+\s+decks`)
	synergyRe = regexp.MustCompile(`([+-]\d+(?:\.\d+)?)%\s+synergy`)
	amountRe  = regexp.MustCompile(`^(\d+)x\s+`)
)

// CacheStore is the slice of the storage layer the scraper needs. May be
// satisfied by *storage.DB or left nil to always hit the network.
type CacheStore interface {
	CacheGetFresh(ctx context.Context, kind, key string, ttl time.Duration) ([]byte, bool, error)
	CachePut(ctx context.Context, kind, key string, payload []byte) error
}

// Scraper pulls per-commander recommendation lists from the recommendation
// site.
type Scraper struct {
	driver  sources.PageDriver
	cache   CacheStore
	baseURL string
	ttl     time.Duration
}

func New(driver sources.PageDriver, cache CacheStore, baseURL string) *Scraper {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Scraper{driver: driver, cache: cache, baseURL: baseURL, ttl: DefaultTTL}
}

// FetchTheme scrapes the recommendation page for one commander and returns
// its full suggestion list. Cached scrapes are reused within the TTL.
func (s *Scraper) FetchTheme(ctx context.Context, commanderName string) (mtg.RecommendationObservation, error) {
	slug := utils.Slugify(commanderName)
	if slug == "" {
		return mtg.RecommendationObservation{}, fmt.Errorf("%w: empty commander name", mtg.ErrMalformed)
	}

	if s.cache != nil {
		payload, ok, err := s.cache.CacheGetFresh(ctx, storage.CacheKindRecommendation, slug, s.ttl)
		if err != nil {
			return mtg.RecommendationObservation{}, err
		}
		if ok {
			var obs mtg.RecommendationObservation
			if err := json.Unmarshal(payload, &obs); err == nil {
				utils.Log.Debug("recommendation cache hit for ", slug)
				return obs, nil
			}
			utils.Log.Warn("discarding unreadable cached recommendations for ", slug)
		}
	}

	url := s.baseURL + "/commanders/" + slug
	page, err := s.driver.Navigate(ctx, url)
	if err != nil {
		return mtg.RecommendationObservation{}, err
	}

	entries := parseCardTiles(page)
	obs, err := mtg.NewRecommendationObservation(slug, entries)
	if err != nil {
		return mtg.RecommendationObservation{}, fmt.Errorf("no recommendations found at %s: %w", url, err)
	}

	if s.cache != nil {
		payload, err := json.Marshal(obs)
		if err != nil {
			return mtg.RecommendationObservation{}, err
		}
		if err := s.cache.CachePut(ctx, storage.CacheKindRecommendation, slug, payload); err != nil {
			return mtg.RecommendationObservation{}, err
		}
	}

	utils.Log.Info("scraped ", len(obs.Entries), " recommendations for ", slug)
	return obs, nil
}

// parseCardTiles walks the page's card tiles. Each tile pairs a card name
// with a stats label; tiles missing either part are skipped.
func parseCardTiles(page sources.Page) []mtg.RecommendationEntry {
	names := page.QueryAll("div.card-tile span.card-name")
	labels := page.QueryAll("div.card-tile div.card-label")

	n := len(names)
	if len(labels) < n {
		n = len(labels)
	}

	var entries []mtg.RecommendationEntry
	for i := 0; i < n; i++ {
		rawName := names[i].Text()
		if rawName == "" {
			continue
		}

		entry := mtg.RecommendationEntry{RawName: rawName, Amount: 1}
		if m := amountRe.FindStringSubmatch(rawName); m != nil {
			amount, _ := strconv.Atoi(m[1])
			entry.Amount = amount
		}

		label := labels[i].Text()
		if m := percentRe.FindStringSubmatch(label); m != nil {
			entry.Percent, _ = strconv.ParseFloat(m[1], 64)
		}
		if m := synergyRe.FindStringSubmatch(label); m != nil {
			entry.Synergy, _ = strconv.ParseFloat(m[1], 64)
		}

		entries = append(entries, entry)
	}
	return entries
}
