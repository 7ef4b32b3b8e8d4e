package tappedout

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/edhtools/deckscope/internal/utils"
	"github.com/edhtools/deckscope/pkg/mtg"
	"github.com/edhtools/deckscope/pkg/sources"
	"github.com/edhtools/deckscope/pkg/storage"
)

const (
	DefaultBaseURL = "https://tappedout.net"

	// Decks change more often than the similar-deck listings.
	DefaultDeckTTL  = 7 * 24 * time.Hour
	DefaultLinksTTL = 14 * 24 * time.Hour
)

// CacheStore is the slice of the storage layer the scraper needs.
type CacheStore interface {
	CacheGetFresh(ctx context.Context, kind, key string, ttl time.Duration) ([]byte, bool, error)
	CachePut(ctx context.Context, kind, key string, payload []byte) error
}

// Scraper pulls decklists and similar-deck listings from the deck database
// site.
type Scraper struct {
	driver   PageDriver
	cache    CacheStore
	baseURL  string
	deckTTL  time.Duration
	linksTTL time.Duration
}

// PageDriver is re-exported here so callers only import one package.
type PageDriver = sources.PageDriver

func New(driver PageDriver, cache CacheStore, baseURL string) *Scraper {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Scraper{
		driver:   driver,
		cache:    cache,
		baseURL:  baseURL,
		deckTTL:  DefaultDeckTTL,
		linksTTL: DefaultLinksTTL,
	}
}

// FetchDeck scrapes one decklist. Entries keep their raw scraped names and
// document order; the normalizer downstream drops section headers and basic
// lands. position ranks this deck within the run, 0 for the user's own deck.
func (s *Scraper) FetchDeck(ctx context.Context, url string, position int) (mtg.DeckObservation, error) {
	if s.cache != nil {
		payload, ok, err := s.cache.CacheGetFresh(ctx, storage.CacheKindDeck, url, s.deckTTL)
		if err != nil {
			return mtg.DeckObservation{}, err
		}
		if ok {
			var obs mtg.DeckObservation
			if err := json.Unmarshal(payload, &obs); err == nil {
				utils.Log.Debug("deck cache hit for ", url)
				obs.Position = position
				return obs, nil
			}
			utils.Log.Warn("discarding unreadable cached deck for ", url)
		}
	}

	page, err := s.driver.Navigate(ctx, url)
	if err != nil {
		return mtg.DeckObservation{}, err
	}

	var entries []mtg.DeckEntry
	commander := ""
	for _, el := range page.QueryAll("a.card-link") {
		name := el.Attr("data-name")
		if name == "" {
			name = el.Text()
		}
		if name == "" {
			continue
		}

		copies := 1
		if qty := el.Attr("data-qty"); qty != "" {
			if n, err := strconv.Atoi(qty); err == nil && n > 0 {
				copies = n
			}
		}

		if el.Attr("data-board") == "cmdr" && commander == "" {
			commander = name
		}
		entries = append(entries, mtg.DeckEntry{RawName: name, Copies: copies})
	}

	obs, err := mtg.NewDeckObservation(url, position, entries)
	if err != nil {
		return mtg.DeckObservation{}, fmt.Errorf("no cards found at %s: %w", url, err)
	}
	obs.Commander = commander

	if s.cache != nil {
		payload, err := json.Marshal(obs)
		if err != nil {
			return mtg.DeckObservation{}, err
		}
		if err := s.cache.CachePut(ctx, storage.CacheKindDeck, url, payload); err != nil {
			return mtg.DeckObservation{}, err
		}
	}

	utils.Log.Info("scraped ", len(obs.Entries), " entries from ", url)
	return obs, nil
}

// SimilarDeckLinks scrapes the similar-deck listing of one deck page and
// returns up to limit absolute deck URLs, most similar first. The deck's own
// URL is never included.
func (s *Scraper) SimilarDeckLinks(ctx context.Context, url string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	if s.cache != nil {
		payload, ok, err := s.cache.CacheGetFresh(ctx, storage.CacheKindDeckLinks, url, s.linksTTL)
		if err != nil {
			return nil, err
		}
		if ok {
			var links []string
			if err := json.Unmarshal(payload, &links); err == nil {
				utils.Log.Debug("deck-links cache hit for ", url)
				return capLinks(links, limit), nil
			}
			utils.Log.Warn("discarding unreadable cached deck links for ", url)
		}
	}

	page, err := s.driver.Navigate(ctx, url)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{url: true}
	var links []string
	for _, el := range page.QueryAll(`a[href^="/mtg-decks/"]`) {
		href := el.Attr("href")
		if href == "" || href == "/mtg-decks/" {
			continue
		}
		abs := s.baseURL + strings.TrimSuffix(href, "/") + "/"
		if seen[abs] {
			continue
		}
		seen[abs] = true
		links = append(links, abs)
	}

	if s.cache != nil {
		payload, err := json.Marshal(links)
		if err != nil {
			return nil, err
		}
		if err := s.cache.CachePut(ctx, storage.CacheKindDeckLinks, url, payload); err != nil {
			return nil, err
		}
	}

	utils.Log.Info("found ", len(links), " similar decks for ", url)
	return capLinks(links, limit), nil
}

func capLinks(links []string, limit int) []string {
	if len(links) > limit {
		return links[:limit]
	}
	return links
}
