package scryfall

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/edhtools/deckscope/internal/utils"
	"github.com/edhtools/deckscope/pkg/mtg"
)

const (
	defaultBaseURL = "https://api.scryfall.com"

	// Politeness budget: one request per 200ms.
	rateLimitDelay = 200 * time.Millisecond
	maxRetries     = 4
	requestTimeout = 30 * time.Second
)

// Client talks to the card-search API. Requests are rate limited and
// transient failures (429/5xx) are retried with a fixed delay; any other
// failure propagates to the caller.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
	limiter *rate.Limiter
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = maxRetries
	rc.RetryWaitMin = rateLimitDelay
	rc.RetryWaitMax = rateLimitDelay
	rc.HTTPClient.Timeout = requestTimeout
	rc.Logger = nil

	return &Client{
		baseURL: baseURL,
		http:    rc,
		limiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
	}
}

// SearchByName queries the remote card-search API for a (latinized) name.
// An empty result set is a miss, not an error: returns (nil, nil).
func (c *Client) SearchByName(ctx context.Context, name string) ([]mtg.CanonicalCard, error) {
	query := url.QueryEscape(fmt.Sprintf("!\"%s\"", name))
	body, status, err := c.get(ctx, c.baseURL+"/cards/search?q="+query)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		// Exact-name search came up empty; fall back to fuzzy matching.
		return c.searchFuzzy(ctx, name)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("card search for %q failed with status %d", name, status)
	}

	var out []mtg.CanonicalCard
	gjson.GetBytes(body, "data").ForEach(func(_, value gjson.Result) bool {
		out = append(out, parseCard(value))
		return true
	})
	return out, nil
}

func (c *Client) searchFuzzy(ctx context.Context, name string) ([]mtg.CanonicalCard, error) {
	body, status, err := c.get(ctx, c.baseURL+"/cards/named?fuzzy="+url.QueryEscape(name))
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fuzzy card lookup for %q failed with status %d", name, status)
	}
	return []mtg.CanonicalCard{parseCard(gjson.ParseBytes(body))}, nil
}

// BulkOracleCards downloads the full oracle-card catalog for the local
// snapshot. This is one large download, refreshed on a TTL by the catalog.
func (c *Client) BulkOracleCards(ctx context.Context) ([]mtg.CanonicalCard, error) {
	body, status, err := c.get(ctx, c.baseURL+"/bulk-data/oracle-cards")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("bulk-data lookup failed with status %d", status)
	}

	downloadURI := gjson.GetBytes(body, "download_uri").Str
	if downloadURI == "" {
		return nil, fmt.Errorf("bulk-data response has no download_uri")
	}

	utils.Log.Debug("downloading bulk catalog from ", downloadURI)
	body, status, err = c.get(ctx, downloadURI)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("bulk catalog download failed with status %d", status)
	}

	var out []mtg.CanonicalCard
	gjson.ParseBytes(body).ForEach(func(_, value gjson.Result) bool {
		card := parseCard(value)
		if card.ID == "" || card.Name == "" {
			return true
		}
		// Art series and tokens are not playable cards.
		switch value.Get("layout").Str {
		case "token", "double_faced_token", "art_series", "emblem":
			return true
		}
		out = append(out, card)
		return true
	})
	return out, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", "deckscope/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("card service unavailable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

func parseCard(v gjson.Result) mtg.CanonicalCard {
	card := mtg.CanonicalCard{
		ID:       v.Get("id").Str,
		Name:     v.Get("name").Str,
		TypeLine: v.Get("type_line").Str,
		ManaCost: v.Get("mana_cost").Str,
	}

	v.Get("colors").ForEach(func(_, c gjson.Result) bool {
		card.Colors = append(card.Colors, c.Str)
		return true
	})

	card.ImageURI = v.Get("image_uris.normal").Str
	if card.ImageURI == "" {
		card.ImageURI = v.Get("card_faces.0.image_uris.normal").Str
	}
	if card.TypeLine == "" {
		card.TypeLine = v.Get("card_faces.0.type_line").Str
	}

	legalities := v.Get("legalities")
	if legalities.IsObject() {
		card.Legalities = make(map[string]string)
		legalities.ForEach(func(k, val gjson.Result) bool {
			card.Legalities[k.Str] = val.Str
			return true
		})
	}

	return card
}
