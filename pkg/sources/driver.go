package sources

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/edhtools/deckscope/internal/utils"
)

// Element is one matched node of a fetched page.
type Element interface {
	Attr(name string) string
	Text() string
}

// Page is a fetched, parsed document.
type Page interface {
	QueryAll(selector string) []Element
	Title() string
	URL() string
}

// PageDriver fetches pages for the scrapers. The production driver speaks
// plain HTTP; tests substitute canned documents.
type PageDriver interface {
	Navigate(ctx context.Context, url string) (Page, error)
}

// HTTPDriver fetches with a retrying client behind a shared rate limiter,
// one request every 300ms, and parses responses with goquery.
type HTTPDriver struct {
	client    *retryablehttp.Client
	limiter   *rate.Limiter
	userAgent string
}

func NewHTTPDriver() *HTTPDriver {
	client := retryablehttp.NewClient()
	client.RetryMax = 4
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = nil

	return &HTTPDriver{
		client:    client,
		limiter:   rate.NewLimiter(rate.Every(300*time.Millisecond), 1),
		userAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:83.0) Gecko/20100101 Firefox/83.0",
	}
}

func (d *HTTPDriver) Navigate(ctx context.Context, url string) (Page, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	return ParsePage(url, body)
}

// ParsePage builds a Page from a raw HTML document.
func ParsePage(url string, body []byte) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	title := htmlTitle(body)
	utils.Log.Debug("fetched ", url, " title: ", title)

	return &htmlPage{url: url, title: title, doc: doc}, nil
}

type htmlPage struct {
	url   string
	title string
	doc   *goquery.Document
}

func (p *htmlPage) URL() string   { return p.url }
func (p *htmlPage) Title() string { return p.title }

func (p *htmlPage) QueryAll(selector string) []Element {
	var out []Element
	p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, htmlElement{s})
	})
	return out
}

type htmlElement struct {
	sel *goquery.Selection
}

func (e htmlElement) Attr(name string) string {
	return e.sel.AttrOr(name, "")
}

func (e htmlElement) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

func htmlTitle(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	title, _ := traverseTitle(doc)
	return strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(title, "\n", ""), "\r", ""))
}

func traverseTitle(n *html.Node) (string, bool) {
	if n.Type == html.ElementNode && n.Data == "title" {
		if n.FirstChild != nil {
			return n.FirstChild.Data, true
		}
		return "", true
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		result, ok := traverseTitle(c)
		if ok {
			return result, ok
		}
	}

	return "", false
}
