package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const samplePage = `<html>
<head><title>
  Sample Deck
</title></head>
<body>
  <div class="tile"><a class="link" href="/one">First</a></div>
  <div class="tile"><a class="link" href="/two">Second</a></div>
</body>
</html>`

func TestNavigateParsesDocument(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("request sent without a user agent")
		}
		w.Write([]byte(samplePage))
	}))
	defer ts.Close()

	page, err := NewHTTPDriver().Navigate(context.Background(), ts.URL)
	if err != nil {
		t.Fatal(err)
	}

	if page.Title() != "Sample Deck" {
		t.Fatalf("title = %q", page.Title())
	}
	if page.URL() != ts.URL {
		t.Fatalf("url = %q", page.URL())
	}

	links := page.QueryAll("div.tile a.link")
	if len(links) != 2 {
		t.Fatalf("matched %d elements, want 2", len(links))
	}
	if links[0].Text() != "First" || links[0].Attr("href") != "/one" {
		t.Fatalf("first element = %q / %q", links[0].Text(), links[0].Attr("href"))
	}
	if links[1].Attr("missing") != "" {
		t.Fatal("absent attribute should read as empty")
	}
}

func TestNavigateRejectsErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	if _, err := NewHTTPDriver().Navigate(context.Background(), ts.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestNavigateRetriesTransientFailures(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(samplePage))
	}))
	defer ts.Close()

	page, err := NewHTTPDriver().Navigate(context.Background(), ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	if attempts != 3 {
		t.Fatalf("server saw %d attempts, want 3", attempts)
	}
	if page.Title() != "Sample Deck" {
		t.Fatalf("title = %q", page.Title())
	}
}
