package scryfall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const searchPayload = `{
  "data": [
    {
      "id": "c1",
      "name": "Séance",
      "type_line": "Enchantment",
      "mana_cost": "{2}{W}{W}",
      "colors": ["W"],
      "image_uris": {"normal": "https://img.example/seance.jpg"},
      "legalities": {"commander": "legal", "modern": "legal"}
    },
    {
      "id": "c2",
      "name": "Seance Leader",
      "type_line": "Creature — Spirit",
      "card_faces": [{"image_uris": {"normal": "https://img.example/face.jpg"}}]
    }
  ]
}`

func TestSearchByName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cards/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(searchPayload))
	}))
	defer srv.Close()

	cards, err := NewClient(srv.URL).SearchByName(context.Background(), "Seance")
	if err != nil {
		t.Fatalf("SearchByName: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("got %d cards, want 2", len(cards))
	}

	first := cards[0]
	if first.ID != "c1" || first.Name != "Séance" || first.TypeLine != "Enchantment" {
		t.Fatalf("bad first card: %+v", first)
	}
	if first.ImageURI != "https://img.example/seance.jpg" {
		t.Fatalf("bad image uri: %s", first.ImageURI)
	}
	if first.Legalities["commander"] != "legal" {
		t.Fatalf("bad legalities: %+v", first.Legalities)
	}
	if len(first.Colors) != 1 || first.Colors[0] != "W" {
		t.Fatalf("bad colors: %+v", first.Colors)
	}

	// Face-level image fallback.
	if cards[1].ImageURI != "https://img.example/face.jpg" {
		t.Fatalf("bad face image uri: %s", cards[1].ImageURI)
	}
}

func TestSearchByNameFuzzyFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/cards/search":
			w.WriteHeader(http.StatusNotFound)
		case "/cards/named":
			w.Write([]byte(`{"id": "c9", "name": "Sol Ring", "type_line": "Artifact"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	cards, err := NewClient(srv.URL).SearchByName(context.Background(), "Sol Rng")
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 1 || cards[0].ID != "c9" {
		t.Fatalf("fuzzy fallback result: %+v", cards)
	}
}

func TestSearchByNameMiss(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cards, err := NewClient(srv.URL).SearchByName(context.Background(), "No Such Card")
	if err != nil {
		t.Fatalf("miss must not be an error: %v", err)
	}
	if cards != nil {
		t.Fatalf("miss must return nil, got %+v", cards)
	}
}

func TestTransientRetry(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(searchPayload))
	}))
	defer srv.Close()

	cards, err := NewClient(srv.URL).SearchByName(context.Background(), "Seance")
	if err != nil {
		t.Fatalf("should have recovered after transient errors: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("made %d attempts, want 3", attempts)
	}
	if len(cards) != 2 {
		t.Fatalf("got %d cards after retry, want 2", len(cards))
	}
}

func TestBulkOracleCards(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/bulk-data/oracle-cards", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"download_uri": "` + srvURL + `/bulk.json"}`))
	})
	mux.HandleFunc("/bulk.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": "c1", "name": "Sol Ring", "type_line": "Artifact", "layout": "normal"},
			{"id": "t1", "name": "Treasure", "type_line": "Token Artifact — Treasure", "layout": "token"},
			{"id": "c2", "name": "Arcane Signet", "type_line": "Artifact", "layout": "normal"}
		]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	cards, err := NewClient(srv.URL).BulkOracleCards(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 2 {
		t.Fatalf("got %d cards, want 2 (tokens excluded)", len(cards))
	}
	if cards[0].ID != "c1" || cards[1].ID != "c2" {
		t.Fatalf("bulk order mismatch: %+v", cards)
	}
}
