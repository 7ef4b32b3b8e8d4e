package mtg

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed marks observation data that is missing required fields.
// Callers built the observation from scraped text, so this is a caller bug,
// not recoverable noise.
var ErrMalformed = errors.New("malformed input")

// CanonicalCard is the single authoritative catalog record a scraped name
// resolves to. Owned by the catalog; the rest of the code only reads it.
type CanonicalCard struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	TypeLine   string            `json:"type_line"`
	Colors     []string          `json:"colors,omitempty"`
	ManaCost   string            `json:"mana_cost,omitempty"`
	ImageURI   string            `json:"image_uri,omitempty"`
	Legalities map[string]string `json:"legalities,omitempty"`
}

// NewCanonicalCard validates the required identity fields.
func NewCanonicalCard(id, name, typeLine string) (CanonicalCard, error) {
	if id == "" || name == "" {
		return CanonicalCard{}, fmt.Errorf("%w: card requires id and name", ErrMalformed)
	}
	return CanonicalCard{ID: id, Name: name, TypeLine: typeLine}, nil
}

// SimpleName is the display name: diacritics folded, split-card suffix
// stripped ("Fire // Ice" becomes "Fire").
func (c CanonicalCard) SimpleName() string {
	name := Latinize(c.Name)
	if idx := strings.Index(name, " // "); idx != -1 {
		name = name[:idx]
	}
	return name
}

// DerivedType returns the coarse category of the card.
func (c CanonicalCard) DerivedType() DerivedType {
	return DeriveType(c.TypeLine)
}

// DeckEntry is one (raw name, copies) pair scraped from a deck list.
type DeckEntry struct {
	RawName string `json:"raw_name"`
	Copies  int    `json:"copies"`
}

// DeckObservation is one scraped deck's contribution to an analysis run.
// Position ranks the deck among similar decks: 0 is the primary (commander)
// deck, higher is less authoritative.
type DeckObservation struct {
	SourceURL string      `json:"source_url"`
	Commander string      `json:"commander,omitempty"`
	Position  int         `json:"position"`
	Entries   []DeckEntry `json:"entries"`
}

// NewDeckObservation validates required fields and fails fast instead of
// producing a partially populated observation.
func NewDeckObservation(sourceURL string, position int, entries []DeckEntry) (DeckObservation, error) {
	if sourceURL == "" {
		return DeckObservation{}, fmt.Errorf("%w: deck observation requires a source url", ErrMalformed)
	}
	if position < 0 {
		return DeckObservation{}, fmt.Errorf("%w: deck position must not be negative", ErrMalformed)
	}
	if len(entries) == 0 {
		return DeckObservation{}, fmt.Errorf("%w: deck observation has no entries", ErrMalformed)
	}
	for _, e := range entries {
		if e.RawName == "" || e.Copies <= 0 {
			return DeckObservation{}, fmt.Errorf("%w: deck entry %q with %d copies", ErrMalformed, e.RawName, e.Copies)
		}
	}
	return DeckObservation{SourceURL: sourceURL, Position: position, Entries: entries}, nil
}

// RecommendationEntry is one suggestion from the recommendation source.
// Amount is the recommended copies estimate, Percent the share of decks
// running the card, Synergy the synergy delta against the theme baseline.
type RecommendationEntry struct {
	RawName string  `json:"raw_name"`
	Amount  int     `json:"amount"`
	Percent float64 `json:"percent"`
	Synergy float64 `json:"synergy"`
}

// RecommendationObservation is the recommendation source's full suggestion
// list for one theme. A single aggregate source, not one deck per call.
type RecommendationObservation struct {
	Theme   string                `json:"theme"`
	Entries []RecommendationEntry `json:"entries"`
}

// NewRecommendationObservation validates required fields.
func NewRecommendationObservation(theme string, entries []RecommendationEntry) (RecommendationObservation, error) {
	if theme == "" {
		return RecommendationObservation{}, fmt.Errorf("%w: recommendation observation requires a theme", ErrMalformed)
	}
	if len(entries) == 0 {
		return RecommendationObservation{}, fmt.Errorf("%w: recommendation observation has no entries", ErrMalformed)
	}
	for _, e := range entries {
		if e.RawName == "" {
			return RecommendationObservation{}, fmt.Errorf("%w: recommendation entry without a name", ErrMalformed)
		}
	}
	return RecommendationObservation{Theme: theme, Entries: entries}, nil
}
