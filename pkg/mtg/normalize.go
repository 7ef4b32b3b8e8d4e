package mtg

import (
	"regexp"
	"strings"
)

// BasicLandNames are excluded from popularity analysis as noise. Matching is
// substring-based on purpose: it also catches "Snow-Covered Forest" and
// "Forest (32)".
var BasicLandNames = []string{"Plains", "Island", "Swamp", "Mountain", "Forest"}

var (
	// Board section headers scraped from deck pages: "Sideboard",
	// "Maybeboard", "Mainboard" and friends.
	boardHeaderRe = regexp.MustCompile(`(?i)^[a-z]*board:?$`)

	// Category headers with a parenthesized count: "Creature (12)".
	categoryHeaderRe = regexp.MustCompile(`(?i)^(creature|instant|sorcery|artifact|enchantment|planeswalker|land|tribal)s?\s*\(\d+\)$`)

	// "4x Lightning Bolt" quantity prefixes.
	quantityPrefixRe = regexp.MustCompile(`^\d+x\s+`)

	// Trailing "// Insectile Aberration" style annotations.
	flavorSuffixRe = regexp.MustCompile(`\s*//.*$`)
)

// sectionFragments are header fragments that sometimes get glued onto the
// first card name of a scraped list.
var sectionFragments = []string{
	"New Cards",
	"Signature Cards",
	"Top Cards",
	"Creatures",
	"Instants",
	"Sorceries",
	"Artifacts",
	"Enchantments",
	"Planeswalkers",
	"Tribals",
	"Lands",
}

// Normalize extracts a best-effort card name from a raw scraped string.
// The second return value is false when the string is not a card at all
// (board headers, category headers, basic lands, leftovers shorter than two
// characters). The output still needs identity resolution; it is a display
// string, not a canonical name.
func Normalize(raw string) (string, bool) {
	s := strings.TrimSpace(raw)

	if boardHeaderRe.MatchString(s) || categoryHeaderRe.MatchString(s) {
		return "", false
	}

	for _, land := range BasicLandNames {
		if strings.Contains(s, land) {
			return "", false
		}
	}

	s = flavorSuffixRe.ReplaceAllString(s, "")
	s = strings.TrimSuffix(s, " Flip")
	s = quantityPrefixRe.ReplaceAllString(s, "")
	for _, fragment := range sectionFragments {
		s = strings.ReplaceAll(s, fragment, "")
	}

	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return "", false
	}
	return s, true
}
