package mtg

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes accented letters and drops the combining marks,
// so "Jötun" becomes "Jotun" and "Séance" becomes "Seance".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// asciiFixups covers runes the catalog uses that don't decompose to a base
// letter plus combining mark.
var asciiFixups = strings.NewReplacer(
	"Æ", "Ae",
	"æ", "ae",
	"Ø", "O",
	"ø", "o",
	"ß", "ss",
	"’", "'",
	"−", "-",
)

// Latinize maps accented Latin letters to their unaccented ASCII equivalents.
// Card names are compared in latinized form everywhere: catalog index keys,
// alias keys and remote search queries.
func Latinize(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	return asciiFixups.Replace(out)
}
