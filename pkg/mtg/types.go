package mtg

import "strings"

// DerivedType is the coarse category of a card, computed from its raw type line.
type DerivedType string

const (
	TypeCreature     DerivedType = "creature"
	TypeInstant      DerivedType = "instant"
	TypeSorcery      DerivedType = "sorcery"
	TypeArtifact     DerivedType = "artifact"
	TypeEnchantment  DerivedType = "enchantment"
	TypePlaneswalker DerivedType = "planeswalker"
	TypeLand         DerivedType = "land"
	TypeBasicLand    DerivedType = "basic-land"
	TypeSpecial      DerivedType = "special"
)

// DeriveType maps a raw type line to its coarse category. Creature wins over
// artifact/enchantment ("Artifact Creature" is a creature), basic lands win
// over plain lands.
func DeriveType(typeLine string) DerivedType {
	tl := strings.ToLower(typeLine)

	switch {
	case strings.Contains(tl, "basic") && strings.Contains(tl, "land"):
		return TypeBasicLand
	case strings.Contains(tl, "creature"):
		return TypeCreature
	case strings.Contains(tl, "planeswalker"):
		return TypePlaneswalker
	case strings.Contains(tl, "instant"):
		return TypeInstant
	case strings.Contains(tl, "sorcery"):
		return TypeSorcery
	case strings.Contains(tl, "artifact"):
		return TypeArtifact
	case strings.Contains(tl, "enchantment"):
		return TypeEnchantment
	case strings.Contains(tl, "land"):
		return TypeLand
	}
	return TypeSpecial
}

// IsBasicOrSnow reports whether a type line belongs to a basic or snow
// permanent. These are excluded from popularity analysis entirely.
func IsBasicOrSnow(typeLine string) bool {
	tl := strings.ToLower(typeLine)
	return strings.Contains(tl, "basic") || strings.Contains(tl, "snow")
}
