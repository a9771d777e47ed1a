package units

import "strings"

// Unit is a canonical unit identifier. Units that are not in the synonym
// table keep their lowercased raw spelling.
type Unit string

const (
	Tablespoon Unit = "tablespoon"
	Teaspoon   Unit = "teaspoon"
	Cup        Unit = "cup"
	Ounce      Unit = "ounce"
	Pound      Unit = "pound"
	Gram       Unit = "gram"
	Kilogram   Unit = "kilogram"
	Milliliter Unit = "milliliter"
	Liter      Unit = "liter"
	Piece      Unit = "piece"
	Clove      Unit = "clove"
	Bunch      Unit = "bunch"
	Can        Unit = "can"
	Jar        Unit = "jar"
	Package    Unit = "package"
)

// Family groups units that measure the same dimension.
type Family string

const (
	FamilyVolume  Family = "volume"
	FamilyWeight  Family = "weight"
	FamilyCount   Family = "count"
	FamilyUnknown Family = "unknown"
)

var families = map[Unit]Family{
	Tablespoon: FamilyVolume,
	Teaspoon:   FamilyVolume,
	Cup:        FamilyVolume,
	Milliliter: FamilyVolume,
	Liter:      FamilyVolume,
	Ounce:      FamilyWeight,
	Pound:      FamilyWeight,
	Gram:       FamilyWeight,
	Kilogram:   FamilyWeight,
	Piece:      FamilyCount,
	Clove:      FamilyCount,
	Bunch:      FamilyCount,
	Can:        FamilyCount,
	Jar:        FamilyCount,
	Package:    FamilyCount,
}

// FamilyOf returns the measurement family of a canonical unit.
func FamilyOf(u Unit) Family {
	if f, ok := families[u]; ok {
		return f
	}
	return FamilyUnknown
}

// DefaultSynonyms maps lowercased spellings to canonical units.
var DefaultSynonyms = map[string]Unit{
	"tbsp":        Tablespoon,
	"tbsp.":       Tablespoon,
	"tbs":         Tablespoon,
	"tbs.":        Tablespoon,
	"tablespoon":  Tablespoon,
	"tablespoons": Tablespoon,
	"tsp":         Teaspoon,
	"tsp.":        Teaspoon,
	"teaspoon":    Teaspoon,
	"teaspoons":   Teaspoon,
	"c":           Cup,
	"cup":         Cup,
	"cups":        Cup,
	"oz":          Ounce,
	"ounce":       Ounce,
	"ounces":      Ounce,
	"lb":          Pound,
	"lbs":         Pound,
	"pound":       Pound,
	"pounds":      Pound,
	"g":           Gram,
	"gram":        Gram,
	"grams":       Gram,
	"kg":          Kilogram,
	"kilogram":    Kilogram,
	"kilograms":   Kilogram,
	"ml":          Milliliter,
	"milliliter":  Milliliter,
	"milliliters": Milliliter,
	"l":           Liter,
	"liter":       Liter,
	"liters":      Liter,
	"piece":       Piece,
	"pieces":      Piece,
	"pcs":         Piece,
	"whole":       Piece,
	"clove":       Clove,
	"cloves":      Clove,
	"bunch":       Bunch,
	"bunches":     Bunch,
	"can":         Can,
	"cans":        Can,
	"jar":         Jar,
	"jars":        Jar,
	"package":     Package,
	"packages":    Package,
	"pkg":         Package,
}

// Normalizer canonicalizes free-text unit strings.
type Normalizer struct {
	synonyms map[string]Unit
}

// NewNormalizer copies the given table so later edits by the caller
// don't leak in. A nil table selects DefaultSynonyms.
func NewNormalizer(synonyms map[string]Unit) *Normalizer {
	if synonyms == nil {
		synonyms = DefaultSynonyms
	}
	table := make(map[string]Unit, len(synonyms))
	for k, v := range synonyms {
		table[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return &Normalizer{synonyms: table}
}

// Normalize never fails: unknown spellings come back lowercased and simply
// won't convert later.
func (n *Normalizer) Normalize(raw string) Unit {
	key := strings.ToLower(strings.TrimSpace(raw))
	if u, ok := n.synonyms[key]; ok {
		return u
	}
	return Unit(key)
}
