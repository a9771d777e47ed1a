package units

// Pair is an ordered (from, to) unit pair.
type Pair struct {
	From Unit
	To   Unit
}

// DefaultConversions lists only the pairs the product uses. Each entry is
// the multiplication factor from Pair.From to Pair.To.
var DefaultConversions = map[Pair]float64{
	{Tablespoon, Teaspoon}: 3,
	{Teaspoon, Tablespoon}: 1.0 / 3,
	{Cup, Tablespoon}:      16,
	{Tablespoon, Cup}:      1.0 / 16,
	{Pound, Ounce}:         16,
	{Ounce, Pound}:         1.0 / 16,
}

// Converter converts quantities between canonical units.
type Converter struct {
	factors map[Pair]float64
}

// NewConverter copies the factor table. A nil table selects
// DefaultConversions.
func NewConverter(factors map[Pair]float64) *Converter {
	if factors == nil {
		factors = DefaultConversions
	}
	table := make(map[Pair]float64, len(factors))
	for k, v := range factors {
		table[k] = v
	}
	return &Converter{factors: table}
}

// Convert returns amount expressed in `to`. Pairs missing from the table
// return amount unchanged; see Convertible.
func (c *Converter) Convert(amount float64, from, to Unit) float64 {
	if from == to {
		return amount
	}
	if f, ok := c.factors[Pair{From: from, To: to}]; ok {
		return amount * f
	}
	return amount
}

// Convertible reports whether Convert performs a real conversion for the pair.
func (c *Converter) Convertible(from, to Unit) bool {
	if from == to {
		return true
	}
	_, ok := c.factors[Pair{From: from, To: to}]
	return ok
}
