package shopping

import (
	"github.com/shopspring/decimal"

	"github.com/fdg312/meal-planner/internal/units"
)

// DefaultSectionPrices is a rough price for one "reference amount" of an
// ingredient in each section. It is a placeholder, not a price feed.
var DefaultSectionPrices = map[Section]float64{
	SectionProduce:   1.25,
	SectionMeat:      6.50,
	SectionDairy:     2.75,
	SectionPantry:    1.50,
	SectionFrozen:    3.25,
	SectionBeverages: 1.75,
	SectionSnacks:    2.50,
	SectionHousehold: 4.00,
	SectionOther:     2.00,
}

// DefaultUnitWeights scales a canonical unit to the reference amount.
// Units missing here weigh 1.
var DefaultUnitWeights = map[units.Unit]float64{
	units.Teaspoon:   0.02,
	units.Tablespoon: 0.06,
	units.Cup:        1,
	units.Milliliter: 0.004,
	units.Liter:      4,
	units.Ounce:      0.0625,
	units.Pound:      1,
	units.Gram:       0.0022,
	units.Kilogram:   2.2,
	units.Piece:      1,
	units.Clove:      0.1,
	units.Bunch:      1,
	units.Can:        1,
	units.Jar:        1,
	units.Package:    1,
}

// CostEstimator produces a cost proportional to the amount needed.
type CostEstimator struct {
	prices  map[Section]decimal.Decimal
	weights map[units.Unit]decimal.Decimal
}

// NewCostEstimator builds an estimator; nil tables select the defaults.
func NewCostEstimator(prices map[Section]float64, weights map[units.Unit]float64) *CostEstimator {
	if prices == nil {
		prices = DefaultSectionPrices
	}
	if weights == nil {
		weights = DefaultUnitWeights
	}
	e := &CostEstimator{
		prices:  make(map[Section]decimal.Decimal, len(prices)),
		weights: make(map[units.Unit]decimal.Decimal, len(weights)),
	}
	for k, v := range prices {
		e.prices[k] = decimal.NewFromFloat(v)
	}
	for k, v := range weights {
		e.weights[k] = decimal.NewFromFloat(v)
	}
	return e
}

// Estimate returns the cost in currency units rounded to cents, or nil when
// the section has no price.
func (e *CostEstimator) Estimate(section Section, unit units.Unit, amount float64) *float64 {
	price, ok := e.prices[section]
	if !ok {
		return nil
	}
	weight, ok := e.weights[unit]
	if !ok {
		weight = decimal.NewFromInt(1)
	}
	cost, _ := price.Mul(weight).Mul(decimal.NewFromFloat(amount)).Round(2).Float64()
	return &cost
}

// scaleCost rescales a cost estimated for amount `from` to amount `to`.
// nil stays nil; a non-positive from gives no estimate.
func scaleCost(cost *float64, from, to float64) *float64 {
	if cost == nil {
		return nil
	}
	if !(from > 0) {
		return nil
	}
	scaled, _ := decimal.NewFromFloat(*cost).
		Mul(decimal.NewFromFloat(to)).
		Div(decimal.NewFromFloat(from)).
		Round(2).
		Float64()
	return &scaled
}

// sumCosts adds costs exactly, treating nil as zero.
func sumCosts(costs ...*float64) float64 {
	total := decimal.Zero
	for _, c := range costs {
		if c == nil {
			continue
		}
		total = total.Add(decimal.NewFromFloat(*c))
	}
	f, _ := total.Round(2).Float64()
	return f
}
