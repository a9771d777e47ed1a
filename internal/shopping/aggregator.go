package shopping

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/fdg312/meal-planner/internal/units"
)

// amounts at or below this are treated as fully covered
const epsilon = 1e-9

// Aggregator turns meal slots and an inventory snapshot into the list of
// ingredients still needed. It holds no state between calls.
type Aggregator struct {
	normalizer *units.Normalizer
	converter  *units.Converter
	classifier *Classifier
	estimator  *CostEstimator
	logger     *zap.Logger
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithNormalizer replaces the unit alias table.
func WithNormalizer(n *units.Normalizer) Option { return func(a *Aggregator) { a.normalizer = n } }

// WithConverter replaces the inventory conversion table.
func WithConverter(c *units.Converter) Option { return func(a *Aggregator) { a.converter = c } }

// WithClassifier replaces the keyword classifier.
func WithClassifier(c *Classifier) Option { return func(a *Aggregator) { a.classifier = c } }

// WithCostEstimator replaces the placeholder price table.
func WithCostEstimator(e *CostEstimator) Option { return func(a *Aggregator) { a.estimator = e } }

// WithLogger sets the logger for conversion diagnostics.
func WithLogger(l *zap.Logger) Option { return func(a *Aggregator) { a.logger = l } }

// NewAggregator wires the default tables unless overridden.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{}
	for _, opt := range opts {
		opt(a)
	}
	if a.normalizer == nil {
		a.normalizer = units.NewNormalizer(nil)
	}
	if a.converter == nil {
		a.converter = units.NewConverter(nil)
	}
	if a.classifier == nil {
		a.classifier = NewClassifier(nil)
	}
	if a.estimator == nil {
		a.estimator = NewCostEstimator(nil, nil)
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	return a
}

// Classifier exposes the classifier in use.
func (a *Aggregator) Classifier() *Classifier { return a.classifier }

// contribution is one recipe ingredient of one meal slot after scaling
// and inventory lookup.
type contribution struct {
	key       string
	name      string
	unit      units.Unit
	notes     string
	hint      Section
	hasHint   bool
	source    Source
	deficit   float64
	inventory float64
}

type bucket struct {
	key             string
	name            string
	unit            units.Unit
	total           float64
	notes           map[string]struct{}
	hints           []Section
	sources         []Source
	inventoryAmount float64
}

// Aggregate merges the ingredients of every recipe-bound slot by
// aggregation key. Each contribution is checked against the matching
// inventory item on its own: only the deficit is added to the total, and a
// contribution the inventory fully covers is skipped without a source. The
// result is sorted by key and does not depend on the order of slots.
func (a *Aggregator) Aggregate(slots []MealSlot, inventory []InventoryItem) []Item {
	stock := a.inventoryIndex(inventory)

	var contribs []contribution
	for _, slot := range slots {
		if slot.Recipe == nil {
			continue
		}
		ratio, servings := servingRatio(slot)
		for _, ing := range slot.Recipe.Ingredients {
			name := strings.TrimSpace(ing.Name)
			if name == "" || !(ing.Amount > 0) || math.IsInf(ing.Amount, 0) {
				continue
			}
			unit := a.normalizer.Normalize(ing.Unit)
			needed := ing.Amount * ratio
			onHand := a.onHand(stock[strings.ToLower(name)], unit)

			c := contribution{
				key:   AggregationKey(name, unit),
				name:  name,
				unit:  unit,
				notes: strings.TrimSpace(ing.Notes),
				source: Source{
					RecipeID:    slot.Recipe.ID,
					RecipeTitle: slot.Recipe.Title,
					Amount:      needed,
					Servings:    servings,
				},
				deficit:   math.Max(0, needed-onHand),
				inventory: onHand,
			}
			c.hint, c.hasHint = ParseSection(ing.Category)
			contribs = append(contribs, c)
		}
	}

	// канонический порядок: итог не зависит от порядка слотов
	sort.SliceStable(contribs, func(i, j int) bool {
		if contribs[i].key != contribs[j].key {
			return contribs[i].key < contribs[j].key
		}
		if contribs[i].source != contribs[j].source {
			return sourceLess(contribs[i].source, contribs[j].source)
		}
		return contribs[i].name < contribs[j].name
	})

	var order []*bucket
	buckets := make(map[string]*bucket)
	for _, c := range contribs {
		if c.deficit <= epsilon {
			continue
		}
		b, ok := buckets[c.key]
		if !ok {
			b = &bucket{
				key:             c.key,
				name:            c.name,
				unit:            c.unit,
				notes:           make(map[string]struct{}),
				inventoryAmount: c.inventory,
			}
			buckets[c.key] = b
			order = append(order, b)
		}
		if c.name < b.name {
			b.name = c.name
		}
		if c.notes != "" {
			b.notes[c.notes] = struct{}{}
		}
		if c.hasHint {
			b.hints = append(b.hints, c.hint)
		}
		b.total += c.deficit
		b.sources = append(b.sources, c.source)
	}

	items := make([]Item, 0, len(order))
	for _, b := range order {
		category := a.classifier.Classify(b.name)
		if category == SectionOther && len(b.hints) > 0 {
			category = firstByRank(b.hints)
		}

		items = append(items, Item{
			ID:              b.key,
			Name:            b.name,
			Category:        category,
			TotalAmount:     b.total,
			Unit:            b.unit,
			EstimatedCost:   a.estimator.Estimate(category, b.unit, b.total),
			Notes:           joinNotes(b.notes),
			Sources:         b.sources,
			IsInInventory:   b.inventoryAmount > 0,
			InventoryAmount: b.inventoryAmount,
		})
	}
	return items
}

// inventoryIndex groups inventory by lowercased name, preserving input order.
func (a *Aggregator) inventoryIndex(inventory []InventoryItem) map[string][]InventoryItem {
	index := make(map[string][]InventoryItem)
	for _, inv := range inventory {
		name := strings.ToLower(strings.TrimSpace(inv.Name))
		if name == "" || !(inv.Quantity > 0) {
			continue
		}
		index[name] = append(index[name], inv)
	}
	return index
}

// onHand converts the matching inventory item into unit. An item whose unit
// converts is preferred; otherwise the first match is used as is.
func (a *Aggregator) onHand(matches []InventoryItem, unit units.Unit) float64 {
	if len(matches) == 0 {
		return 0
	}
	inv := matches[0]
	for _, m := range matches {
		if a.converter.Convertible(a.normalizer.Normalize(m.Unit), unit) {
			inv = m
			break
		}
	}

	from := a.normalizer.Normalize(inv.Unit)
	if !a.converter.Convertible(from, unit) {
		a.logger.Debug("inventory deducted without conversion",
			zap.String("from", string(from)),
			zap.String("to", string(unit)),
		)
	}
	return a.converter.Convert(inv.Quantity, from, unit)
}

func servingRatio(slot MealSlot) (ratio float64, servings int) {
	base := slot.Recipe.Servings
	servings = slot.Servings
	if servings <= 0 {
		servings = base
	}
	if base <= 0 || servings <= 0 {
		return 1, servings
	}
	return float64(servings) / float64(base), servings
}

func sourceLess(a, b Source) bool {
	if a.RecipeTitle != b.RecipeTitle {
		return a.RecipeTitle < b.RecipeTitle
	}
	if a.RecipeID != b.RecipeID {
		return a.RecipeID < b.RecipeID
	}
	if a.Amount != b.Amount {
		return a.Amount < b.Amount
	}
	return a.Servings < b.Servings
}

func firstByRank(sections []Section) Section {
	best := sections[0]
	for _, s := range sections[1:] {
		if sectionRank(s) < sectionRank(best) {
			best = s
		}
	}
	return best
}

func joinNotes(notes map[string]struct{}) string {
	if len(notes) == 0 {
		return ""
	}
	list := make([]string, 0, len(notes))
	for n := range notes {
		list = append(list, n)
	}
	sort.Strings(list)
	return strings.Join(list, "; ")
}
