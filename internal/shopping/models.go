package shopping

import (
	"strings"

	"github.com/fdg312/meal-planner/internal/units"
)

// Section is a store section used to group the list for in-store navigation.
type Section string

const (
	SectionProduce   Section = "Produce"
	SectionMeat      Section = "Meat & Seafood"
	SectionDairy     Section = "Dairy & Eggs"
	SectionPantry    Section = "Pantry"
	SectionFrozen    Section = "Frozen"
	SectionBeverages Section = "Beverages"
	SectionSnacks    Section = "Snacks"
	SectionHousehold Section = "Household"
	SectionOther     Section = "Other"
)

// SectionOrder is the canonical emission order of sections.
var SectionOrder = []Section{
	SectionProduce,
	SectionMeat,
	SectionDairy,
	SectionPantry,
	SectionFrozen,
	SectionBeverages,
	SectionSnacks,
	SectionHousehold,
	SectionOther,
}

func sectionRank(s Section) int {
	for i, sec := range SectionOrder {
		if sec == s {
			return i
		}
	}
	return len(SectionOrder)
}

// ParseSection matches a section name case-insensitively.
func ParseSection(raw string) (Section, bool) {
	raw = strings.TrimSpace(raw)
	for _, sec := range SectionOrder {
		if strings.EqualFold(string(sec), raw) {
			return sec, true
		}
	}
	return "", false
}

// RecipeIngredient is one per-serving ingredient line of a recipe.
type RecipeIngredient struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Amount   float64 `json:"amount" validate:"gt=0"`
	Unit     string  `json:"unit" validate:"required,max=40"`
	Category string  `json:"category,omitempty" validate:"max=60"`
	Notes    string  `json:"notes,omitempty" validate:"max=500"`
}

// Recipe is the part of a recipe the engine reads.
type Recipe struct {
	ID          string             `json:"id" validate:"required"`
	Title       string             `json:"title" validate:"required,max=200"`
	Servings    int                `json:"servings" validate:"gte=0"`
	Ingredients []RecipeIngredient `json:"ingredients" validate:"dive"`
}

// MealSlot is one planned meal, optionally bound to a recipe. Servings of
// zero means "as many as the recipe makes".
type MealSlot struct {
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	MealType string  `json:"meal_type" validate:"required,oneof=breakfast lunch dinner snack"`
	Recipe   *Recipe `json:"recipe,omitempty" validate:"omitnil"`
	Servings int     `json:"servings,omitempty" validate:"gte=0"`
}

// InventoryItem is what the user already has at home.
type InventoryItem struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	Unit     string  `json:"unit" validate:"max=40"`
}

// Source records which recipe contributed how much to an item.
type Source struct {
	RecipeID    string  `json:"recipe_id"`
	RecipeTitle string  `json:"recipe_title"`
	Amount      float64 `json:"amount"`
	Servings    int     `json:"servings"`
}

// Item is one aggregated shopping need. ID is the aggregation key.
type Item struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Category        Section    `json:"category"`
	TotalAmount     float64    `json:"total_amount"`
	Unit            units.Unit `json:"unit"`
	EstimatedCost   *float64   `json:"estimated_cost,omitempty"`
	IsPurchased     bool       `json:"is_purchased"`
	Notes           string     `json:"notes,omitempty"`
	Sources         []Source   `json:"sources"`
	IsInInventory   bool       `json:"is_in_inventory"`
	InventoryAmount float64    `json:"inventory_amount,omitempty"`
}

// AggregationKey is the dedup identity of a shopping need.
func AggregationKey(name string, unit units.Unit) string {
	return strings.ToLower(strings.TrimSpace(name)) + "-" + string(unit)
}

// RangeQuery selects the meal plan window. Empty From means today, empty To
// means a week starting at From.
type RangeQuery struct {
	From string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}

// ListResponse is the generated list together with the session state that
// applies to it.
type ListResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
	List
	Session *Session `json:"session"`
}

const (
	ToggleSelected  = "selected"
	TogglePurchased = "purchased"
)

type ToggleRequest struct {
	ItemID string `json:"item_id" validate:"required,max=300"`
	Field  string `json:"field" validate:"omitempty,oneof=selected purchased"`
}

type ToggleResponse struct {
	ItemID    string `json:"item_id"`
	Selected  bool   `json:"selected"`
	Purchased bool   `json:"purchased"`
}

// OverrideRequest sets or clears the quantity and notes exported for one
// item. A nil field is left as is.
type OverrideRequest struct {
	ItemID        string   `json:"item_id" validate:"required,max=300"`
	Quantity      *float64 `json:"quantity,omitempty" validate:"omitnil,gt=0"`
	Notes         *string  `json:"notes,omitempty" validate:"omitnil,max=500"`
	ClearQuantity bool     `json:"clear_quantity,omitempty"`
	ClearNotes    bool     `json:"clear_notes,omitempty"`
}

type ExportListRequest struct {
	From   string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Format string `json:"format" validate:"omitempty,oneof=pdf csv"`
}

type ShareEmailRequest struct {
	From    string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To      string `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Address string `json:"address" validate:"required,email,max=320"`
}

type ShareSMSRequest struct {
	From  string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To    string `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Phone string `json:"phone" validate:"required,e164"`
}

type ShareResponse struct {
	Channel   string `json:"channel"`
	ItemCount int    `json:"item_count"`
	Status    string `json:"status"`
}
