package mealplans

import (
	"fmt"
	"time"
)

var validMealTypes = map[string]bool{"breakfast": true, "lunch": true, "dinner": true, "snack": true}

type MealSlotDTO struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	MealType  string    `json:"meal_type"`
	RecipeID  *string   `json:"recipe_id"`
	Servings  int       `json:"servings"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GetMealPlanResponse struct {
	From  string        `json:"from"`
	To    string        `json:"to"`
	Slots []MealSlotDTO `json:"slots"`
}

// ReplaceMealPlanRequest replaces every slot in [From, To].
type ReplaceMealPlanRequest struct {
	From  string                `json:"from" validate:"required,datetime=2006-01-02"`
	To    string                `json:"to" validate:"required,datetime=2006-01-02"`
	Slots []MealSlotUpsertInput `json:"slots" validate:"max=120,dive"`
}

type MealSlotUpsertInput struct {
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	MealType string  `json:"meal_type" validate:"required,oneof=breakfast lunch dinner snack"`
	RecipeID *string `json:"recipe_id,omitempty" validate:"omitnil,uuid"`
	Servings int     `json:"servings,omitempty" validate:"gte=0,lte=100"`
}

type GetTodayResponse struct {
	Date  string        `json:"date"`
	Slots []MealSlotDTO `json:"slots"`
}

// checkSlots enforces what struct tags cannot: slots inside the range and
// one slot per (date, meal_type).
func (r *ReplaceMealPlanRequest) checkSlots() error {
	if r.From > r.To {
		return fmt.Errorf("from must not be after to")
	}
	seen := make(map[string]bool, len(r.Slots))
	for i, slot := range r.Slots {
		if slot.Date < r.From || slot.Date > r.To {
			return fmt.Errorf("slots[%d]: date %s is outside %s..%s", i, slot.Date, r.From, r.To)
		}
		if !validMealTypes[slot.MealType] {
			return fmt.Errorf("slots[%d]: invalid meal_type", i)
		}
		key := slot.Date + ":" + slot.MealType
		if seen[key] {
			return fmt.Errorf("duplicate (date, meal_type): %s", key)
		}
		seen[key] = true
	}
	return nil
}
