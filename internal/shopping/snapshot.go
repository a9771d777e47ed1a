package shopping

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fdg312/meal-planner/internal/storage"
)

// PlanReader loads the meal slots of a date range with their recipes bound.
type PlanReader interface {
	LoadSlots(ctx context.Context, ownerUserID, from, to string) ([]MealSlot, error)
}

// InventoryReader loads an owner's inventory snapshot.
type InventoryReader interface {
	LoadInventory(ctx context.Context, ownerUserID string) ([]InventoryItem, error)
}

// StorageSnapshot reads plans, recipes and inventory from storage.
type StorageSnapshot struct {
	plans     storage.MealPlansStorage
	recipes   storage.RecipesStorage
	inventory storage.InventoryStorage
}

func NewStorageSnapshot(plans storage.MealPlansStorage, recipes storage.RecipesStorage, inventory storage.InventoryStorage) *StorageSnapshot {
	return &StorageSnapshot{plans: plans, recipes: recipes, inventory: inventory}
}

// LoadSlots returns every slot in range. Slots whose recipe no longer
// exists come back unbound and contribute nothing.
func (s *StorageSnapshot) LoadSlots(ctx context.Context, ownerUserID, from, to string) ([]MealSlot, error) {
	stored, err := s.plans.ListSlots(ctx, ownerUserID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0, len(stored))
	for _, slot := range stored {
		if slot.RecipeID == nil {
			continue
		}
		if _, ok := seen[*slot.RecipeID]; ok {
			continue
		}
		seen[*slot.RecipeID] = struct{}{}
		ids = append(ids, *slot.RecipeID)
	}

	recipes := make(map[uuid.UUID]*Recipe, len(ids))
	if len(ids) > 0 {
		found, err := s.recipes.GetRecipesByIDs(ctx, ownerUserID, ids)
		if err != nil {
			return nil, fmt.Errorf("load recipes: %w", err)
		}
		for i := range found {
			recipes[found[i].ID] = toEngineRecipe(found[i])
		}
	}

	slots := make([]MealSlot, 0, len(stored))
	for _, slot := range stored {
		ms := MealSlot{
			Date:     slot.Date,
			MealType: slot.MealType,
			Servings: slot.Servings,
		}
		if slot.RecipeID != nil {
			ms.Recipe = recipes[*slot.RecipeID]
		}
		slots = append(slots, ms)
	}
	return slots, nil
}

func (s *StorageSnapshot) LoadInventory(ctx context.Context, ownerUserID string) ([]InventoryItem, error) {
	stored, err := s.inventory.ListInventory(ctx, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	items := make([]InventoryItem, len(stored))
	for i, it := range stored {
		items[i] = InventoryItem{Name: it.Name, Quantity: it.Quantity, Unit: it.Unit}
	}
	return items, nil
}

func toEngineRecipe(r storage.Recipe) *Recipe {
	ings := make([]RecipeIngredient, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ings[i] = RecipeIngredient{
			Name:     ing.Name,
			Amount:   ing.Amount,
			Unit:     ing.Unit,
			Category: ing.Category,
			Notes:    ing.Notes,
		}
	}
	return &Recipe{
		ID:          r.ID.String(),
		Title:       r.Title,
		Servings:    r.Servings,
		Ingredients: ings,
	}
}
