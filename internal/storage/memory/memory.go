package memory

import "github.com/fdg312/meal-planner/internal/storage"

// MemoryStorage - in-memory реализация Storage
type MemoryStorage struct {
	recipes   *RecipesMemoryStorage
	inventory *InventoryMemoryStorage
	mealPlans *MealPlansMemoryStorage
	sessions  *ShoppingSessionsMemoryStorage
	exports   *ExportsMemoryStorage
}

// New создаёт пустое in-memory хранилище
func New() *MemoryStorage {
	return &MemoryStorage{
		recipes:   NewRecipesMemoryStorage(),
		inventory: NewInventoryMemoryStorage(),
		mealPlans: NewMealPlansMemoryStorage(),
		sessions:  NewShoppingSessionsMemoryStorage(),
		exports:   NewExportsMemoryStorage(),
	}
}

func (m *MemoryStorage) GetRecipesStorage() storage.RecipesStorage { return m.recipes }

func (m *MemoryStorage) GetInventoryStorage() storage.InventoryStorage { return m.inventory }

func (m *MemoryStorage) GetMealPlansStorage() storage.MealPlansStorage { return m.mealPlans }

func (m *MemoryStorage) GetShoppingSessionsStorage() storage.ShoppingSessionsStorage {
	return m.sessions
}

func (m *MemoryStorage) GetExportsStorage() storage.ExportsStorage { return m.exports }

func (m *MemoryStorage) Close() error {
	// no-op для memory
	return nil
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []T{}
	}
	end := len(rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return rows[offset:end]
}
