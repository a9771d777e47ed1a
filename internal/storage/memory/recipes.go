package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/google/uuid"
)

// RecipesMemoryStorage - in-memory storage для рецептов
type RecipesMemoryStorage struct {
	mu      sync.RWMutex
	recipes map[uuid.UUID]storage.Recipe
}

func NewRecipesMemoryStorage() *RecipesMemoryStorage {
	return &RecipesMemoryStorage{recipes: make(map[uuid.UUID]storage.Recipe)}
}

func (s *RecipesMemoryStorage) CreateRecipe(ctx context.Context, recipe *storage.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}
	now := time.Now().UTC()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now
	for i := range recipe.Ingredients {
		recipe.Ingredients[i].Position = i
	}

	s.recipes[recipe.ID] = cloneRecipe(*recipe)
	return nil
}

func (s *RecipesMemoryStorage) GetRecipe(ctx context.Context, ownerUserID string, id uuid.UUID) (*storage.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok || r.OwnerUserID != ownerUserID {
		return nil, storage.ErrNotFound
	}
	out := cloneRecipe(r)
	return &out, nil
}

func (s *RecipesMemoryStorage) GetRecipesByIDs(ctx context.Context, ownerUserID string, ids []uuid.UUID) ([]storage.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]storage.Recipe, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if r, ok := s.recipes[id]; ok && r.OwnerUserID == ownerUserID {
			out = append(out, cloneRecipe(r))
		}
	}
	return out, nil
}

func (s *RecipesMemoryStorage) ListRecipes(ctx context.Context, ownerUserID string, limit, offset int) ([]storage.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []storage.Recipe
	for _, r := range s.recipes {
		if r.OwnerUserID == ownerUserID {
			filtered = append(filtered, cloneRecipe(r))
		}
	}

	// created_at DESC, id для стабильности
	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		}
		return filtered[i].ID.String() < filtered[j].ID.String()
	})

	return paginate(filtered, limit, offset), nil
}

func (s *RecipesMemoryStorage) DeleteRecipe(ctx context.Context, ownerUserID string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recipes[id]
	if !ok || r.OwnerUserID != ownerUserID {
		return storage.ErrNotFound
	}
	delete(s.recipes, id)
	return nil
}

func cloneRecipe(r storage.Recipe) storage.Recipe {
	r.Ingredients = append([]storage.RecipeIngredient(nil), r.Ingredients...)
	return r
}
