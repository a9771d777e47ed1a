package recipes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fdg312/meal-planner/internal/shopping"
	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/fdg312/meal-planner/internal/validation"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrRecipeNotFound = errors.New("recipe not found")
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Service handles recipes business logic.
type Service struct {
	storage   storage.RecipesStorage
	validator *validation.Validator
}

// NewService creates a new recipes service.
func NewService(storage storage.RecipesStorage) *Service {
	return &Service{storage: storage, validator: validation.New()}
}

// Create validates and stores a recipe.
func (s *Service) Create(ctx context.Context, ownerUserID string, req CreateRecipeRequest) (*RecipeDTO, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	recipe := &storage.Recipe{
		OwnerUserID: ownerUserID,
		Title:       strings.TrimSpace(req.Title),
		Servings:    req.Servings,
		Ingredients: make([]storage.RecipeIngredient, len(req.Ingredients)),
	}
	for i, ing := range req.Ingredients {
		category := ""
		if strings.TrimSpace(ing.Category) != "" {
			sec, ok := shopping.ParseSection(ing.Category)
			if !ok {
				return nil, fmt.Errorf("%w: ingredients[%d].category: unknown section %q", ErrValidation, i, ing.Category)
			}
			category = string(sec)
		}
		recipe.Ingredients[i] = storage.RecipeIngredient{
			Position: i,
			Name:     strings.TrimSpace(ing.Name),
			Amount:   ing.Amount,
			Unit:     strings.TrimSpace(ing.Unit),
			Category: category,
			Notes:    strings.TrimSpace(ing.Notes),
		}
	}

	if err := s.storage.CreateRecipe(ctx, recipe); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	dto := toDTO(*recipe)
	return &dto, nil
}

// Get returns one recipe of the owner.
func (s *Service) Get(ctx context.Context, ownerUserID string, id uuid.UUID) (*RecipeDTO, error) {
	recipe, err := s.storage.GetRecipe(ctx, ownerUserID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	dto := toDTO(*recipe)
	return &dto, nil
}

// List returns recipes newest first.
func (s *Service) List(ctx context.Context, ownerUserID string, limit, offset int) ([]RecipeDTO, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	list, err := s.storage.ListRecipes(ctx, ownerUserID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	out := make([]RecipeDTO, len(list))
	for i, r := range list {
		out[i] = toDTO(r)
	}
	return out, nil
}

// Delete removes a recipe. Slots that referenced it become unbound.
func (s *Service) Delete(ctx context.Context, ownerUserID string, id uuid.UUID) error {
	if err := s.storage.DeleteRecipe(ctx, ownerUserID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrRecipeNotFound
		}
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

// Exists reports whether every id belongs to a recipe of the owner.
func (s *Service) Exists(ctx context.Context, ownerUserID string, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	unique := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	found, err := s.storage.GetRecipesByIDs(ctx, ownerUserID, ids)
	if err != nil {
		return false, fmt.Errorf("get recipes: %w", err)
	}
	return len(found) == len(unique), nil
}

func toDTO(r storage.Recipe) RecipeDTO {
	ings := make([]IngredientDTO, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ings[i] = IngredientDTO{
			Position: ing.Position,
			Name:     ing.Name,
			Amount:   ing.Amount,
			Unit:     ing.Unit,
			Category: ing.Category,
			Notes:    ing.Notes,
		}
	}
	return RecipeDTO{
		ID:          r.ID.String(),
		Title:       r.Title,
		Servings:    r.Servings,
		Ingredients: ings,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
