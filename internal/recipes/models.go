package recipes

import "time"

type IngredientInput struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Amount   float64 `json:"amount" validate:"gt=0"`
	Unit     string  `json:"unit" validate:"required,max=40"`
	Category string  `json:"category,omitempty" validate:"max=60"`
	Notes    string  `json:"notes,omitempty" validate:"max=500"`
}

type CreateRecipeRequest struct {
	Title       string            `json:"title" validate:"required,max=200"`
	Servings    int               `json:"servings" validate:"gte=1,lte=100"`
	Ingredients []IngredientInput `json:"ingredients" validate:"required,min=1,max=100,dive"`
}

type IngredientDTO struct {
	Position int     `json:"position"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Category string  `json:"category,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

type RecipeDTO struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Servings    int             `json:"servings"`
	Ingredients []IngredientDTO `json:"ingredients"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ListRecipesResponse struct {
	Recipes []RecipeDTO `json:"recipes"`
}
