package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRecipesStorage - Postgres storage для рецептов
type PostgresRecipesStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresRecipesStorage(pool *pgxpool.Pool) *PostgresRecipesStorage {
	return &PostgresRecipesStorage{pool: pool}
}

// CreateRecipe вставляет рецепт и ингредиенты в одной транзакции
func (s *PostgresRecipesStorage) CreateRecipe(ctx context.Context, recipe *storage.Recipe) error {
	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO recipes (id, owner_user_id, title, servings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at
	`, recipe.ID, recipe.OwnerUserID, recipe.Title, recipe.Servings).Scan(&recipe.CreatedAt, &recipe.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range recipe.Ingredients {
		ing := &recipe.Ingredients[i]
		ing.Position = i
		batch.Queue(`
			INSERT INTO recipe_ingredients (recipe_id, position, name, amount, unit, category, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, recipe.ID, ing.Position, ing.Name, ing.Amount, ing.Unit, ing.Category, ing.Notes)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert recipe ingredients: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit recipe: %w", err)
	}
	return nil
}

func (s *PostgresRecipesStorage) GetRecipe(ctx context.Context, ownerUserID string, id uuid.UUID) (*storage.Recipe, error) {
	recipes, err := s.GetRecipesByIDs(ctx, ownerUserID, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, storage.ErrNotFound
	}
	return &recipes[0], nil
}

func (s *PostgresRecipesStorage) GetRecipesByIDs(ctx context.Context, ownerUserID string, ids []uuid.UUID) ([]storage.Recipe, error) {
	if len(ids) == 0 {
		return []storage.Recipe{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_user_id, title, servings, created_at, updated_at
		FROM recipes
		WHERE owner_user_id = $1 AND id = ANY($2)
		ORDER BY created_at DESC, id
	`, ownerUserID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipes: %w", err)
	}

	recipes, err := pgx.CollectRows(rows, scanRecipe)
	if err != nil {
		return nil, fmt.Errorf("failed to scan recipes: %w", err)
	}

	if err := s.loadIngredients(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (s *PostgresRecipesStorage) ListRecipes(ctx context.Context, ownerUserID string, limit, offset int) ([]storage.Recipe, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_user_id, title, servings, created_at, updated_at
		FROM recipes
		WHERE owner_user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`, ownerUserID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	recipes, err := pgx.CollectRows(rows, scanRecipe)
	if err != nil {
		return nil, fmt.Errorf("failed to scan recipes: %w", err)
	}

	if err := s.loadIngredients(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (s *PostgresRecipesStorage) DeleteRecipe(ctx context.Context, ownerUserID string, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM recipes WHERE owner_user_id = $1 AND id = $2`, ownerUserID, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// loadIngredients подгружает ингредиенты одним запросом
func (s *PostgresRecipesStorage) loadIngredients(ctx context.Context, recipes []storage.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(recipes))
	index := make(map[uuid.UUID]int, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
		index[r.ID] = i
		recipes[i].Ingredients = []storage.RecipeIngredient{}
	}

	rows, err := s.pool.Query(ctx, `
		SELECT recipe_id, position, name, amount, unit, category, notes
		FROM recipe_ingredients
		WHERE recipe_id = ANY($1)
		ORDER BY recipe_id, position
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to get recipe ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID uuid.UUID
		var ing storage.RecipeIngredient
		if err := rows.Scan(&recipeID, &ing.Position, &ing.Name, &ing.Amount, &ing.Unit, &ing.Category, &ing.Notes); err != nil {
			return fmt.Errorf("failed to scan recipe ingredient: %w", err)
		}
		if i, ok := index[recipeID]; ok {
			recipes[i].Ingredients = append(recipes[i].Ingredients, ing)
		}
	}
	if rows.Err() != nil {
		return fmt.Errorf("error iterating recipe ingredients: %w", rows.Err())
	}
	return nil
}

func scanRecipe(row pgx.CollectableRow) (storage.Recipe, error) {
	var r storage.Recipe
	err := row.Scan(&r.ID, &r.OwnerUserID, &r.Title, &r.Servings, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}
