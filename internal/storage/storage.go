package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by every backend when a row does not exist or
// belongs to another owner.
var ErrNotFound = errors.New("not found")

// Storage - корневой интерфейс хранилища (memory или postgres)
type Storage interface {
	GetRecipesStorage() RecipesStorage
	GetInventoryStorage() InventoryStorage
	GetMealPlansStorage() MealPlansStorage
	GetShoppingSessionsStorage() ShoppingSessionsStorage
	GetExportsStorage() ExportsStorage

	// Close закрывает соединение (для Postgres)
	Close() error
}

// ============================================================================
// Recipes
// ============================================================================

// RecipesStorage - интерфейс для работы с рецептами
type RecipesStorage interface {
	// CreateRecipe сохраняет рецепт вместе с ингредиентами
	CreateRecipe(ctx context.Context, recipe *Recipe) error

	// GetRecipe возвращает рецепт владельца по ID
	GetRecipe(ctx context.Context, ownerUserID string, id uuid.UUID) (*Recipe, error)

	// GetRecipesByIDs возвращает найденные рецепты; отсутствующие ID пропускаются
	GetRecipesByIDs(ctx context.Context, ownerUserID string, ids []uuid.UUID) ([]Recipe, error)

	// ListRecipes возвращает рецепты владельца, новые первыми
	ListRecipes(ctx context.Context, ownerUserID string, limit, offset int) ([]Recipe, error)

	// DeleteRecipe удаляет рецепт
	DeleteRecipe(ctx context.Context, ownerUserID string, id uuid.UUID) error
}

// Recipe is a stored recipe. Ingredient amounts are per recipe yield
// (Servings), not per single serving.
type Recipe struct {
	ID          uuid.UUID
	OwnerUserID string
	Title       string
	Servings    int
	Ingredients []RecipeIngredient
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecipeIngredient is one ingredient line, kept in recipe order.
type RecipeIngredient struct {
	Position int
	Name     string
	Amount   float64
	Unit     string // raw, normalized only by the shopping engine
	Category string // optional section hint
	Notes    string
}

// ============================================================================
// Inventory
// ============================================================================

// InventoryStorage manages what the user already has at home.
type InventoryStorage interface {
	// ListInventory returns all items of an owner ordered by name.
	ListInventory(ctx context.Context, ownerUserID string) ([]InventoryItem, error)
	// UpsertInventoryItem creates or replaces the item with the same
	// case-insensitive name.
	UpsertInventoryItem(ctx context.Context, ownerUserID string, upsert InventoryItemUpsert) (InventoryItem, error)
	// DeleteInventoryItem removes an item by ID.
	DeleteInventoryItem(ctx context.Context, ownerUserID string, id uuid.UUID) error
}

type InventoryItem struct {
	ID          uuid.UUID
	OwnerUserID string
	Name        string
	Quantity    float64
	Unit        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type InventoryItemUpsert struct {
	Name     string
	Quantity float64
	Unit     string
}

// ============================================================================
// Meal plans
// ============================================================================

// MealPlansStorage manages planned meal slots.
type MealPlansStorage interface {
	// ListSlots returns slots with from <= date <= to ordered by date and meal type.
	ListSlots(ctx context.Context, ownerUserID string, from, to string) ([]MealSlot, error)
	// ReplaceSlots atomically replaces every slot in [from, to] with slots.
	ReplaceSlots(ctx context.Context, ownerUserID string, from, to string, slots []MealSlotUpsert) ([]MealSlot, error)
	// DeleteSlots removes every slot in [from, to].
	DeleteSlots(ctx context.Context, ownerUserID string, from, to string) error
}

type MealSlot struct {
	ID          uuid.UUID
	OwnerUserID string
	Date        string // YYYY-MM-DD
	MealType    string // breakfast, lunch, dinner, snack
	RecipeID    *uuid.UUID
	Servings    int // 0 = recipe yield
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type MealSlotUpsert struct {
	Date     string
	MealType string
	RecipeID *uuid.UUID
	Servings int
}

// ============================================================================
// Shopping
// ============================================================================

// ShoppingSessionsStorage keeps one selection/override session per owner.
// The payload is opaque JSON owned by the shopping package.
type ShoppingSessionsStorage interface {
	GetSession(ctx context.Context, ownerUserID string) ([]byte, bool, error)
	SaveSession(ctx context.Context, ownerUserID string, payload []byte) error
	DeleteSession(ctx context.Context, ownerUserID string) error
}

// ExportsStorage - интерфейс для работы с экспортами списка покупок
type ExportsStorage interface {
	// CreateExport сохраняет метаданные (и данные в memory-режиме)
	CreateExport(ctx context.Context, export *ExportMeta) error

	// GetExport возвращает экспорт по ID
	GetExport(ctx context.Context, id uuid.UUID) (*ExportMeta, error)

	// ListExports возвращает экспорты владельца с пагинацией
	ListExports(ctx context.Context, ownerUserID string, limit, offset int) ([]ExportMeta, error)

	// DeleteExport удаляет экспорт
	DeleteExport(ctx context.Context, id uuid.UUID) error
}

// ExportMeta - метаданные экспорта
type ExportMeta struct {
	ID          uuid.UUID
	OwnerUserID string
	Format      string // "pdf" or "csv"
	FromDate    string // YYYY-MM-DD
	ToDate      string // YYYY-MM-DD
	ItemCount   int
	ObjectKey   *string // S3 object key (NULL in local mode)
	SizeBytes   int64
	Status      string // "ready" or "failed"
	Error       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Data        []byte // local mode only
}
