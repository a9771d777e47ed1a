package postgres

import (
	"context"
	"errors"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage - Postgres реализация Storage
type PostgresStorage struct {
	pool      *pgxpool.Pool
	recipes   *PostgresRecipesStorage
	inventory *PostgresInventoryStorage
	mealPlans *PostgresMealPlansStorage
	sessions  *PostgresShoppingSessionsStorage
	exports   *PostgresExportsStorage
}

// New создаёт PostgresStorage и проверяет соединение
func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{
		pool:      pool,
		recipes:   NewPostgresRecipesStorage(pool),
		inventory: NewPostgresInventoryStorage(pool),
		mealPlans: NewPostgresMealPlansStorage(pool),
		sessions:  NewPostgresShoppingSessionsStorage(pool),
		exports:   NewPostgresExportsStorage(pool),
	}, nil
}

func (p *PostgresStorage) GetRecipesStorage() storage.RecipesStorage { return p.recipes }

func (p *PostgresStorage) GetInventoryStorage() storage.InventoryStorage { return p.inventory }

func (p *PostgresStorage) GetMealPlansStorage() storage.MealPlansStorage { return p.mealPlans }

func (p *PostgresStorage) GetShoppingSessionsStorage() storage.ShoppingSessionsStorage {
	return p.sessions
}

func (p *PostgresStorage) GetExportsStorage() storage.ExportsStorage { return p.exports }

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}
