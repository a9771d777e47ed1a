package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresMealPlansStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresMealPlansStorage(pool *pgxpool.Pool) *PostgresMealPlansStorage {
	return &PostgresMealPlansStorage{pool: pool}
}

const listSlotsQuery = `
	SELECT id, owner_user_id, to_char(slot_date, 'YYYY-MM-DD'), meal_type, recipe_id, servings, created_at, updated_at
	FROM meal_slots
	WHERE owner_user_id = $1 AND slot_date BETWEEN $2::date AND $3::date
	ORDER BY slot_date, meal_type
`

func (s *PostgresMealPlansStorage) ListSlots(ctx context.Context, ownerUserID string, from, to string) ([]storage.MealSlot, error) {
	return listSlots(ctx, s.pool, ownerUserID, from, to)
}

// ReplaceSlots удаляет слоты диапазона и вставляет новые в одной транзакции
func (s *PostgresMealPlansStorage) ReplaceSlots(ctx context.Context, ownerUserID string, from, to string, slots []storage.MealSlotUpsert) ([]storage.MealSlot, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM meal_slots
		WHERE owner_user_id = $1 AND slot_date BETWEEN $2::date AND $3::date
	`, ownerUserID, from, to); err != nil {
		return nil, fmt.Errorf("failed to clear meal slots: %w", err)
	}

	batch := &pgx.Batch{}
	for _, up := range slots {
		batch.Queue(`
			INSERT INTO meal_slots (id, owner_user_id, slot_date, meal_type, recipe_id, servings, created_at, updated_at)
			VALUES ($1, $2, $3::date, $4, $5, $6, NOW(), NOW())
		`, uuid.New(), ownerUserID, up.Date, up.MealType, up.RecipeID, up.Servings)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return nil, fmt.Errorf("failed to insert meal slots: %w", err)
		}
	}

	result, err := listSlots(ctx, tx, ownerUserID, from, to)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit meal slots: %w", err)
	}
	return result, nil
}

func (s *PostgresMealPlansStorage) DeleteSlots(ctx context.Context, ownerUserID string, from, to string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM meal_slots
		WHERE owner_user_id = $1 AND slot_date BETWEEN $2::date AND $3::date
	`, ownerUserID, from, to)
	if err != nil {
		return fmt.Errorf("failed to delete meal slots: %w", err)
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listSlots(ctx context.Context, q querier, ownerUserID, from, to string) ([]storage.MealSlot, error) {
	rows, err := q.Query(ctx, listSlotsQuery, ownerUserID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal slots: %w", err)
	}

	slots, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.MealSlot, error) {
		var slot storage.MealSlot
		err := row.Scan(
			&slot.ID,
			&slot.OwnerUserID,
			&slot.Date,
			&slot.MealType,
			&slot.RecipeID,
			&slot.Servings,
			&slot.CreatedAt,
			&slot.UpdatedAt,
		)
		return slot, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan meal slot: %w", err)
	}
	if slots == nil {
		slots = []storage.MealSlot{}
	}
	return slots, nil
}
