package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresInventoryStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresInventoryStorage(pool *pgxpool.Pool) *PostgresInventoryStorage {
	return &PostgresInventoryStorage{pool: pool}
}

func (s *PostgresInventoryStorage) ListInventory(ctx context.Context, ownerUserID string) ([]storage.InventoryItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_user_id, name, quantity, unit, created_at, updated_at
		FROM inventory_items
		WHERE owner_user_id = $1
		ORDER BY lower(name)
	`, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	items := []storage.InventoryItem{}
	for rows.Next() {
		var it storage.InventoryItem
		if err := rows.Scan(&it.ID, &it.OwnerUserID, &it.Name, &it.Quantity, &it.Unit, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, it)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating inventory: %w", rows.Err())
	}
	return items, nil
}

func (s *PostgresInventoryStorage) UpsertInventoryItem(ctx context.Context, ownerUserID string, upsert storage.InventoryItemUpsert) (storage.InventoryItem, error) {
	it := storage.InventoryItem{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(upsert.Name),
		Quantity:    upsert.Quantity,
		Unit:        upsert.Unit,
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO inventory_items (id, owner_user_id, name, quantity, unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (owner_user_id, lower(name)) DO UPDATE
		SET name = EXCLUDED.name, quantity = EXCLUDED.quantity, unit = EXCLUDED.unit, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, it.ID, it.OwnerUserID, it.Name, it.Quantity, it.Unit).Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return storage.InventoryItem{}, fmt.Errorf("failed to upsert inventory item: %w", err)
	}
	return it, nil
}

func (s *PostgresInventoryStorage) DeleteInventoryItem(ctx context.Context, ownerUserID string, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM inventory_items WHERE owner_user_id = $1 AND id = $2`, ownerUserID, id)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
