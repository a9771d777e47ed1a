package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresExportsStorage - Postgres storage для экспортов
type PostgresExportsStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresExportsStorage создаёт новое Postgres хранилище
func NewPostgresExportsStorage(pool *pgxpool.Pool) *PostgresExportsStorage {
	return &PostgresExportsStorage{pool: pool}
}

// CreateExport создаёт новый экспорт
func (s *PostgresExportsStorage) CreateExport(ctx context.Context, export *storage.ExportMeta) error {
	query := `
		INSERT INTO shopping_exports (id, owner_user_id, format, from_date, to_date, item_count, object_key, size_bytes, status, error, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if export.ID == uuid.Nil {
		export.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, query,
		export.ID,
		export.OwnerUserID,
		export.Format,
		export.FromDate,
		export.ToDate,
		export.ItemCount,
		export.ObjectKey,
		export.SizeBytes,
		export.Status,
		export.Error,
		export.Data,
	).Scan(&export.CreatedAt, &export.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create export: %w", err)
	}

	return nil
}

// GetExport возвращает экспорт по ID
func (s *PostgresExportsStorage) GetExport(ctx context.Context, id uuid.UUID) (*storage.ExportMeta, error) {
	query := `
		SELECT id, owner_user_id, format, from_date::text, to_date::text, item_count, object_key, size_bytes, status, error, data, created_at, updated_at
		FROM shopping_exports
		WHERE id = $1
	`

	var export storage.ExportMeta
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&export.ID,
		&export.OwnerUserID,
		&export.Format,
		&export.FromDate,
		&export.ToDate,
		&export.ItemCount,
		&export.ObjectKey,
		&export.SizeBytes,
		&export.Status,
		&export.Error,
		&export.Data,
		&export.CreatedAt,
		&export.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	return &export, nil
}

// ListExports возвращает список экспортов без данных
func (s *PostgresExportsStorage) ListExports(ctx context.Context, ownerUserID string, limit, offset int) ([]storage.ExportMeta, error) {
	query := `
		SELECT id, owner_user_id, format, from_date::text, to_date::text, item_count, object_key, size_bytes, status, error, created_at, updated_at
		FROM shopping_exports
		WHERE owner_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.pool.Query(ctx, query, ownerUserID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer rows.Close()

	exports := []storage.ExportMeta{}
	for rows.Next() {
		var export storage.ExportMeta
		err := rows.Scan(
			&export.ID,
			&export.OwnerUserID,
			&export.Format,
			&export.FromDate,
			&export.ToDate,
			&export.ItemCount,
			&export.ObjectKey,
			&export.SizeBytes,
			&export.Status,
			&export.Error,
			&export.CreatedAt,
			&export.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		exports = append(exports, export)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating exports: %w", rows.Err())
	}

	return exports, nil
}

// DeleteExport удаляет экспорт
func (s *PostgresExportsStorage) DeleteExport(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM shopping_exports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
