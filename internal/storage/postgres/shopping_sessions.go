package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresShoppingSessionsStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresShoppingSessionsStorage(pool *pgxpool.Pool) *PostgresShoppingSessionsStorage {
	return &PostgresShoppingSessionsStorage{pool: pool}
}

func (s *PostgresShoppingSessionsStorage) GetSession(ctx context.Context, ownerUserID string) ([]byte, bool, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT payload FROM shopping_sessions WHERE owner_user_id = $1
	`, ownerUserID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get shopping session: %w", err)
	}
	return payload, true, nil
}

func (s *PostgresShoppingSessionsStorage) SaveSession(ctx context.Context, ownerUserID string, payload []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO shopping_sessions (owner_user_id, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (owner_user_id) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = NOW()
	`, ownerUserID, payload)
	if err != nil {
		return fmt.Errorf("failed to save shopping session: %w", err)
	}
	return nil
}

func (s *PostgresShoppingSessionsStorage) DeleteSession(ctx context.Context, ownerUserID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM shopping_sessions WHERE owner_user_id = $1`, ownerUserID); err != nil {
		return fmt.Errorf("failed to delete shopping session: %w", err)
	}
	return nil
}
