package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/fdg312/meal-planner/internal/validation"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrItemNotFound = errors.New("inventory item not found")
)

// Service handles inventory business logic.
type Service struct {
	storage   storage.InventoryStorage
	validator *validation.Validator
}

func NewService(storage storage.InventoryStorage) *Service {
	return &Service{storage: storage, validator: validation.New()}
}

func (s *Service) List(ctx context.Context, ownerUserID string) ([]ItemDTO, error) {
	items, err := s.storage.ListInventory(ctx, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	out := make([]ItemDTO, len(items))
	for i, it := range items {
		out[i] = toDTO(it)
	}
	return out, nil
}

// Upsert stores every item of the request. Duplicate names within one
// request are rejected so the result does not depend on item order.
func (s *Service) Upsert(ctx context.Context, ownerUserID string, req UpsertRequest) ([]ItemDTO, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	seen := make(map[string]int, len(req.Items))
	for i, it := range req.Items {
		key := strings.ToLower(strings.TrimSpace(it.Name))
		if key == "" {
			return nil, fmt.Errorf("%w: items[%d].name: is required", ErrValidation, i)
		}
		if j, ok := seen[key]; ok {
			return nil, fmt.Errorf("%w: items[%d].name duplicates items[%d]", ErrValidation, i, j)
		}
		seen[key] = i
	}

	out := make([]ItemDTO, 0, len(req.Items))
	for _, it := range req.Items {
		stored, err := s.storage.UpsertInventoryItem(ctx, ownerUserID, storage.InventoryItemUpsert{
			Name:     strings.TrimSpace(it.Name),
			Quantity: it.Quantity,
			Unit:     strings.TrimSpace(it.Unit),
		})
		if err != nil {
			return nil, fmt.Errorf("upsert inventory item: %w", err)
		}
		out = append(out, toDTO(stored))
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, ownerUserID string, id uuid.UUID) error {
	if err := s.storage.DeleteInventoryItem(ctx, ownerUserID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("delete inventory item: %w", err)
	}
	return nil
}

func toDTO(it storage.InventoryItem) ItemDTO {
	return ItemDTO{
		ID:        it.ID.String(),
		Name:      it.Name,
		Quantity:  it.Quantity,
		Unit:      it.Unit,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
}
