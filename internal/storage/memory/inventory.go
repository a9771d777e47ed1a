package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/google/uuid"
)

type InventoryMemoryStorage struct {
	mu    sync.RWMutex
	items map[uuid.UUID]storage.InventoryItem
}

func NewInventoryMemoryStorage() *InventoryMemoryStorage {
	return &InventoryMemoryStorage{items: make(map[uuid.UUID]storage.InventoryItem)}
}

func (s *InventoryMemoryStorage) ListInventory(ctx context.Context, ownerUserID string) ([]storage.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []storage.InventoryItem{}
	for _, it := range s.items {
		if it.OwnerUserID == ownerUserID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *InventoryMemoryStorage) UpsertInventoryItem(ctx context.Context, ownerUserID string, upsert storage.InventoryItemUpsert) (storage.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	name := strings.TrimSpace(upsert.Name)
	for id, it := range s.items {
		if it.OwnerUserID == ownerUserID && strings.EqualFold(it.Name, name) {
			it.Name = name
			it.Quantity = upsert.Quantity
			it.Unit = upsert.Unit
			it.UpdatedAt = now
			s.items[id] = it
			return it, nil
		}
	}

	it := storage.InventoryItem{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		Name:        name,
		Quantity:    upsert.Quantity,
		Unit:        upsert.Unit,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.items[it.ID] = it
	return it, nil
}

func (s *InventoryMemoryStorage) DeleteInventoryItem(ctx context.Context, ownerUserID string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok || it.OwnerUserID != ownerUserID {
		return storage.ErrNotFound
	}
	delete(s.items, id)
	return nil
}
