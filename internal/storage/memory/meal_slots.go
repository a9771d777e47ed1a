package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/google/uuid"
)

type MealPlansMemoryStorage struct {
	mu    sync.RWMutex
	slots map[uuid.UUID]storage.MealSlot
}

func NewMealPlansMemoryStorage() *MealPlansMemoryStorage {
	return &MealPlansMemoryStorage{slots: make(map[uuid.UUID]storage.MealSlot)}
}

func (s *MealPlansMemoryStorage) ListSlots(ctx context.Context, ownerUserID string, from, to string) ([]storage.MealSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(ownerUserID, from, to), nil
}

func (s *MealPlansMemoryStorage) ReplaceSlots(ctx context.Context, ownerUserID string, from, to string, slots []storage.MealSlotUpsert) ([]storage.MealSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteLocked(ownerUserID, from, to)

	now := time.Now().UTC()
	for _, up := range slots {
		slot := storage.MealSlot{
			ID:          uuid.New(),
			OwnerUserID: ownerUserID,
			Date:        up.Date,
			MealType:    up.MealType,
			Servings:    up.Servings,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if up.RecipeID != nil {
			id := *up.RecipeID
			slot.RecipeID = &id
		}
		s.slots[slot.ID] = slot
	}

	return s.listLocked(ownerUserID, from, to), nil
}

func (s *MealPlansMemoryStorage) DeleteSlots(ctx context.Context, ownerUserID string, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(ownerUserID, from, to)
	return nil
}

func (s *MealPlansMemoryStorage) listLocked(ownerUserID, from, to string) []storage.MealSlot {
	out := []storage.MealSlot{}
	for _, slot := range s.slots {
		if slot.OwnerUserID == ownerUserID && slot.Date >= from && slot.Date <= to {
			out = append(out, slot)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].MealType < out[j].MealType
	})
	return out
}

func (s *MealPlansMemoryStorage) deleteLocked(ownerUserID, from, to string) {
	for id, slot := range s.slots {
		if slot.OwnerUserID == ownerUserID && slot.Date >= from && slot.Date <= to {
			delete(s.slots, id)
		}
	}
}
