package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/google/uuid"
)

// ExportsMemoryStorage - in-memory storage для экспортов
type ExportsMemoryStorage struct {
	mu      sync.RWMutex
	exports map[uuid.UUID]*storage.ExportMeta
}

// NewExportsMemoryStorage создаёт новое in-memory хранилище
func NewExportsMemoryStorage() *ExportsMemoryStorage {
	return &ExportsMemoryStorage{
		exports: make(map[uuid.UUID]*storage.ExportMeta),
	}
}

// CreateExport создаёт новый экспорт
func (s *ExportsMemoryStorage) CreateExport(ctx context.Context, export *storage.ExportMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if export.ID == uuid.Nil {
		export.ID = uuid.New()
	}

	now := time.Now()
	export.CreatedAt = now
	export.UpdatedAt = now

	stored := *export
	s.exports[export.ID] = &stored
	return nil
}

// GetExport возвращает экспорт по ID
func (s *ExportsMemoryStorage) GetExport(ctx context.Context, id uuid.UUID) (*storage.ExportMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	export, exists := s.exports[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	out := *export
	return &out, nil
}

// ListExports возвращает список экспортов с пагинацией
func (s *ExportsMemoryStorage) ListExports(ctx context.Context, ownerUserID string, limit, offset int) ([]storage.ExportMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []storage.ExportMeta
	for _, e := range s.exports {
		if e.OwnerUserID == ownerUserID {
			filtered = append(filtered, *e)
		}
	}

	// Сортируем по created_at DESC
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	return paginate(filtered, limit, offset), nil
}

// DeleteExport удаляет экспорт
func (s *ExportsMemoryStorage) DeleteExport(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.exports[id]; !exists {
		return storage.ErrNotFound
	}

	delete(s.exports, id)
	return nil
}
