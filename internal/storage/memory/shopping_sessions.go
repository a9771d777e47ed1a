package memory

import (
	"context"
	"sync"
)

type ShoppingSessionsMemoryStorage struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

func NewShoppingSessionsMemoryStorage() *ShoppingSessionsMemoryStorage {
	return &ShoppingSessionsMemoryStorage{sessions: make(map[string][]byte)}
}

func (s *ShoppingSessionsMemoryStorage) GetSession(ctx context.Context, ownerUserID string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.sessions[ownerUserID]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), payload...), true, nil
}

func (s *ShoppingSessionsMemoryStorage) SaveSession(ctx context.Context, ownerUserID string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[ownerUserID] = append([]byte(nil), payload...)
	return nil
}

func (s *ShoppingSessionsMemoryStorage) DeleteSession(ctx context.Context, ownerUserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, ownerUserID)
	return nil
}
