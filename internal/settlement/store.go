package settlement

import (
	"context"
	"errors"
	"sync"
)

var ErrNoPending = errors.New("no pending settlement")

// Store persists at most one PendingSettlement per client key. Any durable
// key-value storage satisfies the contract as long as it survives a restart.
type Store interface {
	Get(ctx context.Context, key string) (PendingSettlement, error)
	Put(ctx context.Context, key string, p PendingSettlement) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore is used for tests and local scenarios.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]PendingSettlement
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]PendingSettlement)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (PendingSettlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.data[key]
	if !ok {
		return PendingSettlement{}, ErrNoPending
	}
	return p, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, p PendingSettlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = p
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
