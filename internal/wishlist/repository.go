package wishlist

import (
	"errors"
	"sync"
)

var (
	ErrNotFound      = errors.New("wishlist not found")
	ErrAlreadySaved  = errors.New("product already in wishlist")
	ErrMissingHandle = errors.New("product handle is required")
)

// Repository stores wishlists as ordered product handle lists.
type Repository interface {
	Get(userID int) ([]string, error)
	Add(userID int, handle string) ([]string, error)
	Remove(userID int, handle string) ([]string, error)
}

type InMemoryRepository struct {
	mu   sync.RWMutex
	data map[int][]string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{data: make(map[int][]string)}
}

func (r *InMemoryRepository) Get(userID int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.data[userID]...), nil
}

func (r *InMemoryRepository) Add(userID int, handle string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.data[userID] {
		if h == handle {
			return nil, ErrAlreadySaved
		}
	}
	r.data[userID] = append(r.data[userID], handle)
	return append([]string(nil), r.data[userID]...), nil
}

func (r *InMemoryRepository) Remove(userID int, handle string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	handles := r.data[userID]
	for i, h := range handles {
		if h == handle {
			r.data[userID] = append(handles[:i], handles[i+1:]...)
			return append([]string(nil), r.data[userID]...), nil
		}
	}
	return nil, ErrNotFound
}
