package order

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("order not found")

// Repository defines persistence for settled-order records.
type Repository interface {
	Create(rec Record) (Record, error)
	ListByUser(userID int) ([]Record, error)
}

// InMemoryRepository is used for tests.
type InMemoryRepository struct {
	mu   sync.Mutex
	next int
	recs []Record
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{next: 1}
}

func (r *InMemoryRepository) Create(rec Record) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = r.next
	r.next++
	r.recs = append(r.recs, rec)
	return rec, nil
}

func (r *InMemoryRepository) ListByUser(userID int) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, 0)
	for _, rec := range r.recs {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}
