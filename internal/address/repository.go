package address

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("address not found")

type Repository interface {
	GetAddresses(userID int) ([]Address, error)
	AddAddress(addr Address) (Address, error)
	UpdateAddress(addr Address) (Address, error)
	DeleteAddress(userID, addressID int) error
}

// InMemoryRepository for tests
type InMemoryRepository struct {
	mu     sync.RWMutex
	data   map[int][]Address
	nextID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{data: make(map[int][]Address), nextID: 1}
}

func (r *InMemoryRepository) GetAddresses(userID int) ([]Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Address(nil), r.data[userID]...), nil
}

func (r *InMemoryRepository) AddAddress(addr Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	addr.AddressID = r.nextID
	r.nextID++
	r.data[addr.UserID] = append(r.data[addr.UserID], addr)
	return addr, nil
}

func (r *InMemoryRepository) UpdateAddress(addr Address) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.data[addr.UserID] {
		if a.AddressID == addr.AddressID {
			addr.CreatedAt = a.CreatedAt
			r.data[addr.UserID][i] = addr
			return addr, nil
		}
	}
	return Address{}, ErrNotFound
}

func (r *InMemoryRepository) DeleteAddress(userID, addressID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	addrs := r.data[userID]
	for i, a := range addrs {
		if a.AddressID == addressID {
			r.data[userID] = append(addrs[:i], addrs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
