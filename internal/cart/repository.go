package cart

import (
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("cart not found")

// Line is one variant in a cart. The unit price is captured when the line
// is added so totals stay stable while the shopper browses.
type Line struct {
	VariantID string          `json:"variantId"`
	ProductID string          `json:"productId,omitempty"`
	Title     string          `json:"title,omitempty"`
	Image     string          `json:"image,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Repository provides access to cart storage. Quantities merge on add, so
// sending the same variant twice increments it.
type Repository interface {
	AddLine(userID int, line Line) ([]Line, error)
	GetCart(userID int) ([]Line, error)
	ClearCart(userID int) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[int]map[string]Line
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{carts: make(map[int]map[string]Line)}
}

func (r *InMemoryRepository) AddLine(userID int, line Line) ([]Line, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.carts[userID]
	if items == nil {
		items = make(map[string]Line)
		r.carts[userID] = items
	}

	merged := mergeLine(items, line)
	if merged.Quantity <= 0 {
		delete(items, line.VariantID)
	} else {
		items[line.VariantID] = merged
	}
	return sortedLines(items), nil
}

func (r *InMemoryRepository) GetCart(userID int) ([]Line, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedLines(r.carts[userID]), nil
}

func (r *InMemoryRepository) ClearCart(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

func mergeLine(items map[string]Line, line Line) Line {
	current, ok := items[line.VariantID]
	if !ok {
		return line
	}
	current.Quantity += line.Quantity
	// refresh display fields; the latest add wins
	if line.Title != "" {
		current.Title = line.Title
	}
	if line.Image != "" {
		current.Image = line.Image
	}
	if !line.UnitPrice.IsZero() {
		current.UnitPrice = line.UnitPrice
	}
	return current
}

func sortedLines(items map[string]Line) []Line {
	out := make([]Line, 0, len(items))
	for _, l := range items {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VariantID < out[j].VariantID })
	return out
}
