package cart

import "errors"

var ErrInvalidLine = errors.New("invalid cart line")

// Service orchestrates cart operations.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) AddLine(userID int, line Line) ([]Line, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	if line.VariantID == "" || line.UnitPrice.IsNegative() {
		return nil, ErrInvalidLine
	}
	// zero qty does nothing, but still returns the current cart
	if line.Quantity == 0 {
		return s.repo.GetCart(userID)
	}
	return s.repo.AddLine(userID, line)
}

func (s *Service) GetCart(userID int) ([]Line, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetCart(userID)
}

// ClearCart empties a user's cart, typically after a successful settlement.
func (s *Service) ClearCart(userID int) error {
	if userID <= 0 {
		return ErrNotFound
	}
	return s.repo.ClearCart(userID)
}
