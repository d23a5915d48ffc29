package order

import "errors"

// Service provides business logic for settled-order records.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// RecordSettled stores the local trace of a settled order. Records are
// written by the settlement flow, never from trusted client totals.
func (s *Service) RecordSettled(rec Record) (Record, error) {
	if rec.CommerceOrderID == "" || rec.GatewayPaymentID == "" {
		return Record{}, errors.New("order record missing identifiers")
	}
	return s.repo.Create(rec)
}

// ListByUser returns the user's settled orders, newest first.
func (s *Service) ListByUser(userID int) ([]Record, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.ListByUser(userID)
}
