package address

import (
	"errors"
	"time"
)

var ErrMissingFields = errors.New("address is missing required fields")

// Service orchestrates address book operations.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetAddresses(userID int) ([]Address, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetAddresses(userID)
}

func (s *Service) AddAddress(addr Address) (Address, error) {
	if addr.UserID <= 0 {
		return Address{}, ErrNotFound
	}
	if err := validate(addr); err != nil {
		return Address{}, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	addr.CreatedAt = now
	addr.UpdatedAt = now
	return s.repo.AddAddress(addr)
}

func (s *Service) UpdateAddress(addr Address) (Address, error) {
	if addr.UserID <= 0 || addr.AddressID <= 0 {
		return Address{}, ErrNotFound
	}
	if err := validate(addr); err != nil {
		return Address{}, err
	}
	addr.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return s.repo.UpdateAddress(addr)
}

func (s *Service) DeleteAddress(userID, addressID int) error {
	if userID <= 0 || addressID <= 0 {
		return ErrNotFound
	}
	return s.repo.DeleteAddress(userID, addressID)
}

func validate(addr Address) error {
	if addr.FirstName == "" || addr.Address1 == "" || addr.City == "" ||
		addr.Province == "" || addr.Zip == "" || addr.Country == "" || addr.Phone == "" {
		return ErrMissingFields
	}
	return nil
}
