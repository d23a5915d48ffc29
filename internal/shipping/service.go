package shipping

import (
	"context"
	"errors"
	"regexp"
	"sort"
)

var ErrInvalidPincode = errors.New("invalid pincode")

var pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// RateSource abstracts the carrier client for tests.
type RateSource interface {
	Serviceability(ctx context.Context, pincode string, weightKg float64) ([]Rate, error)
}

type Service struct {
	carrier RateSource
}

func NewService(carrier RateSource) *Service {
	return &Service{carrier: carrier}
}

// Rates returns shipping options for a destination, cheapest first. Weight
// defaults to half a kilogram when the caller does not supply one.
func (s *Service) Rates(ctx context.Context, pincode string, weightKg float64) ([]Rate, error) {
	if !pincodePattern.MatchString(pincode) {
		return nil, ErrInvalidPincode
	}
	if weightKg <= 0 {
		weightKg = 0.5
	}

	rates, err := s.carrier.Serviceability(ctx, pincode, weightKg)
	if err != nil {
		return nil, err
	}

	sort.Slice(rates, func(i, j int) bool {
		return rates[i].Price.LessThan(rates[j].Price)
	})
	return rates, nil
}
