package amount

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid order amount")

// CartLine is one cart entry frozen for settlement. UnitPrice is in major
// currency units (rupees); conversion to minor units happens in Total.
type CartLine struct {
	VariantID string          `json:"variantId"`
	ProductID string          `json:"productId,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// ShippingSelection is the rate the customer picked for a given address.
type ShippingSelection struct {
	MethodID          string          `json:"methodId"`
	Label             string          `json:"label"`
	Price             decimal.Decimal `json:"price"`
	EstimatedDelivery string          `json:"estimatedDelivery,omitempty"`
	Pincode           string          `json:"pincode,omitempty"`
}

// Total computes the order total in currency minor units (e.g. paise when
// factor is 100). The gateway only accepts integer minor-unit amounts, so
// all rounding happens here, once, with decimal arithmetic.
//
// Rules:
//   - every line must have a positive quantity and a non-negative price
//   - a non-empty cart must never total zero or less
//   - shipping may be nil (pickup / free shipping not yet selected)
//
// Total is pure: identical inputs always produce the identical amount,
// which is what makes retrying gateway-order creation safe.
func Total(lines []CartLine, shipping *ShippingSelection, factor int32) (int64, error) {
	if factor <= 0 {
		return 0, ErrInvalidAmount
	}

	sum := decimal.Zero
	for _, l := range lines {
		if l.Quantity <= 0 || l.UnitPrice.IsNegative() {
			return 0, ErrInvalidAmount
		}
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	f := decimal.NewFromInt32(factor)
	total := sum.Mul(f).Round(0)

	if shipping != nil {
		if shipping.Price.IsNegative() {
			return 0, ErrInvalidAmount
		}
		total = total.Add(shipping.Price.Mul(f).Round(0))
	}

	if len(lines) > 0 && total.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	if len(lines) == 0 {
		return 0, ErrInvalidAmount
	}

	return total.IntPart(), nil
}
