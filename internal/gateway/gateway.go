// Package gateway is the payment-gateway client. The gateway authorizes a
// charge of a fixed amount ahead of time ("gateway order"); the actual
// capture happens in the customer's browser through the gateway widget.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrUnavailable means order creation failed before any money moved, so the
// whole flow is safe to retry from scratch.
var ErrUnavailable = errors.New("payment gateway unavailable")

// OrderRef identifies a gateway-side order created for one checkout attempt.
// It must not be reused once the cart or shipping selection changes.
type OrderRef struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Confirmation is what the gateway widget posts back after a successful
// payment. Opaque until the signature has been verified.
type Confirmation struct {
	OrderID   string `json:"gatewayOrderId"`
	PaymentID string `json:"gatewayPaymentId"`
	Signature string `json:"signature"`
}

type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
	log       *zap.Logger
}

func NewClient(baseURL, keyID, keySecret string, log *zap.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		http:      &http.Client{Timeout: 10 * time.Second},
		log:       log,
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateOrder registers an upcoming charge with the gateway. amount is in
// minor units. Each attempt must pass a fresh receipt reference so a network
// retry cannot produce duplicate gateway orders.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (OrderRef, error) {
	body, err := json.Marshal(createOrderRequest{Amount: amount, Currency: currency, Receipt: receipt})
	if err != nil {
		return OrderRef{}, fmt.Errorf("marshal gateway order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return OrderRef{}, fmt.Errorf("build gateway request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("gateway order creation failed", zap.String("receipt", receipt), zap.Error(err))
		return OrderRef{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		c.log.Warn("gateway rejected order creation",
			zap.Int("status", res.StatusCode),
			zap.String("receipt", receipt))
		return OrderRef{}, fmt.Errorf("%w: status %d", ErrUnavailable, res.StatusCode)
	}

	var out createOrderResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return OrderRef{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if out.ID == "" {
		return OrderRef{}, fmt.Errorf("%w: empty order id", ErrUnavailable)
	}

	c.log.Info("gateway order created",
		zap.String("gateway_order_id", out.ID),
		zap.Int64("amount", out.Amount),
		zap.String("currency", out.Currency))

	return OrderRef{OrderID: out.ID, Amount: out.Amount, Currency: out.Currency}, nil
}
