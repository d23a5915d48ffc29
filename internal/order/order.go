package order

// Record is the local trace of a settled order. The commerce backend owns
// the canonical order; we keep just enough to render account history and to
// point support at the right gateway payment.
type Record struct {
	ID               int    `json:"id"`
	UserID           int    `json:"userId,omitempty"`
	CommerceOrderID  string `json:"orderId"`
	OrderNumber      int    `json:"orderNumber"`
	ConfirmationURL  string `json:"confirmationUrl"`
	AmountMinor      int64  `json:"amountMinor"`
	Currency         string `json:"currency"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	CreatedAt        string `json:"createdAt"`
}
