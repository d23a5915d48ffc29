// Package settlement drives the checkout across the payment gateway and the
// commerce backend. The two systems share no transaction boundary, so the
// whole point of this package is the window between "money captured at the
// gateway" and "order recorded with the backend": a verified payment whose
// order creation fails must never be dropped.
package settlement

import (
	"errors"
	"time"

	"github.com/aryankhatri/storefront-backend/internal/amount"
	"github.com/aryankhatri/storefront-backend/internal/commerce"
	"github.com/aryankhatri/storefront-backend/internal/gateway"
)

// AttemptState tracks one checkout attempt through the flow.
type AttemptState string

const (
	StateIdle                AttemptState = "IDLE"
	StateAmountComputed      AttemptState = "AMOUNT_COMPUTED"
	StateGatewayOrderCreated AttemptState = "GATEWAY_ORDER_CREATED"
	StateAwaitingConfirm     AttemptState = "AWAITING_CONFIRMATION"
	StateConfirmReceived     AttemptState = "CONFIRMATION_RECEIVED"
	StateSignatureVerified   AttemptState = "SIGNATURE_VERIFIED"
	StateOrderCreated        AttemptState = "ORDER_CREATED"
	StateOrderCreationFailed AttemptState = "ORDER_CREATION_FAILED"
	StateFailed              AttemptState = "FAILED"
	StateAbandoned           AttemptState = "ABANDONED"
)

func (s AttemptState) IsTerminal() bool {
	return s == StateOrderCreated || s == StateFailed || s == StateAbandoned
}

func (s AttemptState) String() string {
	return string(s)
}

// Contact is whoever is checking out. Identity is orthogonal to settlement:
// a signed-in user and a guest both settle through the same path.
type Contact struct {
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Snapshot freezes everything the settlement needs at gateway-order-creation
// time. Later cart or address mutations cannot touch an in-flight attempt;
// both the gateway amount and the commerce order derive from this copy.
type Snapshot struct {
	Lines       []amount.CartLine        `json:"lines"`
	Shipping    amount.ShippingSelection `json:"shipping"`
	Contact     Contact                  `json:"contact"`
	Address     commerce.ShippingAddress `json:"address"`
	AmountMinor int64                    `json:"amountMinor"`
	Currency    string                   `json:"currency"`
	CapturedAt  time.Time                `json:"capturedAt"`
}

// Attempt is the in-memory record of one checkout attempt, keyed by the
// gateway order id. Only PendingSettlement needs durability; an attempt
// abandoned before confirmation leaves no trace, which is safe because no
// money has moved yet.
type Attempt struct {
	SessionKey string
	ClientKey  string
	UserID     int
	Gateway    gateway.OrderRef
	Snapshot   Snapshot
	State      AttemptState
	Stale      bool
	CreatedAt  time.Time
}

// PendingSettlement is the durable recovery record: payment captured and
// verified, commerce order not yet recorded. It survives restarts and is
// deleted only by a successful retry or an explicit dismissal.
type PendingSettlement struct {
	Confirmation gateway.Confirmation `json:"confirmation"`
	Snapshot     Snapshot             `json:"snapshot"`
	UserID       int                  `json:"userId,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	RetryCount   int                  `json:"retryCount"`
}

var (
	// ErrVerificationFailed: the confirmation signature did not match. The
	// confirmation cannot be trusted, so no PendingSettlement is created;
	// the event is logged with the payment id for manual reconciliation.
	ErrVerificationFailed = errors.New("payment verification failed")

	// ErrPendingExists: a previous checkout still has an unresolved pending
	// settlement; it must be retried or dismissed before starting another.
	ErrPendingExists = errors.New("a pending settlement must be resolved first")

	// ErrStaleShipping: the shipping selection was quoted for a different
	// destination pincode than the checkout address ships to.
	ErrStaleShipping = errors.New("shipping selection does not match the address")

	// ErrRetryInFlight guards against double-submission from rapid clicks;
	// backend dedupe on the payment reference is the second line of defense.
	ErrRetryInFlight = errors.New("a retry is already in flight")

	// ErrUnknownAttempt: no registered attempt for that gateway order id.
	ErrUnknownAttempt = errors.New("unknown checkout attempt")
)
