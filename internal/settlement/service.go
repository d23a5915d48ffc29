package settlement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aryankhatri/storefront-backend/internal/amount"
	"github.com/aryankhatri/storefront-backend/internal/commerce"
	"github.com/aryankhatri/storefront-backend/internal/gateway"
	"github.com/aryankhatri/storefront-backend/internal/order"
	"github.com/aryankhatri/storefront-backend/internal/signature"
)

// GatewayAPI is the slice of the payment gateway the orchestrator needs.
type GatewayAPI interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (gateway.OrderRef, error)
}

// CommerceAPI is the slice of the commerce backend the orchestrator needs.
type CommerceAPI interface {
	CreateOrder(ctx context.Context, in commerce.OrderInput) (commerce.CreatedOrder, error)
}

// OrderRecorder keeps a local record of settled orders for account history.
type OrderRecorder interface {
	RecordSettled(rec order.Record) (order.Record, error)
}

// CartClearer empties a signed-in user's cart; invoked only on terminal
// success.
type CartClearer interface {
	ClearCart(userID int) error
}

type Config struct {
	Secret          string // gateway signing secret, server-side only
	Currency        string
	MinorUnitFactor int32
	GatewayName     string
}

// Service is the settlement orchestrator. Attempts live in memory (nothing
// durable exists before a confirmation verifies); pending settlements go
// through the durable Store.
type Service struct {
	gateway  GatewayAPI
	commerce CommerceAPI
	store    Store
	orders   OrderRecorder // optional
	carts    CartClearer   // optional
	cfg      Config
	log      *zap.Logger

	mu       sync.Mutex
	attempts map[string]*Attempt // keyed by gateway order id
	byClient map[string]string   // client key -> live gateway order id
	inflight map[string]bool     // retry guard per client key
}

func NewService(gw GatewayAPI, backend CommerceAPI, store Store, orders OrderRecorder, carts CartClearer, cfg Config, log *zap.Logger) *Service {
	if cfg.GatewayName == "" {
		cfg.GatewayName = "razorpay"
	}
	return &Service{
		gateway:  gw,
		commerce: backend,
		store:    store,
		orders:   orders,
		carts:    carts,
		cfg:      cfg,
		log:      log,
		attempts: make(map[string]*Attempt),
		byClient: make(map[string]string),
		inflight: make(map[string]bool),
	}
}

type BeginInput struct {
	ClientKey string
	UserID    int // 0 for guest checkout
	Lines     []amount.CartLine
	Shipping  amount.ShippingSelection
	Contact   Contact
	Address   commerce.ShippingAddress
}

// Begin computes the total, creates a gateway order for it and registers the
// attempt. The cheapest rejection (bad amount) happens before any external
// call. A previous unconfirmed attempt for the same client is superseded:
// its GatewayOrderRef is never reused once the cart may have changed.
func (s *Service) Begin(ctx context.Context, in BeginInput) (*Attempt, error) {
	switch _, err := s.store.Get(ctx, in.ClientKey); {
	case err == nil:
		return nil, ErrPendingExists
	case !errors.Is(err, ErrNoPending):
		// a store outage must not let a new checkout start over an
		// unresolved pending settlement
		return nil, fmt.Errorf("pending settlement lookup: %w", err)
	}

	// the rate was quoted for a destination pincode; it cannot price
	// shipping to a different one
	if in.Shipping.Pincode != "" && in.Shipping.Pincode != in.Address.Zip {
		return nil, ErrStaleShipping
	}

	total, err := amount.Total(in.Lines, &in.Shipping, s.cfg.MinorUnitFactor)
	if err != nil {
		return nil, err
	}

	// fresh receipt per attempt so a network retry cannot create duplicates
	receipt := "rcpt_" + uuid.NewString()
	ref, err := s.gateway.CreateOrder(ctx, total, s.cfg.Currency, receipt)
	if err != nil {
		return nil, err
	}

	attempt := &Attempt{
		SessionKey: uuid.NewString(),
		ClientKey:  in.ClientKey,
		UserID:     in.UserID,
		Gateway:    ref,
		State:      StateAwaitingConfirm,
		CreatedAt:  time.Now().UTC(),
		Snapshot: Snapshot{
			Lines:       in.Lines,
			Shipping:    in.Shipping,
			Contact:     in.Contact,
			Address:     in.Address,
			AmountMinor: total,
			Currency:    s.cfg.Currency,
			CapturedAt:  time.Now().UTC(),
		},
	}

	s.mu.Lock()
	if oldID, ok := s.byClient[in.ClientKey]; ok {
		if old, ok := s.attempts[oldID]; ok && !old.State.IsTerminal() {
			old.Stale = true
			s.log.Info("superseding stale checkout attempt",
				zap.String("old_gateway_order_id", oldID),
				zap.String("new_gateway_order_id", ref.OrderID))
		}
	}
	s.attempts[ref.OrderID] = attempt
	s.byClient[in.ClientKey] = ref.OrderID
	s.mu.Unlock()

	s.log.Info("checkout attempt started",
		zap.String("gateway_order_id", ref.OrderID),
		zap.Int64("amount_minor", total),
		zap.String("currency", s.cfg.Currency))

	return attempt, nil
}

type ConfirmResult struct {
	Order            commerce.CreatedOrder
	Pending          *PendingSettlement
	GatewayPaymentID string
}

// Confirm handles the gateway widget's completion callback. The commerce
// order is created only after the signature verifies, and always from the
// attempt's snapshot, never from live cart state. If order creation fails
// after a verified confirmation, a PendingSettlement is persisted before
// the error is surfaced.
func (s *Service) Confirm(ctx context.Context, conf gateway.Confirmation) (ConfirmResult, error) {
	s.mu.Lock()
	attempt, ok := s.attempts[conf.OrderID]
	var stale bool
	if ok {
		attempt.State = StateConfirmReceived
		stale = attempt.Stale
	}
	s.mu.Unlock()
	if !ok {
		return ConfirmResult{}, ErrUnknownAttempt
	}

	if !signature.Verify(conf.OrderID, conf.PaymentID, conf.Signature, s.cfg.Secret) {
		s.setState(attempt, StateFailed)
		s.dropAttempt(attempt)
		// flagged for manual reconciliation: a charge may exist at the
		// gateway, but an unverified confirmation must not be treated
		// as captured payment
		s.log.Warn("payment signature verification failed",
			zap.String("gateway_order_id", conf.OrderID),
			zap.String("gateway_payment_id", conf.PaymentID))
		return ConfirmResult{GatewayPaymentID: conf.PaymentID}, ErrVerificationFailed
	}

	s.setState(attempt, StateSignatureVerified)
	if stale {
		// the customer paid on a superseded attempt; its snapshot and
		// amount are still consistent with each other, so settle it
		s.log.Info("confirmation arrived for superseded attempt",
			zap.String("gateway_order_id", conf.OrderID))
	}

	created, err := s.commerce.CreateOrder(ctx, orderInput(attempt.Snapshot, conf.PaymentID, s.cfg.GatewayName))
	if err != nil {
		s.setState(attempt, StateOrderCreationFailed)
		pending := PendingSettlement{
			Confirmation: conf,
			Snapshot:     attempt.Snapshot,
			UserID:       attempt.UserID,
			CreatedAt:    time.Now().UTC(),
		}
		if putErr := s.store.Put(ctx, attempt.ClientKey, pending); putErr != nil {
			// double fault: money captured, order missing, record not
			// persisted. The payment id in this log line is the last
			// resort for support.
			s.log.Error("FAILED TO PERSIST PENDING SETTLEMENT",
				zap.String("gateway_payment_id", conf.PaymentID),
				zap.String("gateway_order_id", conf.OrderID),
				zap.Error(putErr))
		}
		s.log.Error("order creation failed after verified payment",
			zap.String("gateway_payment_id", conf.PaymentID),
			zap.Error(err))
		return ConfirmResult{Pending: &pending, GatewayPaymentID: conf.PaymentID}, err
	}

	s.setState(attempt, StateOrderCreated)
	s.settle(ctx, attempt.ClientKey, attempt.UserID, created, attempt.Snapshot, conf.PaymentID)
	s.dropAttempt(attempt)

	return ConfirmResult{Order: created, GatewayPaymentID: conf.PaymentID}, nil
}

// Fail handles the gateway widget's failure callback (card declined and the
// like). Terminal for the attempt; nothing was charged, nothing persists.
func (s *Service) Fail(gatewayOrderID, description string) {
	s.mu.Lock()
	attempt, ok := s.attempts[gatewayOrderID]
	if ok {
		attempt.State = StateFailed
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	s.dropAttempt(attempt)
	s.log.Info("payment failed at gateway",
		zap.String("gateway_order_id", gatewayOrderID),
		zap.String("description", description))
}

// Pending returns the client's unresolved settlement, if any.
func (s *Service) Pending(ctx context.Context, clientKey string) (PendingSettlement, error) {
	return s.store.Get(ctx, clientKey)
}

// Retry re-runs commerce order creation from the stored record. It never
// re-runs payment: the exact original confirmation and snapshot are reused,
// and the backend dedupes on the gateway payment id, so repeated retries
// cannot produce duplicate orders.
func (s *Service) Retry(ctx context.Context, clientKey string) (ConfirmResult, error) {
	s.mu.Lock()
	if s.inflight[clientKey] {
		s.mu.Unlock()
		return ConfirmResult{}, ErrRetryInFlight
	}
	s.inflight[clientKey] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inflight, clientKey)
		s.mu.Unlock()
	}()

	pending, err := s.store.Get(ctx, clientKey)
	if err != nil {
		return ConfirmResult{}, err
	}

	created, err := s.commerce.CreateOrder(ctx, orderInput(pending.Snapshot, pending.Confirmation.PaymentID, s.cfg.GatewayName))
	if err != nil {
		pending.RetryCount++
		if putErr := s.store.Put(ctx, clientKey, pending); putErr != nil {
			s.log.Error("failed to update pending settlement after retry",
				zap.String("gateway_payment_id", pending.Confirmation.PaymentID),
				zap.Error(putErr))
		}
		s.log.Warn("settlement retry failed",
			zap.String("gateway_payment_id", pending.Confirmation.PaymentID),
			zap.Int("retry_count", pending.RetryCount),
			zap.Error(err))
		return ConfirmResult{Pending: &pending, GatewayPaymentID: pending.Confirmation.PaymentID}, err
	}

	s.settle(ctx, clientKey, pending.UserID, created, pending.Snapshot, pending.Confirmation.PaymentID)
	return ConfirmResult{Order: created, GatewayPaymentID: pending.Confirmation.PaymentID}, nil
}

// Dismiss deletes the pending record without contacting any backend. It does
// not refund or cancel anything; support has to reconcile manually.
func (s *Service) Dismiss(ctx context.Context, clientKey string) error {
	pending, err := s.store.Get(ctx, clientKey)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, clientKey); err != nil {
		return err
	}
	s.log.Warn("pending settlement dismissed, manual reconciliation required",
		zap.String("gateway_payment_id", pending.Confirmation.PaymentID),
		zap.Int("retry_count", pending.RetryCount))
	return nil
}

// settle runs the success-side effects: delete the recovery record, record
// the order locally, clear the signed-in user's cart.
func (s *Service) settle(ctx context.Context, clientKey string, userID int, created commerce.CreatedOrder, snap Snapshot, paymentID string) {
	if err := s.store.Delete(ctx, clientKey); err != nil {
		s.log.Warn("failed to delete pending settlement", zap.Error(err))
	}

	if s.orders != nil {
		rec := order.Record{
			UserID:           userID,
			CommerceOrderID:  created.OrderID,
			OrderNumber:      created.OrderNumber,
			ConfirmationURL:  created.ConfirmationURL,
			AmountMinor:      snap.AmountMinor,
			Currency:         snap.Currency,
			GatewayPaymentID: paymentID,
			CreatedAt:        time.Now().UTC().Format(time.RFC3339),
		}
		if _, err := s.orders.RecordSettled(rec); err != nil {
			s.log.Warn("failed to record settled order",
				zap.String("commerce_order_id", created.OrderID),
				zap.Error(err))
		}
	}

	if s.carts != nil && userID > 0 {
		if err := s.carts.ClearCart(userID); err != nil {
			s.log.Warn("failed to clear cart after settlement",
				zap.Int("user_id", userID),
				zap.Error(err))
		}
	}

	s.log.Info("settlement complete",
		zap.String("commerce_order_id", created.OrderID),
		zap.String("gateway_payment_id", paymentID))
}

// setState guards Attempt mutations against a superseding Begin marking the
// same attempt stale concurrently.
func (s *Service) setState(a *Attempt, st AttemptState) {
	s.mu.Lock()
	a.State = st
	s.mu.Unlock()
}

func (s *Service) dropAttempt(a *Attempt) {
	s.mu.Lock()
	delete(s.attempts, a.Gateway.OrderID)
	if s.byClient[a.ClientKey] == a.Gateway.OrderID {
		delete(s.byClient, a.ClientKey)
	}
	s.mu.Unlock()
}

func orderInput(snap Snapshot, paymentID, gatewayName string) commerce.OrderInput {
	items := make([]commerce.LineItem, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		price := l.UnitPrice
		items = append(items, commerce.LineItem{
			VariantID: l.VariantID,
			Quantity:  l.Quantity,
			Price:     &price,
		})
	}

	code := snap.Shipping.MethodID
	if code == "" {
		code = "standard"
	}

	return commerce.OrderInput{
		Email:     snap.Contact.Email,
		LineItems: items,
		ShippingAddress: snap.Address,
		ShippingLine: commerce.ShippingLine{
			Title: snap.Shipping.Label,
			Price: snap.Shipping.Price,
			Code:  code,
		},
		PaymentStatus:    "paid",
		Gateway:          gatewayName,
		GatewayReference: paymentID,
		Note:             "Order created via web checkout",
	}
}
