package settlement

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/aryankhatri/storefront-backend/internal/amount"
	"github.com/aryankhatri/storefront-backend/internal/commerce"
	"github.com/aryankhatri/storefront-backend/internal/gateway"
	"github.com/aryankhatri/storefront-backend/internal/user"
)

// Handler exposes the checkout flow. Guest checkout is permitted: when a
// bearer token is present the attempt attaches to the account, otherwise
// the client holds a session key returned from the begin call.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Post("/api/v1/checkout", h.begin)
	app.Post("/api/v1/checkout/confirm", h.confirm)
	app.Post("/api/v1/checkout/failed", h.paymentFailed)
	app.Get("/api/v1/checkout/pending", h.getPending)
	app.Post("/api/v1/checkout/retry", h.retry)
	app.Delete("/api/v1/checkout/pending", h.dismiss)
}

type beginRequest struct {
	SessionKey string                   `json:"sessionKey,omitempty"`
	Cart       []amount.CartLine        `json:"cart"`
	Shipping   amount.ShippingSelection `json:"shippingOption"`
	Contact    Contact                  `json:"contact"`
	Address    commerce.ShippingAddress `json:"shippingAddress"`
}

type beginResponse struct {
	SessionKey     string `json:"sessionKey"`
	GatewayOrderID string `json:"gatewayOrderId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
}

func (h *Handler) begin(c *fiber.Ctx) error {
	payload := new(beginRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if len(payload.Cart) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "cart cannot be empty"})
	}
	if payload.Shipping.MethodID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "please select a shipping method"})
	}
	if payload.Contact.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "email is required"})
	}
	if payload.Address.Phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "phone number is required"})
	}

	userID, clientKey := h.clientKey(c, payload.SessionKey)

	attempt, err := h.service.Begin(c.Context(), BeginInput{
		ClientKey: clientKey,
		UserID:    userID,
		Lines:     payload.Cart,
		Shipping:  payload.Shipping,
		Contact:   payload.Contact,
		Address:   payload.Address,
	})
	switch {
	case errors.Is(err, ErrPendingExists):
		pending, _ := h.service.Pending(c.Context(), clientKey)
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "a previous order is still waiting to be completed",
			"pending": pendingView(pending),
		})
	case errors.Is(err, amount.ErrInvalidAmount):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid order amount"})
	case errors.Is(err, ErrStaleShipping):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "shipping rates are out of date for this address, please refresh them"})
	case errors.Is(err, gateway.ErrUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "payment initialization failed, please try again"})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	// the session key travels back so guests can resume pending settlements
	key := clientKey
	if userID > 0 {
		key = attempt.SessionKey
	}
	return c.JSON(beginResponse{
		SessionKey:     key,
		GatewayOrderID: attempt.Gateway.OrderID,
		Amount:         attempt.Gateway.Amount,
		Currency:       attempt.Gateway.Currency,
	})
}

func (h *Handler) confirm(c *fiber.Ctx) error {
	payload := new(gateway.Confirmation)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	result, err := h.service.Confirm(c.Context(), *payload)
	switch {
	case errors.Is(err, ErrUnknownAttempt):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "unknown checkout attempt"})
	case errors.Is(err, ErrVerificationFailed):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "payment verification failed",
		})
	case errors.Is(err, commerce.ErrOrderCreation):
		// real money is at stake here: surface the payment id and keep the
		// retry affordance alive until the record is resolved or dismissed
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": fmt.Sprintf("payment succeeded but order creation failed; contact support with payment ID %s", result.GatewayPaymentID),
			"gatewayPaymentId": result.GatewayPaymentID,
			"retryable":        true,
			"pending":          pendingView(*result.Pending),
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(fiber.Map{
		"orderId":         result.Order.OrderID,
		"orderNumber":     result.Order.OrderNumber,
		"confirmationUrl": result.Order.ConfirmationURL,
	})
}

type paymentFailedRequest struct {
	GatewayOrderID   string `json:"gatewayOrderId"`
	ErrorDescription string `json:"errorDescription"`
}

func (h *Handler) paymentFailed(c *fiber.Ctx) error {
	payload := new(paymentFailedRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	h.service.Fail(payload.GatewayOrderID, payload.ErrorDescription)
	return c.JSON(fiber.Map{"message": "payment failed, nothing was charged; you can try again"})
}

func (h *Handler) getPending(c *fiber.Ctx) error {
	_, clientKey := h.clientKey(c, c.Query("sessionKey"))

	pending, err := h.service.Pending(c.Context(), clientKey)
	if errors.Is(err, ErrNoPending) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no pending settlement"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(pendingView(pending))
}

type retryRequest struct {
	SessionKey string `json:"sessionKey,omitempty"`
}

func (h *Handler) retry(c *fiber.Ctx) error {
	payload := new(retryRequest)
	// body is optional for signed-in users
	_ = c.BodyParser(payload)
	_, clientKey := h.clientKey(c, payload.SessionKey)

	result, err := h.service.Retry(c.Context(), clientKey)
	switch {
	case errors.Is(err, ErrNoPending):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no pending settlement"})
	case errors.Is(err, ErrRetryInFlight):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "retry already in progress"})
	case errors.Is(err, commerce.ErrOrderCreation):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": fmt.Sprintf("order creation failed again; contact support with payment ID %s", result.GatewayPaymentID),
			"gatewayPaymentId": result.GatewayPaymentID,
			"retryable":        true,
			"pending":          pendingView(*result.Pending),
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(fiber.Map{
		"orderId":         result.Order.OrderID,
		"orderNumber":     result.Order.OrderNumber,
		"confirmationUrl": result.Order.ConfirmationURL,
	})
}

func (h *Handler) dismiss(c *fiber.Ctx) error {
	_, clientKey := h.clientKey(c, c.Query("sessionKey"))

	err := h.service.Dismiss(c.Context(), clientKey)
	if errors.Is(err, ErrNoPending) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no pending settlement"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "pending settlement dismissed"})
}

// clientKey resolves who this checkout belongs to: the account for signed-in
// users, a client-held session key for guests.
func (h *Handler) clientKey(c *fiber.Ctx, sessionKey string) (int, string) {
	if userID, err := user.GetUserIDFromCtx(c); err == nil {
		return userID, fmt.Sprintf("user:%d", userID)
	}
	if sessionKey != "" {
		return 0, sessionKey
	}
	return 0, uuid.NewString()
}

func pendingView(p PendingSettlement) fiber.Map {
	return fiber.Map{
		"gatewayOrderId":   p.Confirmation.OrderID,
		"gatewayPaymentId": p.Confirmation.PaymentID,
		"amountMinor":      p.Snapshot.AmountMinor,
		"currency":         p.Snapshot.Currency,
		"createdAt":        p.CreatedAt,
		"retryCount":       p.RetryCount,
	}
}
