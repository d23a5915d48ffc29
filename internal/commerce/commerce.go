// Package commerce is the commerce-backend client. The backend owns the
// product catalog and the canonical order records; this service only ever
// references orders by what the backend returns.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrOrderCreation covers rejection, network failure and timeout while
	// creating an order. By the time this is returned payment may already be
	// captured, so callers must never swallow it.
	ErrOrderCreation = errors.New("commerce order creation failed")

	ErrNotFound = errors.New("not found")
)

type LineItem struct {
	VariantID string           `json:"variantId"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"` // optional, for audit
}

type ShippingAddress struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city"`
	Province    string `json:"province"`
	Country     string `json:"country"`
	Zip         string `json:"zip"`
	Phone       string `json:"phone"`
	CountryCode string `json:"countryCode,omitempty"`
}

type ShippingLine struct {
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Code  string          `json:"code"`
}

// OrderInput is the create-order payload. GatewayReference is the gateway
// payment id; the backend dedupes on it, so submitting the same input twice
// must not produce two orders. That contract is the backend's, not ours,
// and retrying a failed creation relies on it.
type OrderInput struct {
	Email            string          `json:"email"`
	LineItems        []LineItem      `json:"lineItems"`
	ShippingAddress  ShippingAddress `json:"shippingAddress"`
	ShippingLine     ShippingLine    `json:"shippingLine"`
	PaymentStatus    string          `json:"paymentStatus"`
	Gateway          string          `json:"gateway"`
	GatewayReference string          `json:"gatewayReference"`
	Note             string          `json:"note,omitempty"`
}

type CreatedOrder struct {
	OrderID         string `json:"orderId"`
	OrderNumber     int    `json:"orderNumber"`
	ConfirmationURL string `json:"confirmationUrl"`
}

// Product is the subset of catalog data the storefront renders.
type Product struct {
	ID          string          `json:"id"`
	Handle      string          `json:"handle"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	ImageURL    string          `json:"imageUrl"`
	VariantID   string          `json:"variantId"`
	Available   bool            `json:"available"`
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(baseURL, token string, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

// CreateOrder records an already-paid order with the commerce backend.
func (c *Client) CreateOrder(ctx context.Context, in OrderInput) (CreatedOrder, error) {
	if in.PaymentStatus == "" {
		in.PaymentStatus = "paid"
	}

	body, err := json.Marshal(in)
	if err != nil {
		return CreatedOrder{}, fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/orders.json", bytes.NewReader(body))
	if err != nil {
		return CreatedOrder{}, fmt.Errorf("build order request: %w", err)
	}
	c.setHeaders(req)

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Error("commerce order creation failed",
			zap.String("gateway_reference", in.GatewayReference),
			zap.Error(err))
		return CreatedOrder{}, fmt.Errorf("%w: %v", ErrOrderCreation, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		c.log.Error("commerce backend rejected order",
			zap.Int("status", res.StatusCode),
			zap.String("gateway_reference", in.GatewayReference))
		return CreatedOrder{}, fmt.Errorf("%w: status %d", ErrOrderCreation, res.StatusCode)
	}

	var out CreatedOrder
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return CreatedOrder{}, fmt.Errorf("%w: decode response: %v", ErrOrderCreation, err)
	}
	if out.OrderID == "" {
		return CreatedOrder{}, fmt.Errorf("%w: empty order id", ErrOrderCreation)
	}

	c.log.Info("commerce order created",
		zap.String("order_id", out.OrderID),
		zap.Int("order_number", out.OrderNumber),
		zap.String("gateway_reference", in.GatewayReference))

	return out, nil
}

// ListProducts returns the storefront catalog.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	return c.fetchProducts(ctx, "/storefront/products.json")
}

// ListCollection returns the products of one collection by handle.
func (c *Client) ListCollection(ctx context.Context, handle string) ([]Product, error) {
	return c.fetchProducts(ctx, "/storefront/collections/"+handle+"/products.json")
}

// GetProduct fetches one product by handle.
func (c *Client) GetProduct(ctx context.Context, handle string) (Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/storefront/products/"+handle+".json", nil)
	if err != nil {
		return Product{}, fmt.Errorf("build product request: %w", err)
	}
	c.setHeaders(req)

	res, err := c.http.Do(req)
	if err != nil {
		return Product{}, fmt.Errorf("fetch product: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return Product{}, ErrNotFound
	}
	if res.StatusCode != http.StatusOK {
		return Product{}, fmt.Errorf("fetch product: status %d", res.StatusCode)
	}

	var out struct {
		Product Product `json:"product"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return Product{}, fmt.Errorf("decode product: %w", err)
	}
	return out.Product, nil
}

func (c *Client) fetchProducts(ctx context.Context, path string) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	c.setHeaders(req)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: status %d", res.StatusCode)
	}

	var out struct {
		Products []Product `json:"products"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return out.Products, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Storefront-Access-Token", c.token)
}
