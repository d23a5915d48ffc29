package commerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testInput() OrderInput {
	price := decimal.RequireFromString("500")
	return OrderInput{
		Email:            "buyer@example.com",
		LineItems:        []LineItem{{VariantID: "v-1", Quantity: 2, Price: &price}},
		ShippingAddress:  ShippingAddress{FirstName: "A", LastName: "B", Address1: "1 St", City: "Mumbai", Province: "MH", Country: "India", Zip: "400001", Phone: "9999999999"},
		ShippingLine:     ShippingLine{Title: "Standard", Price: decimal.RequireFromString("100"), Code: "standard"},
		Gateway:          "razorpay",
		GatewayReference: "pay_123",
	}
}

func TestCreateOrder_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/orders.json", r.URL.Path)
		require.Equal(t, "tok", r.Header.Get("X-Storefront-Access-Token"))

		var in OrderInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "paid", in.PaymentStatus)
		assert.Equal(t, "pay_123", in.GatewayReference)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CreatedOrder{OrderID: "o-77", OrderNumber: 1042, ConfirmationURL: "https://shop/orders/o-77"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", zap.NewNop())
	got, err := c.CreateOrder(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, "o-77", got.OrderID)
	assert.Equal(t, 1042, got.OrderNumber)
}

func TestCreateOrder_BackendRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", zap.NewNop())
	_, err := c.CreateOrder(context.Background(), testInput())
	assert.ErrorIs(t, err, ErrOrderCreation)
}

func TestCreateOrder_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, "tok", zap.NewNop())
	_, err := c.CreateOrder(context.Background(), testInput())
	assert.ErrorIs(t, err, ErrOrderCreation)
}

func TestGetProduct_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", zap.NewNop())
	_, err := c.GetProduct(context.Background(), "missing-handle")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/storefront/products.json", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"products": []Product{
			{ID: "p1", Handle: "aqua-ring", Title: "Aqua Ring"},
			{ID: "p2", Handle: "silver-chain", Title: "Silver Chain"},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", zap.NewNop())
	got, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "aqua-ring", got[0].Handle)
}
