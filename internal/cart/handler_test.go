package cart

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
)

func makeApp(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				claims := jwt.MapClaims{"user_id": id}
				c.Locals("user", &jwt.Token{Claims: claims})
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func TestCartRoutes(t *testing.T) {
	app := makeApp(NewHandler(NewService(NewInMemoryRepository())))

	// unauthorized access is blocked
	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/cart", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated GET, got %d", res.StatusCode)
	}

	// add a line
	req := httptest.NewRequest("POST", "/api/v1/cart", strings.NewReader(`{"variantId":"v-1","unitPrice":"499.50","quantity":2}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for add, got %d", res.StatusCode)
	}

	var items []Line
	json.NewDecoder(res.Body).Decode(&items)
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("unexpected cart after add: %+v", items)
	}
	if !items[0].UnitPrice.Equal(decimal.RequireFromString("499.50")) {
		t.Errorf("unit price = %s", items[0].UnitPrice)
	}

	// clear
	req = httptest.NewRequest("DELETE", "/api/v1/cart", nil)
	req.Header.Set("X-User-ID", "42")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for clear, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/v1/cart", nil)
	req.Header.Set("X-User-ID", "42")
	res, _ = app.Test(req)
	json.NewDecoder(res.Body).Decode(&items)
	if len(items) != 0 {
		t.Fatalf("expected empty cart after clear, got %+v", items)
	}
}

func TestAddLineRejectsInvalid(t *testing.T) {
	app := makeApp(NewHandler(NewService(NewInMemoryRepository())))

	req := httptest.NewRequest("POST", "/api/v1/cart", strings.NewReader(`{"variantId":"","quantity":1}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for missing variant, got %d", res.StatusCode)
	}
}

func TestMergeAndDecrement(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	line := Line{VariantID: "v-1", UnitPrice: decimal.NewFromInt(100), Quantity: 1}
	if _, err := svc.AddLine(7, line); err != nil {
		t.Fatal(err)
	}
	items, err := svc.AddLine(7, line)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("expected merged quantity 2, got %+v", items)
	}

	// decrement below zero removes the line
	line.Quantity = -5
	items, err = svc.AddLine(7, line)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v", items)
	}
}
