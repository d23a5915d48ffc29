package order

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, userID int) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func setupApp(repo Repository) *fiber.App {
	os.Setenv("JWT_SECRET", testSecret)
	a := fiber.New()
	a.Use(jwtware.New(jwtware.Config{SigningKey: []byte(testSecret)}))
	NewHandler(NewService(repo)).RegisterProtectedRoutes(a)
	return a
}

func TestGetOrders_ReturnsUserOrders(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.Create(Record{UserID: 7, CommerceOrderID: "o-1", OrderNumber: 1001, AmountMinor: 110000, Currency: "INR", GatewayPaymentID: "pay_1", CreatedAt: "2026-01-01T00:00:00Z"})
	repo.Create(Record{UserID: 8, CommerceOrderID: "o-2", OrderNumber: 1002, AmountMinor: 5000, Currency: "INR", GatewayPaymentID: "pay_2", CreatedAt: "2026-01-02T00:00:00Z"})

	a := setupApp(repo)
	req := httptest.NewRequest("GET", "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, 7))

	res, err := a.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}

	var got []Record
	json.NewDecoder(res.Body).Decode(&got)
	if len(got) != 1 {
		t.Fatalf("expected 1 order, got %d", len(got))
	}
	if got[0].CommerceOrderID != "o-1" {
		t.Errorf("unexpected order %q", got[0].CommerceOrderID)
	}
}

func TestGetOrders_Unauthorized(t *testing.T) {
	a := setupApp(NewInMemoryRepository())
	req := httptest.NewRequest("GET", "/api/v1/orders", nil)

	res, err := a.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode == 200 {
		t.Fatal("expected auth failure without token")
	}
}
