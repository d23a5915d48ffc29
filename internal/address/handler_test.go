package address

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
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

const fullAddress = `{"label":"Home","firstName":"Aryan","address1":"14 MG Road","city":"Bengaluru","province":"KA","zip":"560001","country":"India","phone":"9999999999"}`

func TestAddressCRUD(t *testing.T) {
	app := makeApp(NewHandler(NewService(NewInMemoryRepository())))

	// unauthorized
	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/addresses", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}

	// create
	req := httptest.NewRequest("POST", "/api/v1/addresses", strings.NewReader(fullAddress))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	var created Address
	json.NewDecoder(res.Body).Decode(&created)
	if created.AddressID <= 0 || created.UserID != 7 {
		t.Fatalf("unexpected created address %+v", created)
	}

	// list
	req = httptest.NewRequest("GET", "/api/v1/addresses", nil)
	req.Header.Set("X-User-ID", "7")
	res, _ = app.Test(req)
	var addrs []Address
	json.NewDecoder(res.Body).Decode(&addrs)
	if len(addrs) != 1 {
		t.Fatalf("expected 1 address, got %d", len(addrs))
	}

	// update
	updated := strings.Replace(fullAddress, "14 MG Road", "22 Brigade Road", 1)
	req = httptest.NewRequest("PUT", "/api/v1/addresses/"+strconv.Itoa(created.AddressID), strings.NewReader(updated))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for update, got %d", res.StatusCode)
	}
	var got Address
	json.NewDecoder(res.Body).Decode(&got)
	if got.Address1 != "22 Brigade Road" {
		t.Errorf("update not applied: %+v", got)
	}

	// delete
	req = httptest.NewRequest("DELETE", "/api/v1/addresses/"+strconv.Itoa(created.AddressID), nil)
	req.Header.Set("X-User-ID", "7")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for delete, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/v1/addresses", nil)
	req.Header.Set("X-User-ID", "7")
	res, _ = app.Test(req)
	json.NewDecoder(res.Body).Decode(&addrs)
	if len(addrs) != 0 {
		t.Fatalf("expected empty address book, got %+v", addrs)
	}
}

func TestAddAddressMissingFields(t *testing.T) {
	app := makeApp(NewHandler(NewService(NewInMemoryRepository())))

	req := httptest.NewRequest("POST", "/api/v1/addresses", strings.NewReader(`{"firstName":"A"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
}

func TestDeleteOtherUsersAddress(t *testing.T) {
	repo := NewInMemoryRepository()
	app := makeApp(NewHandler(NewService(repo)))

	req := httptest.NewRequest("POST", "/api/v1/addresses", strings.NewReader(fullAddress))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ := app.Test(req)
	var created Address
	json.NewDecoder(res.Body).Decode(&created)

	// a different user cannot delete it
	req = httptest.NewRequest("DELETE", "/api/v1/addresses/"+strconv.Itoa(created.AddressID), nil)
	req.Header.Set("X-User-ID", "8")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}
