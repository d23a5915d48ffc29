package user

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// helper to build an app with a simple "bootstrap" middleware that injects a
// jwt.Token into locals when the X-User-ID header is provided. This avoids
// pulling in the full jwtware middleware and keeps tests lightweight.
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
	h.RegisterPublicRoutes(app)
	h.RegisterProtectedRoutes(app)
	return app
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestSignUpAndSignIn(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := makeApp(NewHandler(NewService(NewInMemoryRepository(nil))))

	body := `{"email":"a@example.com","password":"hunter22","firstName":"Aryan","lastName":"K","phone":"9999999999"}`
	req := httptest.NewRequest("POST", "/api/v1/sign-up", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}

	// duplicate email is rejected
	req = httptest.NewRequest("POST", "/api/v1/sign-up", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req, -1)
	if res.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/sign-in", strings.NewReader(`{"email":"a@example.com","password":"hunter22"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for sign-in, got %d", res.StatusCode)
	}
	var out map[string]any
	json.NewDecoder(res.Body).Decode(&out)
	if out["token"] == "" || out["token"] == nil {
		t.Fatal("expected a token in the sign-in response")
	}
	u, _ := out["user"].(map[string]any)
	if u["password"] != nil && u["password"] != "" {
		t.Error("password must not be echoed back")
	}
}

func TestSignInWrongPassword(t *testing.T) {
	repo := NewInMemoryRepository([]User{{ID: 7, Email: "j@example.com", Password: hashed(t, "right")}})
	app := makeApp(NewHandler(NewService(repo)))

	req := httptest.NewRequest("POST", "/api/v1/sign-in", strings.NewReader(`{"email":"j@example.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req, -1)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}
}

func TestProfile(t *testing.T) {
	addr := 99
	repo := NewInMemoryRepository([]User{{ID: 7, Email: "j@example.com", FirstName: "Jenny", LastName: "Test", Phone: "123", DefaultAddressID: &addr}})
	app := makeApp(NewHandler(NewService(repo)))

	// unauthorized request yields 401
	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/profile", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}

	req := httptest.NewRequest("GET", "/api/v1/profile", nil)
	req.Header.Set("X-User-ID", "7")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var got User
	json.NewDecoder(res.Body).Decode(&got)
	if got.Email != "j@example.com" || got.DefaultAddressID == nil || *got.DefaultAddressID != 99 {
		t.Errorf("unexpected profile %+v", got)
	}

	// partial update
	req = httptest.NewRequest("PATCH", "/api/v1/profile", strings.NewReader(`{"phone":"456"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for update, got %d", res.StatusCode)
	}
	json.NewDecoder(res.Body).Decode(&got)
	if got.Phone != "456" || got.FirstName != "Jenny" {
		t.Errorf("partial update clobbered fields: %+v", got)
	}
}

func TestChangePassword(t *testing.T) {
	repo := NewInMemoryRepository([]User{{ID: 7, Email: "j@example.com", Password: hashed(t, "oldpassword")}})
	svc := NewService(repo)
	app := makeApp(NewHandler(svc))

	req := httptest.NewRequest("POST", "/api/v1/profile/password", strings.NewReader(`{"currentPassword":"wrong","newPassword":"newpassword"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong current password, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/profile/password", strings.NewReader(`{"currentPassword":"oldpassword","newPassword":"newpassword"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "7")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	if _, err := svc.Authenticate("j@example.com", "newpassword"); err != nil {
		t.Errorf("new password should authenticate: %v", err)
	}
	if _, err := svc.Authenticate("j@example.com", "oldpassword"); err == nil {
		t.Error("old password must no longer authenticate")
	}
}
