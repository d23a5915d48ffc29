package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/aryankhatri/storefront-backend/internal/commerce"
)

type fakeSource struct {
	products []commerce.Product
	calls    int
	fail     bool
}

func (f *fakeSource) ListProducts(ctx context.Context) ([]commerce.Product, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("backend down")
	}
	return f.products, nil
}

func (f *fakeSource) ListCollection(ctx context.Context, handle string) ([]commerce.Product, error) {
	f.calls++
	if handle != "featured" {
		return nil, commerce.ErrNotFound
	}
	return f.products, nil
}

func (f *fakeSource) GetProduct(ctx context.Context, handle string) (commerce.Product, error) {
	for _, p := range f.products {
		if p.Handle == handle {
			return p, nil
		}
	}
	return commerce.Product{}, commerce.ErrNotFound
}

func sampleProducts() []commerce.Product {
	return []commerce.Product{
		{ID: "p-1", Handle: "cotton-kurta", Title: "Cotton Kurta", Price: decimal.NewFromInt(999), Currency: "INR", VariantID: "v-1", Available: true},
		{ID: "p-2", Handle: "linen-shirt", Title: "Linen Shirt", Price: decimal.RequireFromString("1499.50"), Currency: "INR", VariantID: "v-2", Available: true},
	}
}

func makeApp(src Source) *fiber.App {
	app := fiber.New()
	NewHandler(NewService(src, time.Minute)).RegisterPublicRoutes(app)
	return app
}

func TestGetProducts(t *testing.T) {
	app := makeApp(&fakeSource{products: sampleProducts()})

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/products", nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var got []commerce.Product
	json.NewDecoder(res.Body).Decode(&got)
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}
}

func TestGetProductByHandle(t *testing.T) {
	app := makeApp(&fakeSource{products: sampleProducts()})

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/products/linen-shirt", nil))
	if res.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var got commerce.Product
	json.NewDecoder(res.Body).Decode(&got)
	if got.VariantID != "v-2" {
		t.Errorf("unexpected product %+v", got)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/products/missing", nil))
	if res.StatusCode != 404 {
		t.Errorf("expected 404 for unknown handle, got %d", res.StatusCode)
	}
}

func TestGetCollection(t *testing.T) {
	app := makeApp(&fakeSource{products: sampleProducts()})

	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/collections/featured", nil))
	if res.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/collections/unknown", nil))
	if res.StatusCode != 404 {
		t.Errorf("expected 404 for unknown collection, got %d", res.StatusCode)
	}
}

func TestListCachesBackend(t *testing.T) {
	src := &fakeSource{products: sampleProducts()}
	svc := NewService(src, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := svc.List(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if src.calls != 1 {
		t.Errorf("expected a single backend call, got %d", src.calls)
	}
}

func TestListServesStaleOnError(t *testing.T) {
	src := &fakeSource{products: sampleProducts()}
	svc := NewService(src, time.Nanosecond)

	if _, err := svc.List(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)

	src.fail = true
	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("expected stale products, got error %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 stale products, got %d", len(got))
	}
}
