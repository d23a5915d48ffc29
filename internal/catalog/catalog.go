package catalog

import (
	"context"

	"github.com/aryankhatri/storefront-backend/internal/commerce"
)

// Source is the slice of the commerce backend the catalog reads from.
type Source interface {
	ListProducts(ctx context.Context) ([]commerce.Product, error)
	ListCollection(ctx context.Context, handle string) ([]commerce.Product, error)
	GetProduct(ctx context.Context, handle string) (commerce.Product, error)
}
