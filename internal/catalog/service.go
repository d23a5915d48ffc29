package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/aryankhatri/storefront-backend/internal/commerce"
)

// Service reads the catalog from the commerce backend with a short in-process
// cache so product listings do not hammer the storefront API.
type Service struct {
	source Source
	ttl    time.Duration

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	products []commerce.Product
	expires  time.Time
}

func NewService(source Source, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Service{source: source, ttl: ttl, cache: make(map[string]cacheEntry)}
}

func (s *Service) List(ctx context.Context) ([]commerce.Product, error) {
	return s.cached(ctx, "all", func(ctx context.Context) ([]commerce.Product, error) {
		return s.source.ListProducts(ctx)
	})
}

func (s *Service) Collection(ctx context.Context, handle string) ([]commerce.Product, error) {
	return s.cached(ctx, "collection:"+handle, func(ctx context.Context) ([]commerce.Product, error) {
		return s.source.ListCollection(ctx, handle)
	})
}

func (s *Service) GetByHandle(ctx context.Context, handle string) (commerce.Product, error) {
	return s.source.GetProduct(ctx, handle)
}

func (s *Service) cached(ctx context.Context, key string, load func(context.Context) ([]commerce.Product, error)) ([]commerce.Product, error) {
	s.mu.Lock()
	entry, ok := s.cache[key]
	s.mu.Unlock()
	if ok && time.Now().Before(entry.expires) {
		return entry.products, nil
	}

	products, err := load(ctx)
	if err != nil {
		// serve a stale list over an error when we have one
		if ok {
			return entry.products, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.cache[key] = cacheEntry{products: products, expires: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return products, nil
}
