// Package products manages the product catalog with cache-aside reads and
// invalidate-on-write.
package products

import (
	"context"
	"fmt"
	"time"

	"github.com/example/order-service/internal/cache"
	"github.com/example/order-service/internal/domain"
	"github.com/example/order-service/internal/store"
)

// Service handles product CRUD. Mutations never update the cache in place;
// they invalidate so the next read repopulates from the system of record.
type Service struct {
	products store.ProductStore
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewService builds a product service.
func NewService(products store.ProductStore, c cache.Cache, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultTTL
	}
	return &Service{products: products, cache: c, cacheTTL: cacheTTL}
}

// CreateProductInput is the admin-supplied product data.
type CreateProductInput struct {
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
}

// UpdateProductInput patches a product; nil fields are left untouched.
type UpdateProductInput struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	StockQuantity *int     `json:"stock_quantity,omitempty"`
}

// ListResult is one page of products plus the total count.
type ListResult struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

// Create inserts a new product.
func (s *Service) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", domain.ErrValidation)
	}
	if in.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock_quantity must be non-negative", domain.ErrValidation)
	}

	p := &domain.Product{
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get reads a product cache-aside. The projection may be stale up to TTL;
// write paths must use GetAuthoritative instead.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	key := cache.ProductKey(id)

	var cached domain.Product
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, p, s.cacheTTL)
	return p, nil
}

// GetAuthoritative bypasses the cache and reads the system of record. All
// mutation paths in this service read through it.
func (s *Service) GetAuthoritative(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// Update patches a product and invalidates its cached projection.
func (s *Service) Update(ctx context.Context, id int64, in UpdateProductInput) (*domain.Product, error) {
	p, err := s.GetAuthoritative(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, fmt.Errorf("%w: price must be non-negative", domain.ErrValidation)
		}
		p.Price = *in.Price
	}
	if in.StockQuantity != nil {
		if *in.StockQuantity < 0 {
			return nil, fmt.Errorf("%w: stock_quantity must be non-negative", domain.ErrValidation)
		}
		p.StockQuantity = *in.StockQuantity
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, cache.ProductKey(id))
	return p, nil
}

// Restock adds quantity to a product's stock through the ledger-backed
// store operation and invalidates the cached projection.
func (s *Service) Restock(ctx context.Context, id int64, quantity int) (*domain.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	if err := s.products.Restock(ctx, id, quantity); err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, cache.ProductKey(id))
	return s.GetAuthoritative(ctx, id)
}

// Delete removes a product and invalidates its cached projection.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, cache.ProductKey(id))
	return nil
}

// List pages the catalog.
func (s *Service) List(ctx context.Context, page domain.PageRequest) (*ListResult, error) {
	if page.Limit <= 0 {
		page.Limit = 20
	}
	products, total, err := s.products.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return &ListResult{Products: products, Total: total}, nil
}
