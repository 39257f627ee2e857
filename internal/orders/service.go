// Package orders implements the order fulfillment orchestrator: atomic
// inventory reservation plus order persistence, cache-aside reads with
// invalidate-on-write, and best-effort event publication.
package orders

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/example/order-service/internal/cache"
	"github.com/example/order-service/internal/domain"
	"github.com/example/order-service/internal/store"
)

// EventPublisher delivers order events to the broker. Implementations are
// best-effort and never fail the surrounding operation.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) domain.PublishResult
}

// Service coordinates the order lifecycle. All collaborators are injected at
// construction; there is no ambient global state.
type Service struct {
	orders    store.OrderStore
	products  store.ProductStore
	cache     cache.Cache
	publisher EventPublisher
	cacheTTL  time.Duration
}

// NewService builds the orchestrator.
func NewService(orders store.OrderStore, products store.ProductStore, c cache.Cache, pub EventPublisher, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultTTL
	}
	return &Service{
		orders:    orders,
		products:  products,
		cache:     c,
		publisher: pub,
		cacheTTL:  cacheTTL,
	}
}

// CreateOrderInput is the caller-supplied order data. Any supplied total is
// ignored on creation; the price is always derived from the product.
type CreateOrderInput struct {
	ProductID       string `json:"product_id"`
	Quantity        int    `json:"quantity"`
	CustomerEmail   string `json:"customer_email"`
	ShippingAddress string `json:"shipping_address,omitempty"`
}

// UpdateOrderInput patches an order; nil fields are left untouched.
type UpdateOrderInput struct {
	Quantity        *int     `json:"quantity,omitempty"`
	ShippingAddress *string  `json:"shipping_address,omitempty"`
	TotalPrice      *float64 `json:"total_price,omitempty"`
}

// CreateResult reports a committed order together with the state of the
// best-effort side channels, so degraded mode is observable instead of
// silently logged away.
type CreateResult struct {
	Order          *domain.Order
	EventPublished bool
	CacheDegraded  bool
}

// ListResult is one page of orders plus the total match count.
type ListResult struct {
	Orders []domain.Order `json:"orders"`
	Total  int            `json:"total"`
}

// Create validates the request, reserves stock and inserts the order as one
// atomic unit, invalidates cached projections and publishes ORDER_CREATED.
// The order either fully exists (stock deducted) or not at all; event and
// cache failures never roll it back.
func (s *Service) Create(ctx context.Context, principal domain.Principal, in CreateOrderInput) (*CreateResult, error) {
	productID, err := strconv.ParseInt(in.ProductID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: product_id must be an integer, got %q", domain.ErrValidation, in.ProductID)
	}
	if in.Quantity < domain.MinOrderQuantity || in.Quantity > domain.MaxOrderQuantity {
		return nil, fmt.Errorf("%w: quantity must be between %d and %d",
			domain.ErrValidation, domain.MinOrderQuantity, domain.MaxOrderQuantity)
	}
	if !strings.Contains(in.CustomerEmail, "@") {
		return nil, fmt.Errorf("%w: customer_email is not a valid address", domain.ErrValidation)
	}

	// Authoritative stock read; the cache is never consulted on the write
	// path.
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.StockQuantity < in.Quantity {
		return nil, &domain.InsufficientStockError{
			ProductName: product.Name,
			Available:   product.StockQuantity,
			Requested:   in.Quantity,
		}
	}

	order := &domain.Order{
		UserID:          principal.UserID,
		ProductID:       in.ProductID,
		Quantity:        in.Quantity,
		TotalPrice:      product.Price * float64(in.Quantity),
		Status:          domain.StatusCreated,
		CustomerEmail:   in.CustomerEmail,
		ShippingAddress: in.ShippingAddress,
	}

	// The stock check above can race with concurrent creations; the
	// reservation inside this unit is the one that counts and any failure
	// rolls back both halves.
	if err := s.orders.CreateWithReservation(ctx, order, productID); err != nil {
		return nil, err
	}

	degraded := s.invalidate(ctx, cache.OrderKey(order.ID), cache.ProductKey(productID))

	result := s.publisher.Publish(ctx, domain.NewOrderCreatedEvent(order))
	if result == domain.PublishDropped {
		log.Printf("[Orders] Event for order %d dropped; order remains committed", order.ID)
	}

	return &CreateResult{
		Order:          order,
		EventPublished: result == domain.PublishEnqueued,
		CacheDegraded:  degraded,
	}, nil
}

// Get reads an order cache-aside: a hit is returned as-is (stale up to TTL),
// a miss loads from the system of record and repopulates the cache. The
// caller must own the order or be an administrator.
func (s *Service) Get(ctx context.Context, principal domain.Principal, id int64) (*domain.Order, error) {
	key := cache.OrderKey(id)

	var cached domain.Order
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return s.authorizeRead(principal, &cached)
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Population is the only write a read may trigger.
	_ = s.cache.Set(ctx, key, order, s.cacheTTL)

	return s.authorizeRead(principal, order)
}

func (s *Service) authorizeRead(principal domain.Principal, o *domain.Order) (*domain.Order, error) {
	if o.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return o, nil
}

// Update patches an order. It always operates on authoritative state,
// requires ownership or the administrator role, and invalidates the cached
// projection after commit.
func (s *Service) Update(ctx context.Context, principal domain.Principal, id int64, in UpdateOrderInput) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	if in.Quantity != nil {
		if *in.Quantity < domain.MinOrderQuantity || *in.Quantity > domain.MaxOrderQuantity {
			return nil, fmt.Errorf("%w: quantity must be between %d and %d",
				domain.ErrValidation, domain.MinOrderQuantity, domain.MaxOrderQuantity)
		}
		order.Quantity = *in.Quantity
	}
	if in.ShippingAddress != nil {
		order.ShippingAddress = *in.ShippingAddress
	}
	if in.TotalPrice != nil {
		// Explicit authorized override of the derived total.
		if *in.TotalPrice < 0 {
			return nil, fmt.Errorf("%w: total_price must be non-negative", domain.ErrValidation)
		}
		order.TotalPrice = *in.TotalPrice
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.invalidate(ctx, cache.OrderKey(id))
	return order, nil
}

// Delete removes an order. Administrator only.
func (s *Service) Delete(ctx context.Context, principal domain.Principal, id int64) error {
	if !principal.IsAdmin() {
		return domain.ErrForbidden
	}

	if _, err := s.orders.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, cache.OrderKey(id))
	return nil
}

// UpdateStatus overwrites the lifecycle status. Administrator only. The
// transition passes through domain.ValidateStatusTransition, which is
// currently permissive between known states.
func (s *Service) UpdateStatus(ctx context.Context, principal domain.Principal, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !principal.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateStatusTransition(order.Status, status); err != nil {
		return nil, err
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	order.Status = status

	s.invalidate(ctx, cache.OrderKey(id))
	return order, nil
}

// List returns a filtered page of orders and the total match count.
// Non-administrators are always scoped to their own orders, whatever user
// filter they request.
func (s *Service) List(ctx context.Context, principal domain.Principal, f domain.OrderFilter, page domain.PageRequest) (*ListResult, error) {
	if !principal.IsAdmin() {
		f.UserID = principal.UserID
	}
	if page.Limit <= 0 {
		page.Limit = 10
	}

	orders, total, err := s.orders.List(ctx, f, page)
	if err != nil {
		return nil, err
	}
	return &ListResult{Orders: orders, Total: total}, nil
}

// invalidate deletes cache keys best-effort and reports whether the cache
// was degraded while doing so.
func (s *Service) invalidate(ctx context.Context, keys ...string) bool {
	degraded := false
	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			degraded = true
		}
	}
	return degraded
}
