package store

import (
	"context"

	"github.com/example/order-service/internal/domain"
)

// OrderStore is the system-of-record contract for orders.
type OrderStore interface {
	// CreateWithReservation inserts the order and reserves product stock
	// as one atomic unit. Either both commit or neither does.
	CreateWithReservation(ctx context.Context, o *domain.Order, productID int64) error

	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// Update persists the mutable order fields (quantity, total price,
	// shipping address).
	Update(ctx context.Context, o *domain.Order) error

	Delete(ctx context.Context, id int64) error

	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error

	// List returns one page of matching orders and the total match count
	// computed independently of the page window.
	List(ctx context.Context, f domain.OrderFilter, page domain.PageRequest) ([]domain.Order, int, error)
}

// ProductStore is the system-of-record contract for products.
type ProductStore interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page domain.PageRequest) ([]domain.Product, int, error)

	// Restock atomically adds quantity to a product's stock counter.
	Restock(ctx context.Context, id int64, quantity int) error
}

// UserStore is the system-of-record contract for user accounts.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
