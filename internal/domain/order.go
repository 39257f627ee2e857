package domain

import (
	"fmt"
	"time"
)

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	StatusCreated        OrderStatus = "CREATED"
	StatusPaymentPending OrderStatus = "PAYMENT_PENDING"
	StatusConfirmed      OrderStatus = "CONFIRMED"
	StatusShipped        OrderStatus = "SHIPPED"
	StatusDelivered      OrderStatus = "DELIVERED"
	StatusCancelled      OrderStatus = "CANCELLED"
	StatusFailed         OrderStatus = "FAILED"
)

const (
	MinOrderQuantity = 1
	MaxOrderQuantity = 1000
)

var validStatuses = map[OrderStatus]bool{
	StatusCreated:        true,
	StatusPaymentPending: true,
	StatusConfirmed:      true,
	StatusShipped:        true,
	StatusDelivered:      true,
	StatusCancelled:      true,
	StatusFailed:         true,
}

// ParseOrderStatus validates a raw status string.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if !validStatuses[status] {
		return "", fmt.Errorf("%w: unknown order status %q", ErrValidation, s)
	}
	return status, nil
}

// IsTerminal reports whether no further transition is expected from s.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// ValidateStatusTransition is the single hook through which every status
// change passes. It currently accepts any transition between known states;
// a strict transition table can be introduced here without touching callers.
func ValidateStatusTransition(from, to OrderStatus) error {
	if !validStatuses[to] {
		return fmt.Errorf("%w: unknown order status %q", ErrValidation, string(to))
	}
	return nil
}

// Order is an order against a single product. TotalPrice is derived from the
// product price at creation time and only changes through an authorized update.
type Order struct {
	ID              int64       `json:"id"`
	UserID          int64       `json:"user_id"`
	ProductID       string      `json:"product_id"`
	Quantity        int         `json:"quantity"`
	TotalPrice      float64     `json:"total_price"`
	Status          OrderStatus `json:"status"`
	CustomerEmail   string      `json:"customer_email"`
	ShippingAddress string      `json:"shipping_address,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderFilter narrows order listings. Zero values mean "no filter";
// the UserID filter is honored for administrators only.
type OrderFilter struct {
	Status    OrderStatus
	ProductID string
	UserID    int64
	MinPrice  *float64
	MaxPrice  *float64
}

// PageRequest is offset/limit pagination.
type PageRequest struct {
	Offset int
	Limit  int
}
