package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound and friends map to 404 at the API layer.
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")

	// ErrForbidden: authenticated but not authorized for this entity or
	// action. Kept distinct from not-found.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation: malformed input (non-numeric product reference,
	// quantity out of range). Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientStock is a terminal business rejection, not a
	// transient fault; callers must not retry it.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrIntegrity: the reservation and the order insert could not both
	// commit. The whole unit was rolled back.
	ErrIntegrity = errors.New("order could not be committed")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// InsufficientStockError names the available and requested quantities so the
// rejection is actionable for the caller.
type InsufficientStockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// Is makes errors.Is(err, ErrInsufficientStock) match.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
