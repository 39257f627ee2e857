// Package inventory owns the product stock counters. Stock is only ever
// decremented through Reserve, a single conditional UPDATE, so concurrent
// reservations against the same product can never over-commit.
package inventory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/order-service/internal/domain"
)

// Execer is the subset of *sql.Tx / *sql.DB the ledger needs. Reserve must
// run on the same transaction as the order insert so the check-and-deduct
// and the order row commit as one atomic unit.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Ledger performs atomic stock operations.
type Ledger struct{}

// NewLedger creates an inventory ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Reserve decrements stock for productID by quantity if and only if enough
// stock remains. It returns domain.ErrInsufficientStock when the conditional
// update matches no row but the product exists, and domain.ErrProductNotFound
// when it does not. No retries happen here: insufficient stock is a terminal
// business rejection and the caller owns transient-fault handling.
func (l *Ledger) Reserve(ctx context.Context, ex Execer, productID int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: reserve quantity must be positive", domain.ErrValidation)
	}

	res, err := ex.ExecContext(ctx,
		`UPDATE products
		 SET stock_quantity = stock_quantity - $1, updated_at = NOW()
		 WHERE id = $2 AND stock_quantity >= $1`,
		quantity, productID,
	)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var available int
	err = ex.QueryRowContext(ctx,
		`SELECT stock_quantity FROM products WHERE id = $1`, productID,
	).Scan(&available)
	if err == sql.ErrNoRows {
		return domain.ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}

	return &domain.InsufficientStockError{Available: available, Requested: quantity}
}

// Restock adds quantity to a product's stock counter; admin stock top-ups
// route through it so all stock arithmetic lives in the ledger.
func (l *Ledger) Restock(ctx context.Context, ex Execer, productID int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: restock quantity must be positive", domain.ErrValidation)
	}

	res, err := ex.ExecContext(ctx,
		`UPDATE products
		 SET stock_quantity = stock_quantity + $1, updated_at = NOW()
		 WHERE id = $2`,
		quantity, productID,
	)
	if err != nil {
		return fmt.Errorf("restock: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("restock: %w", err)
	}
	if rows == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
