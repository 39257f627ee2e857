package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/order-service/internal/domain"
	"github.com/example/order-service/internal/inventory"
)

// PostgresOrderStore implements OrderStore on PostgreSQL.
type PostgresOrderStore struct {
	db     *sql.DB
	ledger *inventory.Ledger
}

// NewPostgresOrderStore creates an order store sharing db with the ledger.
func NewPostgresOrderStore(db *sql.DB, ledger *inventory.Ledger) *PostgresOrderStore {
	return &PostgresOrderStore{db: db, ledger: ledger}
}

// CreateWithReservation runs the reservation and the order insert inside one
// transaction. Business rejections from the ledger (insufficient stock,
// product gone) propagate as-is; any other failure after the transaction
// started is reported as an integrity failure and nothing is committed.
func (s *PostgresOrderStore) CreateWithReservation(ctx context.Context, o *domain.Order, productID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrIntegrity, err)
	}
	defer tx.Rollback()

	if err := s.ledger.Reserve(ctx, tx, productID, o.Quantity); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrProductNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrIntegrity, err)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, product_id, quantity, total_price, status, customer_email, shipping_address, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		 RETURNING id, created_at, updated_at`,
		o.UserID, o.ProductID, o.Quantity, o.TotalPrice, string(o.Status), o.CustomerEmail, nullString(o.ShippingAddress),
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert order: %v", domain.ErrIntegrity, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrIntegrity, err)
	}
	return nil
}

// GetByID loads an order from the system of record.
func (s *PostgresOrderStore) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, product_id, quantity, total_price, status, customer_email, shipping_address, created_at, updated_at
		 FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

// Update persists the mutable fields of o.
func (s *PostgresOrderStore) Update(ctx context.Context, o *domain.Order) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders
		 SET quantity = $1, total_price = $2, shipping_address = $3, updated_at = NOW()
		 WHERE id = $4`,
		o.Quantity, o.TotalPrice, nullString(o.ShippingAddress), o.ID,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return expectOneRow(res, domain.ErrOrderNotFound)
}

// Delete removes an order row.
func (s *PostgresOrderStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return expectOneRow(res, domain.ErrOrderNotFound)
}

// UpdateStatus overwrites the lifecycle status.
func (s *PostgresOrderStore) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return expectOneRow(res, domain.ErrOrderNotFound)
}

// List pages orders newest-first with the filter applied to both the page
// query and the independent count query.
func (s *PostgresOrderStore) List(ctx context.Context, f domain.OrderFilter, page domain.PageRequest) ([]domain.Order, int, error) {
	where, args := buildOrderFilter(f)

	var total int
	countQuery := "SELECT COUNT(*) FROM orders" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT id, user_id, product_id, quantity, total_price, status, customer_email, shipping_address, created_at, updated_at
		 FROM orders%s ORDER BY created_at DESC OFFSET $%d LIMIT $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, page.Offset, page.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrderRows(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("list orders: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

func buildOrderFilter(f domain.OrderFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.UserID != 0 {
		add("user_id = $%d", f.UserID)
	}
	if f.MinPrice != nil {
		add("total_price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("total_price <= $%d", *f.MaxPrice)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row *sql.Row) (*domain.Order, error) {
	o, err := scanOrderRows(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func scanOrderRows(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var status string
	var shipping sql.NullString
	err := row.Scan(&o.ID, &o.UserID, &o.ProductID, &o.Quantity, &o.TotalPrice,
		&status, &o.CustomerEmail, &shipping, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	o.ShippingAddress = shipping.String
	return &o, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func expectOneRow(res sql.Result, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
