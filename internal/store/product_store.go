package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/order-service/internal/domain"
	"github.com/example/order-service/internal/inventory"
)

// PostgresProductStore implements ProductStore on PostgreSQL.
type PostgresProductStore struct {
	db     *sql.DB
	ledger *inventory.Ledger
}

// NewPostgresProductStore creates a product store.
func NewPostgresProductStore(db *sql.DB, ledger *inventory.Ledger) *PostgresProductStore {
	return &PostgresProductStore{db: db, ledger: ledger}
}

// Create inserts a product and fills in its generated id and timestamps.
func (s *PostgresProductStore) Create(ctx context.Context, p *domain.Product) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO products (name, description, price, stock_quantity, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW())
		 RETURNING id, created_at, updated_at`,
		p.Name, p.Description, p.Price, p.StockQuantity,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// GetByID reads the authoritative product row, including current stock.
func (s *PostgresProductStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, price, stock_quantity, created_at, updated_at
		 FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// Update persists name, description, price and stock.
func (s *PostgresProductStore) Update(ctx context.Context, p *domain.Product) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products
		 SET name = $1, description = $2, price = $3, stock_quantity = $4, updated_at = NOW()
		 WHERE id = $5`,
		p.Name, p.Description, p.Price, p.StockQuantity, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return expectOneRow(res, domain.ErrProductNotFound)
}

// Delete removes a product row.
func (s *PostgresProductStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return expectOneRow(res, domain.ErrProductNotFound)
}

// Restock adds quantity through the inventory ledger so stock arithmetic
// stays in one place.
func (s *PostgresProductStore) Restock(ctx context.Context, id int64, quantity int) error {
	return s.ledger.Restock(ctx, s.db, id, quantity)
}

// List pages products by name and returns the independent total count.
func (s *PostgresProductStore) List(ctx context.Context, page domain.PageRequest) ([]domain.Product, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, price, stock_quantity, created_at, updated_at
		 FROM products ORDER BY name OFFSET $1 LIMIT $2`,
		page.Offset, page.Limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("list products: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}
