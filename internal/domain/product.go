package domain

import "time"

// Product carries the authoritative stock counter. StockQuantity never goes
// negative: it is only decremented through the inventory ledger's atomic
// check-and-deduct.
type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
