// Package mocks provides in-memory store implementations for tests. The
// order mock applies reservation and insert under one lock so the
// all-or-nothing and concurrency properties of the real transaction hold.
package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/order-service/internal/domain"
)

// MockProductStore is an in-memory ProductStore.
type MockProductStore struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	nextID   int64

	GetErr error
}

// NewMockProductStore creates an empty product store.
func NewMockProductStore() *MockProductStore {
	return &MockProductStore{products: make(map[int64]*domain.Product)}
}

// Seed inserts a product directly, returning its id.
func (m *MockProductStore) Seed(p domain.Product) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	m.products[p.ID] = &p
	return p.ID
}

func (m *MockProductStore) Create(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *MockProductStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProductStore) Update(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.products[p.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	cur.Name, cur.Description, cur.Price, cur.StockQuantity = p.Name, p.Description, p.Price, p.StockQuantity
	cur.UpdatedAt = time.Now()
	return nil
}

func (m *MockProductStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *MockProductStore) List(ctx context.Context, page domain.PageRequest) ([]domain.Product, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return pageSlice(all, page), len(all), nil
}

func (m *MockProductStore) Restock(ctx context.Context, id int64, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if quantity <= 0 {
		return fmt.Errorf("%w: restock quantity must be positive", domain.ErrValidation)
	}
	p, ok := m.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	p.StockQuantity += quantity
	p.UpdatedAt = time.Now()
	return nil
}

// Stock returns the current stock counter for assertions.
func (m *MockProductStore) Stock(id int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		return p.StockQuantity
	}
	return -1
}

// MockOrderStore is an in-memory OrderStore sharing product state with a
// MockProductStore so reservations deduct real counters.
type MockOrderStore struct {
	mu       sync.Mutex
	orders   map[int64]*domain.Order
	nextID   int64
	products *MockProductStore

	// InsertErr, when set, fails the insert half of the atomic unit after
	// the reservation check, exercising the rollback path.
	InsertErr error
}

// NewMockOrderStore creates an order store bound to products.
func NewMockOrderStore(products *MockProductStore) *MockOrderStore {
	return &MockOrderStore{orders: make(map[int64]*domain.Order), products: products}
}

func (m *MockOrderStore) CreateWithReservation(ctx context.Context, o *domain.Order, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products.mu.Lock()
	defer m.products.mu.Unlock()

	p, ok := m.products.products[productID]
	if !ok {
		return domain.ErrProductNotFound
	}
	if p.StockQuantity < o.Quantity {
		return &domain.InsufficientStockError{
			ProductName: p.Name,
			Available:   p.StockQuantity,
			Requested:   o.Quantity,
		}
	}
	if m.InsertErr != nil {
		// Whole unit rolls back: stock untouched, no order row.
		return m.InsertErr
	}

	p.StockQuantity -= o.Quantity
	m.nextID++
	o.ID = m.nextID
	now := time.Now()
	o.CreatedAt, o.UpdatedAt = now, now
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *MockOrderStore) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderStore) Update(ctx context.Context, o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.orders[o.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	cur.Quantity, cur.TotalPrice, cur.ShippingAddress = o.Quantity, o.TotalPrice, o.ShippingAddress
	cur.UpdatedAt = time.Now()
	return nil
}

func (m *MockOrderStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *MockOrderStore) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

func (m *MockOrderStore) List(ctx context.Context, f domain.OrderFilter, page domain.PageRequest) ([]domain.Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []domain.Order
	for _, o := range m.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.ProductID != "" && o.ProductID != f.ProductID {
			continue
		}
		if f.UserID != 0 && o.UserID != f.UserID {
			continue
		}
		if f.MinPrice != nil && o.TotalPrice < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && o.TotalPrice > *f.MaxPrice {
			continue
		}
		matched = append(matched, *o)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	return pageSlice(matched, page), len(matched), nil
}

// Count returns how many orders exist, for all-or-nothing assertions.
func (m *MockOrderStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// MockUserStore is an in-memory UserStore.
type MockUserStore struct {
	mu     sync.Mutex
	users  map[int64]*domain.User
	nextID int64
}

// NewMockUserStore creates an empty user store.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[int64]*domain.User)}
}

func (m *MockUserStore) Create(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	m.nextID++
	u.ID = m.nextID
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MockUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func pageSlice[T any](all []T, page domain.PageRequest) []T {
	if page.Limit <= 0 {
		page.Limit = len(all)
	}
	if page.Offset >= len(all) {
		return nil
	}
	end := page.Offset + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[page.Offset:end]
}
