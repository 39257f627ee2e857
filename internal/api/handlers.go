package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/example/order-service/internal/api/middleware"
	"github.com/example/order-service/internal/domain"
	"github.com/example/order-service/internal/orders"
	"github.com/example/order-service/internal/products"
)

type Handlers struct {
	orders   *orders.Service
	products *products.Service
}

func NewHandlers(orderSvc *orders.Service, productSvc *products.Service) *Handlers {
	return &Handlers{
		orders:   orderSvc,
		products: productSvc,
	}
}

// Order Handlers

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var in orders.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.orders.Create(r.Context(), principal, in)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if !result.EventPublished {
		w.Header().Set("X-Event-Published", "false")
	}
	respondJSON(w, http.StatusCreated, result.Order)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := pathID(r.URL.Path, "/orders/")
	if err != nil {
		respondError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	order, err := h.orders.Get(r.Context(), principal, id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *Handlers) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := pathID(r.URL.Path, "/orders/")
	if err != nil {
		respondError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var in orders.UpdateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.orders.Update(r.Context(), principal, id, in)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *Handlers) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := pathID(r.URL.Path, "/orders/")
	if err != nil {
		respondError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	if err := h.orders.Delete(r.Context(), principal, id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Order deleted"})
}

func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	idPart := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/orders/"), "/status")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		respondError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), principal, id, status)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	filter, page, err := parseOrderQuery(r)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.orders.List(r.Context(), principal, filter, page)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// parseOrderQuery maps list query parameters onto the domain filter. Unknown
// parameters are ignored; malformed numeric values are rejected.
func parseOrderQuery(r *http.Request) (domain.OrderFilter, domain.PageRequest, error) {
	var (
		f    domain.OrderFilter
		page domain.PageRequest
	)
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status, err := domain.ParseOrderStatus(v)
		if err != nil {
			return f, page, err
		}
		f.Status = status
	}
	f.ProductID = q.Get("product_id")

	if v := q.Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, page, errors.New("user_id must be an integer")
		}
		f.UserID = id
	}
	if v := q.Get("min_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, page, errors.New("min_price must be a number")
		}
		f.MinPrice = &p
	}
	if v := q.Get("max_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, page, errors.New("max_price must be a number")
		}
		f.MaxPrice = &p
	}
	page, err := parsePage(q)
	if err != nil {
		return f, page, err
	}
	return f, page, nil
}

// parsePage reads skip/limit pagination parameters, rejecting malformed or
// negative values.
func parsePage(q url.Values) (domain.PageRequest, error) {
	var page domain.PageRequest
	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page, errors.New("skip must be a non-negative integer")
		}
		page.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page, errors.New("limit must be a non-negative integer")
		}
		page.Limit = n
	}
	return page, nil
}

// Product Handlers

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in products.CreateProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	product, err := h.products.Create(r.Context(), in)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/products/")
	if err != nil {
		respondError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/products/")
	if err != nil {
		respondError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	var in products.UpdateProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	product, err := h.products.Update(r.Context(), id, in)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) RestockProduct(w http.ResponseWriter, r *http.Request) {
	idPart := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/products/"), "/restock")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		respondError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	product, err := h.products.Restock(r.Context(), id, req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/products/")
	if err != nil {
		respondError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r.URL.Query())
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.products.List(r.Context(), page)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps service errors onto HTTP statuses. Sentinel
// identity decides the status; the message carries the detail.
func respondDomainError(w http.ResponseWriter, err error) {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		respondError(w, stockErr.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrValidation):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrForbidden):
		respondError(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		respondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrEmailTaken):
		respondError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidCredentials):
		respondError(w, "invalid credentials", http.StatusUnauthorized)
	default:
		log.Printf("[API] Internal error: %v", err)
		respondError(w, "internal server error", http.StatusInternalServerError)
	}
}

func pathID(path, prefix string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(path, prefix), 10, 64)
}
