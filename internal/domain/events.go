package domain

// Event types worth publishing. Creation is the only transition published
// today; the shape extends to other transitions unchanged.
const (
	EventOrderCreated = "ORDER_CREATED"
)

// OrderEvent is the immutable fact record emitted once per published state
// transition. Field names are the wire contract consumed by downstream
// services; do not rename.
type OrderEvent struct {
	Event         string  `json:"event"`
	OrderID       int64   `json:"order_id"`
	ProductID     string  `json:"product_id"`
	Quantity      int     `json:"quantity"`
	TotalPrice    float64 `json:"total_price"`
	Status        string  `json:"status"`
	CustomerEmail string  `json:"customer_email"`
}

// PublishResult reports what the publisher did with an event. Publishing is
// best-effort relative to order operations: a dropped event never fails or
// rolls back the committed order.
type PublishResult int

const (
	PublishDropped PublishResult = iota
	PublishEnqueued
)

func (r PublishResult) String() string {
	if r == PublishEnqueued {
		return "enqueued"
	}
	return "dropped"
}

// NewOrderCreatedEvent builds the creation event for a committed order.
func NewOrderCreatedEvent(o *Order) OrderEvent {
	return OrderEvent{
		Event:         EventOrderCreated,
		OrderID:       o.ID,
		ProductID:     o.ProductID,
		Quantity:      o.Quantity,
		TotalPrice:    o.TotalPrice,
		Status:        string(o.Status),
		CustomerEmail: o.CustomerEmail,
	}
}
