package email

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/order-service/internal/domain"
)

func TestBuildOrderConfirmationBody(t *testing.T) {
	event := domain.OrderEvent{
		Event:         domain.EventOrderCreated,
		OrderID:       42,
		ProductID:     "3",
		Quantity:      2,
		TotalPrice:    19.98,
		Status:        "CREATED",
		CustomerEmail: "buyer@example.com",
	}

	body := BuildOrderConfirmationBody(event)

	assert.Contains(t, body, "Order ID: 42")
	assert.Contains(t, body, "Product: 3")
	assert.Contains(t, body, "Quantity: 2")
	assert.Contains(t, body, "Total Price: $19.98")
	assert.Contains(t, body, "Status: CREATED")
}
