package notification

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/example/order-service/internal/domain"
)

// Sender delivers an order confirmation to the customer.
type Sender interface {
	SendOrderConfirmation(to string, event domain.OrderEvent) error
}

// Handler processes order events for sending notifications. Delivery from
// the broker is at-least-once, so the handler remembers which order ids it
// has already notified and skips duplicates.
type Handler struct {
	sender Sender

	mu   sync.Mutex
	seen map[int64]struct{}
}

// NewHandler creates a new notification handler.
func NewHandler(sender Sender) *Handler {
	return &Handler{
		sender: sender,
		seen:   make(map[int64]struct{}),
	}
}

// HandleEvent processes a single event from Kafka.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event domain.OrderEvent
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}

	if event.Event != domain.EventOrderCreated {
		log.Printf("[Notifier] Skipping event type %q for order %d", event.Event, event.OrderID)
		return nil
	}

	if !h.markProcessed(event.OrderID) {
		log.Printf("[Notifier] Duplicate delivery for order %d, skipping", event.OrderID)
		return nil
	}

	if event.CustomerEmail == "" {
		log.Printf("[Notifier] Order %d has no customer email, skipping", event.OrderID)
		return nil
	}

	if err := h.sender.SendOrderConfirmation(event.CustomerEmail, event); err != nil {
		// Email is best-effort: log and move on rather than stalling the
		// consumer on a flaky SMTP server.
		log.Printf("[Notifier] Failed to send email to %s for order %d: %v", event.CustomerEmail, event.OrderID, err)
		return nil
	}

	log.Printf("[Notifier] Order confirmation email sent to %s for order %d", event.CustomerEmail, event.OrderID)
	return nil
}

// markProcessed records the order id and reports whether this is the first
// time it has been seen.
func (h *Handler) markProcessed(orderID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.seen[orderID]; ok {
		return false
	}
	h.seen[orderID] = struct{}{}
	return true
}
