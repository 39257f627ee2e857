package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/order-service/internal/domain"
)

type mockSender struct {
	mu      sync.Mutex
	sent    []domain.OrderEvent
	sendErr error
}

func (m *mockSender) SendOrderConfirmation(to string, event domain.OrderEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, event)
	return nil
}

func (m *mockSender) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func encodeEvent(t *testing.T, event domain.OrderEvent) []byte {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return data
}

func TestHandleEvent_SendsConfirmation(t *testing.T) {
	sender := &mockSender{}
	handler := NewHandler(sender)

	event := domain.OrderEvent{
		Event:         domain.EventOrderCreated,
		OrderID:       1,
		ProductID:     "7",
		Quantity:      2,
		TotalPrice:    20.0,
		Status:        "CREATED",
		CustomerEmail: "buyer@example.com",
	}

	err := handler.HandleEvent(context.Background(), nil, encodeEvent(t, event))
	require.NoError(t, err)
	require.Equal(t, 1, sender.count())
	assert.Equal(t, int64(1), sender.sent[0].OrderID)
	assert.Equal(t, "buyer@example.com", sender.sent[0].CustomerEmail)
}

func TestHandleEvent_DuplicateDeliverySkipped(t *testing.T) {
	sender := &mockSender{}
	handler := NewHandler(sender)

	event := domain.OrderEvent{
		Event:         domain.EventOrderCreated,
		OrderID:       9,
		CustomerEmail: "buyer@example.com",
	}
	payload := encodeEvent(t, event)

	require.NoError(t, handler.HandleEvent(context.Background(), nil, payload))
	require.NoError(t, handler.HandleEvent(context.Background(), nil, payload))
	require.NoError(t, handler.HandleEvent(context.Background(), nil, payload))

	assert.Equal(t, 1, sender.count())
}

func TestHandleEvent_IgnoresOtherEventTypes(t *testing.T) {
	sender := &mockSender{}
	handler := NewHandler(sender)

	event := domain.OrderEvent{
		Event:         "ORDER_CANCELLED",
		OrderID:       3,
		CustomerEmail: "buyer@example.com",
	}

	err := handler.HandleEvent(context.Background(), nil, encodeEvent(t, event))
	require.NoError(t, err)
	assert.Zero(t, sender.count())
}

func TestHandleEvent_MalformedPayload(t *testing.T) {
	sender := &mockSender{}
	handler := NewHandler(sender)

	err := handler.HandleEvent(context.Background(), nil, []byte("{not json"))
	assert.Error(t, err)
	assert.Zero(t, sender.count())
}

func TestHandleEvent_EmailFailureIsNonFatal(t *testing.T) {
	sender := &mockSender{sendErr: errors.New("smtp down")}
	handler := NewHandler(sender)

	event := domain.OrderEvent{
		Event:         domain.EventOrderCreated,
		OrderID:       5,
		CustomerEmail: "buyer@example.com",
	}

	err := handler.HandleEvent(context.Background(), nil, encodeEvent(t, event))
	assert.NoError(t, err)
}

func TestHandleEvent_MissingEmailSkipped(t *testing.T) {
	sender := &mockSender{}
	handler := NewHandler(sender)

	event := domain.OrderEvent{
		Event:   domain.EventOrderCreated,
		OrderID: 6,
	}

	err := handler.HandleEvent(context.Background(), nil, encodeEvent(t, event))
	require.NoError(t, err)
	assert.Zero(t, sender.count())
}

func TestHandleEvent_ConcurrentDuplicatesSendOnce(t *testing.T) {
	sender := &mockSender{}
	handler := NewHandler(sender)

	event := domain.OrderEvent{
		Event:         domain.EventOrderCreated,
		OrderID:       11,
		CustomerEmail: "buyer@example.com",
	}
	payload := encodeEvent(t, event)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = handler.HandleEvent(context.Background(), nil, payload)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, sender.count())
}
