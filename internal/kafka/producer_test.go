package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/order-service/internal/domain"
	"github.com/example/order-service/internal/retry"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fakeDialer fails for the addresses in down and records every dial.
type fakeDialer struct {
	mu    sync.Mutex
	down  map[string]bool
	dials []string
}

func (d *fakeDialer) dial(ctx context.Context, network, address string) (io.Closer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials = append(d.dials, address)
	if d.down[address] {
		return nil, errors.New("connection refused")
	}
	return nopCloser{}, nil
}

func testPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, Interval: time.Millisecond}
}

func TestStart_FallsBackToNextBroker(t *testing.T) {
	p := NewProducer([]string{"down:9092", "up:9092"}, "order-events")
	dialer := &fakeDialer{down: map[string]bool{"down:9092": true}}
	p.dial = dialer.dial

	err := p.Start(context.Background(), testPolicy())
	require.NoError(t, err)
	assert.True(t, p.started.Load())
	// First attempt tried the dead broker, then succeeded on the live one.
	assert.Equal(t, []string{"down:9092", "up:9092"}, dialer.dials)
}

func TestStart_AllBrokersDown(t *testing.T) {
	p := NewProducer([]string{"a:9092", "b:9092"}, "order-events")
	dialer := &fakeDialer{down: map[string]bool{"a:9092": true, "b:9092": true}}
	p.dial = dialer.dial

	err := p.Start(context.Background(), testPolicy())
	require.Error(t, err)
	assert.False(t, p.started.Load())
	// Every attempt tried every broker before counting as failed.
	assert.Len(t, dialer.dials, 6)
}

func TestStart_NoBrokers(t *testing.T) {
	p := NewProducer(nil, "order-events")
	err := p.Start(context.Background(), testPolicy())
	assert.Error(t, err)
	assert.False(t, p.started.Load())
}

func TestPublish_UnstartedDropsEvent(t *testing.T) {
	p := NewProducer([]string{"down:9092"}, "order-events")
	dialer := &fakeDialer{down: map[string]bool{"down:9092": true}}
	p.dial = dialer.dial

	require.Error(t, p.Start(context.Background(), testPolicy()))

	result := p.Publish(context.Background(), domain.OrderEvent{
		Event:   domain.EventOrderCreated,
		OrderID: 1,
	})
	assert.Equal(t, domain.PublishDropped, result)
}
