package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/order-service/internal/domain"
	"github.com/example/order-service/internal/retry"
)

var errNoBrokers = errors.New("no brokers configured")

// Producer publishes order events to a Kafka topic. It is best-effort: if
// the broker was never reachable at startup, or a write fails, the event is
// logged and dropped rather than failing the caller.
type Producer struct {
	writer  *kafka.Writer
	brokers []string
	dial    func(ctx context.Context, network, address string) (io.Closer, error)
	started atomic.Bool
}

// NewProducer creates a producer for topic. Call Start before publishing.
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{
		writer:  writer,
		brokers: brokers,
		dial: func(ctx context.Context, network, address string) (io.Closer, error) {
			return kafka.DialContext(ctx, network, address)
		},
	}
}

// Start verifies broker connectivity under the given retry policy. Each
// attempt tries every configured broker; one reachable broker is enough. If
// the budget is exhausted the producer stays unstarted and every Publish
// becomes a logged no-op; order operations proceed regardless.
func (p *Producer) Start(ctx context.Context, policy retry.Policy) error {
	if len(p.brokers) == 0 {
		return errNoBrokers
	}
	attempt := 0
	err := policy.Run(ctx, func() error {
		attempt++
		var lastErr error
		for _, broker := range p.brokers {
			conn, err := p.dial(ctx, "tcp", broker)
			if err != nil {
				log.Printf("[Producer] Broker %s unreachable (attempt %d/%d): %v", broker, attempt, policy.MaxAttempts, err)
				lastErr = err
				continue
			}
			conn.Close()
			log.Printf("[Producer] Connected to broker %s", broker)
			return nil
		}
		return lastErr
	})
	if err != nil {
		log.Printf("[Producer] Could not reach any broker after %d attempts; events will be dropped", policy.MaxAttempts)
		return err
	}
	p.started.Store(true)
	return nil
}

// Publish sends an order event keyed by order id. The result reports whether
// the event was enqueued or dropped; it is never a hard failure.
func (p *Producer) Publish(ctx context.Context, event domain.OrderEvent) domain.PublishResult {
	if !p.started.Load() {
		log.Printf("[Producer] Not connected, dropping %s for order %d", event.Event, event.OrderID)
		return domain.PublishDropped
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Producer] Marshal %s for order %d: %v", event.Event, event.OrderID, err)
		return domain.PublishDropped
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.OrderID, 10)),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Printf("[Producer] Write %s for order %d: %v", event.Event, event.OrderID, err)
		return domain.PublishDropped
	}
	return domain.PublishEnqueued
}

// Close releases the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
