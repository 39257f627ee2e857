package kafka

import (
	"context"
	"errors"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/example/order-service/internal/retry"
)

// MessageHandler processes one delivered message. Delivery is at-least-once;
// handlers must tolerate duplicates.
type MessageHandler func(ctx context.Context, key, value []byte) error

// Consumer is a long-running subscription loop over a topic. Read failures
// are retried under a bounded policy; exhausting the budget ends the loop
// terminally and the surrounding process owns any restart.
type Consumer struct {
	reader *kafka.Reader
	policy retry.Policy
}

// NewConsumer creates a consumer in groupID.
func NewConsumer(brokers []string, topic, groupID string, policy retry.Policy) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, policy: policy}
}

// Consume reads messages until ctx is cancelled or the retry budget for a
// failing read is exhausted. Handler errors are logged and the loop
// continues; the failed message may be redelivered.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.readWithRetry(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[Consumer] Giving up after %d attempts: %v", c.policy.MaxAttempts, err)
			return err
		}

		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			log.Printf("[Consumer] Error handling message: %v", err)
		}
	}
}

func (c *Consumer) readWithRetry(ctx context.Context) (kafka.Message, error) {
	var msg kafka.Message
	attempt := 0
	err := c.policy.Run(ctx, func() error {
		attempt++
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(err)
			}
			if errors.Is(err, kafka.UnknownTopicOrPartition) {
				log.Printf("[Consumer] Topic not yet provisioned (attempt %d/%d), waiting: %v",
					attempt, c.policy.MaxAttempts, err)
			} else {
				log.Printf("[Consumer] Read failed (attempt %d/%d): %v", attempt, c.policy.MaxAttempts, err)
			}
			return err
		}
		msg = m
		return nil
	})
	return msg, err
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
