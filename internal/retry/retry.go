// Package retry defines the fixed-budget retry policy shared by the broker
// producer and consumer.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy is a bounded attempt budget with a fixed delay between attempts.
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
}

// Run executes op until it succeeds, the attempt budget is exhausted, or ctx
// is cancelled. Wrap an error with Permanent to stop retrying early.
func (p Policy) Run(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Interval), uint64(attempts-1))
	return backoff.Retry(op, backoff.WithContext(b, ctx))
}

// Permanent marks err as non-retryable so Run returns it immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
