package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_SucceedsWithinBudget(t *testing.T) {
	p := Policy{MaxAttempts: 3, Interval: time.Millisecond}

	calls := 0
	err := p.Run(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPolicy_ExhaustsBudget(t *testing.T) {
	p := Policy{MaxAttempts: 4, Interval: time.Millisecond}
	sentinel := errors.New("still down")

	calls := 0
	err := p.Run(context.Background(), func() error {
		calls++
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 4, calls)
}

func TestPolicy_PermanentStopsEarly(t *testing.T) {
	p := Policy{MaxAttempts: 5, Interval: time.Millisecond}
	sentinel := errors.New("hard failure")

	calls := 0
	err := p.Run(context.Background(), func() error {
		calls++
		return Permanent(sentinel)
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestPolicy_ContextCancellation(t *testing.T) {
	p := Policy{MaxAttempts: 100, Interval: 50 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := p.Run(ctx, func() error { return errors.New("transient") })
	assert.Error(t, err)
}

func TestPolicy_ZeroAttemptsStillRunsOnce(t *testing.T) {
	p := Policy{}

	calls := 0
	_ = p.Run(context.Background(), func() error {
		calls++
		return errors.New("x")
	})

	assert.Equal(t, 1, calls)
}
