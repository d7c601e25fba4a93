package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

var errBackend = errors.New("backend down")

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := NewBreaker("redis", BreakerConfig{Failures: 2, Cooldown: time.Second, Clock: clock.Now})

	fail := func() error { return errBackend }
	assert.ErrorIs(t, b.Do(fail), errBackend)
	assert.Equal(t, Closed, b.State())
	assert.ErrorIs(t, b.Do(fail), errBackend)
	assert.Equal(t, Open, b.State())

	called := false
	err := b.Do(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker("redis", BreakerConfig{Failures: 2})
	_ = b.Do(func() error { return errBackend })
	require.NoError(t, b.Do(func() error { return nil }))
	_ = b.Do(func() error { return errBackend })
	assert.Equal(t, Closed, b.State())
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := NewBreaker("redis", BreakerConfig{Failures: 1, Cooldown: time.Second, Clock: clock.Now})
	_ = b.Do(func() error { return errBackend })
	require.Equal(t, Open, b.State())

	clock.now = clock.now.Add(2 * time.Second)
	assert.ErrorIs(t, b.Do(func() error { return errBackend }), errBackend)
	assert.Equal(t, Open, b.State(), "failed probe re-opens")

	clock.now = clock.now.Add(2 * time.Second)
	require.NoError(t, b.Do(func() error { return nil }))
	assert.Equal(t, Closed, b.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "half-open", HalfOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestRetrySucceedsEventually(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "connect", Backoff{Attempts: 3, Initial: time.Millisecond}, func(context.Context) error {
		calls++
		if calls < 3 {
			return errBackend
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "connect", Backoff{Attempts: 2, Initial: time.Millisecond}, func(context.Context) error {
		calls++
		return errBackend
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, 2, calls)
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, "connect", Backoff{Attempts: 5, Initial: time.Hour}, func(context.Context) error {
		calls++
		cancel()
		return errBackend
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestBackoffDelayIsCapped(t *testing.T) {
	b := Backoff{Initial: time.Second, Max: 3 * time.Second, Jitter: -1}.withDefaults()
	assert.Equal(t, time.Second, b.delay(1))
	assert.Equal(t, 2*time.Second, b.delay(2))
	assert.Equal(t, 3*time.Second, b.delay(5))
}
