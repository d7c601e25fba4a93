package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/resilience"
)

type downStore struct{ calls int }

var errDown = errors.New("connection refused")

func (s *downStore) Get(context.Context, string) (string, error) {
	s.calls++
	return "", errDown
}

func (s *downStore) Set(context.Context, string, interface{}, time.Duration) error {
	s.calls++
	return errDown
}

func (s *downStore) FlushByPattern(context.Context, string) (int64, error) {
	s.calls++
	return 0, errDown
}

func TestGuardMissesDoNotTripBreaker(t *testing.T) {
	breaker := resilience.NewBreaker("redis", resilience.BreakerConfig{Failures: 1})
	c := New(Guard(newMemoryStore(), breaker), time.Minute, "fp", nil)

	for i := 0; i < 3; i++ {
		_, ok := c.Get(context.Background(), []string{"dog"}, ranker.DefaultParams(), 5)
		assert.False(t, ok)
	}
	assert.Equal(t, resilience.Closed, breaker.State())
}

func TestGuardStopsCallingFailingStore(t *testing.T) {
	store := &downStore{}
	breaker := resilience.NewBreaker("redis", resilience.BreakerConfig{Failures: 2, Cooldown: time.Hour})
	c := New(Guard(store, breaker), time.Minute, "fp", nil)
	p := ranker.DefaultParams()

	calls := 0
	compute := func() (*executor.SearchResult, error) {
		calls++
		return sampleResult(), nil
	}
	for i := 0; i < 5; i++ {
		result, hit, err := c.GetOrCompute(context.Background(), []string{"dog"}, p, 5, compute)
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Len(t, result.Results, len(sampleResult().Results))
	}
	assert.Equal(t, 5, calls, "search still runs while the cache is down")
	assert.Equal(t, resilience.Open, breaker.State())
	assert.Equal(t, 2, store.calls)

	err := c.Invalidate(context.Background())
	assert.ErrorIs(t, err, resilience.ErrOpen)
}
