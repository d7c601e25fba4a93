package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/metrics"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (s *memoryStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = string(value.([]byte))
	s.ttls[key] = ttl
	return nil
}

func (s *memoryStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key := range s.data {
		if ok, _ := path.Match(pattern, key); ok {
			delete(s.data, key)
			n++
		}
	}
	return n, nil
}

func sampleResult() *executor.SearchResult {
	return &executor.SearchResult{
		Query:     "dog",
		Terms:     []string{"dog"},
		TotalDocs: 3,
		Results: []ranker.ScoredDoc{
			{Index: 1, DocID: "b", Score: 0.6666},
			{Index: 0, DocID: "a", Score: 0.4791},
		},
		TermStats: map[string]int{"dog": 2},
	}
}

func TestGetOrComputeCachesResult(t *testing.T) {
	store := newMemoryStore()
	m := metrics.New(prometheus.NewRegistry())
	c := New(store, time.Minute, "fp", m)
	params := ranker.DefaultParams()

	var calls atomic.Int32
	compute := func() (*executor.SearchResult, error) {
		calls.Add(1)
		return sampleResult(), nil
	}

	first, hit, err := c.GetOrCompute(context.Background(), []string{"dog"}, params, 5, compute)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := c.GetOrCompute(context.Background(), []string{"dog"}, params, 5, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))

	for _, ttl := range store.ttls {
		assert.Equal(t, time.Minute, ttl)
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	c := New(newMemoryStore(), time.Minute, "fp", nil)
	boom := errors.New("boom")

	_, _, err := c.GetOrCompute(context.Background(), []string{"dog"}, ranker.DefaultParams(), 5, func() (*executor.SearchResult, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	_, ok := c.Get(context.Background(), []string{"dog"}, ranker.DefaultParams(), 5)
	assert.False(t, ok)
}

func TestKeyDistinguishesInputs(t *testing.T) {
	c := New(newMemoryStore(), time.Minute, "fp", nil)
	p := ranker.DefaultParams()
	base := c.buildKey([]string{"high", "school"}, p, 5)

	assert.Equal(t, base, c.buildKey([]string{"high", "school"}, p, 5))
	assert.NotEqual(t, base, c.buildKey([]string{"school", "high"}, p, 5))
	assert.NotEqual(t, base, c.buildKey([]string{"high school"}, p, 5))
	assert.NotEqual(t, base, c.buildKey([]string{"high", "school"}, p, 10))

	p2 := p
	p2.K1 = 1.5
	assert.NotEqual(t, base, c.buildKey([]string{"high", "school"}, p2, 5))
	p3 := p
	p3.TermFrequency = ranker.TokenFrequency
	assert.NotEqual(t, base, c.buildKey([]string{"high", "school"}, p3, 5))

	other := New(newMemoryStore(), time.Minute, "other", nil)
	assert.NotEqual(t, base, other.buildKey([]string{"high", "school"}, p, 5))
	assert.Contains(t, base, "bm25:fp:")
}

func TestInvalidateRemovesOnlyThisCorpus(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Minute, "fp", nil)
	other := New(store, time.Minute, "other", nil)
	p := ranker.DefaultParams()

	c.Set(context.Background(), []string{"dog"}, p, 5, sampleResult())
	other.Set(context.Background(), []string{"dog"}, p, 5, sampleResult())

	require.NoError(t, c.Invalidate(context.Background()))
	_, ok := c.Get(context.Background(), []string{"dog"}, p, 5)
	assert.False(t, ok)
	_, ok = other.Get(context.Background(), []string{"dog"}, p, 5)
	assert.True(t, ok)
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	store := newMemoryStore()
	c := New(store, time.Minute, "fp", nil)
	p := ranker.DefaultParams()
	store.data[c.buildKey([]string{"dog"}, p, 5)] = "{not json"

	_, ok := c.Get(context.Background(), []string{"dog"}, p, 5)
	assert.False(t, ok)
	_, misses := c.Stats()
	assert.Equal(t, int64(1), misses)
}
