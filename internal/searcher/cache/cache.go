package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/redis"
)

const keyPrefix = "bm25:"

// Store is the subset of *pkgredis.Client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// QueryCache stores search results keyed by corpus fingerprint, BM25
// parameters, limit and the exact term sequence. Term order is part of the key
// because summation order affects the low bits of the scores.
type QueryCache struct {
	store       Store
	ttl         time.Duration
	fingerprint string
	group       singleflight.Group
	metrics     *metrics.Metrics
	logger      *slog.Logger
	hits        atomic.Int64
	misses      atomic.Int64
}

func New(store Store, ttl time.Duration, fingerprint string, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		store:       store,
		ttl:         ttl,
		fingerprint: fingerprint,
		metrics:     m,
		logger:      slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, terms []string, params ranker.Params, limit int) (*executor.SearchResult, bool) {
	key := c.buildKey(terms, params, limit)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	c.logger.Debug("cache hit", "terms", terms, "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, terms []string, params ranker.Params, limit int, result *executor.SearchResult) {
	key := c.buildKey(terms, params, limit)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns a cached result or runs computeFn once per key across
// concurrent callers. Errors are never cached.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	terms []string,
	params ranker.Params,
	limit int,
	computeFn func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, terms, params, limit); ok {
		return result, true, nil
	}
	key := c.buildKey(terms, params, limit)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, terms, params, limit, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*executor.SearchResult), false, nil
}

// Invalidate removes every cached result for this corpus.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	pattern := keyPrefix + c.fingerprint + ":*"
	deleted, err := c.store.FlushByPattern(ctx, pattern)
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

func (c *QueryCache) buildKey(terms []string, params ranker.Params, limit int) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatFloat(params.K1, 'g', -1, 64))
	sb.WriteByte('|')
	sb.WriteString(strconv.FormatFloat(params.B, 'g', -1, 64))
	sb.WriteByte('|')
	sb.WriteString(params.TermFrequency)
	sb.WriteByte('|')
	sb.WriteString(strconv.Itoa(limit))
	for _, term := range terms {
		sb.WriteByte(0)
		sb.WriteString(term)
	}
	hash := sha256.Sum256([]byte(sb.String()))
	return fmt.Sprintf("%s%s:%x", keyPrefix, c.fingerprint, hash[:16])
}
