package cache

import (
	"context"
	"time"

	pkgredis "github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/resilience"
)

type guardedStore struct {
	store   Store
	breaker *resilience.Breaker
}

// Guard wraps store so that calls stop reaching it while breaker is open.
// Cache misses are not failures.
func Guard(store Store, breaker *resilience.Breaker) Store {
	return &guardedStore{store: store, breaker: breaker}
}

func (g *guardedStore) Get(ctx context.Context, key string) (string, error) {
	var val string
	var miss error
	err := g.breaker.Do(func() error {
		v, err := g.store.Get(ctx, key)
		if pkgredis.IsNilError(err) {
			miss = err
			return nil
		}
		val = v
		return err
	})
	if miss != nil {
		return "", miss
	}
	return val, err
}

func (g *guardedStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return g.breaker.Do(func() error { return g.store.Set(ctx, key, value, ttl) })
}

func (g *guardedStore) FlushByPattern(ctx context.Context, pattern string) (int64, error) {
	var n int64
	err := g.breaker.Do(func() error {
		var err error
		n, err = g.store.FlushByPattern(ctx, pattern)
		return err
	})
	return n, err
}
