// Package pool provides a fixed-size, long-lived worker pool for CPU-bound
// batches. Each Map call is a join point: it returns only after every item of
// its batch has run or the batch has been aborted by an error.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	apperrors "github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/errors"
)

// chunksPerWorker controls how finely a batch is split so that uneven
// documents do not leave workers idle.
const chunksPerWorker = 4

var ErrPoolClosed = errors.New("worker pool closed")

type Pool struct {
	tasks   chan func()
	workers int
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	logger  *slog.Logger
}

// New starts workers goroutines. A non-positive count uses GOMAXPROCS.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		tasks:   make(chan func(), workers),
		workers: workers,
		logger:  slog.Default().With("component", "worker-pool"),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.work()
	}
	p.logger.Info("worker pool started", "workers", workers)
	return p
}

func (p *Pool) work() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

func (p *Pool) Workers() int { return p.workers }

// Closed reports whether Close has been called.
func (p *Pool) Closed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// Map calls fn for every index in [0, n) across the workers and blocks until
// all calls finish. The first error stops the remaining items of the batch and
// is returned. A panic in fn is returned as ErrWorkerFailure. fn must not call
// Map on the same pool.
func (p *Pool) Map(ctx context.Context, n int, fn func(i int) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n <= 0 {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	b := &batch{}
	size := chunkSize(n, p.workers)
	for start := 0; start < n; start += size {
		start := start
		end := min(start+size, n)
		b.wg.Add(1)
		p.tasks <- func() { b.run(start, end, fn) }
	}
	b.wg.Wait()
	return b.err
}

// Close stops the workers once in-flight batches complete. It is safe to call
// more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

func chunkSize(n, workers int) int {
	chunks := workers * chunksPerWorker
	size := (n + chunks - 1) / chunks
	if size < 1 {
		size = 1
	}
	return size
}

type batch struct {
	wg      sync.WaitGroup
	once    sync.Once
	aborted atomic.Bool
	err     error
}

func (b *batch) run(start, end int, fn func(i int) error) {
	defer b.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			b.fail(fmt.Errorf("%w: panic scoring item: %v", apperrors.ErrWorkerFailure, r))
		}
	}()
	for i := start; i < end; i++ {
		if b.aborted.Load() {
			return
		}
		if err := fn(i); err != nil {
			b.fail(err)
			return
		}
	}
}

func (b *batch) fail(err error) {
	b.once.Do(func() {
		b.err = err
		b.aborted.Store(true)
	})
}
