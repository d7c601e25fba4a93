// Package resilience guards calls to optional backing services. A Breaker
// stops calling a service after repeated failures; Retry re-runs an operation
// with exponential backoff.
package resilience

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned by Breaker.Do while the breaker rejects calls.
var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig controls when a Breaker opens and how long it stays open.
// Zero values take the defaults (5 failures, 30s cool-down, 1 probe).
type BreakerConfig struct {
	Failures  int
	Cooldown  time.Duration
	MaxProbes int
	Clock     func() time.Time
}

// Breaker opens after Failures consecutive errors. Once Cooldown has passed it
// lets up to MaxProbes calls through; a successful probe closes it again.
type Breaker struct {
	name   string
	cfg    BreakerConfig
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probes   int
}

func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	if cfg.Failures <= 0 {
		cfg.Failures = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.MaxProbes <= 0 {
		cfg.MaxProbes = 1
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Breaker{
		name:   name,
		cfg:    cfg,
		logger: slog.Default().With("component", "circuit-breaker", "name", name),
	}
}

// Do runs fn unless the breaker is open and records its outcome.
func (b *Breaker) Do(fn func() error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn()
	b.record(err)
	return err
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case Open:
		wait := b.cfg.Cooldown - b.cfg.Clock().Sub(b.openedAt)
		if wait > 0 {
			return fmt.Errorf("%w: %s (retry after %v)", ErrOpen, b.name, wait)
		}
		b.state = HalfOpen
		b.probes = 1
		b.logger.Info("circuit half-open", "after", b.cfg.Cooldown)
	case HalfOpen:
		if b.probes >= b.cfg.MaxProbes {
			return fmt.Errorf("%w: %s (probe in flight)", ErrOpen, b.name)
		}
		b.probes++
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		if b.state == HalfOpen {
			b.logger.Info("circuit closed")
		}
		b.state = Closed
		b.failures = 0
		b.probes = 0
		return
	}
	b.failures++
	switch {
	case b.state == HalfOpen:
		b.trip()
		b.logger.Warn("circuit re-opened, probe failed", "error", err)
	case b.state == Closed && b.failures >= b.cfg.Failures:
		b.trip()
		b.logger.Warn("circuit opened", "consecutive_failures", b.failures, "error", err)
	}
}

func (b *Breaker) trip() {
	b.state = Open
	b.openedAt = b.cfg.Clock()
	b.probes = 0
}
