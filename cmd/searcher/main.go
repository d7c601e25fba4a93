package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/pool"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "corpus_source", cfg.Corpus.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("search service failed", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	c, err := corpus.Load(ctx, cfg)
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}
	engine, err := indexer.NewEngine(c)
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	workers := pool.New(cfg.Search.Workers)
	defer workers.Close()

	m := metrics.New(nil)
	m.CorpusDocuments.Set(float64(engine.TotalDocs()))
	m.VocabularySize.Set(float64(engine.VocabularySize()))
	m.PoolWorkers.Set(float64(workers.Workers()))

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			breaker := resilience.NewBreaker("redis-cache", resilience.BreakerConfig{})
			queryCache = cache.New(cache.Guard(redisClient, breaker), cfg.Redis.CacheTTL, engine.Fingerprint(), m)
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchEvents)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 10000)
		collector.Start(ctx)
		defer collector.Close()
		slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.SearchEvents)
	}

	checker := health.NewChecker()
	checker.Register("engine", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents, %d terms", engine.TotalDocs(), engine.VocabularySize()),
		}
	})
	checker.Register("pool", func(ctx context.Context) health.ComponentHealth {
		if workers.Closed() {
			return health.ComponentHealth{Status: health.StatusDown, Message: "worker pool closed"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d workers", workers.Workers())}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusUp, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	exec := executor.New(engine, workers, executor.WithMetrics(m))
	h := handler.New(exec, handler.Options{
		Params: cfg.Search.Params(),
		DefaultLimit: cfg.Search.TopK,
		MaxResults:   cfg.Search.MaxResults,
		Fingerprint:  engine.Fingerprint(),
		Cache:        queryCache,
		Collector:    collector,
		Metrics:      m,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	servers := []*http.Server{{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}}
	if cfg.Metrics.Enabled {
		servers = append(servers, metrics.NewServer(cfg.Metrics.Port))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			slog.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("server shutdown error", "addr", srv.Addr, "error", err)
			}
		}
		return nil
	})
	return g.Wait()
}
