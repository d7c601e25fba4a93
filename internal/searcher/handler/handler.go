package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/middleware"
)

type SearchExecutor interface {
	Execute(ctx context.Context, plan *parser.QueryPlan, params ranker.Params, limit int) (*executor.SearchResult, error)
}

// Options configures a Handler. Cache, Collector and Metrics are optional.
type Options struct {
	Params       ranker.Params
	DefaultLimit int
	MaxResults   int
	Fingerprint  string
	Cache        *cache.QueryCache
	Collector    *analytics.Collector
	Metrics      *metrics.Metrics
}

type Handler struct {
	executor SearchExecutor
	opts     Options
	logger   *slog.Logger
}

func New(exec SearchExecutor, opts Options) *Handler {
	return &Handler{
		executor: exec,
		opts:     opts,
		logger:   slog.Default().With("component", "search-handler"),
	}
}

// Search handles GET /api/v1/search?q=...&limit=...&k1=...&b=...
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)
	values := r.URL.Query()

	if !values.Has("q") {
		h.fail(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}
	query := values.Get("q")

	limit, err := h.parseLimit(values.Get("limit"))
	if err != nil {
		h.fail(w, err)
		return
	}
	params, err := h.parseParams(values.Get("k1"), values.Get("b"))
	if err != nil {
		h.fail(w, err)
		return
	}

	plan := parser.Parse(query)
	compute := func() (*executor.SearchResult, error) {
		return h.executor.Execute(ctx, plan, params, limit)
	}
	var result *executor.SearchResult
	cacheHit := false
	if h.opts.Cache != nil {
		result, cacheHit, err = h.opts.Cache.GetOrCompute(ctx, plan.Terms, params, limit, compute)
	} else {
		result, err = compute()
	}
	latency := time.Since(start)

	if err != nil {
		log.Error("search execution failed", "query", query, "error", err)
		h.track(ctx, analytics.EventFailed, plan, nil, false, latency)
		h.fail(w, err)
		return
	}

	log.Info("search completed",
		"query", query,
		"total_docs", result.TotalDocs,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	if h.opts.Metrics != nil {
		status := "miss"
		if cacheHit {
			status = "hit"
		}
		h.opts.Metrics.SearchQueriesTotal.WithLabelValues("ok").Inc()
		h.opts.Metrics.SearchLatency.WithLabelValues(status).Observe(latency.Seconds())
	}
	eventType := analytics.EventSearch
	if len(result.Results) == 0 || result.Results[0].Score == 0 {
		eventType = analytics.EventZeroResult
	}
	h.track(ctx, eventType, plan, result, cacheHit, latency)

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.opts.Cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.opts.Cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.opts.Cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	if err := h.opts.Cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) parseLimit(raw string) (int, error) {
	if raw == "" {
		return h.opts.DefaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "limit must be a non-negative integer")
	}
	if h.opts.MaxResults > 0 && limit > h.opts.MaxResults {
		limit = h.opts.MaxResults
	}
	return limit, nil
}

func (h *Handler) parseParams(rawK1, rawB string) (ranker.Params, error) {
	params := h.opts.Params
	if rawK1 != "" {
		k1, err := strconv.ParseFloat(rawK1, 64)
		if err != nil {
			return params, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "k1 must be a number")
		}
		params.K1 = k1
	}
	if rawB != "" {
		b, err := strconv.ParseFloat(rawB, 64)
		if err != nil {
			return params, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "b must be a number")
		}
		params.B = b
	}
	if err := params.Validate(); err != nil {
		return params, err
	}
	return params, nil
}

func (h *Handler) track(ctx context.Context, eventType analytics.EventType, plan *parser.QueryPlan, result *executor.SearchResult, cacheHit bool, latency time.Duration) {
	if h.opts.Collector == nil {
		return
	}
	event := analytics.SearchEvent{
		Type:        eventType,
		Query:       plan.RawQuery,
		Terms:       plan.Terms,
		LatencyMs:   latency.Milliseconds(),
		CacheHit:    cacheHit,
		Fingerprint: h.opts.Fingerprint,
		Timestamp:   time.Now().UTC(),
		RequestID:   middleware.GetRequestID(ctx),
	}
	if result != nil {
		event.TotalDocs = result.TotalDocs
		event.Returned = len(result.Results)
		if len(result.Results) > 0 {
			event.TopDocID = result.Results[0].DocID
			event.TopScore = result.Results[0].Score
		}
	}
	h.opts.Collector.Track(event)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		status = http.StatusServiceUnavailable
	}
	if h.opts.Metrics != nil {
		outcome := "error"
		if status == http.StatusBadRequest {
			outcome = "invalid"
		}
		h.opts.Metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	}
	message := "search failed"
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		message = appErr.Message
	case status == http.StatusBadRequest:
		message = err.Error()
	}
	h.writeError(w, status, message)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
