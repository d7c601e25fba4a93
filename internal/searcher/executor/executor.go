package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/pool"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/bm25-search/pkg/metrics"
)

type SearchResult struct {
	Query     string             `json:"query"`
	Terms     []string           `json:"terms"`
	TotalDocs int                `json:"total_docs"`
	Results   []ranker.ScoredDoc `json:"results"`
	TermStats map[string]int     `json:"term_stats"`
}

// Executor scores queries against one engine using a shared worker pool.
// Terms are scored one after another; documents within a term are scored in
// parallel and summed into the score vector by the calling goroutine.
type Executor struct {
	engine  *indexer.Engine
	pool    *pool.Pool
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Executor)

// WithMetrics records per-term batch latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

func New(engine *indexer.Engine, workers *pool.Pool, opts ...Option) *Executor {
	e := &Executor{
		engine: engine,
		pool:   workers,
		logger: slog.Default().With("component", "query-executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) Engine() *indexer.Engine { return e.engine }

// Score returns the BM25 score vector for terms, index-aligned with the
// corpus. Any scoring failure discards the whole vector. Cancellation is
// observed between terms.
func (e *Executor) Score(ctx context.Context, terms []string, params ranker.Params) ([]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	n := e.engine.TotalDocs()
	total := make([]float64, n)
	batch := make([]float64, n)
	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scoring cancelled before term %q: %w", term, err)
		}
		start := time.Now()
		stats := ranker.CorpusStats{
			TotalDocs:    n,
			AvgDocLength: e.engine.AvgDocLength(),
			DocFreq:      e.engine.DocFreq(term),
		}
		err := e.pool.Map(ctx, n, func(i int) error {
			s, err := ranker.ScoreTerm(term, e.engine.Text(i), e.engine.DocLength(i), stats, params)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			batch[i] = s
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scoring term %q: %w", term, err)
		}
		for i, s := range batch {
			total[i] += s
		}
		elapsed := time.Since(start)
		if e.metrics != nil {
			e.metrics.TermBatchDuration.Observe(elapsed.Seconds())
		}
		e.logger.Debug("term scored",
			"term", term,
			"doc_freq", stats.DocFreq,
			"docs", n,
			"duration", elapsed,
		)
	}
	return total, nil
}

// Execute scores plan and returns the top limit documents. A negative limit
// returns the full ranking.
func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan, params ranker.Params, limit int) (*SearchResult, error) {
	start := time.Now()
	scores, err := e.Score(ctx, plan.Terms, params)
	if err != nil {
		return nil, err
	}
	var ranked []ranker.ScoredDoc
	if limit < 0 {
		ranked = ranker.Rank(scores)
	} else {
		ranked = ranker.TopK(scores, limit)
	}
	for i := range ranked {
		ranked[i].DocID = e.engine.DocID(ranked[i].Index)
	}
	termStats := make(map[string]int, len(plan.Terms))
	for _, term := range plan.Terms {
		termStats[term] = e.engine.DocFreq(term)
	}
	e.logger.Info("query executed",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"docs", len(scores),
		"results", len(ranked),
		"duration", time.Since(start),
	)
	return &SearchResult{
		Query:     plan.RawQuery,
		Terms:     plan.Terms,
		TotalDocs: len(scores),
		Results:   ranked,
		TermStats: termStats,
	}, nil
}
