package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/evaluator"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/metrics"
)

type SearchResult struct {
	Query     string             `json:"query"`
	Strategy  string             `json:"strategy"`
	TotalHits int                `json:"total_hits"`
	Results   []ranker.ScoredDoc `json:"results"`
	TermStats map[string]int     `json:"term_stats"`
}

// Option configures an Executor.
type Option func(*Executor)

// WithWorkers lets TAAT queries scan postings lists on up to n goroutines.
func WithWorkers(n int) Option {
	return func(e *Executor) { e.workers = n }
}

// WithMetrics records query counts and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

type Executor struct {
	src     evaluator.Source
	workers int
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(src evaluator.Source, opts ...Option) *Executor {
	e := &Executor{
		src:     src,
		workers: 1,
		logger:  slog.Default().With("component", "query-executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute evaluates plan with the given strategy and truncates the ranked
// list to limit (limit <= 0 keeps all). TotalHits counts every matching
// document before truncation.
func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan, strategy evaluator.Strategy, limit int) (*SearchResult, error) {
	start := time.Now()
	result := &SearchResult{
		Query:     plan.RawQuery,
		Strategy:  string(strategy),
		Results:   []ranker.ScoredDoc{},
		TermStats: make(map[string]int, len(plan.Terms)),
	}
	if plan.Empty() {
		return result, nil
	}

	var (
		ranked []ranker.ScoredDoc
		err    error
	)
	if strategy == evaluator.TAAT && e.workers > 1 {
		ranked, err = evaluator.EvaluateParallelTAAT(ctx, e.src, plan.Terms, e.workers)
	} else {
		ranked, err = evaluator.Evaluate(strategy, e.src, plan.Terms)
	}
	if err != nil {
		e.observe(strategy, "error", 0, start)
		return nil, err
	}

	for _, term := range plan.Terms {
		result.TermStats[term] = len(e.src.PostingList(term))
	}
	result.TotalHits = len(ranked)
	result.Results = merger.TopK(ranked, limit)

	resultType := "hit"
	if len(ranked) == 0 {
		resultType = "zero_result"
	}
	e.observe(strategy, resultType, len(result.Results), start)
	e.logger.Info("query executed",
		"query", plan.RawQuery,
		"strategy", strategy,
		"terms", plan.Terms,
		"hits", result.TotalHits,
		"results", len(result.Results),
		"took", time.Since(start),
	)
	return result, nil
}

func (e *Executor) observe(strategy evaluator.Strategy, resultType string, n int, start time.Time) {
	if e.metrics == nil {
		return
	}
	s := string(strategy)
	e.metrics.SearchQueriesTotal.WithLabelValues(s, resultType).Inc()
	e.metrics.SearchLatency.WithLabelValues(s, "none").Observe(time.Since(start).Seconds())
	if resultType != "error" {
		e.metrics.SearchResultsCount.WithLabelValues(s).Observe(float64(n))
	}
}
