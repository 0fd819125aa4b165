// Package ranks serves PageRank results for the searcher's loaded graph.
// Results for the configured default options are computed once per algorithm
// and reused, since the graph never changes for the life of the process.
// Other options are computed on demand and not kept.
package ranks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/graph"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/pagerank"
	apperrors "github.com/Adithya-Monish-Kumar-K/minisearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/metrics"
)

type Service struct {
	graph    *graph.Graph
	defaults pagerank.Options
	metrics  *metrics.Metrics
	logger   *slog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	memo  map[pagerank.Algorithm]*pagerank.Result
}

// New creates a service over g. m may be nil.
func New(g *graph.Graph, defaults pagerank.Options, m *metrics.Metrics) *Service {
	return &Service{
		graph:    g,
		defaults: defaults,
		metrics:  m,
		logger:   slog.Default().With("component", "rank-service"),
		memo:     make(map[pagerank.Algorithm]*pagerank.Result),
	}
}

func (s *Service) Defaults() pagerank.Options { return s.defaults }

func (s *Service) NodeCount() int { return s.graph.Len() }

// Compute returns the ranks for alg under opts. Invalid options are reported
// before any work is done. Concurrent identical requests share one run.
func (s *Service) Compute(ctx context.Context, alg pagerank.Algorithm, opts pagerank.Options) (*pagerank.Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	memoize := opts == s.defaults
	if memoize {
		s.mu.RLock()
		res, ok := s.memo[alg]
		s.mu.RUnlock()
		if ok {
			return res, nil
		}
	}

	key := memoKey(alg, opts)

	ch := s.group.DoChan(key, func() (interface{}, error) {
		res, err := pagerank.Run(alg, s.graph, opts)
		s.observe(alg, res, err)
		if err != nil {
			return nil, err
		}
		if memoize {
			s.mu.Lock()
			s.memo[alg] = res
			s.mu.Unlock()
		}
		s.logger.Info("ranks computed",
			"algorithm", alg,
			"nodes", s.graph.Len(),
			"iterations", res.Iterations,
			"converged", res.Converged,
			"delta", res.Delta,
			"duration", res.Duration,
		)
		return res, nil
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for %s ranks: %w", apperrors.ErrTimeout, alg, ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*pagerank.Result), nil
	}
}

// Agreement runs both variants with the default options and returns the
// largest per-document difference between them.
func (s *Service) Agreement(ctx context.Context) (float64, error) {
	pull, err := s.Compute(ctx, pagerank.AlgorithmPull, s.defaults)
	if err != nil {
		return 0, fmt.Errorf("pull ranks: %w", err)
	}
	push, err := s.Compute(ctx, pagerank.AlgorithmPush, s.defaults)
	if err != nil {
		return 0, fmt.Errorf("push ranks: %w", err)
	}
	return pagerank.MaxDelta(pull.Ranks, push.Ranks), nil
}

func (s *Service) observe(alg pagerank.Algorithm, res *pagerank.Result, err error) {
	if s.metrics == nil {
		return
	}
	a := string(alg)
	if err != nil {
		s.metrics.RankRunsTotal.WithLabelValues(a, "error").Inc()
		return
	}
	s.metrics.RankRunsTotal.WithLabelValues(a, "ok").Inc()
	s.metrics.RankDuration.WithLabelValues(a).Observe(res.Duration.Seconds())
	s.metrics.RankIterations.WithLabelValues(a).Add(float64(res.Iterations))
}

func (s *Service) memoized() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memo)
}

func memoKey(alg pagerank.Algorithm, o pagerank.Options) string {
	return fmt.Sprintf("%s|%g|%d|%g|%d", alg, o.Damping, o.Iterations, o.Tolerance, o.Workers)
}
