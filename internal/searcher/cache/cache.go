// Package cache keeps executed query results in Redis. Keys cover the corpus
// namespace, the normalized terms, the evaluation strategy and the limit;
// concurrent misses for the same key are coalesced with singleflight.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/evaluator"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/minisearch/pkg/redis"
)

const keyPrefix = "search:"

type QueryCache struct {
	client    *pkgredis.Client
	namespace string
	ttl       time.Duration
	group     singleflight.Group
	metrics   *metrics.Metrics
	logger    *slog.Logger
	hits      atomic.Int64
	misses    atomic.Int64
}

// Option configures a QueryCache.
type Option func(*QueryCache)

// WithNamespace scopes keys to one corpus, typically its fingerprint, so a
// searcher started on different data never reads another corpus's results.
func WithNamespace(ns string) Option {
	return func(c *QueryCache) { c.namespace = ns }
}

// New creates a cache. m may be nil.
func New(client *pkgredis.Client, ttl time.Duration, m *metrics.Metrics, opts ...Option) *QueryCache {
	c := &QueryCache{
		client:  client,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a cached result, echoing plan's raw query.
func (c *QueryCache) Get(ctx context.Context, plan *parser.QueryPlan, strategy evaluator.Strategy, limit int) (*executor.SearchResult, bool) {
	key := c.key(plan, strategy, limit)
	result, found, err := pkgredis.GetJSON[*executor.SearchResult](ctx, c.client, key)
	if err != nil {
		c.logger.Error("cache get failed", "key", key, "error", err)
	}
	if !found || result == nil {
		c.miss()
		return nil, false
	}
	c.hit()
	c.logger.Debug("cache hit", "query", plan.RawQuery, "key", key)
	result.Query = plan.RawQuery
	return result, true
}

func (c *QueryCache) Set(ctx context.Context, plan *parser.QueryPlan, strategy evaluator.Strategy, limit int, result *executor.SearchResult) {
	key := c.key(plan, strategy, limit)
	if err := c.client.SetJSON(ctx, key, result, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or runs computeFn once per key
// across concurrent callers. The boolean reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	plan *parser.QueryPlan,
	strategy evaluator.Strategy,
	limit int,
	computeFn func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, plan, strategy, limit); ok {
		return result, true, nil
	}
	key := c.key(plan, strategy, limit)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.Get(ctx, plan, strategy, limit); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, plan, strategy, limit, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	shared := *val.(*executor.SearchResult)
	shared.Query = plan.RawQuery
	return &shared, false, nil
}

// Invalidate drops every cached query result in every namespace.
func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return deleted, nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

func (c *QueryCache) hit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

func (c *QueryCache) key(plan *parser.QueryPlan, strategy evaluator.Strategy, limit int) string {
	return buildKey(c.namespace, plan, strategy, limit)
}

func buildKey(namespace string, plan *parser.QueryPlan, strategy evaluator.Strategy, limit int) string {
	raw := fmt.Sprintf("%s|%s|limit=%d", plan.Key(), strategy, limit)
	hash := sha256.Sum256([]byte(raw))
	if namespace == "" {
		return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
	}
	return fmt.Sprintf("%s%s:%x", keyPrefix, namespace, hash[:16])
}
