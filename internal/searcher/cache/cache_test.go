package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/evaluator"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/config"
	pkgredis "github.com/Adithya-Monish-Kumar-K/minisearch/pkg/redis"
)

func newCache(t *testing.T) (*QueryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := pkgredis.NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return New(client, time.Minute, nil), mr
}

func sampleResult() *executor.SearchResult {
	return &executor.SearchResult{
		Query:     "cat dog",
		Strategy:  "daat",
		TotalHits: 2,
		Results: []ranker.ScoredDoc{
			{DocID: "doc2", Score: 2},
			{DocID: "doc1", Score: 1},
		},
		TermStats: map[string]int{"cat": 2, "dog": 1},
	}
}

func TestGetOrComputeCachesResult(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	plan := parser.Parse("cat dog")
	calls := 0
	compute := func() (*executor.SearchResult, error) {
		calls++
		return sampleResult(), nil
	}

	res, hit, err := c.GetOrCompute(ctx, plan, evaluator.DAAT, 10, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, sampleResult(), res)

	res, hit, err = c.GetOrCompute(ctx, parser.Parse("CAT dog dog"), evaluator.DAAT, 10, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	want := sampleResult()
	want.Query = "CAT dog dog"
	assert.Equal(t, want, res)
	assert.Equal(t, 1, calls)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

func TestKeySeparatesStrategyAndLimit(t *testing.T) {
	plan := parser.Parse("cat")
	assert.NotEqual(t, buildKey("", plan, evaluator.DAAT, 10), buildKey("", plan, evaluator.TAAT, 10))
	assert.NotEqual(t, buildKey("", plan, evaluator.DAAT, 10), buildKey("", plan, evaluator.DAAT, 5))
	assert.Equal(t, buildKey("", plan, evaluator.DAAT, 10), buildKey("", parser.Parse(" Cat cat "), evaluator.DAAT, 10))
	assert.NotEqual(t, buildKey("v1", plan, evaluator.DAAT, 10), buildKey("v2", plan, evaluator.DAAT, 10))
}

func TestNamespacesIsolateCorpora(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := pkgredis.NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()
	plan := parser.Parse("cat dog")

	old := New(client, time.Minute, nil, WithNamespace("0a1b"))
	old.Set(ctx, plan, evaluator.DAAT, 10, sampleResult())
	_, ok := old.Get(ctx, plan, evaluator.DAAT, 10)
	require.True(t, ok)

	fresh := New(client, time.Minute, nil, WithNamespace("2c3d"))
	_, ok = fresh.Get(ctx, plan, evaluator.DAAT, 10)
	assert.False(t, ok)

	n, err := fresh.Invalidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestComputeErrorNotCached(t *testing.T) {
	c, mr := newCache(t)
	boom := errors.New("boom")
	_, _, err := c.GetOrCompute(context.Background(), parser.Parse("x"), evaluator.TAAT, 1, func() (*executor.SearchResult, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, mr.Keys())
}

func TestConcurrentMissesCoalesce(t *testing.T) {
	c, _ := newCache(t)
	var calls atomic.Int32
	release := make(chan struct{})
	compute := func() (*executor.SearchResult, error) {
		calls.Add(1)
		<-release
		return sampleResult(), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.GetOrCompute(context.Background(), parser.Parse("cat dog"), evaluator.DAAT, 10, compute)
			assert.NoError(t, err)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestInvalidate(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	c.Set(ctx, parser.Parse("a"), evaluator.DAAT, 1, sampleResult())
	c.Set(ctx, parser.Parse("b"), evaluator.TAAT, 1, sampleResult())
	require.NoError(t, mr.Set("unrelated", "1"))

	n, err := c.Invalidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, []string{"unrelated"}, mr.Keys())
}

func TestExpiry(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	c.Set(ctx, parser.Parse("a"), evaluator.DAAT, 1, sampleResult())
	_, ok := c.Get(ctx, parser.Parse("a"), evaluator.DAAT, 1)
	require.True(t, ok)
	mr.FastForward(2 * time.Minute)
	_, ok = c.Get(ctx, parser.Parse("a"), evaluator.DAAT, 1)
	assert.False(t, ok)
}
