package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/pagerank"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/ranks"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/config"
	pkgredis "github.com/Adithya-Monish-Kumar-K/minisearch/pkg/redis"
)

func newServer(t *testing.T, withCache bool) *httptest.Server {
	t.Helper()
	c, err := corpus.FromDocuments([]corpus.Document{
		{ID: "doc1", Links: []string{"doc2"}, Terms: []string{"cat"}},
		{ID: "doc2", Links: []string{"doc1"}, Terms: []string{"cat", "dog"}},
		{ID: "doc3", Terms: []string{"fish"}},
	})
	require.NoError(t, err)

	var qc *cache.QueryCache
	if withCache {
		mr := miniredis.RunT(t)
		client, err := pkgredis.NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
		require.NoError(t, err)
		t.Cleanup(func() { client.Close() })
		qc = cache.New(client, time.Minute, nil)
	}

	h := New(
		executor.New(c.Index()),
		ranks.New(c.Graph(), pagerank.DefaultOptions(), nil),
		qc,
		Config{DefaultLimit: 10, MaxResults: 50, MaxIterations: 100},
	)
	mux := http.NewServeMux()
	h.Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestSearchBothStrategies(t *testing.T) {
	srv := newServer(t, false)
	want := []ranker.ScoredDoc{{DocID: "doc2", Score: 2}, {DocID: "doc1", Score: 1}}
	for _, s := range []string{"daat", "taat"} {
		var res executor.SearchResult
		code := getJSON(t, srv.URL+"/api/v1/search?q=cat+dog&strategy="+s, &res)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, want, res.Results)
		assert.Equal(t, s, res.Strategy)
	}
}

func TestSearchValidation(t *testing.T) {
	srv := newServer(t, false)
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/v1/search", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/v1/search?q=cat&limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/v1/search?q=cat&strategy=bm25", nil))
}

func TestSearchLimit(t *testing.T) {
	srv := newServer(t, false)
	var res executor.SearchResult
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/v1/search?q=cat&limit=1", &res))
	assert.Equal(t, 2, res.TotalHits)
	assert.Equal(t, []ranker.ScoredDoc{{DocID: "doc1", Score: 1}}, res.Results)
}

func TestSearchWithCache(t *testing.T) {
	srv := newServer(t, true)
	for i := 0; i < 3; i++ {
		var res executor.SearchResult
		require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/v1/search?q=dog", &res))
		assert.Equal(t, []ranker.ScoredDoc{{DocID: "doc2", Score: 1}}, res.Results)
	}

	var stats map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/v1/cache/stats", &stats))
	assert.Equal(t, float64(2), stats["hits"])

	resp, err := http.Post(srv.URL+"/api/v1/cache/invalidate", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCacheDisabled(t *testing.T) {
	srv := newServer(t, false)
	var stats map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/v1/cache/stats", &stats))
	assert.Equal(t, "disabled", stats["status"])

	resp, err := http.Post(srv.URL+"/api/v1/cache/invalidate", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRanks(t *testing.T) {
	srv := newServer(t, false)
	var pull, push ranksResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/v1/ranks?algorithm=pull", &pull))
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/v1/ranks?algorithm=push", &push))

	assert.Equal(t, 3, pull.Nodes)
	assert.Equal(t, 10, pull.Iterations)
	assert.InDelta(t, 1.0, pull.Sum, 1e-9)
	require.Len(t, push.Ranks, 3)
	pushRanks := make(map[string]float64)
	for _, d := range push.Ranks {
		pushRanks[d.DocID] = d.Rank
	}
	for _, d := range pull.Ranks {
		assert.InDelta(t, d.Rank, pushRanks[d.DocID], 1e-9, d.DocID)
	}
}

func TestRanksZeroDampingIsUniform(t *testing.T) {
	srv := newServer(t, false)
	var res ranksResponse
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/v1/ranks?damping=0&iterations=3&limit=1", &res))
	require.Len(t, res.Ranks, 1)
	assert.InDelta(t, 1.0/3, res.Ranks[0].Rank, 1e-12)
	assert.Equal(t, 3, res.Iterations)
}

func TestRanksValidation(t *testing.T) {
	srv := newServer(t, false)
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/v1/ranks?algorithm=hits", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/v1/ranks?damping=1.5", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/v1/ranks?iterations=0", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/v1/ranks?iterations=5000", nil))
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/v1/ranks?damping=abc", nil))
}
