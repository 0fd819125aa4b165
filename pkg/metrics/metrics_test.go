package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		byName[f.GetName()] = f
	}
	return byName
}

func TestNewRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SearchQueriesTotal.WithLabelValues("daat", "hit").Inc()
	m.RankIterations.WithLabelValues("pull").Add(10)
	m.GraphNodes.Set(3)

	families := gather(t, reg)
	require.Contains(t, families, "graph_nodes")
	assert.Equal(t, 3.0, families["graph_nodes"].GetMetric()[0].GetGauge().GetValue())
	require.Contains(t, families, "rank_iterations_total")
	assert.Equal(t, 10.0, families["rank_iterations_total"].GetMetric()[0].GetCounter().GetValue())
	require.Contains(t, families, "search_queries_total")
}

func TestNewTwiceOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := NewRegistry()
	m := New(reg)
	m.CacheHitsTotal.Inc()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "cache_hits_total 1")
	assert.Contains(t, body, "go_goroutines")
}
