// Package metrics defines the Prometheus collectors shared by the searcher,
// indexer and ingestion services and exposes an HTTP handler for scraping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        *prometheus.HistogramVec
	SearchResultsCount   *prometheus.HistogramVec
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	DocsIndexedTotal     prometheus.Counter
	SnapshotFlushesTotal *prometheus.CounterVec
	RankRunsTotal        *prometheus.CounterVec
	RankDuration         *prometheus.HistogramVec
	RankIterations       *prometheus.CounterVec
	GraphNodes           prometheus.Gauge
	IndexTerms           prometheus.Gauge
}

// New creates all collectors and registers them with reg. A nil reg uses
// the Prometheus default registerer; services use NewRegistry instead.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by strategy and result type (hit, zero_result, error).",
			},
			[]string{"strategy", "result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"strategy", "cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
			[]string{"strategy"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses.",
			},
		),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docs_indexed_total",
				Help: "Total documents indexed.",
			},
		),
		SnapshotFlushesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapshot_flushes_total",
				Help: "Total corpus snapshot flushes by status.",
			},
			[]string{"status"},
		),
		RankRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rank_runs_total",
				Help: "Total PageRank computations by algorithm and status.",
			},
			[]string{"algorithm", "status"},
		),
		RankDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rank_duration_seconds",
				Help:    "PageRank computation time in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"algorithm"},
		),
		RankIterations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rank_iterations_total",
				Help: "Total PageRank iterations performed by algorithm.",
			},
			[]string{"algorithm"},
		),
		GraphNodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "graph_nodes",
				Help: "Number of nodes in the loaded document graph.",
			},
		),
		IndexTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_terms",
				Help: "Number of distinct terms in the loaded inverted index.",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DocsIndexedTotal,
		m.SnapshotFlushesTotal,
		m.RankRunsTotal,
		m.RankDuration,
		m.RankIterations,
		m.GraphNodes,
		m.IndexTerms,
	)

	return m
}
