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

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/pagerank"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/evaluator"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/parser"
	apperrors "github.com/Adithya-Monish-Kumar-K/minisearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/logger"
)

type SearchExecutor interface {
	Execute(ctx context.Context, plan *parser.QueryPlan, strategy evaluator.Strategy, limit int) (*executor.SearchResult, error)
}

type RankService interface {
	Compute(ctx context.Context, alg pagerank.Algorithm, opts pagerank.Options) (*pagerank.Result, error)
	Defaults() pagerank.Options
}

// Config holds the request defaults and bounds.
type Config struct {
	DefaultLimit    int
	MaxResults      int
	DefaultStrategy evaluator.Strategy
	// MaxIterations bounds the iterations a /ranks caller may ask for.
	MaxIterations int
}

type Handler struct {
	executor SearchExecutor
	ranks    RankService
	cache    *cache.QueryCache
	cfg      Config
	logger   *slog.Logger
}

// New creates a handler. queryCache may be nil to disable caching.
func New(exec SearchExecutor, ranks RankService, queryCache *cache.QueryCache, cfg Config) *Handler {
	if cfg.DefaultStrategy == "" {
		cfg.DefaultStrategy = evaluator.DAAT
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 1000
	}
	return &Handler{
		executor: exec,
		ranks:    ranks,
		cache:    queryCache,
		cfg:      cfg,
		logger:   slog.Default().With("component", "search-handler"),
	}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/ranks", h.Ranks)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, ok := h.limit(w, r)
	if !ok {
		return
	}
	strategy := h.cfg.DefaultStrategy
	if s := r.URL.Query().Get("strategy"); s != "" {
		parsed, err := evaluator.ParseStrategy(s)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "strategy must be daat or taat")
			return
		}
		strategy = parsed
	}

	plan := parser.Parse(query)
	var (
		result   *executor.SearchResult
		err      error
		cacheHit bool
	)
	if h.cache != nil && !plan.Empty() {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, plan, strategy, limit, func() (*executor.SearchResult, error) {
			return h.executor.Execute(ctx, plan, strategy, limit)
		})
	} else {
		result, err = h.executor.Execute(ctx, plan, strategy, limit)
	}
	if err != nil {
		log.Error("search execution failed", "query", query, "strategy", strategy, "error", err)
		h.writeAppError(w, err, "search failed")
		return
	}

	log.Info("search completed",
		"query", query,
		"strategy", strategy,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, result)
}

type ranksResponse struct {
	Algorithm  pagerank.Algorithm   `json:"algorithm"`
	Damping    float64              `json:"damping"`
	Iterations int                  `json:"iterations"`
	Converged  bool                 `json:"converged"`
	Delta      float64              `json:"delta"`
	Nodes      int                  `json:"nodes"`
	Sum        float64              `json:"sum"`
	Ranks      []pagerank.RankedDoc `json:"ranks"`
}

// Ranks returns the highest-ranked documents. damping and iterations
// override the configured defaults for this request.
func (h *Handler) Ranks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	alg, err := pagerank.ParseAlgorithm(q.Get("algorithm"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "algorithm must be pull or push")
		return
	}
	limit, ok := h.limit(w, r)
	if !ok {
		return
	}
	opts := h.ranks.Defaults()
	if s := q.Get("damping"); s != "" {
		d, err := strconv.ParseFloat(s, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "damping must be a number")
			return
		}
		opts.Damping = d
	}
	if s := q.Get("iterations"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "iterations must be an integer")
			return
		}
		if n > h.cfg.MaxIterations {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("iterations must not exceed %d", h.cfg.MaxIterations))
			return
		}
		opts.Iterations = n
	}

	res, err := h.ranks.Compute(ctx, alg, opts)
	if err != nil {
		logger.FromContext(ctx).Warn("rank computation failed", "algorithm", alg, "error", err)
		h.writeAppError(w, err, "rank computation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, ranksResponse{
		Algorithm:  res.Algorithm,
		Damping:    opts.Damping,
		Iterations: res.Iterations,
		Converged:  res.Converged,
		Delta:      res.Delta,
		Nodes:      len(res.Ranks),
		Sum:        pagerank.Sum(res.Ranks),
		Ranks:      res.Top(limit),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
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
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

// limit reads the optional limit parameter, clamped to MaxResults.
func (h *Handler) limit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limit := h.cfg.DefaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return 0, false
		}
		limit = parsed
	}
	if h.cfg.MaxResults > 0 && (limit <= 0 || limit > h.cfg.MaxResults) {
		limit = h.cfg.MaxResults
	}
	return limit, true
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

// writeAppError maps err to a status code. Client errors echo the error text;
// server errors use fallback.
func (h *Handler) writeAppError(w http.ResponseWriter, err error, fallback string) {
	status := apperrors.HTTPStatusCode(err)
	msg := fallback
	if status < http.StatusInternalServerError {
		msg = err.Error()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	h.writeError(w, status, msg)
}
