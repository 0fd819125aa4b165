package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/corpus/source"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/pagerank"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/evaluator"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/ranks"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/minisearch/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "corpus_source", cfg.Corpus.Source)

	strategy, err := evaluator.ParseStrategy(cfg.Search.Strategy)
	if err != nil {
		slog.Error("invalid search strategy", "error", err)
		os.Exit(1)
	}
	rankOpts := pagerank.Options{
		Damping:    cfg.Rank.Damping,
		Iterations: cfg.Rank.Iterations,
		Tolerance:  cfg.Rank.Tolerance,
		Workers:    cfg.Rank.Workers,
	}
	if err := rankOpts.Validate(); err != nil {
		slog.Error("invalid rank configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loaded, err := source.Load(ctx, cfg)
	if err != nil {
		slog.Error("failed to load corpus", "error", err)
		os.Exit(1)
	}
	defer loaded.Close()

	reg := metrics.NewRegistry()
	m := metrics.New(reg)
	g := loaded.Corpus.Graph()
	idx := loaded.Corpus.Index()
	m.GraphNodes.Set(float64(g.Len()))
	m.IndexTerms.Set(float64(idx.TermCount()))
	slog.Info("corpus ready",
		"documents", loaded.Corpus.Len(),
		"graph_nodes", g.Len(),
		"graph_edges", g.EdgeCount(),
		"terms", idx.TermCount(),
	)

	rankService := ranks.New(g, rankOpts, m)
	delta, err := rankService.Agreement(ctx)
	if err != nil {
		slog.Error("initial rank computation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("pagerank variants computed", "max_delta", delta)
	if loaded.Store != nil {
		res, err := rankService.Compute(ctx, pagerank.AlgorithmPull, rankOpts)
		if err == nil {
			err = loaded.Store.SaveRanks(ctx, res)
		}
		if err != nil {
			slog.Warn("failed to persist ranks", "error", err)
		}
	}

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			fingerprint := loaded.Corpus.Fingerprint()
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, m, cache.WithNamespace(fingerprint))
			slog.Info("search cache enabled",
				"addr", cfg.Redis.Addr,
				"ttl", cfg.Redis.CacheTTL,
				"corpus", fingerprint,
			)
		}
	}

	checker := health.NewChecker()
	checker.Register("corpus", health.ReadyCheck(func() (bool, string) {
		return g.Len() > 0, fmt.Sprintf("%d nodes, %d terms", g.Len(), idx.TermCount())
	}))
	if redisClient != nil {
		checker.Register("redis", health.DegradedOnError(redisClient.Ping))
	}
	if loaded.Store != nil {
		checker.Register("postgres", health.DegradedOnError(loaded.Store.Ping))
	}

	exec := executor.New(idx,
		executor.WithWorkers(cfg.Search.Workers),
		executor.WithMetrics(m),
	)
	h := handler.New(exec, rankService, queryCache, handler.Config{
		DefaultLimit:    cfg.Search.DefaultLimit,
		MaxResults:      cfg.Search.MaxResults,
		DefaultStrategy: strategy,
	})

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, reg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			shutdownMetrics(shutdownCtx)
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr, "strategy", strategy)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
