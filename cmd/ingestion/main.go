// Command ingestion starts the document ingestion HTTP service.
//
// The service accepts crawled pages via POST /api/v1/documents, validates
// them, stores them in PostgreSQL, and publishes them to a Kafka topic for
// the indexer. Health endpoints live under /health.
//
// Usage:
//
//	go run ./cmd/ingestion [-config configs/development.yaml]
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

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/ingestion/handler"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/store"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/postgres"
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
	slog.Info("starting ingestion service", "port", cfg.Ingestion.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	st := store.New(db.DB)
	if err := st.Migrate(ctx); err != nil {
		slog.Error("failed to migrate schema", "error", err)
		os.Exit(1)
	}
	slog.Info("connected to postgres")

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest)
	defer producer.Close()
	slog.Info("kafka producer initialized", "topic", cfg.Kafka.Topics.DocumentIngest)

	reg := metrics.NewRegistry()
	m := metrics.New(reg)
	h := handler.New(publisher.New(st, producer))
	checker := health.NewChecker()
	checker.Register("postgres", health.PingCheck(st.Ping))

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	if cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", metrics.Handler(reg))
	}

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Ingestion.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Ingestion.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Ingestion.ReadTimeout,
		WriteTimeout: cfg.Ingestion.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Ingestion.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()
	slog.Info("ingestion service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("ingestion service stopped")
}
