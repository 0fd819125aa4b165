package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/store"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	noStatus := flag.Bool("no-status", false, "do not record document status in postgres")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexer service", "data_dir", cfg.Indexer.DataDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	m := metrics.New(reg)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, reg)
		defer shutdownMetrics(context.Background())
	}

	engine, err := indexer.NewEngine(cfg.Indexer, m)
	if err != nil {
		slog.Error("failed to create index engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	var status consumer.StatusRecorder
	if !*noStatus {
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		status = store.New(db.DB)
	}

	flushDone := engine.StartFlushLoop(ctx)
	slog.Info("flush loop started", "interval", cfg.Indexer.FlushInterval)

	kafkaConsumer := kafka.NewConsumer(
		cfg.Kafka,
		cfg.Kafka.Topics.DocumentIngest,
		consumer.HandleMessage(engine, status),
	)
	indexConsumer := consumer.New(kafkaConsumer)

	slog.Info("indexer service ready, consuming from kafka",
		"topic", cfg.Kafka.Topics.DocumentIngest,
		"group", cfg.Kafka.ConsumerGroup,
	)

	if err := indexConsumer.Start(ctx); err != nil {
		slog.Error("consumer error", "error", err)
	}

	stop()
	<-flushDone
	slog.Info("indexer service stopped", "documents", engine.Corpus().Len())
}
