// Package consumer reads document events from Kafka and feeds them to the
// indexer engine, recording the outcome in the document store.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/store"
	apperrors "github.com/Adithya-Monish-Kumar-K/minisearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/resilience"
)

// DocumentIndexer is implemented by *indexer.Engine.
type DocumentIndexer interface {
	IndexDocument(doc corpus.Document) error
}

// StatusRecorder is implemented by *store.Store.
type StatusRecorder interface {
	UpdateStatus(ctx context.Context, url, status string) error
}

// IndexConsumer wraps a Kafka consumer to drive the indexing pipeline.
type IndexConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// New creates an IndexConsumer backed by the given Kafka consumer.
func New(kafkaConsumer *kafka.Consumer) *IndexConsumer {
	return &IndexConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "index-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled.
func (ic *IndexConsumer) Start(ctx context.Context) error {
	ic.logger.Info("index consumer starting")
	return ic.consumer.Start(ctx)
}

// HandleMessage returns a Kafka MessageHandler that indexes every document
// event into idx. status may be nil, in which case pipeline status is not
// recorded.
func HandleMessage(idx DocumentIndexer, status StatusRecorder) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.DocumentEvent](value)
		if err != nil {
			logger.Error("failed to decode document event",
				"error", err,
				"key", string(key),
			)
			return err
		}
		logger.Debug("processing document event",
			"doc_id", event.DocumentID,
			"url", event.URL,
		)
		if err := idx.IndexDocument(event.Document()); err != nil {
			recordStatus(ctx, status, event.URL, store.StatusFailed, logger)
			err = fmt.Errorf("indexing document %s: %w", event.URL, err)
			if errors.Is(err, apperrors.ErrInvalidInput) {
				return resilience.Permanent(fmt.Errorf("%w: %v", kafka.ErrMalformed, err))
			}
			return err
		}

		recordStatus(ctx, status, event.URL, store.StatusIndexed, logger)

		logger.Info("document indexed",
			"doc_id", event.DocumentID,
			"url", event.URL,
			"terms", len(event.Terms),
			"links", len(event.Links),
		)
		return nil
	}
}

// recordStatus is best effort: the index is the source of truth for
// searches and a lost status update is fixed by the next ingest.
func recordStatus(ctx context.Context, status StatusRecorder, url, value string, logger *slog.Logger) {
	if status == nil {
		return
	}
	if err := status.UpdateStatus(ctx, url, value); err != nil {
		logger.Error("failed to update document status",
			"url", url,
			"status", value,
			"error", err,
		)
	}
}
