// Package publisher persists documents to PostgreSQL and publishes document
// events to Kafka for downstream indexing. Events are keyed by URL so that
// re-ingesting a page keeps its versions ordered on one partition.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/store"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/resilience"
)

// DocumentStore persists an ingested document and returns its stored id.
type DocumentStore interface {
	SaveDocument(ctx context.Context, id string, doc corpus.Document) (string, error)
}

// EventPublisher writes one event to the ingest topic.
type EventPublisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Publisher coordinates document persistence and Kafka event production.
type Publisher struct {
	store    DocumentStore
	producer EventPublisher
	retry    resilience.RetryConfig
	now      func() time.Time
	logger   *slog.Logger
}

// New creates a Publisher with the given store and Kafka producer.
func New(st DocumentStore, producer EventPublisher) *Publisher {
	return &Publisher{
		store:    st,
		producer: producer,
		retry:    resilience.DefaultRetryConfig(),
		now:      func() time.Time { return time.Now().UTC() },
		logger:   slog.Default().With("component", "publisher"),
	}
}

// Ingest persists the document and publishes a DocumentEvent. A page that
// was ingested before keeps its id and goes back to PENDING. A publish
// failure after the document is stored is logged and the document stays
// PENDING until it is ingested again.
func (p *Publisher) Ingest(ctx context.Context, req *ingestion.IngestRequest) (*ingestion.IngestResponse, error) {
	doc := req.Document()
	docID, err := p.store.SaveDocument(ctx, uuid.NewString(), doc)
	if err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}

	event := kafka.Event{
		Key: doc.ID,
		Value: ingestion.DocumentEvent{
			DocumentID: docID,
			URL:        doc.ID,
			Links:      doc.Links,
			Terms:      doc.Terms,
			IngestedAt: p.now(),
		},
	}
	err = resilience.Retry(ctx, "publish-document", p.retry, func() error {
		return p.producer.Publish(ctx, event)
	})
	if err != nil {
		p.logger.Error("failed to publish to kafka, document stuck in PENDING",
			"doc_id", docID,
			"url", doc.ID,
			"error", err,
		)
	}
	return &ingestion.IngestResponse{
		DocumentID: docID,
		URL:        doc.ID,
		Status:     store.StatusPending,
		Terms:      len(doc.Terms),
		Links:      len(doc.Links),
	}, nil
}
