// Package ingestion defines the request/response types and Kafka event schemas
// used by the document ingestion pipeline.
package ingestion

import (
	"time"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/indexer/tokenizer"
)

// IngestRequest is the JSON body accepted by the ingestion HTTP endpoint.
// A crawler sends either pre-extracted Terms, raw Text, or both.
type IngestRequest struct {
	URL   string   `json:"url"`
	Links []string `json:"links"`
	Terms []string `json:"terms"`
	Text  string   `json:"text"`
}

// IngestResponse is returned to the caller after a document is accepted.
type IngestResponse struct {
	DocumentID string `json:"document_id"`
	URL        string `json:"url"`
	Status     string `json:"status"`
	Terms      int    `json:"terms"`
	Links      int    `json:"links"`
}

// DocumentEvent is the Kafka message payload produced after a document is
// persisted and ready for indexing.
type DocumentEvent struct {
	DocumentID string    `json:"document_id"`
	URL        string    `json:"url"`
	Links      []string  `json:"links"`
	Terms      []string  `json:"terms"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Document converts the event into a corpus document keyed by URL.
func (e DocumentEvent) Document() corpus.Document {
	return corpus.Document{ID: e.URL, Links: e.Links, Terms: e.Terms}
}

// Document turns the request into a corpus document. Terms from Text are
// appended after the explicit terms; the result is a de-duplicated bag.
func (r *IngestRequest) Document() corpus.Document {
	terms := tokenizer.Normalize(r.Terms)
	if r.Text != "" {
		terms = append(terms, tokenizer.Tokenize(r.Text)...)
	}
	seen := make(map[string]struct{}, len(terms))
	bag := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		bag = append(bag, t)
	}
	return corpus.Document{ID: r.URL, Links: append([]string(nil), r.Links...), Terms: bag}
}
