// Package indexer accumulates crawled documents and periodically writes the
// whole corpus as a snapshot segment for the searcher to load.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/metrics"
)

type Engine struct {
	mu      sync.Mutex
	corpus  *corpus.Corpus
	pending int
	writer  *segment.Writer
	cfg     config.IndexerConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewEngine creates the data directory and resumes from the newest readable
// snapshot in it. m may be nil.
func NewEngine(cfg config.IndexerConfig, m *metrics.Metrics) (*Engine, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating index data directory: %w", err)
	}
	e := &Engine{
		corpus:  corpus.New(),
		writer:  segment.NewWriter(cfg.DataDir),
		cfg:     cfg,
		metrics: m,
		logger:  slog.Default().With("component", "indexer"),
	}
	if err := e.loadExistingSegment(); err != nil {
		return nil, fmt.Errorf("loading existing segments: %w", err)
	}
	return e, nil
}

// IndexDocument adds or replaces a document. It becomes part of the next
// snapshot.
func (e *Engine) IndexDocument(doc corpus.Document) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.corpus.Replace(doc); err != nil {
		return err
	}
	e.pending++
	if e.metrics != nil {
		e.metrics.DocsIndexedTotal.Inc()
	}
	e.logger.Debug("document indexed in memory",
		"doc_id", doc.ID,
		"links", len(doc.Links),
		"terms", len(doc.Terms),
		"corpus_size", e.corpus.Len(),
	)
	return nil
}

// Pending is the number of documents indexed since the last snapshot.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

// Corpus returns a copy of the accumulated corpus.
func (e *Engine) Corpus() *corpus.Corpus {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, _ := corpus.FromDocuments(e.corpus.Documents())
	return c
}

// Flush writes a snapshot if anything changed since the last one and prunes
// old snapshots. It returns the new segment name, or "" when there was
// nothing to write.
func (e *Engine) Flush() (string, error) {
	e.mu.Lock()
	if e.pending == 0 {
		e.mu.Unlock()
		return "", nil
	}
	snapshot, err := corpus.FromDocuments(e.corpus.Documents())
	flushed := e.pending
	e.mu.Unlock()
	if err != nil {
		return "", err
	}

	segmentName, err := e.writer.Write(snapshot)
	if err != nil {
		e.observeFlush("error")
		return "", fmt.Errorf("writing segment: %w", err)
	}
	e.mu.Lock()
	e.pending -= flushed
	e.mu.Unlock()
	e.observeFlush("ok")

	e.logger.Info("snapshot flushed",
		"segment", segmentName,
		"docs", snapshot.Len(),
		"new_docs", flushed,
	)
	e.prune()
	return segmentName, nil
}

func (e *Engine) StartFlushLoop(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	interval := e.cfg.FlushInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				e.logger.Info("flush loop stopping, performing final flush")
				if _, err := e.Flush(); err != nil {
					e.logger.Error("final flush failed", "error", err)
				}
				return
			case <-ticker.C:
				if _, err := e.Flush(); err != nil {
					e.logger.Error("periodic flush failed", "error", err)
				}
			}
		}
	}()
	return done
}

func (e *Engine) Close() error {
	if _, err := e.Flush(); err != nil {
		return fmt.Errorf("final flush on close: %w", err)
	}
	return nil
}

func (e *Engine) observeFlush(status string) {
	if e.metrics != nil {
		e.metrics.SnapshotFlushesTotal.WithLabelValues(status).Inc()
	}
}

// prune keeps the newest KeepSnapshots segments. Zero keeps everything.
func (e *Engine) prune() {
	if e.cfg.KeepSnapshots <= 0 {
		return
	}
	paths, err := segment.List(e.cfg.DataDir)
	if err != nil {
		e.logger.Error("listing segments for pruning", "error", err)
		return
	}
	for len(paths) > e.cfg.KeepSnapshots {
		if err := os.Remove(paths[0]); err != nil {
			e.logger.Error("removing old segment", "segment", filepath.Base(paths[0]), "error", err)
		} else {
			e.logger.Debug("old segment removed", "segment", filepath.Base(paths[0]))
		}
		paths = paths[1:]
	}
}

// loadExistingSegment resumes from the newest segment that opens cleanly,
// skipping corrupt ones.
func (e *Engine) loadExistingSegment() error {
	paths, err := segment.List(e.cfg.DataDir)
	if err != nil {
		return err
	}
	for i := len(paths) - 1; i >= 0; i-- {
		c, err := segment.ReadFile(paths[i])
		if err != nil {
			e.logger.Error("failed to open segment, skipping",
				"segment", filepath.Base(paths[i]),
				"error", err,
			)
			continue
		}
		e.corpus = c
		e.logger.Info("loaded existing segment",
			"segment", filepath.Base(paths[i]),
			"docs", c.Len(),
		)
		return nil
	}
	e.logger.Info("no existing segment, starting empty", "data_dir", e.cfg.DataDir)
	return nil
}
