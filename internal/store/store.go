// Package store persists the corpus and computed ranks in PostgreSQL. The
// ingestion service writes documents as they arrive, the indexer records
// their status, and the searcher can load its snapshot from here and write
// back the ranks it computes.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/pagerank"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/minisearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/postgres"
)

// Document statuses.
const (
	StatusPending = "PENDING"
	StatusIndexed = "INDEXED"
	StatusFailed  = "FAILED"
)

type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(db *sql.DB) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "store"),
	}
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if err := postgres.Migrate(ctx, s.db, schema...); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveDocument upserts doc by URL and replaces its words and links. id is
// used for new documents; the id actually stored is returned.
func (s *Store) SaveDocument(ctx context.Context, id string, doc corpus.Document) (string, error) {
	var storedID string
	err := postgres.InTx(ctx, s.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO documents (id, url, status) VALUES ($1, $2, 'PENDING')
			ON CONFLICT (url) DO UPDATE SET status = 'PENDING', ingested_at = NOW(), indexed_at = NULL
			RETURNING id`, id, doc.ID).Scan(&storedID)
		if err != nil {
			return fmt.Errorf("upserting document: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM doc_words WHERE doc_id = $1`, storedID); err != nil {
			return fmt.Errorf("clearing words: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE from_doc = $1`, storedID); err != nil {
			return fmt.Errorf("clearing links: %w", err)
		}
		if len(doc.Terms) > 0 {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO words (word) SELECT unnest($1::text[]) ON CONFLICT (word) DO NOTHING`,
				pq.Array(doc.Terms)); err != nil {
				return fmt.Errorf("inserting words: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO doc_words (doc_id, word_id) SELECT $1, id FROM words WHERE word = ANY($2)`,
				storedID, pq.Array(doc.Terms)); err != nil {
				return fmt.Errorf("inserting doc words: %w", err)
			}
		}
		if len(doc.Links) > 0 {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO links (from_doc, position, to_url)
				SELECT $1, t.ord - 1, t.url FROM unnest($2::text[]) WITH ORDINALITY AS t(url, ord)`,
				storedID, pq.Array(doc.Links)); err != nil {
				return fmt.Errorf("inserting links: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return storedID, nil
}

// UpdateStatus records the pipeline status of the document with the given
// URL.
func (s *Store) UpdateStatus(ctx context.Context, url, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = $1, indexed_at = NOW() WHERE url = $2`,
		status, url,
	)
	if err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrDocumentNotFound, url)
	}
	return nil
}

// LoadCorpus reads every document in ingestion order with its links in
// their original order and its words ascending.
func (s *Store) LoadCorpus(ctx context.Context) (*corpus.Corpus, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, url FROM documents ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	var docs []corpus.Document
	pos := make(map[string]int)
	for rows.Next() {
		var id, url string
		if err := rows.Scan(&id, &url); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		pos[id] = len(docs)
		docs = append(docs, corpus.Document{ID: url})
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	err = s.eachPair(ctx,
		`SELECT l.from_doc, l.to_url FROM links l JOIN documents d ON d.id = l.from_doc ORDER BY d.seq, l.position`,
		func(id, to string) {
			if i, ok := pos[id]; ok {
				docs[i].Links = append(docs[i].Links, to)
			}
		})
	if err != nil {
		return nil, fmt.Errorf("querying links: %w", err)
	}
	err = s.eachPair(ctx,
		`SELECT dw.doc_id, w.word FROM doc_words dw JOIN words w ON w.id = dw.word_id ORDER BY w.word COLLATE "C"`,
		func(id, word string) {
			if i, ok := pos[id]; ok {
				docs[i].Terms = append(docs[i].Terms, word)
			}
		})
	if err != nil {
		return nil, fmt.Errorf("querying words: %w", err)
	}

	s.logger.Info("corpus loaded from postgres", "docs", len(docs))
	return corpus.FromDocuments(docs)
}

func (s *Store) eachPair(ctx context.Context, query string, fn func(a, b string)) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	for rows.Next() {
		var a, b string
		if err := rows.Scan(&a, &b); err != nil {
			rows.Close()
			return err
		}
		fn(a, b)
	}
	return closeRows(rows)
}

// SaveRanks replaces the stored ranks for res.Algorithm using COPY.
func (s *Store) SaveRanks(ctx context.Context, res *pagerank.Result) error {
	computedAt := time.Now().UTC()
	return postgres.InTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM ranks WHERE algorithm = $1`, string(res.Algorithm)); err != nil {
			return fmt.Errorf("clearing ranks: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("ranks", "url", "algorithm", "rank", "computed_at"))
		if err != nil {
			return fmt.Errorf("preparing copy: %w", err)
		}
		for url, rank := range res.Ranks {
			if _, err := stmt.ExecContext(ctx, url, string(res.Algorithm), rank, computedAt); err != nil {
				stmt.Close()
				return fmt.Errorf("copying rank for %s: %w", url, err)
			}
		}
		if _, err := stmt.ExecContext(ctx); err != nil {
			stmt.Close()
			return fmt.Errorf("flushing copy: %w", err)
		}
		return stmt.Close()
	})
}

// LoadRanks returns the stored ranks for alg.
func (s *Store) LoadRanks(ctx context.Context, alg pagerank.Algorithm) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url, rank FROM ranks WHERE algorithm = $1`, string(alg))
	if err != nil {
		return nil, fmt.Errorf("querying ranks: %w", err)
	}
	ranks := make(map[string]float64)
	for rows.Next() {
		var url string
		var rank float64
		if err := rows.Scan(&url, &rank); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning rank: %w", err)
		}
		ranks[url] = rank
	}
	return ranks, closeRows(rows)
}

// Search evaluates a query inside the database: join the words relation
// with the query terms, group by document and count. It ranks like the
// in-memory evaluators.
func (s *Store) Search(ctx context.Context, terms []string) ([]ranker.ScoredDoc, error) {
	results := []ranker.ScoredDoc{}
	if len(terms) == 0 {
		return results, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.url, COUNT(*) AS score
		FROM doc_words dw
		JOIN words w ON w.id = dw.word_id
		JOIN documents d ON d.id = dw.doc_id
		WHERE w.word = ANY($1)
		GROUP BY d.url
		ORDER BY score DESC, d.url COLLATE "C" ASC`,
		pq.Array(terms))
	if err != nil {
		return nil, fmt.Errorf("querying postings: %w", err)
	}
	for rows.Next() {
		var doc ranker.ScoredDoc
		if err := rows.Scan(&doc.DocID, &doc.Score); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		results = append(results, doc)
	}
	return results, closeRows(rows)
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}
