// Package source loads the corpus snapshot a searcher or CLI run works on,
// from a corpus file, the newest indexer snapshot or PostgreSQL.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/store"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/minisearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/postgres"
)

// Loaded is a corpus plus the store it came from, if any. Store is nil for
// file and snapshot sources.
type Loaded struct {
	Corpus *corpus.Corpus
	Store  *store.Store
	closer func() error
}

// Close releases the database connection of a postgres source.
func (l *Loaded) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer()
}

// Load reads the corpus named by cfg.Corpus. Link restriction is applied
// when cfg.Corpus.RestrictLinks is set.
func Load(ctx context.Context, cfg *config.Config) (*Loaded, error) {
	logger := slog.Default().With("component", "corpus-source", "source", cfg.Corpus.Source)
	var (
		loaded *Loaded
		err    error
	)
	switch cfg.Corpus.Source {
	case config.SourceFile, "":
		loaded, err = fromFile(cfg.Corpus.Path)
	case config.SourceSnapshot:
		loaded, err = fromSnapshot(cfg.Corpus.Path)
	case config.SourcePostgres:
		loaded, err = fromPostgres(ctx, cfg.Postgres)
	default:
		return nil, fmt.Errorf("%w: unknown corpus source %q", apperrors.ErrInvalidConfiguration, cfg.Corpus.Source)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Corpus.RestrictLinks {
		loaded.Corpus.RestrictLinks()
	}
	if loaded.Corpus.Len() == 0 {
		loaded.Close()
		return nil, fmt.Errorf("%w: corpus is empty", apperrors.ErrInvalidInput)
	}
	logger.Info("corpus loaded",
		"documents", loaded.Corpus.Len(),
		"restrict_links", cfg.Corpus.RestrictLinks,
	)
	return loaded, nil
}

func fromFile(path string) (*Loaded, error) {
	c, err := corpus.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &Loaded{Corpus: c}, nil
}

func fromSnapshot(dir string) (*Loaded, error) {
	path, err := segment.Latest(dir)
	if err != nil {
		return nil, fmt.Errorf("locating snapshot in %s: %w", dir, err)
	}
	c, err := segment.ReadFile(path)
	if err != nil {
		return nil, err
	}
	slog.Default().With("component", "corpus-source").Info("snapshot selected", "path", path)
	return &Loaded{Corpus: c}, nil
}

func fromPostgres(ctx context.Context, cfg config.PostgresConfig) (*Loaded, error) {
	client, err := postgres.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	st := store.New(client.DB)
	if err := st.Migrate(ctx); err != nil {
		client.Close()
		return nil, err
	}
	c, err := st.LoadCorpus(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}
	return &Loaded{Corpus: c, Store: st, closer: client.Close}, nil
}
