package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/minisearch/pkg/errors"
)

const corpusJSON = `[
	{"id": "a", "links": ["b", "outside"], "terms": ["cat"]},
	{"id": "b", "links": ["a"], "terms": ["dog"]}
]`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(corpusJSON), 0o644))

	cfg := config.Default()
	cfg.Corpus = config.CorpusConfig{Source: config.SourceFile, Path: path}
	loaded, err := Load(context.Background(), cfg)
	require.NoError(t, err)
	defer loaded.Close()
	assert.Nil(t, loaded.Store)
	assert.Equal(t, 3, loaded.Corpus.Graph().Len())

	cfg.Corpus.RestrictLinks = true
	restricted, err := Load(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, restricted.Corpus.Graph().Len())
}

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	c, err := corpus.FromDocuments([]corpus.Document{{ID: "a", Terms: []string{"cat"}}})
	require.NoError(t, err)
	_, err = segment.NewWriter(dir).Write(c)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Corpus = config.CorpusConfig{Source: config.SourceSnapshot, Path: dir}
	loaded, err := Load(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, c.Documents(), loaded.Corpus.Documents())
}

func TestLoadErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Corpus = config.CorpusConfig{Source: "ftp"}
	_, err := Load(context.Background(), cfg)
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfiguration)

	cfg.Corpus = config.CorpusConfig{Source: config.SourceSnapshot, Path: t.TempDir()}
	_, err = Load(context.Background(), cfg)
	assert.ErrorIs(t, err, apperrors.ErrDocumentNotFound)

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`[]`), 0o644))
	cfg.Corpus = config.CorpusConfig{Source: config.SourceFile, Path: empty}
	_, err = Load(context.Background(), cfg)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
