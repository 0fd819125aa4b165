package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/minisearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/minisearch/pkg/kafka"
)

type recordingIndexer struct {
	docs []corpus.Document
	err  error
}

func (r *recordingIndexer) IndexDocument(doc corpus.Document) error {
	if r.err != nil {
		return r.err
	}
	r.docs = append(r.docs, doc)
	return nil
}

type recordingStatus map[string]string

func (r recordingStatus) UpdateStatus(_ context.Context, url, status string) error {
	r[url] = status
	return nil
}

func encode(t *testing.T, ev ingestion.DocumentEvent) []byte {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	return data
}

func TestHandleMessageIndexes(t *testing.T) {
	idx := &recordingIndexer{}
	status := recordingStatus{}
	h := HandleMessage(idx, status)

	value := encode(t, ingestion.DocumentEvent{
		DocumentID: "id-1",
		URL:        "https://a.example/",
		Links:      []string{"https://b.example/"},
		Terms:      []string{"cat"},
		IngestedAt: time.Now(),
	})
	require.NoError(t, h(context.Background(), []byte("https://a.example/"), value))

	require.Len(t, idx.docs, 1)
	assert.Equal(t, corpus.Document{ID: "https://a.example/", Links: []string{"https://b.example/"}, Terms: []string{"cat"}}, idx.docs[0])
	assert.Equal(t, "INDEXED", status["https://a.example/"])
}

func TestHandleMessageMalformedIsPermanent(t *testing.T) {
	idx := &recordingIndexer{}
	err := HandleMessage(idx, nil)(context.Background(), nil, []byte("not json"))
	require.Error(t, err)
	assert.True(t, kafka.IsPermanent(err))
	assert.Empty(t, idx.docs)
}

func TestHandleMessageInvalidDocumentIsPermanent(t *testing.T) {
	idx := &recordingIndexer{err: apperrors.ErrInvalidInput}
	status := recordingStatus{}
	err := HandleMessage(idx, status)(context.Background(), nil, encode(t, ingestion.DocumentEvent{URL: "u"}))
	require.Error(t, err)
	assert.True(t, kafka.IsPermanent(err))
	assert.Equal(t, "FAILED", status["u"])
}

func TestHandleMessageTransientError(t *testing.T) {
	idx := &recordingIndexer{err: errors.New("disk full")}
	status := recordingStatus{}
	err := HandleMessage(idx, status)(context.Background(), nil, encode(t, ingestion.DocumentEvent{URL: "u"}))
	require.Error(t, err)
	assert.False(t, kafka.IsPermanent(err))
	assert.Equal(t, "FAILED", status["u"])
}
