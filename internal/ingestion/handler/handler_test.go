package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/ingestion"
)

type stubIngester struct {
	got *ingestion.IngestRequest
	err error
}

func (s *stubIngester) Ingest(_ context.Context, req *ingestion.IngestRequest) (*ingestion.IngestResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &ingestion.IngestResponse{DocumentID: "id-1", URL: req.URL, Status: "PENDING", Terms: len(req.Terms)}, nil
}

func serve(t *testing.T, ing Ingester, body string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	New(ing).Register(mux)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestIngestAccepted(t *testing.T) {
	stub := &stubIngester{}
	rec := serve(t, stub, `{"url":"https://a.example/","terms":["cat","dog"]}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp ingestion.IngestResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "id-1", resp.DocumentID)
	assert.Equal(t, 2, resp.Terms)
	assert.Equal(t, "https://a.example/", stub.got.URL)
}

func TestIngestValidationFailure(t *testing.T) {
	stub := &stubIngester{}
	rec := serve(t, stub, `{"terms":["cat"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "validation failed", body.Error)
	assert.Contains(t, body.Fields, "url")
	assert.Nil(t, stub.got)
}

func TestIngestBadJSON(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, serve(t, &stubIngester{}, `{"url":`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, &stubIngester{}, `{"url":"a","title":"x"}`).Code)
}

func TestIngestBackendError(t *testing.T) {
	rec := serve(t, &stubIngester{err: errors.New("db down")}, `{"url":"a"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestIngestWrongMethod(t *testing.T) {
	mux := http.NewServeMux()
	New(&stubIngester{}).Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
