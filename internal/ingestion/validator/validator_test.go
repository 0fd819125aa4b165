package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/ingestion"
)

func TestValidateIngestRequest(t *testing.T) {
	tests := []struct {
		name   string
		req    ingestion.IngestRequest
		fields []string
	}{
		{"valid", ingestion.IngestRequest{URL: "https://a.example/", Links: []string{"https://b.example/"}, Terms: []string{"cat"}}, nil},
		{"missing url", ingestion.IngestRequest{Terms: []string{"cat"}}, []string{"url"}},
		{"url with space", ingestion.IngestRequest{URL: "https://a.example/ x"}, []string{"url"}},
		{"long url", ingestion.IngestRequest{URL: strings.Repeat("a", maxURLLength+1)}, []string{"url"}},
		{"empty link", ingestion.IngestRequest{URL: "a", Links: []string{"b", ""}}, []string{"links"}},
		{"text too long", ingestion.IngestRequest{URL: "a", Text: strings.Repeat("x", maxTextLength+1)}, []string{"text"}},
		{"several fields", ingestion.IngestRequest{Links: []string{" "}}, []string{"url", "links"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIngestRequest(&tt.req)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Len(t, verr.Fields, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, verr.Fields, f)
			}
		})
	}
}

func TestValidationErrorMessageIsStable(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"url": "is required", "links": "bad"}}
	assert.Equal(t, "links: bad; url: is required", err.Error())
}
