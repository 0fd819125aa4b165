// Package validator checks ingestion requests and reports per-field errors.
package validator

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/ingestion"
)

const (
	maxURLLength  = 2048
	maxLinks      = 10000
	maxTerms      = 100000
	maxTextLength = 1 << 20
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// ValidateIngestRequest checks the request and returns a *ValidationError
// listing every offending field.
func ValidateIngestRequest(req *ingestion.IngestRequest) error {
	errs := make(map[string]string)

	if msg := checkURL(req.URL); msg != "" {
		errs["url"] = msg
	}
	if len(req.Links) > maxLinks {
		errs["links"] = fmt.Sprintf("at most %d links are allowed", maxLinks)
	} else {
		for i, link := range req.Links {
			if msg := checkURL(link); msg != "" {
				errs["links"] = fmt.Sprintf("link %d: %s", i, msg)
				break
			}
		}
	}
	if len(req.Terms) > maxTerms {
		errs["terms"] = fmt.Sprintf("at most %d terms are allowed", maxTerms)
	}
	if len(req.Text) > maxTextLength {
		errs["text"] = fmt.Sprintf("text must be at most %d bytes", maxTextLength)
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func checkURL(u string) string {
	switch {
	case u == "":
		return "is required"
	case len(u) > maxURLLength:
		return fmt.Sprintf("must be at most %d characters", maxURLLength)
	case strings.IndexFunc(u, unicode.IsSpace) >= 0:
		return "must not contain whitespace"
	}
	return ""
}
