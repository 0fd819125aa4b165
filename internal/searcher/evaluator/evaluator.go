// Package evaluator answers multi-term queries against an inverted index.
//
// Two traversal orders are provided. DAAT walks every query term's postings
// list in parallel, one document at a time, and counts how many cursors sit
// on the current document. TAAT walks the postings lists one term at a time
// and bumps a per-document accumulator. Both score a document by the number
// of query terms it contains and both rank with ranker.Less, so for any
// query and index their outputs are identical.
package evaluator

import (
	"fmt"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/minisearch/pkg/errors"
)

// Strategy selects the traversal order.
type Strategy string

const (
	DAAT Strategy = "daat"
	TAAT Strategy = "taat"
)

// ParseStrategy accepts "daat" and "taat" in any case. The empty string
// selects DAAT.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DAAT:
		return DAAT, nil
	case TAAT:
		return TAAT, nil
	default:
		return "", fmt.Errorf("%w: unknown query strategy %q", apperrors.ErrInvalidInput, s)
	}
}

// Source is the read side of an inverted index. Postings lists hold
// document ordinals in ascending order.
type Source interface {
	PostingList(term string) index.PostingList
	DocID(ord int) string
}

var _ Source = (*index.InvertedIndex)(nil)

// Evaluate runs the query with the given strategy.
func Evaluate(strategy Strategy, src Source, terms []string) ([]ranker.ScoredDoc, error) {
	switch strategy {
	case DAAT:
		return EvaluateDAAT(src, terms), nil
	case TAAT:
		return EvaluateTAAT(src, terms), nil
	default:
		return nil, fmt.Errorf("%w: unknown query strategy %q", apperrors.ErrInvalidInput, strategy)
	}
}

// postingLists fetches one list per term. Unknown terms yield an empty list.
func postingLists(src Source, terms []string) []index.PostingList {
	lists := make([]index.PostingList, 0, len(terms))
	for _, term := range terms {
		if p := src.PostingList(term); len(p) > 0 {
			lists = append(lists, p)
		}
	}
	return lists
}

func rankOrdinals(src Source, counts map[int]int) []ranker.ScoredDoc {
	result := make([]ranker.ScoredDoc, 0, len(counts))
	for ord, score := range counts {
		result = append(result, ranker.ScoredDoc{DocID: src.DocID(ord), Score: score})
	}
	ranker.Sort(result)
	return result
}
