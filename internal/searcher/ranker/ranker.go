// Package ranker scores documents for a query. The score of a document is
// the number of distinct query terms it contains, so a document that
// matches more of the query ranks higher. Ties are broken by ascending
// document id, which makes the order total and reproducible.
package ranker

import (
	"sort"
)

type ScoredDoc struct {
	DocID string `json:"doc_id"`
	Score int    `json:"score"`
}

// Less reports whether a ranks before b.
func Less(a, b ScoredDoc) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.DocID < b.DocID
}

// Sort orders docs by descending score, then ascending document id.
func Sort(docs []ScoredDoc) {
	sort.Slice(docs, func(i, j int) bool {
		return Less(docs[i], docs[j])
	})
}

// Rank turns per-document match counts into a ranked list. Documents with a
// zero count are dropped.
func Rank(counts map[string]int) []ScoredDoc {
	result := make([]ScoredDoc, 0, len(counts))
	for docID, score := range counts {
		if score <= 0 {
			continue
		}
		result = append(result, ScoredDoc{DocID: docID, Score: score})
	}
	Sort(result)
	return result
}

// Equal reports whether two ranked lists hold the same documents with the
// same scores in the same order.
func Equal(a, b []ScoredDoc) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
