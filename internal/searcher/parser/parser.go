package parser

import (
	"strings"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/indexer/tokenizer"
)

// QueryPlan is a normalized query: lower-cased terms, each at most once, in
// order of first appearance. Scoring counts how many of Terms a document
// contains, so a repeated query word must not count twice.
type QueryPlan struct {
	Terms    []string
	RawQuery string
}

// Parse splits a whitespace-delimited query string.
func Parse(query string) *QueryPlan {
	plan := FromTerms(strings.Fields(query))
	plan.RawQuery = query
	return plan
}

// FromTerms builds a plan from a pre-split term list.
func FromTerms(terms []string) *QueryPlan {
	plan := &QueryPlan{
		Terms:    make([]string, 0, len(terms)),
		RawQuery: strings.Join(terms, " "),
	}
	seen := make(map[string]struct{}, len(terms))
	for _, term := range tokenizer.Normalize(terms) {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		plan.Terms = append(plan.Terms, term)
	}
	return plan
}

// Empty reports whether the plan has no terms to evaluate.
func (p *QueryPlan) Empty() bool {
	return len(p.Terms) == 0
}

// Key is a canonical form of the plan: terms in query order joined by a
// space. Term order does not change results, but it is kept so that cached
// results echo the query as asked.
func (p *QueryPlan) Key() string {
	return strings.Join(p.Terms, " ")
}
