package evaluator

import (
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/ranker"
)

// cursor is a position inside one postings list.
type cursor struct {
	list index.PostingList
	pos  int
}

func (c *cursor) done() bool { return c.pos >= len(c.list) }

func (c *cursor) doc() int { return c.list[c.pos] }

// EvaluateDAAT merges the postings lists of all terms in document order.
// At each step the smallest document ordinal under any cursor is the next
// group; its score is the number of cursors positioned on it.
func EvaluateDAAT(src Source, terms []string) []ranker.ScoredDoc {
	lists := postingLists(src, terms)
	cursors := make([]*cursor, len(lists))
	for i, l := range lists {
		cursors[i] = &cursor{list: l}
	}

	var result []ranker.ScoredDoc
	for {
		current := -1
		for _, c := range cursors {
			if c.done() {
				continue
			}
			if current < 0 || c.doc() < current {
				current = c.doc()
			}
		}
		if current < 0 {
			break
		}
		score := 0
		for _, c := range cursors {
			if !c.done() && c.doc() == current {
				score++
				c.pos++
			}
		}
		result = append(result, ranker.ScoredDoc{DocID: src.DocID(current), Score: score})
	}
	if result == nil {
		return []ranker.ScoredDoc{}
	}
	ranker.Sort(result)
	return result
}
