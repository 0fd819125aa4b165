// Package merger selects the best results from one or more ranked lists.
package merger

import (
	"container/heap"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/ranker"
)

// TopK returns the limit best documents of docs in rank order. A limit of
// zero or less keeps everything.
func TopK(docs []ranker.ScoredDoc, limit int) []ranker.ScoredDoc {
	return Merge([][]ranker.ScoredDoc{docs}, limit)
}

// Merge combines disjoint result lists and keeps the limit best documents,
// ordered by ranker.Less.
func Merge(lists [][]ranker.ScoredDoc, limit int) []ranker.ScoredDoc {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	if limit <= 0 || limit > total {
		limit = total
	}
	if limit == 0 {
		return []ranker.ScoredDoc{}
	}
	h := make(scoredDocHeap, 0, limit+1)
	for _, results := range lists {
		for _, doc := range results {
			if h.Len() == limit && !ranker.Less(doc, h[0]) {
				continue
			}
			heap.Push(&h, doc)
			if h.Len() > limit {
				heap.Pop(&h)
			}
		}
	}
	result := make([]ranker.ScoredDoc, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(ranker.ScoredDoc)
	}
	return result
}

// scoredDocHeap keeps the worst-ranked document at the root.
type scoredDocHeap []ranker.ScoredDoc

func (h scoredDocHeap) Len() int { return len(h) }

func (h scoredDocHeap) Less(i, j int) bool { return ranker.Less(h[j], h[i]) }

func (h scoredDocHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredDocHeap) Push(x interface{}) {
	*h = append(*h, x.(ranker.ScoredDoc))
}

func (h *scoredDocHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
