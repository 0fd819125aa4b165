package evaluator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/ranker"
)

// EvaluateTAAT scores documents one term at a time into an accumulator.
func EvaluateTAAT(src Source, terms []string) []ranker.ScoredDoc {
	acc := make(map[int]int)
	for _, list := range postingLists(src, terms) {
		accumulate(acc, list)
	}
	return rankOrdinals(src, acc)
}

func accumulate(acc map[int]int, list index.PostingList) {
	for _, ord := range list {
		acc[ord]++
	}
}

// EvaluateParallelTAAT splits the terms across up to workers goroutines.
// Each worker fills a private accumulator and the partial scores are summed
// once all workers finish. With workers <= 1 it is EvaluateTAAT.
func EvaluateParallelTAAT(ctx context.Context, src Source, terms []string, workers int) ([]ranker.ScoredDoc, error) {
	lists := postingLists(src, terms)
	if workers > len(lists) {
		workers = len(lists)
	}
	if workers <= 1 {
		return EvaluateTAAT(src, terms), nil
	}

	partials := make([]map[int]int, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			acc := make(map[int]int)
			for i := w; i < len(lists); i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				accumulate(acc, lists[i])
			}
			partials[w] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := partials[0]
	for _, p := range partials[1:] {
		for ord, n := range p {
			merged[ord] += n
		}
	}
	return rankOrdinals(src, merged), nil
}
