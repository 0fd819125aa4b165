package pagerank

import (
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/graph"
)

// Pull computes PageRank with every node gathering from its in-neighbors:
//
//	new(n) = (1-d)/N + d * (dangling/N + sum over in-edges m->n of rank(m)/|out(m)|)
//
// With Options.Workers > 1 the nodes of each iteration are split into
// contiguous ranges updated concurrently. Every range reads the frozen
// previous vector and writes a disjoint slice of the next one, so the
// output is identical to a single-threaded run.
func Pull(g *graph.Graph, opts Options) (*Result, error) {
	return iterate(AlgorithmPull, g, opts, func(g *graph.Graph, prev, next []float64) error {
		n := len(prev)
		workers := opts.workers(n)
		nf := float64(n)
		jump := (1 - opts.Damping) / nf
		spread := danglingMass(g, prev) / nf

		update := func(lo, hi int) {
			for v := lo; v < hi; v++ {
				sum := spread
				// in-neighbors always have at least one out-edge, the one to v
				for _, m := range g.In(v) {
					sum += prev[m] / float64(g.OutDegree(m))
				}
				next[v] = jump + opts.Damping*sum
			}
		}

		if workers <= 1 {
			update(0, n)
			return nil
		}
		var eg errgroup.Group
		chunk := (n + workers - 1) / workers
		for lo := 0; lo < n; lo += chunk {
			hi := min(lo+chunk, n)
			eg.Go(func() error {
				update(lo, hi)
				return nil
			})
		}
		return eg.Wait()
	})
}
