package pagerank

import "github.com/Adithya-Monish-Kumar-K/minisearch/internal/graph"

// Push computes PageRank as a message-passing superstep. Each non-dangling
// node sends rank(n)/|out(n)| along every out-edge and messages are summed
// per recipient. A dangling node would send rank(n)/N to every node; that
// broadcast is folded into a single residual added uniformly, which is the
// same sum without N messages per dangling node. After all messages are in:
//
//	new(n) = (1-d)/N + d * (messages(n) + residual)
func Push(g *graph.Graph, opts Options) (*Result, error) {
	return iterate(AlgorithmPush, g, opts, func(g *graph.Graph, prev, next []float64) error {
		n := len(prev)
		nf := float64(n)
		jump := (1 - opts.Damping) / nf

		messages := next
		clear(messages)
		var dangling float64
		for u := 0; u < n; u++ {
			if g.IsDangling(u) {
				dangling += prev[u]
				continue
			}
			share := prev[u] / float64(g.OutDegree(u))
			for _, v := range g.Out(u) {
				messages[v] += share
			}
		}

		residual := dangling / nf
		for v := 0; v < n; v++ {
			next[v] = jump + opts.Damping*(messages[v]+residual)
		}
		return nil
	})
}
