// Package pagerank computes PageRank over a graph.Graph with two
// interchangeable propagation schemes:
//
//   - Pull: every node sums rank(m)/|out(m)| over its in-neighbors m,
//     map/reduce style.
//   - Push: every node sends rank(n)/|out(n)| to its out-neighbors and the
//     messages are summed per recipient, Pregel style.
//
// Both are synchronous (Jacobi) iterations: each iteration reads only the
// previous rank vector. Dangling nodes spread their rank uniformly over all
// nodes, computed once per iteration as sum(dangling)/N. Given the same
// graph and Options both variants produce the same rank map up to floating
// point rounding.
package pagerank

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/graph"
	apperrors "github.com/Adithya-Monish-Kumar-K/minisearch/pkg/errors"
)

// Algorithm names a propagation scheme.
type Algorithm string

const (
	AlgorithmPull Algorithm = "pull"
	AlgorithmPush Algorithm = "push"
)

// ParseAlgorithm maps a user-supplied name to an Algorithm. The empty string
// selects pull.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "", "pull", "mapreduce":
		return AlgorithmPull, nil
	case "push", "pregel":
		return AlgorithmPush, nil
	}
	return "", fmt.Errorf("%w: unknown rank algorithm %q", apperrors.ErrInvalidInput, s)
}

// Result is the outcome of one PageRank run.
type Result struct {
	Algorithm Algorithm          `json:"algorithm"`
	Ranks     map[string]float64 `json:"ranks"`
	// Iterations is the number of updates performed. It is below
	// Options.Iterations only when a tolerance stopped the run early.
	Iterations int  `json:"iterations"`
	Converged  bool `json:"converged"`
	// Delta is the L1 distance between the last two rank vectors.
	Delta    float64       `json:"delta"`
	Duration time.Duration `json:"duration"`
}

// RankedDoc is one entry of a rank listing.
type RankedDoc struct {
	DocID string  `json:"doc_id"`
	Rank  float64 `json:"rank"`
}

// Run dispatches to Pull or Push.
func Run(alg Algorithm, g *graph.Graph, opts Options) (*Result, error) {
	switch alg {
	case AlgorithmPull:
		return Pull(g, opts)
	case AlgorithmPush:
		return Push(g, opts)
	}
	return nil, fmt.Errorf("%w: unknown rank algorithm %q", apperrors.ErrInvalidInput, alg)
}

// stepFunc computes next from prev for one iteration.
type stepFunc func(g *graph.Graph, prev, next []float64) error

// iterate holds the loop shared by both variants: validation, uniform
// initialization, the fixed or tolerance-bounded iteration count, and the
// swap of the rank buffers so that no update is visible mid-iteration.
func iterate(alg Algorithm, g *graph.Graph, opts Options, step stepFunc) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if g == nil || g.Len() == 0 {
		return nil, fmt.Errorf("%w: cannot rank an empty graph", apperrors.ErrInvalidInput)
	}
	start := time.Now()
	logger := slog.Default().With("component", "pagerank", "algorithm", string(alg))

	n := g.Len()
	prev := make([]float64, n)
	next := make([]float64, n)
	for i := range prev {
		prev[i] = 1 / float64(n)
	}

	res := &Result{Algorithm: alg}
	for it := 0; it < opts.Iterations; it++ {
		if err := step(g, prev, next); err != nil {
			return nil, fmt.Errorf("iteration %d: %w", it+1, err)
		}
		res.Delta = l1(prev, next)
		prev, next = next, prev
		res.Iterations++
		logger.Debug("iteration complete", "iteration", res.Iterations, "delta", res.Delta)
		if opts.Tolerance > 0 && res.Delta < opts.Tolerance {
			res.Converged = true
			break
		}
	}

	res.Ranks = make(map[string]float64, n)
	for i, r := range prev {
		res.Ranks[g.ID(i)] = r
	}
	res.Duration = time.Since(start)
	return res, nil
}

// danglingMass sums the rank held by nodes without out-edges.
func danglingMass(g *graph.Graph, ranks []float64) float64 {
	var sum float64
	for i, r := range ranks {
		if g.IsDangling(i) {
			sum += r
		}
	}
	return sum
}

func l1(a, b []float64) float64 {
	var d float64
	for i := range a {
		d += math.Abs(a[i] - b[i])
	}
	return d
}

// Top returns the ranks ordered by descending rank, ties by ascending
// document id. limit <= 0 returns every node.
func (r *Result) Top(limit int) []RankedDoc {
	out := make([]RankedDoc, 0, len(r.Ranks))
	for id, rank := range r.Ranks {
		out = append(out, RankedDoc{DocID: id, Rank: rank})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank > out[j].Rank
		}
		return out[i].DocID < out[j].DocID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Sum returns the total rank mass; it is 1 up to rounding for any valid run.
func Sum(ranks map[string]float64) float64 {
	var total float64
	for _, r := range ranks {
		total += r
	}
	return total
}

// MaxDelta returns the largest absolute per-document difference between two
// rank maps. Maps over different key sets are infinitely far apart.
func MaxDelta(a, b map[string]float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var maxDelta float64
	for id, ra := range a {
		rb, ok := b[id]
		if !ok {
			return math.Inf(1)
		}
		if d := math.Abs(ra - rb); d > maxDelta {
			maxDelta = d
		}
	}
	return maxDelta
}
