package pagerank

import (
	"fmt"
	"math"

	apperrors "github.com/Adithya-Monish-Kumar-K/minisearch/pkg/errors"
)

// Options configures a PageRank run. Unlike most option structs in this
// repo the zero value is not "use defaults": a zero damping factor is a
// valid, if degenerate, setting. Start from DefaultOptions.
type Options struct {
	// Damping is the link-following probability d; (1-d) is spread
	// uniformly as the random jump term.
	Damping float64
	// Iterations is the fixed number of synchronous updates to run, or the
	// upper bound when Tolerance is set.
	Iterations int
	// Tolerance, when positive, stops the run early once the L1 distance
	// between consecutive rank vectors drops below it. Zero keeps the pure
	// fixed-iteration mode.
	Tolerance float64
	// Workers splits each pull iteration across goroutines. Zero or one runs
	// single-threaded. The push variant ignores it.
	Workers int
}

// DefaultOptions returns damping 0.85 and 10 fixed iterations.
func DefaultOptions() Options {
	return Options{
		Damping:    0.85,
		Iterations: 10,
		Workers:    1,
	}
}

// Validate reports an ErrInvalidConfiguration for settings that cannot
// produce a rank distribution.
func (o Options) Validate() error {
	switch {
	case math.IsNaN(o.Damping) || o.Damping < 0 || o.Damping > 1:
		return fmt.Errorf("%w: damping factor %v outside [0, 1]", apperrors.ErrInvalidConfiguration, o.Damping)
	case o.Iterations <= 0:
		return fmt.Errorf("%w: iteration count must be positive, got %d", apperrors.ErrInvalidConfiguration, o.Iterations)
	case math.IsNaN(o.Tolerance) || o.Tolerance < 0:
		return fmt.Errorf("%w: tolerance must be non-negative, got %v", apperrors.ErrInvalidConfiguration, o.Tolerance)
	case o.Workers < 0:
		return fmt.Errorf("%w: worker count must be non-negative, got %d", apperrors.ErrInvalidConfiguration, o.Workers)
	}
	return nil
}

func (o Options) workers(n int) int {
	w := o.Workers
	if w < 1 {
		w = 1
	}
	if w > n {
		w = n
	}
	return w
}
