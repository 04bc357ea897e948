// Package reduce projects high-dimensional embedding matrices to 2D for
// visualization.
//
// Two interchangeable methods are provided:
//   - MethodLinear: PCA onto the first two principal components.
//   - MethodTSNE: t-SNE. Small inputs use the exact dense algorithm; above
//     Options.ExactThreshold points a Barnes-Hut approximation with
//     HNSW-based approximate nearest neighbors keeps the cost sub-quadratic
//     in the number of points.
//
// Reductions are deterministic for a fixed Options.Seed. All-zero or
// duplicate rows are legal input; they may collapse onto the same output
// coordinate but never fail. The returned matrix always contains finite
// values only.
package reduce

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// Method selects the reduction algorithm.
type Method string

const (
	// MethodLinear is the PCA-style linear projection.
	MethodLinear Method = "linear"

	// MethodTSNE is the neighbor-embedding projection.
	MethodTSNE Method = "tsne"
)

// Method-specific minimum point counts.
const (
	minLinearPoints = 2
	minTSNEPoints   = 5
)

// ErrUnknownMethod is returned for an unrecognized method selector.
var ErrUnknownMethod = errors.New("unknown reduction method")

// DegenerateInputError reports too few valid points for the chosen method.
type DegenerateInputError struct {
	Points int
	Min    int
	Method Method
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("%s reduction needs at least %d points, got %d", e.Method, e.Min, e.Points)
}

// Is implements errors.Is support for DegenerateInputError.
func (e *DegenerateInputError) Is(target error) bool {
	_, ok := target.(*DegenerateInputError)
	return ok
}

// Options configures a reduction.
type Options struct {
	Method     Method
	Seed       int64
	Perplexity float64
	Iterations int

	// ExactThreshold is the largest point count handled by the dense t-SNE.
	ExactThreshold int

	Debug bool
}

// DefaultOptions returns the options used when a field is left zero.
func DefaultOptions() Options {
	return Options{
		Method:         MethodTSNE,
		Seed:           6,
		Perplexity:     30,
		Iterations:     1000,
		ExactThreshold: 2000,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Method == "" {
		o.Method = def.Method
	}
	if o.Perplexity <= 0 {
		o.Perplexity = def.Perplexity
	}
	if o.Iterations <= 0 {
		o.Iterations = def.Iterations
	}
	if o.ExactThreshold <= 0 {
		o.ExactThreshold = def.ExactThreshold
	}
	return o
}

// To2D reduces an MxD matrix to Mx2 using the configured method.
func To2D(matrix [][]float32, opts Options, log *slog.Logger) ([][2]float64, error) {
	opts = opts.withDefaults()
	m := len(matrix)

	switch opts.Method {
	case MethodLinear:
		if m < minLinearPoints {
			return nil, &DegenerateInputError{Points: m, Min: minLinearPoints, Method: opts.Method}
		}
		out, err := linearProject(matrix)
		if err != nil {
			return nil, err
		}
		return finite2D(out), nil

	case MethodTSNE:
		if m < minTSNEPoints {
			return nil, &DegenerateInputError{Points: m, Min: minTSNEPoints, Method: opts.Method}
		}
		var out [][2]float64
		var err error
		if m <= opts.ExactThreshold {
			if log != nil && opts.Debug {
				log.Debug("running exact t-SNE", "points", m)
			}
			out, err = tsneExact(matrix, opts, log)
		} else {
			if log != nil && opts.Debug {
				log.Debug("running Barnes-Hut t-SNE", "points", m)
			}
			out, err = tsneBarnesHut(matrix, opts, log)
		}
		if err != nil {
			return nil, err
		}
		return finite2D(out), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, opts.Method)
	}
}

// finite2D replaces any non-finite coordinate with 0. Degenerate inputs
// (identical rows, all-zero matrices) collapse instead of failing.
func finite2D(out [][2]float64) [][2]float64 {
	for i := range out {
		for j := 0; j < 2; j++ {
			if v := out[i][j]; math.IsNaN(v) || math.IsInf(v, 0) {
				out[i][j] = 0
			}
		}
	}
	return out
}
