package reduce_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/vocabscope/pkg/reduce"
)

func TestTo2DLinear(t *testing.T) {
	t.Run("output shape", func(t *testing.T) {
		matrix := randomMatrix(20, 16, 1)
		out, err := reduce.To2D(matrix, reduce.Options{Method: reduce.MethodLinear}, nil)
		require.NoError(t, err)
		assert.Len(t, out, 20)
	})

	t.Run("2d input keeps relative geometry", func(t *testing.T) {
		// Three collinear points on the x axis: PCA must keep the middle
		// point between the outer two along the first component.
		matrix := [][]float32{{0, 0}, {1, 0}, {2, 0}}
		out, err := reduce.To2D(matrix, reduce.Options{Method: reduce.MethodLinear}, nil)
		require.NoError(t, err)
		require.Len(t, out, 3)

		d01 := math.Abs(out[1][0] - out[0][0])
		d12 := math.Abs(out[2][0] - out[1][0])
		assert.InDelta(t, d01, d12, 1e-9)
		assert.InDelta(t, 2*d01, math.Abs(out[2][0]-out[0][0]), 1e-9)
	})

	t.Run("one dimensional rows", func(t *testing.T) {
		matrix := [][]float32{{1}, {2}, {3}}
		out, err := reduce.To2D(matrix, reduce.Options{Method: reduce.MethodLinear}, nil)
		require.NoError(t, err)
		require.Len(t, out, 3)
		for _, p := range out {
			assert.Zero(t, p[1])
		}
	})

	t.Run("identical rows collapse without failing", func(t *testing.T) {
		matrix := [][]float32{{3, 3, 3}, {3, 3, 3}, {3, 3, 3}}
		out, err := reduce.To2D(matrix, reduce.Options{Method: reduce.MethodLinear}, nil)
		require.NoError(t, err)
		requireFinite(t, out)
	})

	t.Run("too few points", func(t *testing.T) {
		_, err := reduce.To2D([][]float32{{1, 2}}, reduce.Options{Method: reduce.MethodLinear}, nil)
		var degen *reduce.DegenerateInputError
		require.ErrorAs(t, err, &degen)
		assert.Equal(t, 1, degen.Points)
		assert.Equal(t, reduce.MethodLinear, degen.Method)
	})
}

func TestTo2DTSNE(t *testing.T) {
	opts := reduce.Options{
		Method:     reduce.MethodTSNE,
		Seed:       6,
		Perplexity: 5,
		Iterations: 60,
	}

	t.Run("output shape and finiteness", func(t *testing.T) {
		matrix := randomMatrix(40, 8, 2)
		out, err := reduce.To2D(matrix, opts, nil)
		require.NoError(t, err)
		require.Len(t, out, 40)
		requireFinite(t, out)
	})

	t.Run("identical rows collapse without failing", func(t *testing.T) {
		matrix := make([][]float32, 10)
		for i := range matrix {
			matrix[i] = []float32{1, 1, 1, 1}
		}
		out, err := reduce.To2D(matrix, opts, nil)
		require.NoError(t, err)
		require.Len(t, out, 10)
		requireFinite(t, out)
	})

	t.Run("all zero rows", func(t *testing.T) {
		matrix := make([][]float32, 8)
		for i := range matrix {
			matrix[i] = make([]float32, 4)
		}
		out, err := reduce.To2D(matrix, opts, nil)
		require.NoError(t, err)
		requireFinite(t, out)
	})

	t.Run("too few points", func(t *testing.T) {
		_, err := reduce.To2D(randomMatrix(4, 8, 3), opts, nil)
		var degen *reduce.DegenerateInputError
		require.ErrorAs(t, err, &degen)
		assert.Equal(t, 4, degen.Points)
	})

	t.Run("wide rows trigger pre-reduction", func(t *testing.T) {
		// D > 50 goes through the internal PCA pre-pass.
		matrix := randomMatrix(30, 64, 4)
		out, err := reduce.To2D(matrix, opts, nil)
		require.NoError(t, err)
		require.Len(t, out, 30)
		requireFinite(t, out)
	})
}

func TestTo2DDeterminism(t *testing.T) {
	t.Run("exact path", func(t *testing.T) {
		matrix := randomMatrix(30, 8, 5)
		opts := reduce.Options{
			Method:     reduce.MethodTSNE,
			Seed:       42,
			Perplexity: 5,
			Iterations: 50,
		}
		first, err := reduce.To2D(matrix, opts, nil)
		require.NoError(t, err)
		second, err := reduce.To2D(matrix, opts, nil)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("approximate path", func(t *testing.T) {
		matrix := randomMatrix(40, 8, 5)
		opts := reduce.Options{
			Method:         reduce.MethodTSNE,
			Seed:           42,
			Perplexity:     5,
			Iterations:     50,
			ExactThreshold: 10, // force the Barnes-Hut branch
		}
		first, err := reduce.To2D(matrix, opts, nil)
		require.NoError(t, err)
		second, err := reduce.To2D(matrix, opts, nil)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("linear is seed independent", func(t *testing.T) {
		matrix := randomMatrix(20, 8, 5)
		a, err := reduce.To2D(matrix, reduce.Options{Method: reduce.MethodLinear, Seed: 1}, nil)
		require.NoError(t, err)
		b, err := reduce.To2D(matrix, reduce.Options{Method: reduce.MethodLinear, Seed: 99}, nil)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestTo2DSeparatesClusters(t *testing.T) {
	// Two tight, well-separated clusters in 8D must end up further from
	// each other than from their own members in the embedding.
	const perCluster = 15
	matrix := make([][]float32, 0, 2*perCluster)
	rng := rand.New(rand.NewSource(7))
	for c := 0; c < 2; c++ {
		center := float32(c) * 100
		for i := 0; i < perCluster; i++ {
			row := make([]float32, 8)
			for j := range row {
				row[j] = center + float32(rng.NormFloat64())*0.1
			}
			matrix = append(matrix, row)
		}
	}

	out, err := reduce.To2D(matrix, reduce.Options{
		Method:     reduce.MethodTSNE,
		Seed:       6,
		Perplexity: 5,
		Iterations: 300,
	}, nil)
	require.NoError(t, err)

	intra := meanDist(out[:perCluster], out[:perCluster]) + meanDist(out[perCluster:], out[perCluster:])
	inter := meanDist(out[:perCluster], out[perCluster:])
	assert.Greater(t, inter, intra, "clusters should separate further than they spread")
}

func TestTo2DUnknownMethod(t *testing.T) {
	_, err := reduce.To2D(randomMatrix(10, 4, 1), reduce.Options{Method: "umap"}, nil)
	assert.ErrorIs(t, err, reduce.ErrUnknownMethod)
}

func TestDefaultOptions(t *testing.T) {
	def := reduce.DefaultOptions()
	assert.Equal(t, reduce.MethodTSNE, def.Method)
	assert.Equal(t, int64(6), def.Seed)
	assert.Equal(t, 30.0, def.Perplexity)
	assert.Equal(t, 1000, def.Iterations)
	assert.Equal(t, 2000, def.ExactThreshold)
}

func randomMatrix(m, d int, seed int64) [][]float32 {
	rng := rand.New(rand.NewSource(seed))
	out := make([][]float32, m)
	for i := range out {
		row := make([]float32, d)
		for j := range row {
			row[j] = float32(rng.NormFloat64())
		}
		out[i] = row
	}
	return out
}

func requireFinite(t *testing.T, out [][2]float64) {
	t.Helper()
	for i, p := range out {
		for j := 0; j < 2; j++ {
			require.False(t, math.IsNaN(p[j]), "point %d coordinate %d is NaN", i, j)
			require.False(t, math.IsInf(p[j], 0), "point %d coordinate %d is infinite", i, j)
		}
	}
}

func meanDist(a, b [][2]float64) float64 {
	var sum float64
	var n int
	for i := range a {
		for j := range b {
			dx := a[i][0] - b[j][0]
			dy := a[i][1] - b[j][1]
			sum += math.Sqrt(dx*dx + dy*dy)
			n++
		}
	}
	return sum / float64(n)
}
