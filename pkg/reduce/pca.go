package reduce

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// linearProject maps the input onto its first two principal components.
// Inputs with fewer than two columns are padded with a zero y axis.
func linearProject(matrix [][]float32) ([][2]float64, error) {
	n := len(matrix)
	dim := len(matrix[0])

	if dim < 2 {
		out := make([][2]float64, n)
		for i, row := range matrix {
			if len(row) > 0 {
				out[i][0] = float64(row[0])
			}
		}
		return out, nil
	}

	projected, err := pcaProject(toDense(matrix), 2)
	if err != nil {
		return nil, err
	}

	out := make([][2]float64, n)
	for i := 0; i < n; i++ {
		out[i][0] = projected.At(i, 0)
		out[i][1] = projected.At(i, 1)
	}
	return out, nil
}

// pcaProject centers X and projects it onto its first k right singular
// vectors. k is clamped to the number of available components; missing
// components stay zero.
func pcaProject(X *mat.Dense, k int) (*mat.Dense, error) {
	n, dim := X.Dims()

	// Mean-center each column.
	centered := mat.NewDense(n, dim, nil)
	col := make([]float64, n)
	for j := 0; j < dim; j++ {
		mat.Col(col, j, X)
		mean := stat.Mean(col, nil)
		for i := 0; i < n; i++ {
			centered.Set(i, j, col[i]-mean)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, fmt.Errorf("svd factorization failed")
	}

	var v mat.Dense
	svd.VTo(&v)
	_, comps := v.Dims()
	if comps > k {
		comps = k
	}

	pc := mat.NewDense(dim, k, nil)
	for c := 0; c < comps; c++ {
		for i := 0; i < dim; i++ {
			pc.Set(i, c, v.At(i, c))
		}
	}

	projected := mat.NewDense(n, k, nil)
	projected.Mul(centered, pc)
	return projected, nil
}

func toDense(matrix [][]float32) *mat.Dense {
	n := len(matrix)
	dim := len(matrix[0])
	data := make([]float64, n*dim)
	for i, row := range matrix {
		for j, v := range row {
			data[i*dim+j] = float64(v)
		}
	}
	return mat.NewDense(n, dim, data)
}

// pcaReduceTo returns the input projected to at most k dimensions as
// float64 rows. Used to pre-reduce very high-dimensional embeddings before
// neighbor computation.
func pcaReduceTo(matrix [][]float32, k int) ([][]float64, error) {
	n := len(matrix)
	dim := len(matrix[0])
	if dim <= k {
		out := make([][]float64, n)
		for i, row := range matrix {
			out[i] = make([]float64, dim)
			for j, v := range row {
				out[i][j] = float64(v)
			}
		}
		return out, nil
	}

	projected, err := pcaProject(toDense(matrix), k)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, k)
		for j := 0; j < k; j++ {
			out[i][j] = projected.At(i, j)
		}
	}
	return out, nil
}
