package reduce

import (
	"log/slog"
	"math"
)

// t-SNE schedule constants, following the reference implementation.
const (
	tsnePreReduceDims     = 50
	tsneEarlyExaggeration = 12.0
	tsneExaggerationIters = 250
	tsneInitialMomentum   = 0.5
	tsneFinalMomentum     = 0.8
	tsneLearningRate      = 200.0
	tsneMinProb           = 1e-12
	tsneInitScale         = 1e-4
)

// tsneExact runs the dense O(M^2) t-SNE. Only used for small inputs; the
// Barnes-Hut variant in bhtsne.go covers large vocabularies.
func tsneExact(matrix [][]float32, opts Options, log *slog.Logger) ([][2]float64, error) {
	x, err := pcaReduceTo(matrix, tsnePreReduceDims)
	if err != nil {
		return nil, err
	}
	n := len(x)

	// Pairwise squared distances.
	sqd := make([][]float64, n)
	for i := range sqd {
		sqd[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := sqDist(x[i], x[j])
			sqd[i][j] = d
			sqd[j][i] = d
		}
	}

	// Conditional probabilities with per-row perplexity calibration,
	// symmetrized and normalized into the joint distribution P.
	perplexity := opts.Perplexity
	if float64(n-1) < 3*perplexity {
		perplexity = float64(n-1) / 3
	}
	p := make([][]float64, n)
	row := make([]float64, n)
	for i := 0; i < n; i++ {
		copy(row, sqd[i])
		row[i] = math.Inf(1) // exclude self
		p[i] = condProbs(row, perplexity)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := (p[i][j] + p[j][i]) / (2 * float64(n))
			if v < tsneMinProb {
				v = tsneMinProb
			}
			p[i][j] = v
			p[j][i] = v
		}
		p[i][i] = tsneMinProb
	}

	y := tsneInit(matrix, n, opts.Seed)

	grads := newGradientState(n)
	q := make([][]float64, n)
	for i := range q {
		q[i] = make([]float64, n)
	}

	for iter := 0; iter < opts.Iterations; iter++ {
		exaggeration := 1.0
		if iter < tsneExaggerationIters {
			exaggeration = tsneEarlyExaggeration
		}

		// Student-t affinities in the embedding.
		var z float64
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				w := 1 / (1 + sqDist2(y[i], y[j]))
				q[i][j] = w
				q[j][i] = w
				z += 2 * w
			}
		}
		if z < tsneMinProb {
			z = tsneMinProb
		}

		for i := 0; i < n; i++ {
			var gx, gy float64
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				w := q[i][j]
				mult := (exaggeration*p[i][j] - w/z) * w
				gx += 4 * mult * (y[i][0] - y[j][0])
				gy += 4 * mult * (y[i][1] - y[j][1])
			}
			grads.dy[i][0] = gx
			grads.dy[i][1] = gy
		}

		grads.step(y, iter)

		if log != nil && opts.Debug && (iter+1)%100 == 0 {
			log.Debug("t-SNE progress", "iteration", iter+1, "total", opts.Iterations)
		}
	}

	centerEmbedding(y)
	return y, nil
}

// condProbs calibrates a Gaussian kernel over one row of squared distances
// so its entropy matches log(perplexity), returning the conditional
// probabilities. Entries at +Inf (the point itself) get probability zero.
func condProbs(sqd []float64, perplexity float64) []float64 {
	const tol = 1e-5
	const maxIter = 50

	target := math.Log(perplexity)
	beta := 1.0
	betaMin := math.Inf(-1)
	betaMax := math.Inf(1)
	p := make([]float64, len(sqd))

	for it := 0; it < maxIter; it++ {
		var sum float64
		for j, d := range sqd {
			if math.IsInf(d, 1) {
				p[j] = 0
				continue
			}
			p[j] = math.Exp(-d * beta)
			sum += p[j]
		}
		if sum < tsneMinProb {
			sum = tsneMinProb
		}

		// H = log(sum) + beta * <d> under p
		var dSum float64
		for j, d := range sqd {
			if !math.IsInf(d, 1) {
				dSum += d * p[j]
			}
		}
		h := math.Log(sum) + beta*dSum/sum

		diff := h - target
		if math.Abs(diff) < tol {
			for j := range p {
				p[j] /= sum
			}
			return p
		}
		if diff > 0 {
			betaMin = beta
			if math.IsInf(betaMax, 1) {
				beta *= 2
			} else {
				beta = (beta + betaMax) / 2
			}
		} else {
			betaMax = beta
			if math.IsInf(betaMin, -1) {
				beta /= 2
			} else {
				beta = (beta + betaMin) / 2
			}
		}
	}

	var sum float64
	for _, v := range p {
		sum += v
	}
	if sum < tsneMinProb {
		sum = tsneMinProb
	}
	for j := range p {
		p[j] /= sum
	}
	return p
}

// tsneInit seeds the embedding from the first two principal components,
// rescaled to a tiny spread. PCA makes the result deterministic and usually
// converges faster than a random start; if PCA fails (e.g. an all-zero
// matrix) a seeded pseudo-random jitter is used instead.
func tsneInit(matrix [][]float32, n int, seed int64) [][2]float64 {
	y := make([][2]float64, n)

	if out, err := linearProject(matrix); err == nil {
		var sx, sy float64
		for i := range out {
			sx += out[i][0] * out[i][0]
			sy += out[i][1] * out[i][1]
		}
		sx = math.Sqrt(sx / float64(n))
		sy = math.Sqrt(sy / float64(n))
		if sx > 0 && sy > 0 {
			for i := range out {
				y[i][0] = out[i][0] / sx * tsneInitScale
				y[i][1] = out[i][1] / sy * tsneInitScale
			}
			return y
		}
	}

	rng := newRand(seed)
	for i := range y {
		y[i][0] = rng.NormFloat64() * tsneInitScale
		y[i][1] = rng.NormFloat64() * tsneInitScale
	}
	return y
}

// gradientState holds the momentum and gain buffers of the gradient loop.
type gradientState struct {
	dy    [][2]float64
	vel   [][2]float64
	gains [][2]float64
}

func newGradientState(n int) *gradientState {
	g := &gradientState{
		dy:    make([][2]float64, n),
		vel:   make([][2]float64, n),
		gains: make([][2]float64, n),
	}
	for i := range g.gains {
		g.gains[i][0] = 1
		g.gains[i][1] = 1
	}
	return g
}

// step applies one momentum + adaptive-gain update to y in place.
func (g *gradientState) step(y [][2]float64, iter int) {
	momentum := tsneInitialMomentum
	if iter >= tsneExaggerationIters {
		momentum = tsneFinalMomentum
	}
	for i := range y {
		for d := 0; d < 2; d++ {
			grad := g.dy[i][d]
			if math.IsNaN(grad) || math.IsInf(grad, 0) {
				grad = 0
			}
			if (grad > 0) == (g.vel[i][d] > 0) {
				g.gains[i][d] *= 0.8
			} else {
				g.gains[i][d] += 0.2
			}
			if g.gains[i][d] < 0.01 {
				g.gains[i][d] = 0.01
			}
			g.vel[i][d] = momentum*g.vel[i][d] - tsneLearningRate*g.gains[i][d]*grad
			y[i][d] += g.vel[i][d]
		}
	}
}

// centerEmbedding translates the embedding so its mean is the origin.
func centerEmbedding(y [][2]float64) {
	var mx, my float64
	for i := range y {
		mx += y[i][0]
		my += y[i][1]
	}
	mx /= float64(len(y))
	my /= float64(len(y))
	for i := range y {
		y[i][0] -= mx
		y[i][1] -= my
	}
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func sqDist2(a, b [2]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return dx*dx + dy*dy
}
