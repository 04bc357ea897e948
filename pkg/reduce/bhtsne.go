package reduce

import (
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/coder/hnsw"
)

const bhTheta = 0.5

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// tsneBarnesHut runs t-SNE with sparse input affinities over approximate
// nearest neighbors (HNSW) and Barnes-Hut approximation of the repulsive
// forces. Per iteration the cost is O(M log M) instead of O(M^2), which is
// what makes 100k+ token vocabularies feasible.
func tsneBarnesHut(matrix [][]float32, opts Options, log *slog.Logger) ([][2]float64, error) {
	x, err := pcaReduceTo(matrix, tsnePreReduceDims)
	if err != nil {
		return nil, err
	}
	n := len(x)

	perplexity := opts.Perplexity
	k := int(3 * perplexity)
	if k > n-1 {
		k = n - 1
	}

	neighbors := nearestNeighbors(x, k, opts.Seed)
	if log != nil && opts.Debug {
		log.Debug("computed approximate neighbors", "points", n, "k", k)
	}

	// Conditional probabilities restricted to each point's neighbor set.
	cond := make([][]float64, n)
	sqd := make([]float64, k)
	for i := 0; i < n; i++ {
		nb := neighbors[i]
		sqd = sqd[:len(nb)]
		for j, idx := range nb {
			sqd[j] = sqDist(x[i], x[idx])
		}
		cond[i] = condProbs(sqd, perplexity)
	}

	// Symmetrize into an undirected sparse edge set.
	type edgeKey struct{ a, b int }
	edgeWeights := make(map[edgeKey]float64, n*k)
	for i := 0; i < n; i++ {
		for j, idx := range neighbors[i] {
			key := edgeKey{i, idx}
			if idx < i {
				key = edgeKey{idx, i}
			}
			edgeWeights[key] += cond[i][j]
		}
	}
	norm := 2 * float64(n)
	edges := make([]sparseEdge, 0, len(edgeWeights))
	for key, w := range edgeWeights {
		v := w / norm
		if v < tsneMinProb {
			v = tsneMinProb
		}
		edges = append(edges, sparseEdge{i: key.a, j: key.b, p: v})
	}
	// Map iteration order is random; a fixed edge order keeps the float
	// accumulation, and with it the whole reduction, deterministic.
	sort.Slice(edges, func(a, b int) bool {
		if edges[a].i != edges[b].i {
			return edges[a].i < edges[b].i
		}
		return edges[a].j < edges[b].j
	})

	y := tsneInit(matrix, n, opts.Seed)
	grads := newGradientState(n)
	rep := make([][2]float64, n)

	for iter := 0; iter < opts.Iterations; iter++ {
		exaggeration := 1.0
		if iter < tsneExaggerationIters {
			exaggeration = tsneEarlyExaggeration
		}

		// Repulsive forces and the partition function via the quadtree.
		tree := buildQuadTree(y)
		var z float64
		for i := 0; i < n; i++ {
			rep[i][0], rep[i][1] = 0, 0
			z += tree.negForce(y[i], i, &rep[i])
		}
		if z < tsneMinProb {
			z = tsneMinProb
		}

		for i := range grads.dy {
			grads.dy[i][0] = 0
			grads.dy[i][1] = 0
		}

		// Attractive forces over the sparse edges (both directions).
		for _, e := range edges {
			dx := y[e.i][0] - y[e.j][0]
			dy := y[e.i][1] - y[e.j][1]
			w := exaggeration * e.p / (1 + dx*dx + dy*dy)
			grads.dy[e.i][0] += 4 * w * dx
			grads.dy[e.i][1] += 4 * w * dy
			grads.dy[e.j][0] -= 4 * w * dx
			grads.dy[e.j][1] -= 4 * w * dy
		}

		for i := 0; i < n; i++ {
			grads.dy[i][0] -= 4 * rep[i][0] / z
			grads.dy[i][1] -= 4 * rep[i][1] / z
		}

		grads.step(y, iter)

		if log != nil && opts.Debug && (iter+1)%100 == 0 {
			log.Debug("Barnes-Hut t-SNE progress", "iteration", iter+1, "total", opts.Iterations)
		}
	}

	centerEmbedding(y)
	return y, nil
}

type sparseEdge struct {
	i, j int
	p    float64
}

// nearestNeighbors returns the k approximate nearest neighbors of every row
// using an HNSW index. The graph RNG is seeded so index construction, and
// with it the whole reduction, stays deterministic.
func nearestNeighbors(x [][]float64, k int, seed int64) [][]int {
	n := len(x)
	vecs := make([][]float32, n)
	for i, row := range x {
		v := make([]float32, len(row))
		for j, f := range row {
			v[j] = float32(f)
		}
		vecs[i] = v
	}

	g := hnsw.NewGraph[int]()
	g.Distance = hnsw.EuclideanDistance
	g.Rng = newRand(seed)
	g.EfSearch = 3 * k
	for i := 0; i < n; i++ {
		g.Add(hnsw.MakeNode(i, vecs[i]))
	}

	neighbors := make([][]int, n)
	for i := 0; i < n; i++ {
		found := g.Search(vecs[i], k+1)
		nb := make([]int, 0, k)
		for _, node := range found {
			if node.Key == i {
				continue
			}
			nb = append(nb, node.Key)
			if len(nb) == k {
				break
			}
		}
		neighbors[i] = nb
	}
	return neighbors
}

// quadNode is one cell of the Barnes-Hut quadtree. Leaves hold a single
// point index; interior cells hold the center of mass of their subtree.
type quadNode struct {
	cx, cy, half float64
	comX, comY   float64
	mass         int
	point        int // leaf point index, -1 when interior/empty
	children     *[4]*quadNode
}

func buildQuadTree(y [][2]float64) *quadNode {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range y {
		minX = math.Min(minX, y[i][0])
		maxX = math.Max(maxX, y[i][0])
		minY = math.Min(minY, y[i][1])
		maxY = math.Max(maxY, y[i][1])
	}
	half := math.Max(maxX-minX, maxY-minY)/2 + 1e-9
	root := &quadNode{
		cx:    (minX + maxX) / 2,
		cy:    (minY + maxY) / 2,
		half:  half,
		point: -1,
	}
	for i := range y {
		root.insert(y, i, 0)
	}
	return root
}

// maxQuadDepth bounds recursion when many points share one coordinate
// (duplicate-row collapse); past it points just accumulate in the cell.
const maxQuadDepth = 48

func (q *quadNode) insert(y [][2]float64, idx int, depth int) {
	q.comX = (q.comX*float64(q.mass) + y[idx][0]) / float64(q.mass+1)
	q.comY = (q.comY*float64(q.mass) + y[idx][1]) / float64(q.mass+1)
	q.mass++

	if q.mass == 1 {
		q.point = idx
		return
	}
	if depth >= maxQuadDepth {
		return
	}
	if q.children == nil {
		q.children = &[4]*quadNode{}
		// Push the resident point down before inserting the new one.
		old := q.point
		q.point = -1
		if old >= 0 {
			q.childFor(y[old]).insert(y, old, depth+1)
		}
	}
	q.childFor(y[idx]).insert(y, idx, depth+1)
}

func (q *quadNode) childFor(p [2]float64) *quadNode {
	quadrant := 0
	if p[0] > q.cx {
		quadrant |= 1
	}
	if p[1] > q.cy {
		quadrant |= 2
	}
	if q.children[quadrant] == nil {
		h := q.half / 2
		cx := q.cx - h
		cy := q.cy - h
		if quadrant&1 != 0 {
			cx = q.cx + h
		}
		if quadrant&2 != 0 {
			cy = q.cy + h
		}
		q.children[quadrant] = &quadNode{cx: cx, cy: cy, half: h, point: -1}
	}
	return q.children[quadrant]
}

// negForce accumulates the repulsive force on point idx into force and
// returns this subtree's contribution to the partition function Z.
func (q *quadNode) negForce(p [2]float64, idx int, force *[2]float64) float64 {
	if q.mass == 0 || (q.mass == 1 && q.point == idx) {
		return 0
	}

	dx := p[0] - q.comX
	dy := p[1] - q.comY
	sq := dx*dx + dy*dy

	// A cell is usable as an aggregate when it is a leaf or small relative
	// to its distance (Barnes-Hut criterion).
	if q.children == nil || (2*q.half)*(2*q.half) < bhTheta*bhTheta*sq {
		w := 1 / (1 + sq)
		z := float64(q.mass) * w
		force[0] += z * w * dx
		force[1] += z * w * dy
		return z
	}

	var z float64
	for _, c := range q.children {
		if c != nil {
			z += c.negForce(p, idx, force)
		}
	}
	return z
}
