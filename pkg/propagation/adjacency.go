package propagation

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Adjacency is a square sparse matrix in compressed sparse row layout.
// Row i lists the sources whose features flow into node i.
type Adjacency struct {
	n       int
	indptr  []int
	indices []int
	values  []float64
}

var _ mat.Matrix = (*Adjacency)(nil)

type entry struct {
	row, col int
	val      float64
}

// newAdjacency builds the transposed adjacency of a directed edge list:
// an edge source->target with weight w becomes entry (target, source).
// Duplicate edges are summed.
func newAdjacency(n int, edges [][2]int, weights []float64) *Adjacency {
	entries := make([]entry, len(edges))
	for k, e := range edges {
		w := 1.0
		if weights != nil {
			w = weights[k]
		}
		entries[k] = entry{row: e[1], col: e[0], val: w}
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(a.row, b.row); c != 0 {
			return c
		}
		return cmp.Compare(a.col, b.col)
	})

	a := &Adjacency{n: n, indptr: make([]int, n+1)}
	for k, e := range entries {
		if k > 0 && entries[k-1].row == e.row && entries[k-1].col == e.col {
			a.values[len(a.values)-1] += e.val
			continue
		}
		a.indices = append(a.indices, e.col)
		a.values = append(a.values, e.val)
		a.indptr[e.row+1]++
	}
	for i := 0; i < n; i++ {
		a.indptr[i+1] += a.indptr[i]
	}
	return a
}

// gcnNormalize applies the symmetric graph-convolution normalization
// D^-1/2 A D^-1/2 in place, where D holds the row sums of A. No self loops are
// added; nodes with zero degree get a zero scale instead of infinity.
func (a *Adjacency) gcnNormalize() {
	scale := make([]float64, a.n)
	for i := 0; i < a.n; i++ {
		deg := floats.Sum(a.values[a.indptr[i]:a.indptr[i+1]])
		if deg > 0 {
			scale[i] = 1 / math.Sqrt(deg)
		}
	}
	for i := 0; i < a.n; i++ {
		for k := a.indptr[i]; k < a.indptr[i+1]; k++ {
			a.values[k] *= scale[i] * scale[a.indices[k]]
		}
	}
}

// Mul returns a * x.
func (a *Adjacency) Mul(x *mat.Dense) *mat.Dense {
	_, c := x.Dims()
	out := mat.NewDense(a.n, c, nil)
	for i := 0; i < a.n; i++ {
		dst := out.RawRowView(i)
		for k := a.indptr[i]; k < a.indptr[i+1]; k++ {
			floats.AddScaled(dst, a.values[k], x.RawRowView(a.indices[k]))
		}
	}
	return out
}

// NNZ returns the number of stored entries.
func (a *Adjacency) NNZ() int { return len(a.values) }

// Dims implements mat.Matrix.
func (a *Adjacency) Dims() (r, c int) { return a.n, a.n }

// At implements mat.Matrix.
func (a *Adjacency) At(i, j int) float64 {
	if i < 0 || i >= a.n || j < 0 || j >= a.n {
		panic(mat.ErrIndexOutOfRange)
	}
	row := a.indices[a.indptr[i]:a.indptr[i+1]]
	if k, ok := slices.BinarySearch(row, j); ok {
		return a.values[a.indptr[i]+k]
	}
	return 0
}

// T implements mat.Matrix.
func (a *Adjacency) T() mat.Matrix { return mat.Transpose{Matrix: a} }
