package psample

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	normEpsilon = 1e-8
	l1Epsilon   = 1e-12
)

// Similarity returns the pairwise cosine similarity of the rows of feat, with
// every row then scaled to unit L1 norm.
//
// Norms get normEpsilon added so zero rows do not divide by zero. With
// non-negative features all entries are non-negative and each row sums to 1.
func Similarity(feat *mat.Dense) *mat.Dense {
	n, _ := feat.Dims()

	norms := make([]float64, n)
	for i := range n {
		norms[i] = floats.Norm(feat.RawRowView(i), 2) + normEpsilon
	}

	sim := mat.NewDense(n, n, nil)
	sim.Mul(feat, feat.T())
	sim.Apply(func(i, j int, v float64) float64 {
		return v / norms[i] / norms[j]
	}, sim)

	for i := range n {
		row := sim.RawRowView(i)
		l1 := math.Max(floats.Norm(row, 1), l1Epsilon)
		floats.Scale(1/l1, row)
	}
	return sim
}
