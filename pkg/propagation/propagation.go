// Package propagation smooths node features over a graph by repeated
// multiplication with the GCN-normalized adjacency matrix.
package propagation

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/mat"

	"github.com/sanonone/graphoracle/pkg/dataset"
)

var (
	ErrNegativeHops   = errors.New("propagation: hop count must not be negative")
	ErrEdgeOutOfRange = errors.New("propagation: edge endpoint out of range")
	ErrWeightLength   = errors.New("propagation: edge weights do not match edges")
	ErrFeatureRows    = errors.New("propagation: feature rows do not match node count")
)

// NormalizedAdjacency builds D^-1/2 A D^-1/2 for g, where A[target, source]
// carries the weight of edge source->target.
func NormalizedAdjacency(g *dataset.Graph) (*Adjacency, error) {
	weights := g.Weights()
	if weights != nil && len(weights) != len(g.EdgeIndex) {
		return nil, fmt.Errorf("%w: %d weights for %d edges", ErrWeightLength, len(weights), len(g.EdgeIndex))
	}
	for k, e := range g.EdgeIndex {
		if e[0] < 0 || e[0] >= g.NumNodes || e[1] < 0 || e[1] >= g.NumNodes {
			return nil, fmt.Errorf("%w: edge %d (%d -> %d) with %d nodes", ErrEdgeOutOfRange, k, e[0], e[1], g.NumNodes)
		}
	}

	adj := newAdjacency(g.NumNodes, g.EdgeIndex, weights)
	adj.gcnNormalize()
	return adj, nil
}

// Propagate returns the node features after hops rounds of neighbourhood
// averaging. g.X is cloned first and never modified; hops == 0 returns an
// identical copy.
func Propagate(g *dataset.Graph, hops int) (*mat.Dense, error) {
	if hops < 0 {
		return nil, ErrNegativeHops
	}
	if r, _ := g.X.Dims(); r != g.NumNodes {
		return nil, fmt.Errorf("%w: %d rows for %d nodes", ErrFeatureRows, r, g.NumNodes)
	}
	adj, err := NormalizedAdjacency(g)
	if err != nil {
		return nil, err
	}

	out := mat.DenseCopyOf(g.X)
	for range hops {
		out = adj.Mul(out)
	}
	return out, nil
}

// FromGonum converts a weighted directed gonum graph into a dataset.Graph.
// Node ids must be 0..n-1 where n is the number of rows of x.
func FromGonum(g graph.WeightedDirected, x *mat.Dense) (*dataset.Graph, error) {
	n, _ := x.Dims()
	out := &dataset.Graph{NumNodes: n, X: x}

	nodes := graph.NodesOf(g.Nodes())
	for _, u := range nodes {
		if u.ID() < 0 || u.ID() >= int64(n) {
			return nil, fmt.Errorf("%w: node id %d with %d feature rows", ErrEdgeOutOfRange, u.ID(), n)
		}
	}
	for _, u := range nodes {
		to := g.From(u.ID())
		for to.Next() {
			v := to.Node()
			w := g.WeightedEdge(u.ID(), v.ID()).Weight()
			out.EdgeIndex = append(out.EdgeIndex, [2]int{int(u.ID()), int(v.ID())})
			out.EdgeWeight = append(out.EdgeWeight, w)
		}
	}
	return out, nil
}
