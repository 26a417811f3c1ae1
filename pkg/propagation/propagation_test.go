package propagation

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/mat"

	"github.com/sanonone/graphoracle/pkg/dataset"
)

func floatsAreEqual(a, b float64) bool {
	const tolerance = 1e-9
	return math.Abs(a-b) < tolerance
}

func undirected(pairs ...[2]int) [][2]int {
	var edges [][2]int
	for _, p := range pairs {
		edges = append(edges, p, [2]int{p[1], p[0]})
	}
	return edges
}

func TestZeroHopsIsIdentity(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	g := &dataset.Graph{NumNodes: 3, EdgeIndex: undirected([2]int{0, 1}, [2]int{1, 2}), X: x}

	out, err := Propagate(g, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(out, x) {
		t.Errorf("got %v, want %v", mat.Formatted(out), mat.Formatted(x))
	}
	out.Set(0, 0, 100)
	if x.At(0, 0) != 1 {
		t.Error("result shares storage with the input features")
	}
}

func TestPropagateDoesNotMutateInput(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{1, 2, 3})
	before := mat.DenseCopyOf(x)
	g := &dataset.Graph{NumNodes: 3, EdgeIndex: undirected([2]int{0, 1}, [2]int{1, 2}), X: x}

	out, err := Propagate(g, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(x, before) {
		t.Errorf("input features changed: %v", mat.Formatted(x))
	}
	if mat.Equal(out, before) {
		t.Error("three hops should change the features")
	}
}

func TestPropagateSwapsPair(t *testing.T) {
	x := mat.NewDense(2, 1, []float64{1, 3})
	g := &dataset.Graph{NumNodes: 2, EdgeIndex: undirected([2]int{0, 1}), X: x}

	one, err := Propagate(g, 1)
	if err != nil {
		t.Fatal(err)
	}
	if one.At(0, 0) != 3 || one.At(1, 0) != 1 {
		t.Errorf("one hop: got %v", mat.Formatted(one))
	}

	two, err := Propagate(g, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(two, x) {
		t.Errorf("two hops: got %v", mat.Formatted(two))
	}
}

func TestDirectedEdgesFollowSourceToTarget(t *testing.T) {
	// 0 -> 1 -> 2. Node 0 has no incoming edge, so its scale is 0 and the
	// 0 -> 1 entry vanishes after normalization.
	x := mat.NewDense(3, 1, []float64{1, 2, 3})
	g := &dataset.Graph{NumNodes: 3, EdgeIndex: [][2]int{{0, 1}, {1, 2}}, X: x}

	out, err := Propagate(g, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0, 2}
	for i, w := range want {
		if !floatsAreEqual(out.At(i, 0), w) {
			t.Errorf("node %d: got %v, want %v", i, out.At(i, 0), w)
		}
	}
}

func TestNormalizedAdjacencyStar(t *testing.T) {
	g := &dataset.Graph{NumNodes: 3, EdgeIndex: undirected([2]int{0, 1}, [2]int{0, 2})}
	adj, err := NormalizedAdjacency(g)
	if err != nil {
		t.Fatal(err)
	}
	if adj.NNZ() != 4 {
		t.Errorf("NNZ = %d, want 4", adj.NNZ())
	}
	want := 1 / math.Sqrt(2)
	for _, ij := range [][2]int{{0, 1}, {1, 0}, {0, 2}, {2, 0}} {
		if got := adj.At(ij[0], ij[1]); !floatsAreEqual(got, want) {
			t.Errorf("At(%d,%d) = %v, want %v", ij[0], ij[1], got, want)
		}
	}
	if adj.At(1, 2) != 0 || adj.At(0, 0) != 0 {
		t.Error("unexpected entries, self loops must not be added")
	}
}

func TestWeightsAndDuplicates(t *testing.T) {
	// duplicate 0->1 edges sum to 3, 1->0 weighs 3: both rows have degree 3
	g := &dataset.Graph{
		NumNodes:  2,
		EdgeIndex: [][2]int{{0, 1}, {0, 1}, {1, 0}},
		EdgeAttr:  []float64{1, 2, 3},
	}
	adj, err := NormalizedAdjacency(g)
	if err != nil {
		t.Fatal(err)
	}
	if adj.NNZ() != 2 {
		t.Errorf("NNZ = %d, want 2", adj.NNZ())
	}
	if got := adj.At(1, 0); !floatsAreEqual(got, 1) {
		t.Errorf("At(1,0) = %v, want 1", got)
	}

	// edge_weight wins over edge_attr
	g.EdgeWeight = []float64{1, 1, 4}
	adj, err = NormalizedAdjacency(g)
	if err != nil {
		t.Fatal(err)
	}
	// A_t(1,0) = 2, deg1 = 2; A_t(0,1) = 4, deg0 = 4
	if got, want := adj.At(1, 0), 2/math.Sqrt(2*4); !floatsAreEqual(got, want) {
		t.Errorf("At(1,0) = %v, want %v", got, want)
	}
}

func TestPropagateErrors(t *testing.T) {
	x := mat.NewDense(2, 1, []float64{1, 2})

	if _, err := Propagate(&dataset.Graph{NumNodes: 2, X: x}, -1); !errors.Is(err, ErrNegativeHops) {
		t.Errorf("negative hops: got %v", err)
	}
	if _, err := Propagate(&dataset.Graph{NumNodes: 2, EdgeIndex: [][2]int{{0, 5}}, X: x}, 1); !errors.Is(err, ErrEdgeOutOfRange) {
		t.Errorf("edge range: got %v", err)
	}
	if _, err := Propagate(&dataset.Graph{NumNodes: 2, EdgeIndex: [][2]int{{0, 1}}, EdgeWeight: []float64{1, 2}, X: x}, 1); !errors.Is(err, ErrWeightLength) {
		t.Errorf("weights: got %v", err)
	}
	if _, err := Propagate(&dataset.Graph{NumNodes: 3, X: x}, 1); !errors.Is(err, ErrFeatureRows) {
		t.Errorf("feature rows: got %v", err)
	}
}

func TestFromGonum(t *testing.T) {
	wg := simple.NewWeightedDirectedGraph(0, 0)
	wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(0), simple.Node(1), 2))
	wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(1), simple.Node(0), 2))

	x := mat.NewDense(2, 1, []float64{5, 7})
	g, err := FromGonum(wg, x)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.EdgeIndex) != 2 || len(g.EdgeWeight) != 2 {
		t.Fatalf("got %d edges, %d weights", len(g.EdgeIndex), len(g.EdgeWeight))
	}

	out, err := Propagate(g, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !floatsAreEqual(out.At(0, 0), 7) || !floatsAreEqual(out.At(1, 0), 5) {
		t.Errorf("got %v", mat.Formatted(out))
	}

	wg.AddNode(simple.Node(9))
	if _, err := FromGonum(wg, x); !errors.Is(err, ErrEdgeOutOfRange) {
		t.Errorf("node id out of range: got %v", err)
	}
}
