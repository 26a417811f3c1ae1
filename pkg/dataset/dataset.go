// Package dataset defines what the oracle, the pseudo-sample generator and
// the embedding fetcher need from a text-attributed graph dataset.
package dataset

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrNodeOutOfRange is returned when a node identifier has no stored text or label.
var ErrNodeOutOfRange = errors.New("dataset: node out of range")

// ErrLabelOutOfRange is returned when a stored label is not an index into
// the category names.
var ErrLabelOutOfRange = errors.New("dataset: label is not a category index")

// Dataset exposes the per-node text and the category vocabulary of a dataset.
type Dataset interface {
	// NumNodes returns the number of nodes.
	NumNodes() int

	// RawText returns the stored text of a node (an abstract, a review, ...).
	RawText(node int) (string, error)

	// Label returns the ground-truth class index of a node.
	Label(node int) (int, error)

	// CategoryNames returns the human-readable class names, in class order.
	CategoryNames() []string

	// Domain names the field the categories belong to (e.g. "computer science").
	Domain() string

	// Entity is the noun for one node's text (e.g. "abstract", "review").
	Entity() string
}

// Memory is an in-memory Dataset.
type Memory struct {
	RawTexts    []string `json:"raw_texts" yaml:"raw_texts"`
	Labels      []int    `json:"labels,omitempty" yaml:"labels,omitempty"`
	Categories  []string `json:"categories" yaml:"categories"`
	DomainLabel string   `json:"domain" yaml:"domain"`
	EntityNoun  string   `json:"entity" yaml:"entity"`
}

var _ Dataset = (*Memory)(nil)

func (m *Memory) NumNodes() int { return len(m.RawTexts) }

func (m *Memory) RawText(node int) (string, error) {
	if node < 0 || node >= len(m.RawTexts) {
		return "", fmt.Errorf("%w: %d (have %d nodes)", ErrNodeOutOfRange, node, len(m.RawTexts))
	}
	return m.RawTexts[node], nil
}

func (m *Memory) Label(node int) (int, error) {
	if node < 0 || node >= len(m.Labels) {
		return 0, fmt.Errorf("%w: no label for %d", ErrNodeOutOfRange, node)
	}
	return m.Labels[node], nil
}

func (m *Memory) CategoryNames() []string { return m.Categories }
func (m *Memory) Domain() string          { return m.DomainLabel }
func (m *Memory) Entity() string          { return m.EntityNoun }

// Graph is the structure feature propagation runs over.
type Graph struct {
	// NumNodes is the number of nodes; node ids are 0..NumNodes-1.
	NumNodes int

	// EdgeIndex lists directed edges as (source, target) pairs.
	EdgeIndex [][2]int

	// EdgeAttr is an optional scalar attribute per edge, used as the weight
	// when EdgeWeight is not set.
	EdgeAttr []float64

	// EdgeWeight is an optional weight per edge.
	EdgeWeight []float64

	// X holds one feature row per node.
	X *mat.Dense
}

// Weights returns the per-edge weights in effect: EdgeWeight, then EdgeAttr,
// then nil meaning every edge weighs 1.
func (g *Graph) Weights() []float64 {
	if g.EdgeWeight != nil {
		return g.EdgeWeight
	}
	return g.EdgeAttr
}
