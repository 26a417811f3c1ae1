package dataset

import (
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// ErrNoFeatures is returned by File.Graph when the file carries no node features.
var ErrNoFeatures = errors.New("dataset: file has no node features")

// File is the on-disk layout of a small dataset:
//
//	domain: computer science
//	entity: abstract
//	categories: [Databases, Networking]
//	raw_texts: ["...", "..."]
//	labels: [0, 1]
//	edges: [[0, 1], [1, 0]]
//	features: [[0.1, 0.2], [0.3, 0.4]]
type File struct {
	Memory `yaml:",inline"`

	Edges      [][2]int    `yaml:"edges,omitempty"`
	EdgeAttr   []float64   `yaml:"edge_attr,omitempty"`
	EdgeWeight []float64   `yaml:"edge_weight,omitempty"`
	Features   [][]float64 `yaml:"features,omitempty"`
}

// Load reads a dataset file. Unknown keys are rejected.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("YAML syntax error in dataset %s: %w", path, err)
	}
	if len(file.Labels) > 0 && len(file.Labels) != len(file.RawTexts) {
		return nil, fmt.Errorf("dataset %s: %d labels for %d texts", path, len(file.Labels), len(file.RawTexts))
	}
	for node, label := range file.Labels {
		if label < 0 || label >= len(file.Categories) {
			return nil, fmt.Errorf("dataset %s: node %d: %w: %d (have %d categories)",
				path, node, ErrLabelOutOfRange, label, len(file.Categories))
		}
	}
	return &file, nil
}

// Graph assembles the feature graph. The node count is the number of feature rows.
func (f *File) Graph() (*Graph, error) {
	if len(f.Features) == 0 {
		return nil, ErrNoFeatures
	}
	n, dim := len(f.Features), len(f.Features[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: feature rows are empty", ErrNoFeatures)
	}
	x := mat.NewDense(n, dim, nil)
	for i, row := range f.Features {
		if len(row) != dim {
			return nil, fmt.Errorf("dataset: feature row %d has %d values, want %d", i, len(row), dim)
		}
		x.SetRow(i, row)
	}
	return &Graph{
		NumNodes:   n,
		EdgeIndex:  f.Edges,
		EdgeAttr:   f.EdgeAttr,
		EdgeWeight: f.EdgeWeight,
		X:          x,
	}, nil
}
