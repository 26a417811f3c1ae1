package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
domain: computer science
entity: abstract
categories: [Databases, Networking]
raw_texts:
  - "We index B-trees."
  - "We tune TCP."
labels: [0, 1]
edges: [[0, 1], [1, 0]]
edge_weight: [2, 3]
features:
  - [1, 0]
  - [0, 1]
`)
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.NumNodes() != 2 || f.Domain() != "computer science" || f.Entity() != "abstract" {
		t.Errorf("got %+v", f.Memory)
	}
	if label, _ := f.Label(1); label != 1 {
		t.Errorf("label(1) = %d", label)
	}

	g, err := f.Graph()
	if err != nil {
		t.Fatal(err)
	}
	if g.NumNodes != 2 || len(g.EdgeIndex) != 2 || g.EdgeIndex[0] != [2]int{0, 1} {
		t.Errorf("graph = %+v", g)
	}
	if w := g.Weights(); len(w) != 2 || w[1] != 3 {
		t.Errorf("weights = %v", w)
	}
	if g.X.At(1, 1) != 1 {
		t.Errorf("features not loaded")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "categories: [A]\nraw_text: [x]\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "raw_text") {
		t.Errorf("got %v, want unknown field error", err)
	}
}

func TestLoadLabelCount(t *testing.T) {
	path := writeFile(t, "categories: [A]\nraw_texts: [x, y]\nlabels: [0]\n")
	if _, err := Load(path); err == nil {
		t.Error("expected label count error")
	}
}

func TestGraphWithoutFeatures(t *testing.T) {
	path := writeFile(t, "categories: [A]\nraw_texts: [x]\n")
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Graph(); !errors.Is(err, ErrNoFeatures) {
		t.Errorf("got %v, want ErrNoFeatures", err)
	}
}

func TestLoadRejectsLabelsOutsideCategories(t *testing.T) {
	cases := map[string]string{
		"past the end":  "categories: [A, B]\nraw_texts: [x]\nlabels: [5]\n",
		"negative":      "categories: [A, B]\nraw_texts: [x]\nlabels: [-1]\n",
		"no categories": "raw_texts: [x]\nlabels: [0]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeFile(t, body)); !errors.Is(err, ErrLabelOutOfRange) {
				t.Errorf("got %v, want ErrLabelOutOfRange", err)
			}
		})
	}
}

func TestGraphEmptyFeatureRows(t *testing.T) {
	f, err := Load(writeFile(t, "categories: [A]\nraw_texts: [x]\nfeatures: [[]]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Graph(); !errors.Is(err, ErrNoFeatures) {
		t.Errorf("got %v, want ErrNoFeatures", err)
	}
}
