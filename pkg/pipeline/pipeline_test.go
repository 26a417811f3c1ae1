package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/sanonone/graphoracle/pkg/config"
	"github.com/sanonone/graphoracle/pkg/dataset"
	"github.com/sanonone/graphoracle/pkg/llm"
	"github.com/sanonone/graphoracle/pkg/pooling"
)

type fixedGenerator struct {
	reply string
	calls int
}

func (g *fixedGenerator) Generate(_ context.Context, prompt string, _ llm.GenerateOptions) (string, error) {
	g.calls++
	return prompt + g.reply, nil
}

func (g *fixedGenerator) Model() string { return "fixed" }

// lengthEncoder emits one token per word, each token holding the word length.
type lengthEncoder struct{}

func (lengthEncoder) Encode(_ context.Context, texts []string) (*pooling.Bank, error) {
	seqs := make([][][]float32, len(texts))
	for i, t := range texts {
		for _, w := range strings.Fields(t) {
			seqs[i] = append(seqs[i], []float32{float32(len(w))})
		}
	}
	return pooling.FromSequences(seqs)
}

func (lengthEncoder) Name() string { return "length" }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func corpus() *dataset.Memory {
	return &dataset.Memory{
		RawTexts:    []string{"ab abcd", "abcdef", "a b c"},
		Labels:      []int{1, 0, 1},
		Categories:  []string{"Databases", "Networking"},
		DomainLabel: "computer science",
		EntityNoun:  "abstract",
	}
}

func TestNodeEmbeddingsMeanPool(t *testing.T) {
	p := NewWithBackends(&fixedGenerator{}, lengthEncoder{}, nil, quietLogger(), config.DefaultConfig())

	feat, err := p.NodeEmbeddings(context.Background(), corpus(), []int{2, 0, 1})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1, 3, 6}
	for i, w := range want {
		if math.Abs(feat.At(i, 0)-w) > 1e-9 {
			t.Errorf("row %d = %v, want %v", i, feat.At(i, 0), w)
		}
	}

	if _, err := p.NodeEmbeddings(context.Background(), corpus(), []int{5}); !errors.Is(err, dataset.ErrNodeOutOfRange) {
		t.Errorf("got %v, want ErrNodeOutOfRange", err)
	}
}

func TestQueryOracleUsesConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Oracle.GroundTruth = true
	gen := &fixedGenerator{reply: "Networking"}
	p := NewWithBackends(gen, lengthEncoder{}, rand.New(rand.NewPCG(1, 1)), quietLogger(), cfg)

	a, err := p.Oracle.QueryNode(context.Background(), corpus(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if a.Class != 0 || gen.calls != 0 {
		t.Errorf("ground truth: got %+v after %d calls", a, gen.calls)
	}

	a, err = p.QueryOracle(context.Background(), corpus(), "Which one? ")
	if err != nil {
		t.Fatal(err)
	}
	if a.Class != 1 || a.Fallback {
		t.Errorf("got %+v, want Networking", a)
	}
}

func TestPseudoSampleNoise(t *testing.T) {
	cfg := config.Config{} // zero values keep package defaults
	gen := &fixedGenerator{reply: "\nAbstract: some words here"}
	p := NewWithBackends(gen, lengthEncoder{}, nil, quietLogger(), cfg)

	sim, err := p.PseudoSampleNoise(context.Background(), corpus())
	if err != nil {
		t.Fatal(err)
	}
	r, c := sim.Dims()
	if r != 2 || c != 2 {
		t.Fatalf("dims = %d x %d", r, c)
	}
	// identical samples give a uniform row
	for i := range r {
		for j := range c {
			if math.Abs(sim.At(i, j)-0.5) > 1e-6 {
				t.Errorf("sim(%d,%d) = %v, want 0.5", i, j, sim.At(i, j))
			}
		}
	}
}

func TestNewRejectsUnknownBackends(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.Mode = "telepathy"
	if _, err := New(cfg, quietLogger()); err == nil {
		t.Error("expected error for unknown llm mode")
	}

	cfg = config.DefaultConfig()
	cfg.Embedder.Type = "carrier-pigeon"
	if _, err := New(cfg, quietLogger()); err == nil {
		t.Error("expected error for unknown encoder type")
	}
}

func TestNewWiresConfiguredBackends(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Seed = 11
	cfg.LLM.Model = "mistral:7b"

	p, err := New(cfg, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if p.Generator.Model() != "mistral:7b" {
		t.Errorf("model = %q", p.Generator.Model())
	}
	if p.Encoder.Name() != "tei" {
		t.Errorf("encoder = %q", p.Encoder.Name())
	}
}

func TestNodeEmbeddingsPooledMax(t *testing.T) {
	p := NewWithBackends(&fixedGenerator{}, lengthEncoder{}, nil, quietLogger(), config.DefaultConfig())

	feat, err := p.NodeEmbeddingsPooled(context.Background(), corpus(), []int{0, 2}, pooling.Max)
	if err != nil {
		t.Fatal(err)
	}
	if feat.At(0, 0) != 4 || feat.At(1, 0) != 1 {
		t.Errorf("max pooled = [%v %v], want [4 1]", feat.At(0, 0), feat.At(1, 0))
	}
}
