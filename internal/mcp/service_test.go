package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/graphoracle/pkg/config"
	"github.com/sanonone/graphoracle/pkg/dataset"
	"github.com/sanonone/graphoracle/pkg/llm"
	"github.com/sanonone/graphoracle/pkg/pipeline"
	"github.com/sanonone/graphoracle/pkg/pooling"
)

// keywordGenerator answers with the first category that the last line of
// the prompt mentions a keyword of.
type keywordGenerator struct {
	keywords map[string]string
}

func (g keywordGenerator) Generate(_ context.Context, prompt string, _ llm.GenerateOptions) (string, error) {
	if strings.Contains(prompt, "Please write") {
		return "Title: x\nAbstract: sample", nil
	}
	for kw, category := range g.keywords {
		if strings.Contains(prompt, kw) {
			return " " + category, nil
		}
	}
	return " no idea", nil
}

func (keywordGenerator) Model() string { return "keywords" }

type unitEncoder struct{}

func (unitEncoder) Encode(_ context.Context, texts []string) (*pooling.Bank, error) {
	rows := make([][]float32, len(texts))
	for i := range rows {
		rows[i] = []float32{1, 1}
	}
	return pooling.FromPooled(rows)
}

func (unitEncoder) Name() string { return "unit" }

func newTestService(cfg config.Config) *Service {
	gen := keywordGenerator{keywords: map[string]string{"B-tree": "Databases", "TCP": "Networking"}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := pipeline.NewWithBackends(gen, unitEncoder{}, rand.New(rand.NewPCG(5, 5)), logger, cfg)
	return NewService(p)
}

var categories = []string{"Databases", "Networking"}

func TestClassify(t *testing.T) {
	s := newTestService(config.DefaultConfig())
	ctx := context.Background()

	_, res, err := s.Classify(ctx, nil, ClassifyArgs{
		Text:       "A TCP variant for datacenters.",
		Categories: categories,
		Domain:     "computer science",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Class != 1 || res.Category != "Networking" || res.Fallback {
		t.Errorf("got %+v", res)
	}

	_, res, err = s.Classify(ctx, nil, ClassifyArgs{
		Text:       "Poems about the sea.",
		Categories: categories,
		Domain:     "computer science",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Fallback || res.Category != categories[res.Class] {
		t.Errorf("expected a flagged random class, got %+v", res)
	}
}

func TestClassifyValidation(t *testing.T) {
	s := newTestService(config.DefaultConfig())
	if _, _, err := s.Classify(context.Background(), nil, ClassifyArgs{Text: "x"}); !errors.Is(err, errNoTaxonomy) {
		t.Errorf("got %v, want errNoTaxonomy", err)
	}

	cfg := config.DefaultConfig()
	cfg.Oracle.GroundTruth = true
	s = newTestService(cfg)
	_, _, err := s.Classify(context.Background(), nil, ClassifyArgs{Text: "x", Categories: categories, Domain: "cs"})
	if !errors.Is(err, dataset.ErrNodeOutOfRange) {
		t.Errorf("got %v, want ErrNodeOutOfRange", err)
	}
}

func TestCountTokensAndRankingDiff(t *testing.T) {
	s := newTestService(config.DefaultConfig())

	_, tok, err := s.CountTokens(context.Background(), nil, CountTokensArgs{Text: "hello world"})
	if err != nil {
		t.Fatal(err)
	}
	if tok.Tokens != 2 || tok.Encoding != "cl100k_base" {
		t.Errorf("got %+v", tok)
	}

	_, diff, err := s.RankingDiff(context.Background(), nil, RankingDiffArgs{
		First:  []string{"a", "b", "c"},
		Second: []string{"c", "b", "a"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff.Distance != 4 {
		t.Errorf("distance = %d, want 4", diff.Distance)
	}
}

func TestPseudoSamples(t *testing.T) {
	s := newTestService(config.DefaultConfig())
	_, res, err := s.PseudoSamples(context.Background(), nil, PseudoSamplesArgs{
		Categories: categories,
		Domain:     "computer science",
		Entity:     "abstract",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Samples) != 2 || res.Samples[0] != " sample" {
		t.Errorf("samples = %q", res.Samples)
	}
	for i, row := range res.Noise {
		for j, v := range row {
			if math.Abs(v-0.5) > 1e-6 {
				t.Errorf("noise(%d,%d) = %v, want 0.5", i, j, v)
			}
		}
	}
}

func TestServerListsTools(t *testing.T) {
	ctx := context.Background()
	server := NewMCPServer(newTestService(config.DefaultConfig()).pipe)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	if _, err := server.Connect(ctx, serverTransport, nil); err != nil {
		t.Fatal(err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer session.Close()

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	slices.Sort(names)
	want := []string{"classify_text", "count_tokens", "pseudo_samples", "ranking_diff"}
	if !slices.Equal(names, want) {
		t.Errorf("tools = %v, want %v", names, want)
	}
}
