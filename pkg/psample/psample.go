// Package psample asks the language model to write one representative text
// per category and turns the embeddings of those pseudo-samples into a
// category-by-category affinity matrix. Row i of the matrix is a probability
// distribution over the classes that class i is likely to be confused with.
package psample

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/sanonone/graphoracle/pkg/dataset"
	"github.com/sanonone/graphoracle/pkg/embeddings"
	"github.com/sanonone/graphoracle/pkg/llm"
	"github.com/sanonone/graphoracle/pkg/pooling"
)

// ErrMarkerMissing is returned when a generated sample does not contain the
// body marker. The sample is treated as a failed generation.
var ErrMarkerMissing = errors.New("psample: marker not found in generated text")

const (
	// DefaultMarker precedes the body of a generated sample.
	DefaultMarker = "Abstract:"

	// DefaultMaxNewTokens leaves room for a ~200 word sample.
	DefaultMaxNewTokens = 300
)

// BuildPrompt returns the generation prompt for one category.
func BuildPrompt(domain, entity string, categories []string, category string) string {
	var sb strings.Builder
	sb.WriteString("Suppose you are an expert at " + domain + ". ")
	sb.WriteString("There are now the following " + domain + " subcategories: " + strings.Join(categories, ", ") + ". ")
	sb.WriteString("Please write a " + entity + " of about 200 words, so that its classification best fits the " + category + " category.")
	return sb.String()
}

// ExtractBody joins the lines of text and keeps what follows the first
// occurrence of marker.
func ExtractBody(text, marker string) (string, error) {
	text = strings.ReplaceAll(text, "\n", " ")
	_, body, found := strings.Cut(text, marker)
	if !found {
		return "", ErrMarkerMissing
	}
	return body, nil
}

// Generator produces pseudo-samples and their similarity matrix.
type Generator struct {
	gen          llm.Generator
	enc          embeddings.Encoder
	logger       *slog.Logger
	marker       string
	maxNewTokens int
	stop         []string
}

// Option configures a Generator.
type Option func(*Generator)

// WithMarker sets the text that precedes the body of a sample.
func WithMarker(marker string) Option {
	return func(g *Generator) { g.marker = marker }
}

// WithMaxNewTokens sets the generation length limit per sample.
func WithMaxNewTokens(n int) Option {
	return func(g *Generator) { g.maxNewTokens = n }
}

// WithStop sets extra end-of-sequence markers.
func WithStop(stop ...string) Option {
	return func(g *Generator) { g.stop = stop }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator creates a pseudo-sample generator.
func NewGenerator(gen llm.Generator, enc embeddings.Encoder, opts ...Option) *Generator {
	g := &Generator{
		gen:          gen,
		enc:          enc,
		marker:       DefaultMarker,
		maxNewTokens: DefaultMaxNewTokens,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Samples generates one sample per category of ds, in category order.
func (g *Generator) Samples(ctx context.Context, ds dataset.Dataset) ([]string, error) {
	categories := ds.CategoryNames()
	samples := make([]string, 0, len(categories))

	for j, category := range categories {
		prompt := BuildPrompt(ds.Domain(), ds.Entity(), categories, category)

		out, err := g.gen.Generate(ctx, prompt, llm.GenerateOptions{
			MaxNewTokens: g.maxNewTokens,
			Stop:         g.stop,
		})
		if err != nil {
			return nil, fmt.Errorf("category %d (%s): %w", j, category, err)
		}
		out = strings.ReplaceAll(out, prompt, "")

		body, err := ExtractBody(out, g.marker)
		if err != nil {
			g.logger.Warn("[PSample] Generated text has no marker", "category", category, "marker", g.marker)
			return nil, fmt.Errorf("category %d (%s): %w", j, category, err)
		}
		g.logger.Debug("[PSample] Sample generated", "category", category, "chars", len(body))
		samples = append(samples, body)
	}
	return samples, nil
}

// NoiseMatrix generates the samples, embeds them with max pooling and returns
// their row-normalized cosine similarity matrix.
func (g *Generator) NoiseMatrix(ctx context.Context, ds dataset.Dataset) (*mat.Dense, error) {
	samples, err := g.Samples(ctx, ds)
	if err != nil {
		return nil, err
	}
	return g.NoiseFromSamples(ctx, samples)
}

// NoiseFromSamples embeds already generated samples and returns their
// similarity matrix.
func (g *Generator) NoiseFromSamples(ctx context.Context, samples []string) (*mat.Dense, error) {
	if len(samples) == 0 {
		return nil, embeddings.ErrEmptyInput
	}

	bank, err := g.enc.Encode(ctx, samples)
	if err != nil {
		return nil, fmt.Errorf("encode pseudo-samples: %w", err)
	}
	feat, err := pooling.Pool(bank, pooling.Max)
	if err != nil {
		return nil, fmt.Errorf("pool pseudo-samples: %w", err)
	}
	return Similarity(feat), nil
}
