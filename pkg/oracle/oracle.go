// Package oracle uses a generative language model as a noisy labeler.
//
// The model's free-text answer is searched for category names. When no name
// appears the oracle does not fail: it draws a class uniformly at random from
// the injected generator, flags the assignment as a fallback and counts it in
// graphoracle_oracle_fallbacks_total. Those draws are label noise in any
// evaluation built on top, so seed the generator when runs must repeat.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/sanonone/graphoracle/pkg/dataset"
	"github.com/sanonone/graphoracle/pkg/llm"
	"github.com/sanonone/graphoracle/pkg/metrics"
)

// ErrNoCategories is returned when the dataset has no category names.
var ErrNoCategories = errors.New("oracle: dataset has no categories")

// DefaultMaxNewTokens bounds the model's answer.
const DefaultMaxNewTokens = 100

// DefaultTemplate is the node classification prompt used by QueryNode.
const DefaultTemplate = "Suppose you are an expert at {domain}. There are now the following {domain} subcategories: {categories}. " +
	"Which subcategory does the following {entity} belong to? Answer with the subcategory name only.\n\n{text}\n\nAnswer:"

// Assignment is the class chosen for one query.
type Assignment struct {
	// Class is the index into the dataset's category names.
	Class int `json:"class"`

	// Fallback is true when no category name was found and Class was drawn
	// at random.
	Fallback bool `json:"fallback"`

	// Output is the model answer with the echoed prompt removed.
	Output string `json:"output,omitempty"`
}

// Oracle queries a Generator for class labels.
type Oracle struct {
	gen          llm.Generator
	rng          *rand.Rand
	logger       *slog.Logger
	maxNewTokens int
	stop         []string
	template     string
	groundTruth  bool
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithMaxNewTokens sets the answer length limit.
func WithMaxNewTokens(n int) Option {
	return func(o *Oracle) { o.maxNewTokens = n }
}

// WithStop sets extra end-of-sequence markers.
func WithStop(stop ...string) Option {
	return func(o *Oracle) { o.stop = stop }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Oracle) { o.logger = l }
}

// WithTemplate sets the prompt template used by QueryNode.
func WithTemplate(tmpl string) Option {
	return func(o *Oracle) { o.template = tmpl }
}

// WithGroundTruth makes QueryNode return the dataset label without asking
// the model. Used for noise-free ablations.
func WithGroundTruth(on bool) Option {
	return func(o *Oracle) { o.groundTruth = on }
}

// New creates an oracle. rng drives the fallback draw; nil seeds a fresh
// generator from the runtime.
func New(gen llm.Generator, rng *rand.Rand, opts ...Option) *Oracle {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	o := &Oracle{
		gen:          gen,
		rng:          rng,
		maxNewTokens: DefaultMaxNewTokens,
		template:     DefaultTemplate,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// MatchCategory returns the index of the first name, in list order, that
// occurs in text. The search is case sensitive.
func MatchCategory(text string, names []string) (int, bool) {
	for i, name := range names {
		if strings.Contains(text, name) {
			return i, true
		}
	}
	return -1, false
}

// Query sends prompt to the model and maps the answer to a class of ds.
func (o *Oracle) Query(ctx context.Context, ds dataset.Dataset, prompt string) (Assignment, error) {
	names := ds.CategoryNames()
	if len(names) == 0 {
		return Assignment{}, ErrNoCategories
	}

	queryID := uuid.NewString()
	out, err := o.gen.Generate(ctx, prompt, llm.GenerateOptions{
		MaxNewTokens: o.maxNewTokens,
		Stop:         o.stop,
	})
	if err != nil {
		return Assignment{}, fmt.Errorf("oracle query %s: %w", queryID, err)
	}
	out = strings.ReplaceAll(out, prompt, "")

	if class, ok := MatchCategory(out, names); ok {
		metrics.ObserveOracle(false)
		o.logger.Debug("[Oracle] Answer matched", "query_id", queryID, "class", class, "category", names[class])
		return Assignment{Class: class, Output: out}, nil
	}

	class := o.rng.IntN(len(names))
	metrics.ObserveOracle(true)
	o.logger.Warn("[Oracle] No category in answer, using random class",
		"query_id", queryID, "class", class, "num_classes", len(names), "model", o.gen.Model())
	return Assignment{Class: class, Fallback: true, Output: out}, nil
}

// QueryNode renders the node classification prompt for node and queries
// the model, or returns the stored label when ground truth is enabled.
func (o *Oracle) QueryNode(ctx context.Context, ds dataset.Dataset, node int) (Assignment, error) {
	if o.groundTruth {
		label, err := ds.Label(node)
		if err != nil {
			return Assignment{}, err
		}
		n := len(ds.CategoryNames())
		if n == 0 {
			return Assignment{}, ErrNoCategories
		}
		if label < 0 || label >= n {
			return Assignment{}, fmt.Errorf("node %d: %w: %d (have %d categories)", node, dataset.ErrLabelOutOfRange, label, n)
		}
		return Assignment{Class: label}, nil
	}

	text, err := ds.RawText(node)
	if err != nil {
		return Assignment{}, err
	}
	return o.Query(ctx, ds, RenderPrompt(o.template, ds, text))
}

// RenderPrompt fills the {domain}, {entity}, {categories} and {text}
// placeholders of tmpl.
func RenderPrompt(tmpl string, ds dataset.Dataset, text string) string {
	r := strings.NewReplacer(
		"{domain}", ds.Domain(),
		"{entity}", ds.Entity(),
		"{categories}", strings.Join(ds.CategoryNames(), ", "),
		"{text}", text,
	)
	return r.Replace(tmpl)
}
