// Package pipeline holds the model handles of one experiment run and exposes
// the operations an experiment driver calls: oracle queries, the
// pseudo-sample noise matrix and node embeddings.
//
// A Pipeline is built once and passed around; nothing is kept in package
// globals, so tests can swap in scripted models.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/sanonone/graphoracle/pkg/config"
	"github.com/sanonone/graphoracle/pkg/dataset"
	"github.com/sanonone/graphoracle/pkg/embeddings"
	"github.com/sanonone/graphoracle/pkg/llm"
	"github.com/sanonone/graphoracle/pkg/oracle"
	"github.com/sanonone/graphoracle/pkg/pooling"
	"github.com/sanonone/graphoracle/pkg/psample"
)

// Pipeline bundles a generator, an encoder and the components built on them.
type Pipeline struct {
	Generator llm.Generator
	Encoder   embeddings.Encoder
	Oracle    *oracle.Oracle
	Samples   *psample.Generator

	logger *slog.Logger
}

// New builds the backends described by cfg.
func New(cfg config.Config, logger *slog.Logger) (*Pipeline, error) {
	gen, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, err
	}
	enc, err := embeddings.New(cfg.Embedder)
	if err != nil {
		return nil, err
	}

	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	}
	return NewWithBackends(gen, enc, rng, logger, cfg), nil
}

// NewWithBackends wires already constructed backends. rng may be nil.
// Zero values in cfg keep the package defaults.
func NewWithBackends(gen llm.Generator, enc embeddings.Encoder, rng *rand.Rand, logger *slog.Logger, cfg config.Config) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("[Pipeline] Backends ready", "model", gen.Model(), "encoder", enc.Name())

	oracleOpts := []oracle.Option{
		oracle.WithGroundTruth(cfg.Oracle.GroundTruth),
		oracle.WithLogger(logger),
	}
	if cfg.Oracle.MaxNewTokens > 0 {
		oracleOpts = append(oracleOpts, oracle.WithMaxNewTokens(cfg.Oracle.MaxNewTokens))
	}
	if cfg.Oracle.PromptTemplate != "" {
		oracleOpts = append(oracleOpts, oracle.WithTemplate(cfg.Oracle.PromptTemplate))
	}

	sampleOpts := []psample.Option{psample.WithLogger(logger)}
	if cfg.PseudoSample.MaxNewTokens > 0 {
		sampleOpts = append(sampleOpts, psample.WithMaxNewTokens(cfg.PseudoSample.MaxNewTokens))
	}
	if cfg.PseudoSample.Marker != "" {
		sampleOpts = append(sampleOpts, psample.WithMarker(cfg.PseudoSample.Marker))
	}

	return &Pipeline{
		Generator: gen,
		Encoder:   enc,
		Oracle:    oracle.New(gen, rng, oracleOpts...),
		Samples:   psample.NewGenerator(gen, enc, sampleOpts...),
		logger:    logger,
	}
}

// QueryOracle asks the model to classify with prompt.
func (p *Pipeline) QueryOracle(ctx context.Context, ds dataset.Dataset, prompt string) (oracle.Assignment, error) {
	return p.Oracle.Query(ctx, ds, prompt)
}

// PseudoSampleNoise returns the category affinity matrix of ds.
func (p *Pipeline) PseudoSampleNoise(ctx context.Context, ds dataset.Dataset) (*mat.Dense, error) {
	return p.Samples.NoiseMatrix(ctx, ds)
}

// NodeEmbeddings encodes the raw text of each node and mean-pools the hidden
// states. Row i of the result belongs to nodes[i].
func (p *Pipeline) NodeEmbeddings(ctx context.Context, ds dataset.Dataset, nodes []int) (*mat.Dense, error) {
	return p.NodeEmbeddingsPooled(ctx, ds, nodes, pooling.Mean)
}

// NodeEmbeddingsPooled is NodeEmbeddings with a caller-chosen pooling mode.
func (p *Pipeline) NodeEmbeddingsPooled(ctx context.Context, ds dataset.Dataset, nodes []int, mode pooling.Mode) (*mat.Dense, error) {
	texts := make([]string, len(nodes))
	for i, node := range nodes {
		text, err := ds.RawText(node)
		if err != nil {
			return nil, err
		}
		texts[i] = text
	}

	bank, err := p.Encoder.Encode(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("encode %d nodes: %w", len(nodes), err)
	}
	feat, err := pooling.Pool(bank, mode)
	if err != nil {
		return nil, fmt.Errorf("pool node embeddings: %w", err)
	}
	p.logger.Debug("[Pipeline] Node embeddings computed", "nodes", len(nodes), "encoder", p.Encoder.Name(), "pooling", mode)
	return feat, nil
}
