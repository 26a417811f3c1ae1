package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/graphoracle/pkg/dataset"
	"github.com/sanonone/graphoracle/pkg/pipeline"
	"github.com/sanonone/graphoracle/pkg/ranking"
	"github.com/sanonone/graphoracle/pkg/tokens"
)

var errNoTaxonomy = errors.New("categories and domain are required")

type Service struct {
	pipe *pipeline.Pipeline
}

func NewService(p *pipeline.Pipeline) *Service {
	return &Service{pipe: p}
}

// taxonomy builds a one-node dataset around text. It has no labels, so
// ground truth mode fails with dataset.ErrNodeOutOfRange.
func taxonomy(categories []string, domain, entity, text string) (*dataset.Memory, error) {
	if len(categories) == 0 || domain == "" {
		return nil, errNoTaxonomy
	}
	if entity == "" {
		entity = "text"
	}
	return &dataset.Memory{
		RawTexts:    []string{text},
		Categories:  categories,
		DomainLabel: domain,
		EntityNoun:  entity,
	}, nil
}

// --- Tool Handlers ---

func (s *Service) CountTokens(ctx context.Context, req *mcp.CallToolRequest, args CountTokensArgs) (*mcp.CallToolResult, CountTokensResult, error) {
	enc := args.Encoding
	if enc == "" {
		enc = tokens.DefaultEncoding
	}
	n, err := tokens.Count(args.Text, enc)
	if err != nil {
		return nil, CountTokensResult{}, err
	}
	return nil, CountTokensResult{Tokens: n, Encoding: enc}, nil
}

func (s *Service) RankingDiff(ctx context.Context, req *mcp.CallToolRequest, args RankingDiffArgs) (*mcp.CallToolResult, RankingDiffResult, error) {
	return nil, RankingDiffResult{Distance: ranking.Diff(args.First, args.Second)}, nil
}

func (s *Service) Classify(ctx context.Context, req *mcp.CallToolRequest, args ClassifyArgs) (*mcp.CallToolResult, ClassifyResult, error) {
	ds, err := taxonomy(args.Categories, args.Domain, args.Entity, args.Text)
	if err != nil {
		return nil, ClassifyResult{}, err
	}

	a, err := s.pipe.Oracle.QueryNode(ctx, ds, 0)
	if err != nil {
		return nil, ClassifyResult{}, fmt.Errorf("classify: %w", err)
	}

	return nil, ClassifyResult{
		Class:    a.Class,
		Category: ds.Categories[a.Class],
		Fallback: a.Fallback,
		Answer:   a.Output,
	}, nil
}

func (s *Service) PseudoSamples(ctx context.Context, req *mcp.CallToolRequest, args PseudoSamplesArgs) (*mcp.CallToolResult, PseudoSamplesResult, error) {
	ds, err := taxonomy(args.Categories, args.Domain, args.Entity, "")
	if err != nil {
		return nil, PseudoSamplesResult{}, err
	}

	samples, err := s.pipe.Samples.Samples(ctx, ds)
	if err != nil {
		return nil, PseudoSamplesResult{}, err
	}
	sim, err := s.pipe.Samples.NoiseFromSamples(ctx, samples)
	if err != nil {
		return nil, PseudoSamplesResult{}, err
	}

	n, _ := sim.Dims()
	noise := make([][]float64, n)
	for i := range n {
		noise[i] = append([]float64(nil), sim.RawRowView(i)...)
	}
	return nil, PseudoSamplesResult{Samples: samples, Noise: noise}, nil
}
