package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/graphoracle/pkg/pipeline"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

func NewMCPServer(p *pipeline.Pipeline) *mcp.Server {
	service := NewService(p)

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "graphoracle",
		Version: Version,
	}, nil)

	// AddTool derives the input and output schemas from the argument structs.

	mcp.AddTool(s, &mcp.Tool{
		Name:        "count_tokens",
		Description: "Count the tokens of a text under a tiktoken encoding (default cl100k_base).",
	}, service.CountTokens)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "ranking_diff",
		Description: "Distance between two rankings: the sum of position shifts of every shared item.",
	}, service.RankingDiff)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "classify_text",
		Description: "Ask the language model which category a text belongs to. A random category is returned (fallback=true) when the answer names none.",
	}, service.Classify)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "pseudo_samples",
		Description: "Generate one representative text per category and the category confusion matrix derived from their embeddings.",
	}, service.PseudoSamples)

	return s
}
