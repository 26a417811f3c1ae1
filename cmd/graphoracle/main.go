// Package main is the entry point for the graphoracle CLI.
//
// Usage:
//
//	graphoracle [flags] <command> [args]
//
// Commands:
//
//	tokens     - Count tokens under a tiktoken encoding
//	rankdiff   - Distance between two rankings
//	classify   - Label dataset nodes (or a free text) with the LLM oracle
//	psample    - Generate pseudo-samples and the category noise matrix
//	embed      - Pooled node embeddings
//	propagate  - GCN feature propagation over the dataset graph
//	mcp        - Serve the tools over MCP stdio
//	version    - Show version information
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sanonone/graphoracle/cmd/graphoracle/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := commands.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
