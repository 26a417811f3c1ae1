package commands

import (
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	graphmcp "github.com/sanonone/graphoracle/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the tools over MCP stdio",
	Long: `Run an MCP server on stdin/stdout exposing count_tokens, ranking_diff,
classify_text and pseudo_samples. Logs go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}
		server := graphmcp.NewMCPServer(p)

		slog.Info("[MCP] Serving on stdio", "version", graphmcp.Version)
		return server.Run(cmd.Context(), &mcp.StdioTransport{})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
