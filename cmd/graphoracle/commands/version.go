package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	graphmcp "github.com/sanonone/graphoracle/internal/mcp"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "graphoracle %s\n", graphmcp.Version)
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "  go: %s\n", runtime.Version())
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
