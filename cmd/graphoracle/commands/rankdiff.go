package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sanonone/graphoracle/pkg/ranking"
)

var rankdiffCmd = &cobra.Command{
	Use:   "rankdiff <first> <second>",
	Short: "Distance between two rankings",
	Long: `Print the sum of position shifts between two comma separated rankings.

Example:
  graphoracle rankdiff a,b,c c,b,a   # 4`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), ranking.Diff(splitList(args[0]), splitList(args[1])))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rankdiffCmd)
}
