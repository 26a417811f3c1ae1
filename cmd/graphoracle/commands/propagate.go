package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/sanonone/graphoracle/pkg/dataset"
	"github.com/sanonone/graphoracle/pkg/propagation"
)

var (
	propagateDataset string
	propagateHops    int
)

var propagateCmd = &cobra.Command{
	Use:   "propagate",
	Short: "GCN feature propagation over the dataset graph",
	Long: `Multiply the dataset features by the symmetrically normalized adjacency
(no self loops) --hops times and print the result.

Edge weights come from edge_weight, then edge_attr, then default to 1.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if propagateDataset == "" {
			return errors.New("--dataset is required")
		}
		file, err := dataset.Load(propagateDataset)
		if err != nil {
			return err
		}
		g, err := file.Graph()
		if err != nil {
			return err
		}
		out, err := propagation.Propagate(g, propagateHops)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), rows(out))
	},
}

func init() {
	propagateCmd.Flags().StringVarP(&propagateDataset, "dataset", "d", "", "dataset YAML file with edges and features")
	propagateCmd.Flags().IntVar(&propagateHops, "hops", 2, "number of propagation steps")
	rootCmd.AddCommand(propagateCmd)
}
