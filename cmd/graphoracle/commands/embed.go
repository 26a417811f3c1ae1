package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/sanonone/graphoracle/pkg/dataset"
	"github.com/sanonone/graphoracle/pkg/pooling"
)

var (
	embedDataset string
	embedNodes   string
	embedPooling string
)

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Pooled node embeddings",
	Long: `Encode the raw text of the given nodes and pool the hidden states.

Pooling modes: mean (default), max, last, first. Unknown names fall back to first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if embedDataset == "" {
			return errors.New("--dataset is required")
		}
		file, err := dataset.Load(embedDataset)
		if err != nil {
			return err
		}

		nodes, err := parseInts(embedNodes)
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			for i := range file.NumNodes() {
				nodes = append(nodes, i)
			}
		}

		p, err := newPipeline()
		if err != nil {
			return err
		}
		feat, err := p.NodeEmbeddingsPooled(cmd.Context(), file, nodes, pooling.ParseMode(embedPooling))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), struct {
			Nodes      []int       `json:"nodes"`
			Embeddings [][]float64 `json:"embeddings"`
		}{nodes, rows(feat)})
	},
}

func init() {
	embedCmd.Flags().StringVarP(&embedDataset, "dataset", "d", "", "dataset YAML file")
	embedCmd.Flags().StringVarP(&embedNodes, "node", "n", "", "comma separated node ids (default: all)")
	embedCmd.Flags().StringVar(&embedPooling, "pooling", string(pooling.Mean), "pooling mode")
	rootCmd.AddCommand(embedCmd)
}
