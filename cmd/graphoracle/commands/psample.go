package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/sanonone/graphoracle/pkg/dataset"
)

var (
	psampleDataset string
	psampleShow    bool
)

var psampleCmd = &cobra.Command{
	Use:   "psample",
	Short: "Generate pseudo-samples and the category noise matrix",
	Long: `Ask the language model to write one representative text per category,
embed the texts with max pooling and print the row-normalized cosine
similarity between categories. Row i is the distribution of classes that
category i is likely confused with.

Only the dataset's categories, domain and entity are used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if psampleDataset == "" {
			return errors.New("--dataset is required")
		}
		file, err := dataset.Load(psampleDataset)
		if err != nil {
			return err
		}
		p, err := newPipeline()
		if err != nil {
			return err
		}

		samples, err := p.Samples.Samples(cmd.Context(), file)
		if err != nil {
			return err
		}
		noise, err := p.Samples.NoiseFromSamples(cmd.Context(), samples)
		if err != nil {
			return err
		}

		out := struct {
			Categories []string    `json:"categories"`
			Samples    []string    `json:"samples,omitempty"`
			Noise      [][]float64 `json:"noise"`
		}{Categories: file.Categories, Noise: rows(noise)}
		if psampleShow {
			out.Samples = samples
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	psampleCmd.Flags().StringVarP(&psampleDataset, "dataset", "d", "", "dataset YAML file")
	psampleCmd.Flags().BoolVar(&psampleShow, "show-samples", false, "include the generated texts in the output")
	rootCmd.AddCommand(psampleCmd)
}
