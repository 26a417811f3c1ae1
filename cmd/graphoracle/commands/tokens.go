package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sanonone/graphoracle/pkg/tokens"
)

var tokensEncoding string

var tokensCmd = &cobra.Command{
	Use:   "tokens [text]",
	Short: "Count tokens under a tiktoken encoding",
	Long: `Count the tokens of the argument, or of stdin when no argument is given.

Encodings are bundled, so no network access is needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var text string
		if len(args) == 1 {
			text = args[0]
		} else {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			text = strings.TrimSuffix(string(data), "\n")
		}

		n, err := tokens.Count(text, tokensEncoding)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

func init() {
	tokensCmd.Flags().StringVarP(&tokensEncoding, "encoding", "e", tokens.DefaultEncoding, "tiktoken encoding name")
	rootCmd.AddCommand(tokensCmd)
}
