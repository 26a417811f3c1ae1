package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sanonone/graphoracle/pkg/dataset"
)

var (
	classifyDataset string
	classifyNodes   string
	classifyAll     bool
	classifyPrompt  string
)

type classifyRecord struct {
	Node     int    `json:"node"`
	Class    int    `json:"class"`
	Category string `json:"category"`
	Fallback bool   `json:"fallback"`
	Label    *int   `json:"label,omitempty"`
}

type classifyReport struct {
	Results   []classifyRecord `json:"results"`
	Fallbacks int              `json:"fallbacks"`
	Accuracy  *float64         `json:"accuracy,omitempty"`
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Label dataset nodes with the LLM oracle",
	Long: `Ask the language model for the category of dataset nodes.

Answers that name no category get a random class and are reported with
"fallback": true. When the dataset has labels, accuracy is reported too.

With --prompt the given prompt is sent as is and a single answer is mapped
onto the dataset categories.

Examples:
  graphoracle classify --dataset cora.yaml --node 0,5,9
  graphoracle classify --dataset cora.yaml --all -c graphoracle.yaml
  graphoracle classify --dataset cora.yaml --prompt "Is TCP about Databases or Networking?"`,
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	if classifyDataset == "" {
		return errors.New("--dataset is required")
	}
	file, err := dataset.Load(classifyDataset)
	if err != nil {
		return err
	}
	p, err := newPipeline()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if classifyPrompt != "" {
		a, err := p.QueryOracle(ctx, file, classifyPrompt)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), classifyRecord{
			Node:     -1,
			Class:    a.Class,
			Category: file.Categories[a.Class],
			Fallback: a.Fallback,
		})
	}

	var nodes []int
	switch {
	case classifyAll:
		for i := range file.NumNodes() {
			nodes = append(nodes, i)
		}
	case classifyNodes != "":
		if nodes, err = parseInts(classifyNodes); err != nil {
			return err
		}
	default:
		return errors.New("one of --node, --all or --prompt is required")
	}

	report := classifyReport{Results: make([]classifyRecord, 0, len(nodes))}
	correct, labeled := 0, 0
	for _, node := range nodes {
		a, err := p.Oracle.QueryNode(ctx, file, node)
		if err != nil {
			return fmt.Errorf("node %d: %w", node, err)
		}
		rec := classifyRecord{Node: node, Class: a.Class, Category: file.Categories[a.Class], Fallback: a.Fallback}
		if label, err := file.Label(node); err == nil {
			rec.Label = &label
			labeled++
			if label == a.Class {
				correct++
			}
		}
		if a.Fallback {
			report.Fallbacks++
		}
		report.Results = append(report.Results, rec)
	}
	if labeled > 0 {
		acc := float64(correct) / float64(labeled)
		report.Accuracy = &acc
	}

	slog.Info("[Classify] Done", "nodes", len(nodes), "fallbacks", report.Fallbacks)
	return printJSON(cmd.OutOrStdout(), report)
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyDataset, "dataset", "d", "", "dataset YAML file")
	classifyCmd.Flags().StringVarP(&classifyNodes, "node", "n", "", "comma separated node ids")
	classifyCmd.Flags().BoolVar(&classifyAll, "all", false, "classify every node")
	classifyCmd.Flags().StringVar(&classifyPrompt, "prompt", "", "send this prompt instead of the node template")
	rootCmd.AddCommand(classifyCmd)
}
