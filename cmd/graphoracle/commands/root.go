package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/sanonone/graphoracle/pkg/config"
	"github.com/sanonone/graphoracle/pkg/pipeline"
)

var (
	// Global flags
	configPath  string
	verbose     bool
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "graphoracle",
	Short: "LLM oracle and pseudo-sample tooling for text-attributed graphs",
	Long: `graphoracle - query a language model as a noisy labeler for graph nodes.

Backends are OpenAI-compatible (vLLM, Ollama, OpenAI) for generation and
text-embeddings-inference or an OpenAI-compatible /v1/embeddings endpoint
for hidden states. Without --config a local Ollama + TEI setup is assumed.

Examples:
  # Count tokens
  echo "hello world" | graphoracle tokens

  # Label node 3 of a dataset file
  graphoracle classify --dataset cora.yaml --node 3

  # Category confusion matrix from generated pseudo-samples
  graphoracle psample --dataset cora.yaml

  # Serve the tools to an MCP client over stdio
  graphoracle mcp --config graphoracle.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		// stdout is reserved for command output and the MCP transport
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		if metricsAddr != "" {
			go serveMetrics(metricsAddr)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9100)")
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	slog.Info("[Metrics] Listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("[Metrics] Server stopped", "error", err)
	}
}

// loadConfig returns the configuration named by --config, or the defaults.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	if configPath != "" {
		slog.Debug("[Config] Loaded", "path", configPath, "model", cfg.LLM.Model, "encoder", cfg.Embedder.Type)
	}
	return cfg, nil
}

func newPipeline() (*pipeline.Pipeline, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, slog.Default())
}

// parseInts parses a comma separated list such as "0,4,7".
func parseInts(s string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", field)
		}
		out = append(out, n)
	}
	return out, nil
}

// splitList splits a comma separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, field := range strings.Split(s, ",") {
		if field = strings.TrimSpace(field); field != "" {
			out = append(out, field)
		}
	}
	return out
}
