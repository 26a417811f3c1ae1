// Package config loads the YAML configuration of the model backends and the
// oracle.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sanonone/graphoracle/pkg/embeddings"
	"github.com/sanonone/graphoracle/pkg/llm"
	"github.com/sanonone/graphoracle/pkg/oracle"
	"github.com/sanonone/graphoracle/pkg/psample"
)

// Config is the top-level configuration file.
type Config struct {
	LLM          llm.Config        `yaml:"llm"`
	Embedder     embeddings.Config `yaml:"embedder"`
	Oracle       OracleConfig      `yaml:"oracle"`
	PseudoSample PseudoConfig      `yaml:"pseudo_sample"`

	// Seed drives the oracle's random fallback. Zero means unseeded.
	Seed uint64 `yaml:"seed"`
}

// OracleConfig tunes label queries.
type OracleConfig struct {
	MaxNewTokens   int    `yaml:"max_new_tokens"`
	PromptTemplate string `yaml:"prompt_template"`
	GroundTruth    bool   `yaml:"ground_truth"` // skip the model, return dataset labels
}

// PseudoConfig tunes pseudo-sample generation.
type PseudoConfig struct {
	MaxNewTokens int    `yaml:"max_new_tokens"`
	Marker       string `yaml:"marker"`
}

// DefaultConfig returns a working configuration for a local Ollama + TEI setup.
func DefaultConfig() Config {
	return Config{
		LLM:      llm.DefaultConfig(),
		Embedder: embeddings.DefaultConfig(),
		Oracle: OracleConfig{
			MaxNewTokens:   oracle.DefaultMaxNewTokens,
			PromptTemplate: oracle.DefaultTemplate,
		},
		PseudoSample: PseudoConfig{
			MaxNewTokens: psample.DefaultMaxNewTokens,
			Marker:       psample.DefaultMarker,
		},
	}
}

// LoadConfig reads the YAML configuration file using strict parsing.
// Fields missing from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig() // Start with defaults

	if path == "" {
		return cfg, nil
	}

	// 1. Open File
	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	// 2. Setup Strict Decoder
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	// 3. Decode
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("YAML syntax error in config %s: %w", path, err)
	}

	return cfg, nil
}
