// Package embeddings turns text into encoder hidden states ready for pooling.
//
// TEI talks to a HuggingFace text-embeddings-inference server and returns the
// per-token states of the last hidden layer. OpenAI talks to any
// OpenAI-compatible /embeddings endpoint; those vectors are already pooled and
// come back as single-position sequences.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sanonone/graphoracle/pkg/pooling"
)

// Backend types.
const (
	TypeTEI    = "tei"
	TypeOpenAI = "openai"
)

// ErrEmptyInput is returned when there is nothing to encode.
var ErrEmptyInput = errors.New("embeddings: empty input")

// Encoder defines the interface for converting a batch of texts into a
// memory bank of hidden states with its segment mask.
type Encoder interface {
	Encode(ctx context.Context, texts []string) (*pooling.Bank, error)
	Name() string
}

// Config defines how to reach the embedding model.
type Config struct {
	Type       string        `yaml:"type" json:"type"` // "tei" or "openai"
	URL        string        `yaml:"url" json:"url"`
	Model      string        `yaml:"model" json:"model"`
	APIKey     string        `yaml:"api_key" json:"api_key"`
	Dimensions int           `yaml:"dimensions" json:"dimensions"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultConfig targets a local text-embeddings-inference container.
func DefaultConfig() Config {
	return Config{
		Type:    TypeTEI,
		URL:     "http://localhost:8080",
		Timeout: 60 * time.Second,
	}
}

// New builds the encoder selected by cfg.Type.
func New(cfg Config) (Encoder, error) {
	switch cfg.Type {
	case "", TypeTEI:
		return NewTEI(cfg.URL, cfg.Timeout), nil
	case TypeOpenAI:
		return NewOpenAI(cfg.URL, cfg.Model, cfg.APIKey, cfg.Dimensions, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("embeddings: unknown encoder type %q", cfg.Type)
	}
}
