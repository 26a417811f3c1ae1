// Package llm provides text generation backends for OpenAI-compatible APIs.
//
// Two backends exist. Completion sends the raw prompt to /completions and is
// the right choice for base causal models served by vLLM, Ollama or
// llama.cpp. Chat sends the prompt as a user message to /chat/completions.
// Both return only the newly generated text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/sanonone/graphoracle/pkg/metrics"
)

// ErrEmptyResponse is returned when the provider answers without choices.
var ErrEmptyResponse = errors.New("llm: empty response")

// GenerateOptions limits a single generation call.
type GenerateOptions struct {
	// MaxNewTokens caps the number of generated tokens. Zero uses the
	// backend's configured default.
	MaxNewTokens int

	// Stop lists extra end-of-sequence markers for this call.
	Stop []string
}

// Generator produces a continuation for a prompt.
// This abstraction allows for easy mocking in tests.
type Generator interface {
	// Generate returns the text generated after prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Model returns the model identifier.
	Model() string
}

// New builds the backend selected by cfg.Mode.
func New(cfg Config) (Generator, error) {
	switch cfg.Mode {
	case "", ModeCompletion:
		return NewCompletion(cfg), nil
	case ModeChat:
		return NewChat(cfg), nil
	default:
		return nil, fmt.Errorf("llm: unknown mode %q", cfg.Mode)
	}
}

func newClient(cfg Config) *openai.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	opts := []option.RequestOption{
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		// Robustness: ensure BaseURL ends with exactly one slash
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")+"/"))
	}
	client := openai.NewClient(opts...)
	return &client
}

func (c Config) limits(opts GenerateOptions) (int64, []string) {
	maxTokens := opts.MaxNewTokens
	if maxTokens <= 0 {
		maxTokens = c.MaxTokens
	}
	stop := append(append([]string{}, c.Stop...), opts.Stop...)
	return int64(maxTokens), stop
}

// Completion implements Generator on the /completions endpoint.
type Completion struct {
	cfg    Config
	client *openai.Client
}

var _ Generator = (*Completion)(nil)

// NewCompletion initializes a completion backend.
func NewCompletion(cfg Config) *Completion {
	return &Completion{cfg: cfg, client: newClient(cfg)}
}

func (c *Completion) Model() string { return c.cfg.Model }

// Generate performs a blocking completion request.
func (c *Completion) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	maxTokens, stop := c.cfg.limits(opts)

	params := openai.CompletionNewParams{
		Model:       openai.CompletionNewParamsModel(c.cfg.Model),
		Prompt:      openai.CompletionNewParamsPromptUnion{OfString: openai.String(prompt)},
		Temperature: openai.Float(c.cfg.Temperature),
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(maxTokens)
	}
	if len(stop) > 0 {
		params.Stop = openai.CompletionNewParamsStopUnion{OfStringArray: stop}
	}

	start := time.Now()
	resp, err := c.client.Completions.New(ctx, params)
	metrics.ObserveGeneration(ModeCompletion, start, err)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Text, nil
}

// Chat implements Generator on the /chat/completions endpoint.
type Chat struct {
	cfg    Config
	client *openai.Client
}

var _ Generator = (*Chat)(nil)

// NewChat initializes a chat backend.
func NewChat(cfg Config) *Chat {
	return &Chat{cfg: cfg, client: newClient(cfg)}
}

func (c *Chat) Model() string { return c.cfg.Model }

// Generate sends prompt as the user turn and returns the assistant reply.
func (c *Chat) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	maxTokens, stop := c.cfg.limits(opts)

	// 1. Prepare Messages
	var messages []openai.ChatCompletionMessageParamUnion
	if c.cfg.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(c.cfg.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	// 2. Prepare Payload
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.cfg.Model),
		Messages:    messages,
		Temperature: openai.Float(c.cfg.Temperature),
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(maxTokens)
	}
	if len(stop) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: stop}
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	metrics.ObserveGeneration(ModeChat, start, err)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
