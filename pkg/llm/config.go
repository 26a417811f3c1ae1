package llm

import "time"

// Backend modes.
const (
	// ModeCompletion sends the raw prompt to /completions and reads the
	// continuation, the closest match to causal-LM generate().
	ModeCompletion = "completion"

	// ModeChat wraps the prompt in a single user message on /chat/completions.
	ModeChat = "chat"
)

// Config holds the connection settings for an LLM provider.
// It is designed to be embedded in YAML configuration files.
type Config struct {
	// BaseURL is the API endpoint.
	// Examples:
	// - OpenAI: "https://api.openai.com/v1"
	// - Ollama: "http://localhost:11434/v1"
	// - vLLM:   "http://localhost:8000/v1"
	BaseURL string `yaml:"base_url" json:"base_url"`

	// APIKey is the authentication token. Often ignored by local servers.
	APIKey string `yaml:"api_key" json:"api_key"`

	// Model is the specific model identifier.
	Model string `yaml:"model" json:"model"`

	// Mode is ModeCompletion or ModeChat. Empty means ModeCompletion.
	Mode string `yaml:"mode" json:"mode"`

	// SystemPrompt is only used in chat mode.
	SystemPrompt string `yaml:"system_prompt" json:"system_prompt"`

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64 `yaml:"temperature" json:"temperature"`

	// MaxTokens is the generation limit used when a call does not set one.
	MaxTokens int `yaml:"max_tokens" json:"max_tokens"`

	// Stop lists end-of-sequence markers appended to every request.
	Stop []string `yaml:"stop" json:"stop"`

	// Timeout bounds a single request. Generation can be slow.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultConfig returns safe defaults for a local setup (Ollama).
func DefaultConfig() Config {
	return Config{
		BaseURL:     "http://localhost:11434/v1",
		APIKey:      "graphoracle", // Placeholder
		Model:       "llama2:7b",
		Mode:        ModeCompletion,
		Temperature: 0.0,
		MaxTokens:   100,
		Stop:        []string{"</s>"},
		Timeout:     120 * time.Second,
	}
}
