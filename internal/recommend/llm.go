// Package recommend turns a user query plus retrieved movie context into a
// grounded natural-language recommendation. It defines a provider-agnostic
// LLM interface with a concrete OpenAI implementation and deterministic
// mocks for testing, a bounded context assembler, and a generation
// orchestrator that owns retry, timeout, and fallback policy.
package recommend

import (
	"context"
	"errors"
)

var (
	ErrLLMFailed     = errors.New("LLM request failed")
	ErrInvalidConfig = errors.New("invalid LLM configuration")
)

// LLM defines the interface for interacting with language models.
// Implementations must be stateless and thread-safe. Output is treated
// strictly as untrusted text.
type LLM interface {
	// Generate produces text from a prompt using the configured model.
	// Returns the generated text or an error if generation fails.
	Generate(ctx context.Context, prompt string) (string, error)
}

// LLMConfig holds common configuration options for LLM providers.
type LLMConfig struct {
	// Model specifies the model identifier (e.g., "gpt-4-turbo")
	Model string

	// Temperature controls randomness (0.0 = deterministic, 2.0 = very random)
	Temperature float32

	// MaxTokens limits the response length (0 = use provider default)
	MaxTokens int

	// APIKey is the authentication key for the provider
	APIKey string
}

// DefaultLLMConfig returns sensible defaults for recommendation generation.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Model:       "gpt-4-turbo",
		Temperature: 0.7,
		MaxTokens:   1000,
	}
}
