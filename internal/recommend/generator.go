package recommend

import (
	"context"
	"log"
	"strings"
	"time"
)

// FallbackMessage is the user-safe text returned when generation fails
// after all retries. It is always displayable.
const FallbackMessage = "Sorry, I couldn't reach the recommendation engine just now. Please try again in a moment."

// GenerationResponse is the typed outcome of one generation request.
// Callers always receive a displayable response; failures are flagged, not
// raised.
type GenerationResponse struct {
	// Text is the generated recommendation, or FallbackMessage on failure.
	Text string `json:"text"`

	// Model identifies the model that produced the text.
	Model string `json:"model"`

	// Failed reports that all attempts were exhausted.
	Failed bool `json:"failed"`

	// Attempts is how many generation attempts were made.
	Attempts int `json:"attempts"`

	// GeneratedAt is when this response was created.
	GeneratedAt time.Time `json:"generated_at"`
}

// GeneratorConfig holds retry and timeout policy for generation.
type GeneratorConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// AttemptTimeout bounds each individual generation attempt.
	AttemptTimeout time.Duration

	// InitialBackoff is the delay before the first retry; it doubles
	// after each subsequent failure.
	InitialBackoff time.Duration
}

// DefaultGeneratorConfig returns the standard retry/timeout policy.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MaxRetries:     2,
		AttemptTimeout: 30 * time.Second,
		InitialBackoff: 500 * time.Millisecond,
	}
}

// Generator invokes an LLM on an assembled prompt under a bounded
// retry/backoff policy. It performs all waiting outside any shared critical
// section and never propagates a failure to its caller.
type Generator struct {
	llm       LLM
	llmConfig LLMConfig
	config    GeneratorConfig
}

// NewGenerator creates a generation orchestrator with the given LLM
// implementation and policy.
func NewGenerator(llm LLM, llmConfig LLMConfig, config GeneratorConfig) *Generator {
	if config.AttemptTimeout <= 0 {
		config.AttemptTimeout = DefaultGeneratorConfig().AttemptTimeout
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = DefaultGeneratorConfig().InitialBackoff
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	return &Generator{
		llm:       llm,
		llmConfig: llmConfig,
		config:    config,
	}
}

// Generate builds the prompt from query and grounding context and invokes
// the LLM, retrying transient failures with exponential backoff. On
// exhaustion it returns a failed GenerationResponse carrying a fallback
// message rather than an error. An empty generation is treated as a
// failure.
func (g *Generator) Generate(ctx context.Context, query, groundingContext string) GenerationResponse {
	prompt := BuildPrompt(query, groundingContext)
	backoff := g.config.InitialBackoff

	attempts := 0
	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		attempts++

		attemptCtx, cancel := context.WithTimeout(ctx, g.config.AttemptTimeout)
		text, err := g.llm.Generate(attemptCtx, prompt)
		cancel()

		if err == nil && strings.TrimSpace(text) != "" {
			return GenerationResponse{
				Text:        text,
				Model:       g.llmConfig.Model,
				Attempts:    attempts,
				GeneratedAt: time.Now(),
			}
		}
		if err != nil {
			log.Printf("[Generator] attempt %d/%d failed: %v", attempts, g.config.MaxRetries+1, err)
		} else {
			log.Printf("[Generator] attempt %d/%d returned empty text", attempts, g.config.MaxRetries+1)
		}

		// Stop early when the caller is gone; a disposed session must not
		// keep hammering the provider.
		if ctx.Err() != nil {
			break
		}
		if attempt < g.config.MaxRetries {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
			}
			backoff *= 2
		}
	}

	return GenerationResponse{
		Text:        FallbackMessage,
		Model:       g.llmConfig.Model,
		Failed:      true,
		Attempts:    attempts,
		GeneratedAt: time.Now(),
	}
}
