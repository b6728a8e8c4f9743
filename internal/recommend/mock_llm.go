package recommend

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockLLM is a deterministic LLM implementation for testing.
type MockLLM struct {
	mu sync.Mutex

	// Response is the fixed text returned by Generate.
	// If empty, a deterministic response is derived from the prompt.
	Response string

	// Error, if set, is returned by Generate instead of a response.
	Error error

	// FailFirst makes the first N calls return Error before succeeding.
	// Requires Error to be set.
	FailFirst int

	// Calls counts invocations of Generate.
	Calls int

	// LastPrompt stores the most recent prompt passed to Generate.
	LastPrompt string
}

// NewMockLLM creates a mock LLM with the given fixed response.
func NewMockLLM(response string) *MockLLM {
	return &MockLLM{Response: response}
}

// NewMockLLMWithError creates a mock LLM that always returns an error.
func NewMockLLMWithError(err error) *MockLLM {
	return &MockLLM{Error: err}
}

// Generate returns the configured response or derives a deterministic one.
func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	m.LastPrompt = prompt

	if m.Error != nil && (m.FailFirst == 0 || m.Calls <= m.FailFirst) {
		return "", m.Error
	}

	if m.Response != "" {
		return m.Response, nil
	}

	return generateMockResponse(prompt), nil
}

// generateMockResponse fabricates a recommendation that cites every movie
// found in the prompt's grounding context, in the citation form the real
// generator is instructed to use.
func generateMockResponse(prompt string) string {
	var b strings.Builder
	b.WriteString("Here are some picks based on your taste. ")

	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		rest, found := strings.CutPrefix(line, "Title: ")
		if !found {
			continue
		}
		b.WriteString(fmt.Sprintf("You might enjoy **%s**. ", rest))
	}

	return b.String()
}
