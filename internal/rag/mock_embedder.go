package rag

import "context"

// MockEmbedder is a deterministic Embedder implementation for testing.
type MockEmbedder struct {
	// Vectors maps input text to a fixed embedding. Texts without an
	// entry fall back to Default.
	Vectors map[string][]float32

	// Default is returned for texts not present in Vectors.
	Default []float32

	// Error, if set, is returned by Embed instead of vectors.
	Error error

	// LastTexts stores the most recent inputs passed to Embed.
	LastTexts []string
}

// Embed returns configured vectors in input order, or the configured error.
func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.LastTexts = texts

	if m.Error != nil {
		return nil, m.Error
	}
	if len(texts) == 0 {
		return nil, ErrEmptyTexts
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if vec, ok := m.Vectors[text]; ok {
			vectors[i] = vec
		} else {
			vectors[i] = m.Default
		}
	}
	return vectors, nil
}

// GetModel returns a fixed test model identifier.
func (m *MockEmbedder) GetModel() string { return "mock-embedder" }

// GetDimension returns the dimension of the default vector.
func (m *MockEmbedder) GetDimension() int { return len(m.Default) }
