package rag

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Common errors for embedding operations
var (
	ErrEmptyTexts    = errors.New("no texts provided for embedding")
	ErrMissingAPIKey = errors.New("OPENAI_API_KEY environment variable not set")

	// ErrEmbeddingUnavailable marks provider failures (unreachable,
	// unauthorized, rate-limited) so callers can tell them apart from
	// index errors.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
)

// Embedder defines the interface for generating text embeddings
type Embedder interface {
	// Embed generates embedding vectors for the provided texts, one per
	// input, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// GetModel returns the embedding model identifier
	GetModel() string

	// GetDimension returns the embedding vector dimension
	GetDimension() int
}

// OpenAIEmbedder implements the Embedder interface using OpenAI's API
type OpenAIEmbedder struct {
	client    openai.Client
	model     string
	dimension int
}

// NewOpenAIEmbedder creates a new OpenAI embedder instance
func NewOpenAIEmbedder(model string, dimension int) (*OpenAIEmbedder, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &OpenAIEmbedder{
		client:    client,
		model:     model,
		dimension: dimension,
	}, nil
}

// GetModel returns the embedding model identifier
func (e *OpenAIEmbedder) GetModel() string {
	return e.model
}

// GetDimension returns the embedding vector dimension
func (e *OpenAIEmbedder) GetDimension() int {
	return e.dimension
}

// Embed generates embeddings for the provided texts using OpenAI's API
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyTexts
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model:          e.model,
		Dimensions:     openai.Int(int64(e.dimension)),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}

	vectors := make([][]float32, len(texts))
	for _, data := range resp.Data {
		// Convert []float64 to []float32
		vector := make([]float32, len(data.Embedding))
		for j, val := range data.Embedding {
			vector[j] = float32(val)
		}
		vectors[int(data.Index)] = vector
	}

	for i, vec := range vectors {
		if vec == nil {
			return nil, fmt.Errorf("%w: no embedding returned for input %d", ErrEmbeddingUnavailable, i)
		}
	}

	return vectors, nil
}
