package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/VineetKiragi/cinemind/internal/index"
)

// DefaultTopK is the number of candidates retrieved when the caller does
// not specify k.
const DefaultTopK = 5

// Retriever provides high-level semantic retrieval over the movie index.
// Retrieval is pure: query embeddings are computed on demand and never
// cached across calls.
type Retriever struct {
	embedder Embedder
	searcher index.Searcher
}

// NewRetriever creates a new Retriever instance.
func NewRetriever(embedder Embedder, searcher index.Searcher) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if searcher == nil {
		return nil, fmt.Errorf("searcher cannot be nil")
	}

	return &Retriever{
		embedder: embedder,
		searcher: searcher,
	}, nil
}

// Retrieve embeds the query text and returns the topK most similar movies.
// Embedding provider failures surface as ErrEmbeddingUnavailable.
func (r *Retriever) Retrieve(ctx context.Context, text string, k int) (RetrievalResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("query text cannot be empty")
	}
	if k <= 0 {
		k = DefaultTopK
	}

	vectors, err := r.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no embedding generated for query", ErrEmbeddingUnavailable)
	}

	candidates, err := r.searcher.Search(ctx, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	result := make(RetrievalResult, len(candidates))
	for i, c := range candidates {
		result[i] = ScoredMovie{Movie: c.Record, Score: c.Score}
	}
	return result, nil
}
