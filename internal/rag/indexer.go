package rag

import (
	"context"
	"fmt"

	"github.com/VineetKiragi/cinemind/internal/corpus"
)

// BuildDocuments runs the offline embedding job: it embeds each movie
// record's text in batches and pairs records with their vectors, producing
// the corpus artifact consumed by the vector index at service start.
func BuildDocuments(
	ctx context.Context,
	records []corpus.MovieRecord,
	embedder Embedder,
	opts BuildOptions,
) ([]corpus.Document, error) {
	if len(records) == 0 {
		return nil, corpus.ErrEmptyCorpus
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBuildOptions().BatchSize
	}

	docs := make([]corpus.Document, 0, len(records))
	for batchStart := 0; batchStart < len(records); batchStart += opts.BatchSize {
		batchEnd := batchStart + opts.BatchSize
		if batchEnd > len(records) {
			batchEnd = len(records)
		}
		batch := records[batchStart:batchEnd]

		texts := make([]string, len(batch))
		for i, rec := range batch {
			texts[i] = rec.EmbeddingText()
		}

		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch starting at %d: %w", batchStart, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedding batch starting at %d returned %d vectors for %d records",
				batchStart, len(vectors), len(batch))
		}

		for i, rec := range batch {
			docs = append(docs, corpus.Document{Record: rec, Embedding: vectors[i]})
		}
	}

	return docs, nil
}
