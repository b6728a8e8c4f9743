package rag

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/VineetKiragi/cinemind/internal/corpus"
	"github.com/VineetKiragi/cinemind/internal/index"
)

func buildTestIndex(t *testing.T) *index.Index {
	t.Helper()
	ix := index.New()
	docs := []corpus.Document{
		{Record: corpus.MovieRecord{ID: 1, Title: "Interstellar", Year: 2014}, Embedding: []float32{1, 0, 0}},
		{Record: corpus.MovieRecord{ID: 2, Title: "Arrival", Year: 2016}, Embedding: []float32{0.9, 0.1, 0}},
		{Record: corpus.MovieRecord{ID: 3, Title: "Amélie", Year: 2001}, Embedding: []float32{0, 0, 1}},
	}
	if _, err := ix.Build(docs); err != nil {
		t.Fatalf("failed to build test index: %v", err)
	}
	return ix
}

func TestNewRetriever_NilDependencies(t *testing.T) {
	embedder := &MockEmbedder{Default: []float32{1, 0, 0}}

	if _, err := NewRetriever(nil, buildTestIndex(t)); err == nil {
		t.Error("expected error for nil embedder")
	}
	if _, err := NewRetriever(embedder, nil); err == nil {
		t.Error("expected error for nil searcher")
	}
}

func TestRetriever_Retrieve(t *testing.T) {
	embedder := &MockEmbedder{
		Vectors: map[string][]float32{"space movies": {1, 0, 0}},
		Default: []float32{0, 0, 1},
	}
	retriever, err := NewRetriever(embedder, buildTestIndex(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := retriever.Retrieve(context.Background(), "space movies", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 results, got %d", len(result))
	}
	if result[0].Movie.Title != "Interstellar" {
		t.Errorf("expected Interstellar first, got %s", result[0].Movie.Title)
	}
	for i := 1; i < len(result); i++ {
		if result[i].Score > result[i-1].Score {
			t.Errorf("scores increase at rank %d", i)
		}
	}
}

func TestRetriever_Retrieve_LengthIsMinKN(t *testing.T) {
	embedder := &MockEmbedder{Default: []float32{1, 0, 0}}
	retriever, err := NewRetriever(embedder, buildTestIndex(t))
	if err != nil {
		t.Fatal(err)
	}

	for _, k := range []int{1, 2, 3, 5, 50} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			result, err := retriever.Retrieve(context.Background(), "anything", k)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := k
			if want > 3 {
				want = 3
			}
			if len(result) != want {
				t.Errorf("expected %d results, got %d", want, len(result))
			}
		})
	}
}

func TestRetriever_Retrieve_DefaultK(t *testing.T) {
	embedder := &MockEmbedder{Default: []float32{1, 0, 0}}
	retriever, err := NewRetriever(embedder, buildTestIndex(t))
	if err != nil {
		t.Fatal(err)
	}

	// Corpus has 3 documents, so a defaulted k of 5 clamps to 3.
	result, err := retriever.Retrieve(context.Background(), "anything", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 3 {
		t.Errorf("expected 3 results with defaulted k, got %d", len(result))
	}
}

func TestRetriever_Retrieve_EmptyQuery(t *testing.T) {
	embedder := &MockEmbedder{Default: []float32{1, 0, 0}}
	retriever, err := NewRetriever(embedder, buildTestIndex(t))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := retriever.Retrieve(context.Background(), "   ", 3); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestRetriever_Retrieve_EmbedderUnavailable(t *testing.T) {
	embedder := &MockEmbedder{
		Error: fmt.Errorf("%w: 401 unauthorized", ErrEmbeddingUnavailable),
	}
	retriever, err := NewRetriever(embedder, buildTestIndex(t))
	if err != nil {
		t.Fatal(err)
	}

	_, err = retriever.Retrieve(context.Background(), "space movies", 3)
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Errorf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestRetriever_Retrieve_EmptyIndex(t *testing.T) {
	embedder := &MockEmbedder{Default: []float32{1, 0, 0}}
	retriever, err := NewRetriever(embedder, index.New())
	if err != nil {
		t.Fatal(err)
	}

	_, err = retriever.Retrieve(context.Background(), "space movies", 3)
	if !errors.Is(err, index.ErrIndexEmpty) {
		t.Errorf("expected ErrIndexEmpty, got %v", err)
	}
}

func TestBuildDocuments(t *testing.T) {
	embedder := &MockEmbedder{Default: []float32{0.5, 0.5}}
	records := []corpus.MovieRecord{
		{ID: 1, Title: "A", Year: 2000, Overview: "x"},
		{ID: 2, Title: "B", Year: 2001, Overview: "y"},
		{ID: 3, Title: "C", Year: 2002, Overview: "z"},
	}

	docs, err := BuildDocuments(context.Background(), records, embedder, BuildOptions{BatchSize: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	for i, doc := range docs {
		if doc.Record.ID != records[i].ID {
			t.Errorf("document %d: record mismatch", i)
		}
		if len(doc.Embedding) != 2 {
			t.Errorf("document %d: expected dimension 2, got %d", i, len(doc.Embedding))
		}
	}
}

func TestBuildDocuments_EmbedderFailure(t *testing.T) {
	embedder := &MockEmbedder{Error: errors.New("rate limited")}
	records := []corpus.MovieRecord{{ID: 1, Title: "A"}}

	if _, err := BuildDocuments(context.Background(), records, embedder, DefaultBuildOptions()); err == nil {
		t.Error("expected error when embedder fails")
	}
}
