// Package index provides k-NN search over movie embeddings. The in-process
// Index holds immutable, versioned snapshots swapped atomically on rebuild,
// so queries run fully concurrently with each other and with rebuilds.
// A Milvus-backed searcher is available as an alternative backend for
// deployments where the corpus lives in a Milvus collection.
package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/VineetKiragi/cinemind/internal/corpus"
)

// Common errors for index operations
var (
	ErrIndexEmpty        = errors.New("vector index is empty: no successful build yet")
	ErrDimensionMismatch = errors.New("query vector dimension does not match index")
	ErrNoDocuments       = errors.New("no documents provided for index build")
)

// Candidate is a single k-NN result: a movie record and its similarity score.
type Candidate struct {
	Record corpus.MovieRecord
	Score  float32
}

// Searcher is the read side of a movie vector index.
type Searcher interface {
	// Search returns the k nearest movies to the query vector, scores
	// non-increasing. k is clamped to [1, corpus size].
	Search(ctx context.Context, vector []float32, k int) ([]Candidate, error)
}

// snapshot is one immutable generation of the index. Readers pin a snapshot
// for the duration of a query and never observe a partial structure.
type snapshot struct {
	version int64
	dim     int
	docs    []corpus.Document // sorted by ascending record ID
}

// Index is an in-process exact cosine-similarity k-NN index over movie
// embeddings, built offline and queried at runtime. Rebuilds install a new
// snapshot via atomic copy-on-write swap.
type Index struct {
	current atomic.Pointer[snapshot]
	builds  atomic.Int64
}

// New creates an empty index. Search fails with ErrIndexEmpty until the
// first successful Build.
func New() *Index {
	return &Index{}
}

// Build installs a new index snapshot from the given documents. The input
// is copied and sorted by record ID; the swap is atomic and never blocks
// in-flight searches. Returns the new snapshot version.
func (ix *Index) Build(docs []corpus.Document) (int64, error) {
	if len(docs) == 0 {
		return 0, ErrNoDocuments
	}

	dim := len(docs[0].Embedding)
	copied := make([]corpus.Document, len(docs))
	for i, doc := range docs {
		if len(doc.Embedding) != dim {
			return 0, fmt.Errorf("%w: document %q has dimension %d, expected %d",
				corpus.ErrDimensionMismatch, doc.Record.Title, len(doc.Embedding), dim)
		}
		copied[i] = doc
	}
	sort.Slice(copied, func(i, j int) bool {
		return copied[i].Record.ID < copied[j].Record.ID
	})

	version := ix.builds.Add(1)
	ix.current.Store(&snapshot{
		version: version,
		dim:     dim,
		docs:    copied,
	})
	return version, nil
}

// Version returns the version of the current snapshot, 0 if none.
func (ix *Index) Version() int64 {
	if snap := ix.current.Load(); snap != nil {
		return snap.version
	}
	return 0
}

// Size returns the number of indexed documents in the current snapshot.
func (ix *Index) Size() int {
	if snap := ix.current.Load(); snap != nil {
		return len(snap.docs)
	}
	return 0
}

// Dimension returns the embedding dimension of the current snapshot, 0 if none.
func (ix *Index) Dimension() int {
	if snap := ix.current.Load(); snap != nil {
		return snap.dim
	}
	return 0
}

// Search returns the k nearest movies to the query vector by cosine
// similarity. Scores are non-increasing; ties break by ascending movie ID
// for determinism. Safe to call concurrently with other searches and with
// an in-progress Build.
func (ix *Index) Search(ctx context.Context, vector []float32, k int) ([]Candidate, error) {
	snap := ix.current.Load()
	if snap == nil || len(snap.docs) == 0 {
		return nil, ErrIndexEmpty
	}
	if len(vector) != snap.dim {
		return nil, fmt.Errorf("%w: got %d, index has %d", ErrDimensionMismatch, len(vector), snap.dim)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Clamp k to [1, corpus size].
	if k < 1 {
		k = 1
	}
	if k > len(snap.docs) {
		k = len(snap.docs)
	}

	scored := make([]Candidate, len(snap.docs))
	for i, doc := range snap.docs {
		scored[i] = Candidate{
			Record: doc.Record,
			Score:  cosineSimilarity(vector, doc.Embedding),
		}
	}

	// Docs are pre-sorted by ascending ID, so a stable sort on score keeps
	// the ascending-ID tie-break.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored[:k], nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
