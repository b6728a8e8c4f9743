package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/VineetKiragi/cinemind/internal/corpus"
)

// Common errors for Milvus operations
var (
	ErrConnectionFailed  = errors.New("failed to connect to Milvus")
	ErrMissingCollection = errors.New("movie collection does not exist in Milvus")
	ErrSearchFailed      = errors.New("failed to search vectors")
)

// MilvusConfig holds configuration for the Milvus-backed searcher.
type MilvusConfig struct {
	Address        string // Milvus server address (e.g., "localhost:19530")
	CollectionName string // Name of the movie collection
	Dimension      int    // Vector dimension (e.g., 3072 for text-embedding-3-large)
	Ef             int    // HNSW ef search parameter
}

// DefaultMilvusConfig returns sensible defaults for a local Milvus deployment.
func DefaultMilvusConfig() MilvusConfig {
	return MilvusConfig{
		Address:        "localhost:19530",
		CollectionName: "cinemind_movies",
		Dimension:      3072,
		Ef:             64,
	}
}

// MilvusSearcher implements Searcher against a Milvus collection populated
// by the offline corpus build job. The collection schema carries the movie
// display fields alongside the embedding so search results need no second
// lookup.
type MilvusSearcher struct {
	client client.Client
	config MilvusConfig
}

// NewMilvusSearcher connects to Milvus and loads the movie collection.
// Fails if the collection does not exist; the offline build job owns
// collection creation.
func NewMilvusSearcher(ctx context.Context, config MilvusConfig) (*MilvusSearcher, error) {
	c, err := client.NewGrpcClient(ctx, config.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	has, err := c.HasCollection(ctx, config.CollectionName)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !has {
		c.Close()
		return nil, fmt.Errorf("%w: %s", ErrMissingCollection, config.CollectionName)
	}

	if err := c.LoadCollection(ctx, config.CollectionName, false); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load collection %s: %w", config.CollectionName, err)
	}

	return &MilvusSearcher{client: c, config: config}, nil
}

// Search performs a cosine-similarity top-k search against the collection.
func (m *MilvusSearcher) Search(ctx context.Context, vector []float32, k int) ([]Candidate, error) {
	if len(vector) != m.config.Dimension {
		return nil, fmt.Errorf("%w: got %d, collection has %d",
			ErrDimensionMismatch, len(vector), m.config.Dimension)
	}
	if k < 1 {
		k = 1
	}

	sp, err := entity.NewIndexHNSWSearchParam(m.config.Ef)
	if err != nil {
		return nil, fmt.Errorf("failed to create search params: %w", err)
	}

	results, err := m.client.Search(
		ctx,
		m.config.CollectionName,
		[]string{}, // all partitions
		"",         // no filter expression
		[]string{"movie_id", "title", "year", "overview"},
		[]entity.Vector{entity.FloatVector(vector)},
		"embedding",
		entity.COSINE,
		k,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	var candidates []Candidate
	for _, result := range results {
		ids, ok := result.Fields.GetColumn("movie_id").(*entity.ColumnInt64)
		if !ok {
			return nil, fmt.Errorf("%w: missing movie_id column", ErrSearchFailed)
		}
		titles, ok := result.Fields.GetColumn("title").(*entity.ColumnVarChar)
		if !ok {
			return nil, fmt.Errorf("%w: missing title column", ErrSearchFailed)
		}
		years, _ := result.Fields.GetColumn("year").(*entity.ColumnInt64)
		overviews, _ := result.Fields.GetColumn("overview").(*entity.ColumnVarChar)

		for i := 0; i < ids.Len(); i++ {
			rec := corpus.MovieRecord{
				ID:    ids.Data()[i],
				Title: titles.Data()[i],
			}
			if years != nil && i < years.Len() {
				rec.Year = int(years.Data()[i])
			}
			if overviews != nil && i < overviews.Len() {
				rec.Overview = overviews.Data()[i]
			}
			candidates = append(candidates, Candidate{
				Record: rec,
				Score:  result.Scores[i],
			})
		}
	}

	return candidates, nil
}

// Close releases the Milvus connection.
func (m *MilvusSearcher) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}
