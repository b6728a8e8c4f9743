// Package metadata resolves extracted movie mentions against an external
// metadata service for display enrichment (poster, rating, overview).
// Enrichment is best-effort: any single lookup failure drops that mention
// only and never fails the batch.
package metadata

import (
	"context"
	"errors"
)

// Common errors for metadata operations
var (
	ErrNotFound     = errors.New("no metadata found for title")
	ErrLookupFailed = errors.New("metadata lookup failed")
)

// MovieInfo is the canonical metadata returned by the service. Any field
// except Title may be empty.
type MovieInfo struct {
	Title     string  `json:"title"`
	PosterURL string  `json:"poster_url,omitempty"`
	Rating    float64 `json:"rating,omitempty"`
	Overview  string  `json:"overview,omitempty"`
}

// Client resolves a movie title (plus optional year) against an external
// metadata service. Implementations take the first search result as
// canonical and must be safe for concurrent use.
type Client interface {
	Lookup(ctx context.Context, title, year string) (*MovieInfo, error)
}
