package rag

import "github.com/VineetKiragi/cinemind/internal/corpus"

// ScoredMovie is a retrieved movie with its similarity score.
type ScoredMovie struct {
	Movie corpus.MovieRecord `json:"movie"`
	Score float32            `json:"score"`
}

// RetrievalResult is an ordered candidate sequence, scores non-increasing
// by rank, length at most the requested k.
type RetrievalResult []ScoredMovie

// BuildOptions provides configuration for the offline corpus embedding job.
type BuildOptions struct {
	// BatchSize determines how many records to embed per API call
	BatchSize int
}

// DefaultBuildOptions returns sensible defaults for corpus building.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{BatchSize: 32}
}
