package metadata

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/VineetKiragi/cinemind/internal/mentions"
)

// maxConcurrentLookups bounds fan-out pressure on the metadata service.
const maxConcurrentLookups = 8

// EnrichedMovie is a parsed mention augmented with display metadata. Any
// of PosterURL, Rating, and Overview may independently be absent (zero).
type EnrichedMovie struct {
	Title     string  `json:"title"`
	Year      string  `json:"year"`
	PosterURL string  `json:"poster_url,omitempty"`
	Rating    float64 `json:"rating,omitempty"`
	Overview  string  `json:"overview,omitempty"`
}

// Enricher resolves extracted mentions concurrently against a metadata
// client. A nil client means the service is unconfigured and enrichment
// short-circuits to an empty result.
type Enricher struct {
	client Client
}

// NewEnricher creates an Enricher. client may be nil (unconfigured).
func NewEnricher(client Client) *Enricher {
	return &Enricher{client: client}
}

// Configured reports whether a metadata service is available.
func (e *Enricher) Configured() bool {
	return e != nil && e.client != nil
}

// Enrich issues one lookup per mention, all running concurrently with a
// bounded ceiling, and fans in once all complete. A failed lookup drops
// that mention only; one failure never fails the batch or blocks siblings.
// Output carries at most one entry per title, in input order of successes.
func (e *Enricher) Enrich(ctx context.Context, ms []mentions.Mention) []EnrichedMovie {
	if !e.Configured() || len(ms) == 0 {
		return nil
	}

	limit := len(ms)
	if limit > maxConcurrentLookups {
		limit = maxConcurrentLookups
	}

	infos := make([]*MovieInfo, len(ms))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, m := range ms {
		i, m := i, m
		g.Go(func() error {
			info, err := e.client.Lookup(gctx, m.Title, m.Year)
			if err != nil {
				// Per-item miss: drop silently, the turn simply renders
				// fewer movie cards than citations.
				log.Printf("[Enricher] lookup for %q (%s) failed: %v", m.Title, m.Year, err)
				return nil
			}
			infos[i] = info
			return nil
		})
	}
	// Workers never return errors; Wait is a pure fan-in barrier.
	_ = g.Wait()

	seen := make(map[string]struct{}, len(ms))
	enriched := make([]EnrichedMovie, 0, len(ms))
	for i, m := range ms {
		info := infos[i]
		if info == nil {
			continue
		}
		if _, dup := seen[m.Title]; dup {
			continue
		}
		seen[m.Title] = struct{}{}
		enriched = append(enriched, EnrichedMovie{
			Title:     m.Title,
			Year:      m.Year,
			PosterURL: info.PosterURL,
			Rating:    info.Rating,
			Overview:  info.Overview,
		})
	}
	return enriched
}
