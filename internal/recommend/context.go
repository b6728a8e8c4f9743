package recommend

import (
	"fmt"
	"strings"

	"github.com/VineetKiragi/cinemind/internal/rag"
)

// DefaultContextBudget bounds the grounding block size in bytes.
const DefaultContextBudget = 4000

// overviewCharBudget caps how much of a movie overview goes into one
// candidate block; truncation only happens at sentence boundaries.
const overviewCharBudget = 300

// AssembleContext renders retrieval candidates into a size-bounded
// grounding block. Each candidate becomes a compact labeled block; when the
// budget would be exceeded, the lowest-ranked candidates are dropped first.
// A single candidate is never truncated mid-text. Output is deterministic
// for identical input.
func AssembleContext(result rag.RetrievalResult, budget int) string {
	if budget <= 0 {
		budget = DefaultContextBudget
	}

	var b strings.Builder
	total := 0
	for _, sm := range result {
		block := renderCandidate(sm)
		if total+len(block) > budget {
			break
		}
		b.WriteString(block)
		total += len(block)
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderCandidate formats one retrieved movie as a labeled block.
func renderCandidate(sm rag.ScoredMovie) string {
	var b strings.Builder
	m := sm.Movie

	fmt.Fprintf(&b, "Title: %s (%d)\n", m.Title, m.Year)
	if len(m.Genres) > 0 {
		fmt.Fprintf(&b, "Genres: %s\n", strings.Join(m.Genres, ", "))
	}
	if summary := leadingSentences(m.Overview, overviewCharBudget); summary != "" {
		fmt.Fprintf(&b, "Overview: %s\n", summary)
	}
	fmt.Fprintf(&b, "Relevance: %.3f\n\n", sm.Score)
	return b.String()
}

// leadingSentences returns whole leading sentences of s up to roughly
// maxChars. At least the first sentence is always kept, so text is never
// cut mid-sentence.
func leadingSentences(s string, maxChars int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxChars {
		return s
	}

	end := 0
	for i, r := range s {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		boundary := i + 1
		if end > 0 && boundary > maxChars {
			break
		}
		end = boundary
	}
	if end == 0 {
		// No sentence boundary at all: keep the text whole rather than
		// splitting it.
		return s
	}
	return strings.TrimSpace(s[:end])
}
