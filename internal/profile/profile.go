// Package profile extracts structured viewing preferences from a free-text
// query using the LLM, and turns them back into a focused retrieval query.
// Profiling is a best-effort refinement: when it fails, the pipeline falls
// back to the raw query text.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/VineetKiragi/cinemind/internal/recommend"
)

var ErrProfileFailed = errors.New("preference profiling failed")

// Profile holds structured user preferences extracted from a query.
type Profile struct {
	Genres  []string `json:"genres"`
	Tone    []string `json:"tone"`
	Decades []string `json:"decade"`
	People  []string `json:"people"`
	Other   []string `json:"other_preferences"`
}

// Empty reports whether no preference was extracted at all.
func (p Profile) Empty() bool {
	return len(p.Genres) == 0 && len(p.Tone) == 0 && len(p.Decades) == 0 &&
		len(p.People) == 0 && len(p.Other) == 0
}

// SearchPrompt renders the profile into a natural retrieval query string.
// Returns "" for an empty profile.
func (p Profile) SearchPrompt() string {
	var parts []string
	if len(p.Genres) > 0 {
		parts = append(parts, fmt.Sprintf("genres: %s", strings.Join(p.Genres, ", ")))
	}
	if len(p.Tone) > 0 {
		parts = append(parts, fmt.Sprintf("tone: %s", strings.Join(p.Tone, ", ")))
	}
	if len(p.Decades) > 0 {
		parts = append(parts, fmt.Sprintf("from the %s", strings.Join(p.Decades, ", ")))
	}
	if len(p.People) > 0 {
		parts = append(parts, fmt.Sprintf("involving %s", strings.Join(p.People, ", ")))
	}
	if len(p.Other) > 0 {
		parts = append(parts, fmt.Sprintf("themes: %s", strings.Join(p.Other, ", ")))
	}
	if len(parts) == 0 {
		return ""
	}
	return "Recommend movies that match " + strings.Join(parts, ", ")
}

// Profiler runs preference extraction through an LLM.
type Profiler struct {
	llm recommend.LLM
}

// NewProfiler creates a Profiler backed by the given LLM.
func NewProfiler(llm recommend.LLM) (*Profiler, error) {
	if llm == nil {
		return nil, fmt.Errorf("LLM cannot be nil")
	}
	return &Profiler{llm: llm}, nil
}

// Extract asks the LLM to produce a structured preference profile for the
// query. The model may wrap JSON in markdown code fences; those are
// stripped before parsing.
func (p *Profiler) Extract(ctx context.Context, query string) (Profile, error) {
	if strings.TrimSpace(query) == "" {
		return Profile{}, fmt.Errorf("%w: query cannot be empty", ErrProfileFailed)
	}

	response, err := p.llm.Generate(ctx, buildProfilePrompt(query))
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrProfileFailed, err)
	}

	var profile Profile
	if err := json.Unmarshal([]byte(stripCodeFences(response)), &profile); err != nil {
		return Profile{}, fmt.Errorf("%w: unparseable profile JSON: %v", ErrProfileFailed, err)
	}
	return profile, nil
}

func buildProfilePrompt(query string) string {
	var b strings.Builder

	b.WriteString("You are CineMind's preference profiler. ")
	b.WriteString("Analyze the following user query and extract their movie preferences.\n\n")
	fmt.Fprintf(&b, "User Query: %s\n\n", query)
	b.WriteString("Return only a JSON object with keys:\n")
	b.WriteString(`- "genres": list of genres or themes` + "\n")
	b.WriteString(`- "tone": list of tone or mood descriptors` + "\n")
	b.WriteString(`- "decade": list of decade or period clues` + "\n")
	b.WriteString(`- "people": list of directors or actors mentioned` + "\n")
	b.WriteString(`- "other_preferences": any extra info (story elements, settings, pacing)` + "\n")

	return b.String()
}

// stripCodeFences removes markdown code fence wrappers that some models add
// around JSON output.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
