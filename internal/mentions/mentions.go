// Package mentions extracts structured movie citations from generated text.
// The generator is instructed to cite movies as **Title (Year)**; this
// package scans for that literal pattern with a small deterministic
// single-pass scanner so edge cases (nested markers, malformed years) stay
// explicit and independently testable.
package mentions

import "strings"

const marker = "**"

// Mention is a movie citation extracted from free text. Extracted, not
// authoritative: the title and year come from untrusted generator output.
type Mention struct {
	// Title is the cited movie title, exactly as it appeared.
	Title string

	// Year is the 4-digit year string from the citation.
	Year string

	// Position is the byte offset of the opening marker in the input.
	Position int
}

// Extract scans text for citations of the form **Title (YYYY)** in order
// of first appearance. The match is non-greedy: a candidate spans from an
// opening marker to the first closing marker. Candidates whose text does
// not end in a parenthesized 4-digit year are skipped entirely, and their
// closing marker is re-considered as the next opening. The first occurrence
// of a given title wins (exact, case-sensitive). An empty result is valid.
func Extract(text string) []Mention {
	var result []Mention
	seen := make(map[string]struct{})

	pos := 0
	for {
		open := strings.Index(text[pos:], marker)
		if open < 0 {
			break
		}
		open += pos

		close := strings.Index(text[open+len(marker):], marker)
		if close < 0 {
			break
		}
		close += open + len(marker)

		title, year, ok := parseCandidate(text[open+len(marker) : close])
		if !ok {
			// Malformed candidate: the closing marker may open the
			// next citation.
			pos = close
			continue
		}

		if _, dup := seen[title]; !dup {
			seen[title] = struct{}{}
			result = append(result, Mention{Title: title, Year: year, Position: open})
		}
		pos = close + len(marker)
	}

	return result
}

// parseCandidate validates that a candidate body has the exact shape
// "Title (YYYY)": a non-empty title immediately followed by a parenthesized
// 4-digit year closing the body.
func parseCandidate(body string) (title, year string, ok bool) {
	if !strings.HasSuffix(body, ")") {
		return "", "", false
	}
	openParen := strings.LastIndex(body, "(")
	if openParen <= 0 {
		return "", "", false
	}

	year = body[openParen+1 : len(body)-1]
	if len(year) != 4 {
		return "", "", false
	}
	for _, c := range year {
		if c < '0' || c > '9' {
			return "", "", false
		}
	}

	title = strings.TrimSpace(body[:openParen])
	if title == "" {
		return "", "", false
	}
	return title, year, true
}
