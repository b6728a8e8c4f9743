// Package corpus defines the movie corpus artifact consumed by the vector
// index. The artifact is produced offline by the corpus build job: one JSON
// document per line, each pairing a movie record with its precomputed
// embedding. Corpus changes are wholesale rebuilds of the artifact, never
// incremental patches.
package corpus

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Common errors for corpus operations
var (
	ErrEmptyCorpus       = errors.New("corpus contains no documents")
	ErrDimensionMismatch = errors.New("inconsistent embedding dimensions in corpus")
)

// MovieRecord is a single movie from the corpus. Immutable once built.
type MovieRecord struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	Year       int      `json:"year"`
	Overview   string   `json:"overview"`
	Genres     []string `json:"genres,omitempty"`
	Popularity float64  `json:"popularity,omitempty"`
}

// EmbeddingText renders the record into the text that gets embedded.
func (r MovieRecord) EmbeddingText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s (%d)\n", r.Title, r.Year)
	if len(r.Genres) > 0 {
		fmt.Fprintf(&b, "Genres: %s\n", strings.Join(r.Genres, ", "))
	}
	b.WriteString(r.Overview)
	return b.String()
}

// Document pairs a movie record with its embedding vector. Documents are
// one-to-one with records, created at corpus build time and never mutated.
type Document struct {
	Record    MovieRecord `json:"movie"`
	Embedding []float32   `json:"embedding"`
}

// LoadRecords reads a raw corpus file (one MovieRecord JSON object per line).
// This is the input to the offline embedding job.
func LoadRecords(path string) ([]MovieRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer file.Close()

	var records []MovieRecord
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec MovieRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("failed to parse corpus line %d: %w", lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyCorpus
	}
	return records, nil
}

// LoadDocuments reads an embedded corpus artifact (one Document JSON object
// per line) and validates that all embeddings share the same dimension.
func LoadDocuments(path string) ([]Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus artifact: %w", err)
	}
	defer file.Close()

	var docs []Document
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	dim := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var doc Document
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			return nil, fmt.Errorf("failed to parse artifact line %d: %w", lineNo, err)
		}
		if len(doc.Embedding) == 0 {
			return nil, fmt.Errorf("artifact line %d: document %q has no embedding", lineNo, doc.Record.Title)
		}
		if dim == 0 {
			dim = len(doc.Embedding)
		} else if len(doc.Embedding) != dim {
			return nil, fmt.Errorf("%w: line %d has dimension %d, expected %d",
				ErrDimensionMismatch, lineNo, len(doc.Embedding), dim)
		}
		docs = append(docs, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corpus artifact: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrEmptyCorpus
	}
	return docs, nil
}

// WriteDocuments writes an embedded corpus artifact, one document per line.
func WriteDocuments(path string, docs []Document) error {
	if len(docs) == 0 {
		return ErrEmptyCorpus
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create corpus artifact: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode document %q: %w", doc.Record.Title, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush corpus artifact: %w", err)
	}
	return nil
}
