package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMovieRecord_EmbeddingText(t *testing.T) {
	rec := MovieRecord{
		ID:       603,
		Title:    "The Matrix",
		Year:     1999,
		Overview: "A hacker discovers reality is a simulation.",
		Genres:   []string{"Action", "Science Fiction"},
	}

	text := rec.EmbeddingText()

	if !strings.Contains(text, "Title: The Matrix (1999)") {
		t.Errorf("embedding text missing title line: %q", text)
	}
	if !strings.Contains(text, "Genres: Action, Science Fiction") {
		t.Errorf("embedding text missing genres line: %q", text)
	}
	if !strings.Contains(text, "A hacker discovers reality is a simulation.") {
		t.Errorf("embedding text missing overview: %q", text)
	}
}

func TestMovieRecord_EmbeddingText_NoGenres(t *testing.T) {
	rec := MovieRecord{ID: 1, Title: "Untagged", Year: 2001, Overview: "Plot."}

	if strings.Contains(rec.EmbeddingText(), "Genres:") {
		t.Error("embedding text should omit genres line when record has none")
	}
}

func TestWriteAndLoadDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.jsonl")

	docs := []Document{
		{
			Record:    MovieRecord{ID: 1, Title: "Interstellar", Year: 2014, Overview: "Space farming."},
			Embedding: []float32{0.1, 0.2, 0.3},
		},
		{
			Record:    MovieRecord{ID: 2, Title: "Arrival", Year: 2016, Overview: "Alien linguistics."},
			Embedding: []float32{0.4, 0.5, 0.6},
		},
	}

	if err := WriteDocuments(path, docs); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	loaded, err := LoadDocuments(path)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(loaded))
	}
	if loaded[0].Record.Title != "Interstellar" {
		t.Errorf("expected Interstellar first, got %s", loaded[0].Record.Title)
	}
	if len(loaded[1].Embedding) != 3 {
		t.Errorf("expected embedding dimension 3, got %d", len(loaded[1].Embedding))
	}
}

func TestLoadDocuments_DimensionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	content := `{"movie":{"id":1,"title":"A","year":2000,"overview":"x"},"embedding":[0.1,0.2]}
{"movie":{"id":2,"title":"B","year":2001,"overview":"y"},"embedding":[0.1,0.2,0.3]}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadDocuments(path)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestLoadDocuments_MissingEmbedding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	content := `{"movie":{"id":1,"title":"A","year":2000,"overview":"x"},"embedding":[]}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadDocuments(path); err == nil {
		t.Error("expected error for document without embedding")
	}
}

func TestLoadDocuments_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	if err := os.WriteFile(path, []byte("\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadDocuments(path)
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestLoadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.jsonl")
	content := `{"id":10,"title":"Inception","year":2010,"overview":"Dream heists.","genres":["Action"]}

{"id":11,"title":"Her","year":2013,"overview":"AI romance."}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := LoadRecords(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Title != "Her" || records[1].Year != 2013 {
		t.Errorf("unexpected second record: %+v", records[1])
	}
}

func TestLoadRecords_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadRecords(path); err == nil {
		t.Error("expected parse error for malformed line")
	}
}
