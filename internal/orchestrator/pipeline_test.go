package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/VineetKiragi/cinemind/internal/corpus"
	"github.com/VineetKiragi/cinemind/internal/index"
	"github.com/VineetKiragi/cinemind/internal/metadata"
	"github.com/VineetKiragi/cinemind/internal/profile"
	"github.com/VineetKiragi/cinemind/internal/rag"
	"github.com/VineetKiragi/cinemind/internal/recommend"
	"github.com/VineetKiragi/cinemind/internal/session"
)

type stubMetadataClient struct {
	err error
}

func (c *stubMetadataClient) Lookup(ctx context.Context, title, year string) (*metadata.MovieInfo, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &metadata.MovieInfo{
		Title:     title,
		PosterURL: "https://image.tmdb.org/t/p/w500/" + title + ".jpg",
		Rating:    8.1,
	}, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.TopK = 2
	cfg.ProfileQueries = false
	cfg.Generator = recommend.GeneratorConfig{
		MaxRetries:     2,
		AttemptTimeout: time.Second,
		InitialBackoff: time.Millisecond,
	}
	return cfg
}

func testIndex(t *testing.T) *index.Index {
	t.Helper()

	docs := []corpus.Document{
		{
			Record:    corpus.MovieRecord{ID: 1, Title: "Interstellar", Year: 2014, Genres: []string{"Sci-Fi"}, Overview: "A team travels through a wormhole."},
			Embedding: []float32{1, 0, 0},
		},
		{
			Record:    corpus.MovieRecord{ID: 2, Title: "Arrival", Year: 2016, Genres: []string{"Sci-Fi"}, Overview: "A linguist decodes an alien language."},
			Embedding: []float32{0.9, 0.1, 0},
		},
		{
			Record:    corpus.MovieRecord{ID: 3, Title: "Grown Ups", Year: 2010, Genres: []string{"Comedy"}, Overview: "Old friends reunite."},
			Embedding: []float32{0, 0, 1},
		},
	}
	ix := index.New()
	if _, err := ix.Build(docs); err != nil {
		t.Fatalf("failed to build index: %v", err)
	}
	return ix
}

func testPipeline(t *testing.T, embedder rag.Embedder, llm recommend.LLM, client metadata.Client) *Pipeline {
	t.Helper()

	cfg := testConfig()
	retriever, err := rag.NewRetriever(embedder, testIndex(t))
	if err != nil {
		t.Fatal(err)
	}
	generator := recommend.NewGenerator(llm, cfg.LLM, cfg.Generator)
	p, err := New(cfg, retriever, nil, generator, metadata.NewEnricher(client))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPipeline_RespondEndToEnd(t *testing.T) {
	embedder := &rag.MockEmbedder{Default: []float32{1, 0, 0}}
	llm := recommend.NewMockLLM("") // derives citations from grounding context
	p := testPipeline(t, embedder, llm, &stubMetadataClient{})

	sess := session.New()
	turn, err := p.Respond(context.Background(), sess, "sci-fi like Interstellar")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if turn.Failed {
		t.Fatalf("unexpected failed turn: %+v", turn)
	}
	if !strings.Contains(turn.Text, "**Interstellar (2014)**") {
		t.Errorf("response does not cite Interstellar: %q", turn.Text)
	}
	if !strings.Contains(turn.Text, "**Arrival (2016)**") {
		t.Errorf("response does not cite Arrival: %q", turn.Text)
	}

	if len(turn.Movies) != 2 {
		t.Fatalf("expected 2 enriched movies, got %d", len(turn.Movies))
	}
	if turn.Movies[0].Title != "Interstellar" || turn.Movies[0].Year != "2014" {
		t.Errorf("unexpected first movie: %+v", turn.Movies[0])
	}
	if turn.Movies[0].PosterURL == "" {
		t.Error("enriched movie has no poster URL")
	}

	// Grounding context carried both retrieved candidates to the LLM.
	if !strings.Contains(llm.LastPrompt, "Interstellar") || !strings.Contains(llm.LastPrompt, "Arrival") {
		t.Errorf("grounding context missing retrieved candidates:\n%s", llm.LastPrompt)
	}
	if strings.Contains(llm.LastPrompt, "Grown Ups") {
		t.Error("grounding context contains a candidate beyond top-k")
	}

	if sess.State() != session.StateIdle {
		t.Errorf("session should be idle after resolve, got %v", sess.State())
	}
	if turns := sess.Turns(); len(turns) != 2 {
		t.Errorf("expected 2 turns in session log, got %d", len(turns))
	}
}

func TestPipeline_GenerationFailureYieldsFallbackTurn(t *testing.T) {
	embedder := &rag.MockEmbedder{Default: []float32{1, 0, 0}}
	llm := recommend.NewMockLLMWithError(errors.New("provider down"))
	p := testPipeline(t, embedder, llm, &stubMetadataClient{})

	sess := session.New()
	turn, err := p.Respond(context.Background(), sess, "anything")
	if err != nil {
		t.Fatalf("pipeline failures must not surface as errors: %v", err)
	}

	if !turn.Failed {
		t.Error("expected a failed turn")
	}
	if strings.TrimSpace(turn.Text) == "" {
		t.Error("failed turn must still carry displayable text")
	}
	if turn.Text != recommend.FallbackMessage {
		t.Errorf("expected fallback message, got %q", turn.Text)
	}
	if llm.Calls != 3 {
		t.Errorf("expected 3 attempts (1 + 2 retries), got %d", llm.Calls)
	}
	if sess.State() != session.StateIdle {
		t.Error("failed pipeline must still resolve the session to idle")
	}
}

func TestPipeline_EmbeddingFailureYieldsFallbackTurn(t *testing.T) {
	embedder := &rag.MockEmbedder{Error: rag.ErrEmbeddingUnavailable}
	llm := recommend.NewMockLLM("never reached")
	p := testPipeline(t, embedder, llm, &stubMetadataClient{})

	sess := session.New()
	turn, err := p.Respond(context.Background(), sess, "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !turn.Failed || turn.Text != recommend.FallbackMessage {
		t.Errorf("expected failed fallback turn, got %+v", turn)
	}
	if llm.Calls != 0 {
		t.Error("generation must not run when retrieval fails")
	}
}

func TestPipeline_EnrichmentFailureDropsMoviesOnly(t *testing.T) {
	embedder := &rag.MockEmbedder{Default: []float32{1, 0, 0}}
	llm := recommend.NewMockLLM("Watch **Interstellar (2014)** tonight.")
	p := testPipeline(t, embedder, llm, &stubMetadataClient{err: metadata.ErrLookupFailed})

	turn, err := p.Respond(context.Background(), session.New(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if turn.Failed {
		t.Error("enrichment failure must not fail the turn")
	}
	if len(turn.Movies) != 0 {
		t.Errorf("expected no enriched movies, got %d", len(turn.Movies))
	}
	if !strings.Contains(turn.Text, "**Interstellar (2014)**") {
		t.Error("text must be preserved regardless of enrichment")
	}
}

func TestPipeline_RespondRejectsBusySession(t *testing.T) {
	embedder := &rag.MockEmbedder{Default: []float32{1, 0, 0}}
	p := testPipeline(t, embedder, recommend.NewMockLLM("ok"), &stubMetadataClient{})

	sess := session.New()
	if _, _, err := sess.Begin(context.Background(), "in flight"); err != nil {
		t.Fatal(err)
	}

	_, err := p.Respond(context.Background(), sess, "second")
	if !errors.Is(err, session.ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
}

func TestPipeline_RespondRejectsEmptySubmission(t *testing.T) {
	embedder := &rag.MockEmbedder{Default: []float32{1, 0, 0}}
	p := testPipeline(t, embedder, recommend.NewMockLLM("ok"), &stubMetadataClient{})

	_, err := p.Respond(context.Background(), session.New(), "   ")
	if !errors.Is(err, session.ErrEmptySubmission) {
		t.Errorf("expected ErrEmptySubmission, got %v", err)
	}
}

func TestPipeline_ProfilingRefinesRetrievalQuery(t *testing.T) {
	embedder := &rag.MockEmbedder{Default: []float32{1, 0, 0}}
	profileLLM := recommend.NewMockLLM(`{"genres":["sci-fi"],"tone":["cerebral"],"decade":[],"people":[],"other_preferences":[]}`)
	profiler, err := profile.NewProfiler(profileLLM)
	if err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	retriever, err := rag.NewRetriever(embedder, testIndex(t))
	if err != nil {
		t.Fatal(err)
	}
	generator := recommend.NewGenerator(recommend.NewMockLLM("ok"), cfg.LLM, cfg.Generator)
	p, err := New(cfg, retriever, profiler, generator, metadata.NewEnricher(nil))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.Respond(context.Background(), session.New(), "something smart in space"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Recommend movies that match genres: sci-fi, tone: cerebral"
	if len(embedder.LastTexts) != 1 || embedder.LastTexts[0] != want {
		t.Errorf("retriever got %v, want [%q]", embedder.LastTexts, want)
	}
}

func TestPipeline_ProfilingFailureFallsBackToRawQuery(t *testing.T) {
	embedder := &rag.MockEmbedder{Default: []float32{1, 0, 0}}
	profiler, err := profile.NewProfiler(recommend.NewMockLLMWithError(errors.New("rate limited")))
	if err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	retriever, err := rag.NewRetriever(embedder, testIndex(t))
	if err != nil {
		t.Fatal(err)
	}
	generator := recommend.NewGenerator(recommend.NewMockLLM("ok"), cfg.LLM, cfg.Generator)
	p, err := New(cfg, retriever, profiler, generator, metadata.NewEnricher(nil))
	if err != nil {
		t.Fatal(err)
	}

	turn, err := p.Respond(context.Background(), session.New(), "something smart in space")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if turn.Failed {
		t.Error("profiling failure must not fail the turn")
	}
	if len(embedder.LastTexts) != 1 || embedder.LastTexts[0] != "something smart in space" {
		t.Errorf("expected raw query fallback, retriever got %v", embedder.LastTexts)
	}
}

func TestNew_Validation(t *testing.T) {
	cfg := testConfig()
	generator := recommend.NewGenerator(recommend.NewMockLLM("ok"), cfg.LLM, cfg.Generator)

	if _, err := New(cfg, nil, nil, generator, nil); err == nil {
		t.Error("expected error for nil retriever")
	}

	retriever, err := rag.NewRetriever(&rag.MockEmbedder{Default: []float32{1}}, index.New())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(cfg, retriever, nil, nil, nil); err == nil {
		t.Error("expected error for nil generator")
	}

	// nil enricher is replaced with an unconfigured one.
	p, err := New(cfg, retriever, nil, generator, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatal("expected pipeline")
	}
}
