// Package orchestrator wires the end-to-end recommendation pipeline:
// retrieval -> context assembly -> grounded generation -> mention parsing
// -> metadata enrichment -> session resolution. Every user-facing outcome
// resolves to a displayable turn; no failure propagates past this layer.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/VineetKiragi/cinemind/internal/index"
	"github.com/VineetKiragi/cinemind/internal/mentions"
	"github.com/VineetKiragi/cinemind/internal/metadata"
	"github.com/VineetKiragi/cinemind/internal/profile"
	"github.com/VineetKiragi/cinemind/internal/rag"
	"github.com/VineetKiragi/cinemind/internal/recommend"
	"github.com/VineetKiragi/cinemind/internal/session"
)

// Config holds configuration for the recommendation pipeline.
type Config struct {
	// TopK is the number of similar movies to retrieve as context
	TopK int

	// ContextBudget bounds the grounding block size in bytes
	ContextBudget int

	// ProfileQueries enables LLM preference profiling before retrieval
	ProfileQueries bool

	// EmbedderModel is the model to use for query embeddings
	EmbedderModel string

	// EmbedderDimension is the vector dimension for embeddings
	EmbedderDimension int

	// LLM holds the LLM configuration for generation and profiling
	LLM recommend.LLMConfig

	// Generator holds the retry/timeout policy for generation
	Generator recommend.GeneratorConfig
}

// DefaultConfig returns sensible defaults for the pipeline.
func DefaultConfig() Config {
	return Config{
		TopK:              rag.DefaultTopK,
		ContextBudget:     recommend.DefaultContextBudget,
		ProfileQueries:    true,
		EmbedderModel:     "text-embedding-3-large",
		EmbedderDimension: 3072,
		LLM:               recommend.DefaultLLMConfig(),
		Generator:         recommend.DefaultGeneratorConfig(),
	}
}

// Pipeline orchestrates one recommendation request end to end. At most one
// pipeline runs per session; the session state machine enforces it.
type Pipeline struct {
	config    Config
	retriever *rag.Retriever
	profiler  *profile.Profiler
	generator *recommend.Generator
	enricher  *metadata.Enricher
}

// New assembles a pipeline from its components. profiler may be nil
// (profiling disabled); enricher must be non-nil but may be unconfigured.
func New(
	config Config,
	retriever *rag.Retriever,
	profiler *profile.Profiler,
	generator *recommend.Generator,
	enricher *metadata.Enricher,
) (*Pipeline, error) {
	if retriever == nil {
		return nil, fmt.Errorf("retriever cannot be nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator cannot be nil")
	}
	if enricher == nil {
		enricher = metadata.NewEnricher(nil)
	}
	if config.TopK <= 0 {
		config.TopK = rag.DefaultTopK
	}
	if config.ContextBudget <= 0 {
		config.ContextBudget = recommend.DefaultContextBudget
	}

	return &Pipeline{
		config:    config,
		retriever: retriever,
		profiler:  profiler,
		generator: generator,
		enricher:  enricher,
	}, nil
}

// NewOpenAIPipeline builds a production pipeline: OpenAI embedder and LLM,
// the given vector searcher, and TMDB metadata enrichment when
// TMDB_API_KEY is set.
func NewOpenAIPipeline(config Config, searcher index.Searcher) (*Pipeline, error) {
	embedder, err := rag.NewOpenAIEmbedder(config.EmbedderModel, config.EmbedderDimension)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	retriever, err := rag.NewRetriever(embedder, searcher)
	if err != nil {
		return nil, fmt.Errorf("failed to create retriever: %w", err)
	}

	llm, err := recommend.NewOpenAILLM(config.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM: %w", err)
	}
	generator := recommend.NewGenerator(llm, config.LLM, config.Generator)

	var profiler *profile.Profiler
	if config.ProfileQueries {
		profiler, err = profile.NewProfiler(llm)
		if err != nil {
			return nil, fmt.Errorf("failed to create profiler: %w", err)
		}
	}

	enricher := metadata.NewEnricher(clientOrNil(metadata.NewTMDBClient(os.Getenv("TMDB_API_KEY"))))

	return New(config, retriever, profiler, generator, enricher)
}

// clientOrNil avoids wrapping a typed nil *TMDBClient in a non-nil Client
// interface value.
func clientOrNil(c *metadata.TMDBClient) metadata.Client {
	if c == nil {
		return nil
	}
	return c
}

// Respond drives one submission through the full pipeline and resolves the
// session with a displayable turn. The returned error is non-nil only for
// rejected submissions (empty text, busy or disposed session); pipeline
// failures degrade to a fallback turn instead.
func (p *Pipeline) Respond(ctx context.Context, sess *session.Session, query string) (session.Turn, error) {
	pctx, text, err := sess.Begin(ctx, query)
	if err != nil {
		return session.Turn{}, err
	}

	turn := p.run(pctx, text)
	if err := sess.Resolve(turn); err != nil {
		// Session was disposed mid-flight; the turn is dropped.
		log.Printf("[Pipeline] late completion dropped: %v", err)
	}
	return turn, nil
}

// Answer runs the pipeline without session bookkeeping, for the stateless
// recommendation endpoint.
func (p *Pipeline) Answer(ctx context.Context, query string) session.Turn {
	return p.run(ctx, query)
}

// Profile exposes preference extraction for the debugging endpoint.
func (p *Pipeline) Profile(ctx context.Context, query string) (profile.Profile, error) {
	if p.profiler == nil {
		return profile.Profile{}, fmt.Errorf("profiling is disabled")
	}
	return p.profiler.Extract(ctx, query)
}

func (p *Pipeline) run(ctx context.Context, query string) session.Turn {
	// Stage 1: optional preference profiling refines the retrieval query.
	searchText := query
	if p.profiler != nil {
		prof, err := p.profiler.Extract(ctx, query)
		switch {
		case err != nil:
			log.Printf("[Pipeline] profiling failed, using raw query: %v", err)
		case prof.Empty():
			log.Printf("[Pipeline] empty profile, using raw query")
		default:
			searchText = prof.SearchPrompt()
			log.Printf("[Pipeline] Stage 1: profiled query into %q", searchText)
		}
	}

	// Stage 2: retrieval.
	result, err := p.retriever.Retrieve(ctx, searchText, p.config.TopK)
	if err != nil {
		log.Printf("[Pipeline] retrieval failed: %v", err)
		return fallbackTurn()
	}
	log.Printf("[Pipeline] Stage 2: retrieved %d candidates", len(result))

	// Stage 3: context assembly.
	groundingContext := recommend.AssembleContext(result, p.config.ContextBudget)
	log.Printf("[Pipeline] Stage 3: assembled grounding context (%d bytes)", len(groundingContext))

	// Stage 4: grounded generation. Always yields displayable text.
	resp := p.generator.Generate(ctx, query, groundingContext)
	if resp.Failed {
		log.Printf("[Pipeline] generation failed after %d attempts", resp.Attempts)
		return session.Turn{
			Sender:    session.SenderAssistant,
			Text:      resp.Text,
			Failed:    true,
			CreatedAt: time.Now(),
		}
	}
	log.Printf("[Pipeline] Stage 4: generated response (%d characters)", len(resp.Text))

	// Stage 5: parse citations and enrich them with display metadata.
	cited := mentions.Extract(resp.Text)
	movies := p.enricher.Enrich(ctx, cited)
	log.Printf("[Pipeline] Stage 5: %d mentions, %d enriched", len(cited), len(movies))

	return session.Turn{
		Sender:    session.SenderAssistant,
		Text:      resp.Text,
		Movies:    movies,
		CreatedAt: time.Now(),
	}
}

func fallbackTurn() session.Turn {
	return session.Turn{
		Sender:    session.SenderAssistant,
		Text:      recommend.FallbackMessage,
		Failed:    true,
		CreatedAt: time.Now(),
	}
}
