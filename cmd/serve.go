package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/VineetKiragi/cinemind/internal/api"
	"github.com/VineetKiragi/cinemind/internal/orchestrator"
)

var (
	serveAddr        string
	serveCorpusPath  string
	vectorBackend    string
	milvusAddress    string
	milvusCollection string
	serveTopK        int
	serveNoProfile   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the recommendation HTTP server",
	Long: `Run the CineMind recommendation server.

Endpoints:
  POST /recommend  {"query": "..."}  - grounded movie recommendations
  POST /profile    {"query": "..."}  - extracted preference profile
  GET  /health                       - liveness

Required environment variables:
  OPENAI_API_KEY  - OpenAI API key for embeddings and generation
  TMDB_API_KEY    - TMDB API key for poster/rating enrichment (optional)

Examples:
  cinemind serve --corpus corpus.jsonl
  cinemind serve --addr :9090 --vector-backend milvus`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveCorpusPath, "corpus", "corpus.jsonl", "Path to the embedded corpus artifact (memory backend)")
	serveCmd.Flags().StringVar(&vectorBackend, "vector-backend", "memory", "Vector search backend: memory or milvus")
	serveCmd.Flags().StringVar(&milvusAddress, "milvus-address", "", "Milvus server address (default localhost:19530)")
	serveCmd.Flags().StringVar(&milvusCollection, "milvus-collection", "", "Milvus collection name (default cinemind_movies)")
	serveCmd.Flags().IntVar(&serveTopK, "topk", 5, "Number of similar movies retrieved per query")
	serveCmd.Flags().BoolVar(&serveNoProfile, "no-profile", false, "Disable LLM preference profiling before retrieval")
}

func runServe(cmd *cobra.Command, args []string) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A server with no searchable corpus is useless; fail at startup, not
	// on the first request.
	searcher, cleanup, err := newSearcher(ctx, vectorBackend, serveCorpusPath)
	if err != nil {
		return err
	}
	defer cleanup()

	config := orchestrator.DefaultConfig()
	config.TopK = serveTopK
	config.ProfileQueries = !serveNoProfile
	pipeline, err := orchestrator.NewOpenAIPipeline(config, searcher)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	srv := &http.Server{
		Addr:    serveAddr,
		Handler: api.NewHandler(pipeline),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("cinemind listening", "addr", serveAddr, "backend", vectorBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
