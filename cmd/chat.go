package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/VineetKiragi/cinemind/internal/orchestrator"
	"github.com/VineetKiragi/cinemind/internal/session"
)

var (
	chatCorpusPath string
	chatBackend    string
	chatTopK       int
	chatNoProfile  bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with CineMind for movie recommendations",
	Long: `Start an interactive recommendation session.

Each message is answered with grounded movie recommendations; cited titles
are enriched with rating and poster metadata when TMDB_API_KEY is set.

Required environment variables:
  OPENAI_API_KEY  - OpenAI API key for embeddings and generation
  TMDB_API_KEY    - TMDB API key for enrichment (optional)

Examples:
  cinemind chat --corpus corpus.jsonl
  cinemind chat --vector-backend milvus --topk 8`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatCorpusPath, "corpus", "corpus.jsonl", "Path to the embedded corpus artifact (memory backend)")
	chatCmd.Flags().StringVar(&chatBackend, "vector-backend", "memory", "Vector search backend: memory or milvus")
	chatCmd.Flags().IntVar(&chatTopK, "topk", 5, "Number of similar movies retrieved per query")
	chatCmd.Flags().BoolVar(&chatNoProfile, "no-profile", false, "Disable LLM preference profiling before retrieval")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Styling
	var (
		headerColor = lipgloss.Color("#F780FF") // Bright pink
		promptColor = lipgloss.Color("#8BE9FD") // Cyan
		answerColor = lipgloss.Color("#E9E9F4") // Light purple/white
		cardColor   = lipgloss.Color("#6272A4") // Muted purple
		errorColor  = lipgloss.Color("#FF5555") // Red
	)

	headerStyle := lipgloss.NewStyle().
		Foreground(headerColor).
		Bold(true)

	promptStyle := lipgloss.NewStyle().
		Foreground(promptColor).
		Bold(true)

	answerStyle := lipgloss.NewStyle().
		Foreground(answerColor)

	cardStyle := lipgloss.NewStyle().
		Foreground(cardColor).
		Italic(true)

	errorStyle := lipgloss.NewStyle().
		Foreground(errorColor).
		Bold(true)

	searcher, cleanup, err := newSearcher(ctx, chatBackend, chatCorpusPath)
	if err != nil {
		return err
	}
	defer cleanup()

	config := orchestrator.DefaultConfig()
	config.TopK = chatTopK
	config.ProfileQueries = !chatNoProfile
	pipeline, err := orchestrator.NewOpenAIPipeline(config, searcher)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	sess := session.New()
	defer sess.Dispose()

	fmt.Println()
	fmt.Println(headerStyle.Render("CineMind"))
	fmt.Println(cardStyle.Render("Tell me what you feel like watching. Type 'exit' to quit."))
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("you> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" || line == "quit" {
			break
		}

		turn, err := pipeline.Respond(ctx, sess, line)
		if errors.Is(err, session.ErrEmptySubmission) {
			continue
		}
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			continue
		}

		fmt.Println()
		if turn.Failed {
			fmt.Println(errorStyle.Render(turn.Text))
		} else {
			fmt.Println(answerStyle.Render(turn.Text))
		}
		for _, movie := range turn.Movies {
			card := fmt.Sprintf("  %s (%s)", movie.Title, movie.Year)
			if movie.Rating > 0 {
				card += fmt.Sprintf("  ★ %.1f", movie.Rating)
			}
			if movie.PosterURL != "" {
				card += "  " + movie.PosterURL
			}
			fmt.Println(cardStyle.Render(card))
		}
		fmt.Println()
	}

	return scanner.Err()
}
