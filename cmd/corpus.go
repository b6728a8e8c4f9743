package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/VineetKiragi/cinemind/internal/corpus"
	"github.com/VineetKiragi/cinemind/internal/rag"
)

var (
	corpusInPath    string
	corpusOutPath   string
	corpusModel     string
	corpusDimension int
	corpusBatchSize int
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Build and inspect the embedded movie corpus",
}

var corpusBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Embed a raw movie corpus into the index artifact",
	Long: `Run the offline embedding job: read raw movie records (one JSON
object per line), embed each record, and write the embedded corpus
artifact consumed by the serve and chat commands.

Required environment variables:
  OPENAI_API_KEY  - OpenAI API key for embeddings

Examples:
  cinemind corpus build --in movies.jsonl --out corpus.jsonl
  cinemind corpus build --in movies.jsonl --out corpus.jsonl --batch 64`,
	RunE: runCorpusBuild,
}

var corpusStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics for an embedded corpus artifact",
	RunE:  runCorpusStats,
}

func init() {
	rootCmd.AddCommand(corpusCmd)
	corpusCmd.AddCommand(corpusBuildCmd)
	corpusCmd.AddCommand(corpusStatsCmd)

	corpusBuildCmd.Flags().StringVar(&corpusInPath, "in", "movies.jsonl", "Path to the raw movie records")
	corpusBuildCmd.Flags().StringVar(&corpusOutPath, "out", "corpus.jsonl", "Path for the embedded corpus artifact")
	corpusBuildCmd.Flags().StringVar(&corpusModel, "model", "text-embedding-3-large", "Embedding model")
	corpusBuildCmd.Flags().IntVar(&corpusDimension, "dimension", 3072, "Embedding dimension")
	corpusBuildCmd.Flags().IntVar(&corpusBatchSize, "batch", 32, "Records embedded per API call")

	corpusStatsCmd.Flags().StringVar(&corpusOutPath, "corpus", "corpus.jsonl", "Path to the embedded corpus artifact")
}

func runCorpusBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	records, err := corpus.LoadRecords(corpusInPath)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	fmt.Printf("Loaded %d movie records from %s\n", len(records), corpusInPath)

	embedder, err := rag.NewOpenAIEmbedder(corpusModel, corpusDimension)
	if err != nil {
		return err
	}

	docs, err := rag.BuildDocuments(ctx, records, embedder, rag.BuildOptions{BatchSize: corpusBatchSize})
	if err != nil {
		return fmt.Errorf("embedding job failed: %w", err)
	}

	if err := corpus.WriteDocuments(corpusOutPath, docs); err != nil {
		return err
	}
	fmt.Printf("Wrote %d embedded documents to %s (model %s, dimension %d)\n",
		len(docs), corpusOutPath, corpusModel, corpusDimension)
	return nil
}

func runCorpusStats(cmd *cobra.Command, args []string) error {
	docs, err := corpus.LoadDocuments(corpusOutPath)
	if err != nil {
		return err
	}

	genres := make(map[string]int)
	minYear, maxYear := 0, 0
	for _, doc := range docs {
		for _, g := range doc.Record.Genres {
			genres[g]++
		}
		year := doc.Record.Year
		if year == 0 {
			continue
		}
		if minYear == 0 || year < minYear {
			minYear = year
		}
		if year > maxYear {
			maxYear = year
		}
	}

	fmt.Printf("Documents: %d\n", len(docs))
	fmt.Printf("Dimension: %d\n", len(docs[0].Embedding))
	if minYear != 0 {
		fmt.Printf("Years:     %d-%d\n", minYear, maxYear)
	}

	names := make([]string, 0, len(genres))
	for g := range genres {
		names = append(names, g)
	}
	sort.Slice(names, func(i, j int) bool {
		if genres[names[i]] != genres[names[j]] {
			return genres[names[i]] > genres[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > 0 {
		fmt.Println("Genres:")
		for _, g := range names {
			fmt.Printf("  %-16s %d\n", g, genres[g])
		}
	}
	return nil
}
