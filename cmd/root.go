package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cinemind",
	Short: "CineMind - RAG-powered movie recommendations",
	Long: `CineMind recommends movies through retrieval-augmented generation.

It embeds a movie corpus into a vector index, retrieves the movies most
similar to your query, and asks an LLM for grounded recommendations with
poster and rating metadata attached to every cited title.`,
}

// Execute runs the root command
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
