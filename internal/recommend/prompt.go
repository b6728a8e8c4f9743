package recommend

import (
	"fmt"
	"strings"
)

// BuildPrompt combines the user query with the grounding context into a
// single generation prompt. The generator is instructed to cite every
// recommended movie in the exact form **Title (Year)** so the response
// parser can extract structured mentions.
func BuildPrompt(query, groundingContext string) string {
	var b strings.Builder

	b.WriteString("You are CineMind, an AI movie recommendation assistant. ")
	b.WriteString("Use the retrieved movie information below to provide thoughtful, ")
	b.WriteString("grounded recommendations. Prefer movies from the retrieved context ")
	b.WriteString("and do not invent plot details.\n\n")

	if groundingContext != "" {
		b.WriteString("# Retrieved Movie Context\n\n")
		b.WriteString(groundingContext)
		b.WriteString("\n\n")
	}

	b.WriteString("# Question\n\n")
	fmt.Fprintf(&b, "%s\n\n", query)

	b.WriteString("# Task\n\n")
	b.WriteString("Recommend 3-5 movies that best fit the question. For each, explain in ")
	b.WriteString("1-2 sentences why it suits the request, referencing tone, genre, era, or theme. ")
	b.WriteString("Write naturally, like a friendly movie expert.\n\n")
	b.WriteString("Every time you name a movie, cite it in exactly this form: **Title (Year)** ")
	b.WriteString("with the title wrapped in double asterisks and the 4-digit release year in parentheses. ")
	b.WriteString("Example: **Inception (2010)**.\n")

	return b.String()
}
