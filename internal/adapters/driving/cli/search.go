package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed chunks",
	Long: `Embeds the query and returns the most similar chunks by cosine
similarity, without calling the language model.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 5, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if queryService == nil {
		return errors.New("query service not configured")
	}

	results, err := queryService.Search(cmd.Context(), query, domain.QueryOptions{TopK: searchTopK})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, toResultViews(results))
	}

	return outputSearchTable(cmd, results)
}

// resultView is the JSON shape of a search result.
type resultView struct {
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	ChunkID      string  `json:"chunk_id"`
	Position     int     `json:"position"`
	Score        float64 `json:"score"`
	Content      string  `json:"content"`
}

func toResultViews(results []domain.SearchResult) []resultView {
	views := make([]resultView, len(results))
	for i, r := range results {
		views[i] = resultView{
			DocumentID:   r.Chunk.DocumentID,
			DocumentName: r.Chunk.DocumentName,
			ChunkID:      r.Chunk.ID,
			Position:     r.Chunk.Position,
			Score:        r.Score,
			Content:      r.Chunk.Content,
		}
	}
	return views
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		// Format: [N] Name #position (score)
		name := results[i].Chunk.DocumentName
		if name == "" {
			name = results[i].Chunk.DocumentID
		}

		cmd.Printf("  [%d] %s #%d (%.2f)\n", i+1, name, results[i].Chunk.Position, results[i].Score)
		if snippet := snippet(results[i].Chunk.Content, 160); snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}

	return nil
}

// snippet flattens whitespace and truncates to n runes.
func snippet(text string, n int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= n {
		return flat
	}
	return string(runes[:n]) + "..."
}
