package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

var (
	askTopK int
	askJSON bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Answer a question from your documents",
	Long: `Retrieves the chunks most similar to the question and asks the
configured language model to answer from them. The answer is followed by
the names of the source documents.

If nothing relevant is indexed, a fixed message is printed instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "chunks to use as context (default retrieval.top_k)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

// answerView is the JSON shape of an answer.
type answerView struct {
	Text    string       `json:"text"`
	Answer  string       `json:"answer,omitempty"`
	Sources []string     `json:"sources"`
	Outcome string       `json:"outcome"`
	Results []resultView `json:"results"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	question := strings.Join(args, " ")
	answer, err := queryService.Answer(cmd.Context(), question, domain.QueryOptions{TopK: askTopK})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	if answer.Cause != nil {
		logger.Warn("%s: %v", answer.Outcome, answer.Cause)
	}

	if askJSON {
		sources := answer.Sources
		if sources == nil {
			sources = []string{}
		}
		return outputJSON(cmd, answerView{
			Text:    answer.Text,
			Answer:  answer.Answer,
			Sources: sources,
			Outcome: string(answer.Outcome),
			Results: toResultViews(answer.Results),
		})
	}

	cmd.Println(answer.Text)
	return nil
}
