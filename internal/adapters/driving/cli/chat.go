package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui"
	"github.com/custodia-labs/docqa/internal/logger"
)

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"tui"},
	Short:   "Start an interactive chat session",
	Long: `Opens a full-screen chat over your uploaded documents. Each question
is answered from the indexed chunks and the source documents are listed
under the answer.

Controls:
  Enter    - Send question
  Ctrl+L   - Clear transcript
  PgUp/Dn  - Scroll transcript
  Esc      - Back to menu
  ?        - Toggle help
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// runProgram is replaced in tests to avoid taking over the terminal.
var runProgram = func(m tea.Model, opts ...tea.ProgramOption) error {
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}

func runChat(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	app, err := tui.NewApp(tui.NewPorts(queryService, documentService))
	if err != nil {
		return fmt.Errorf("failed to create chat UI: %w", err)
	}
	app.WithContext(cmd.Context())

	// Log lines would corrupt the alternate screen.
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	if err := runProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context())); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}
