// Package cli implements the docqa command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Services holds the driving ports the commands call.
type Services struct {
	Document driving.DocumentService
	Query    driving.QueryService
	Settings driving.SettingsService
	Import   driving.ImportService

	// Close releases storage and provider clients. May be nil.
	Close func() error
}

// Bootstrap builds Services for a home directory. An empty home means
// DOCQA_HOME or ~/.docqa.
type Bootstrap func(ctx context.Context, home string) (*Services, error)

// annotationNoServices marks commands that run without Bootstrap.
const annotationNoServices = "docqa/no-services"

var (
	version = "dev"

	verbose bool
	homeDir string

	bootstrap     Bootstrap
	closeServices func() error

	documentService driving.DocumentService
	queryService    driving.QueryService
	settingsService driving.SettingsService
	importService   driving.ImportService
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about your documents",
	Long: `docqa answers natural-language questions from documents you upload.

Documents are split into overlapping chunks, embedded, and kept in a local
index. Each question is answered from the most relevant chunks, followed by
the names of the documents they came from.

Get started:
  docqa settings set-key openai
  docqa upload ./notes
  docqa ask "What did we decide about the launch date?"`,
	SilenceUsage:      true,
	PersistentPreRunE: setupServices,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return teardownServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline stages and timings to stderr")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "state directory (default $DOCQA_HOME or ~/.docqa)")
}

// Execute runs the root command with the given version and service builder.
func Execute(ctx context.Context, v string, b Bootstrap) error {
	version = v
	bootstrap = b
	defer teardownServices() //nolint:errcheck // already reported by PersistentPostRunE
	return rootCmd.ExecuteContext(ctx)
}

// SetServices installs services directly, bypassing Bootstrap.
func SetServices(s *Services) {
	documentService = s.Document
	queryService = s.Query
	settingsService = s.Settings
	importService = s.Import
	closeServices = s.Close
}

func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || cmd.Annotations[annotationNoServices] == "true" {
		return nil
	}
	if documentService != nil {
		return nil
	}

	s, err := bootstrap(cmd.Context(), homeDir)
	if err != nil {
		return err
	}
	SetServices(s)
	return nil
}

func teardownServices() error {
	if closeServices == nil {
		return nil
	}
	closeFn := closeServices
	closeServices = nil
	return closeFn()
}
