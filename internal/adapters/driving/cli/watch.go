package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

var watchRecursive bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Index a directory and keep it in sync",
	Long: `Uploads every supported file in the directory, then watches it for
changes until interrupted. Created and modified files are re-indexed,
deleted files are removed from the index. Files whose content has not
changed are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&watchRecursive, "recursive", "r", false, "watch subdirectories too")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if importService == nil {
		return errors.New("import service not configured")
	}

	dir := args[0]
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)

	err := importService.Watch(cmd.Context(), dir, driving.ImportOptions{Recursive: watchRecursive},
		func(ev driving.WatchEvent) {
			cmd.Println(formatWatchEvent(ev))
		})
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}

func formatWatchEvent(ev driving.WatchEvent) string {
	path := ev.Path
	if path == "" {
		path = "-"
	}

	switch {
	case ev.Err != nil:
		return fmt.Sprintf("  %-8s %s: %v", ev.Change, path, ev.Err)
	case ev.Document != nil:
		doc := ev.Document
		return fmt.Sprintf("  %-8s %s  %s", ev.Change, path,
			statusLine(doc.State.String(), doc.ChunkCount, doc.Error))
	default:
		return fmt.Sprintf("  %-8s %s", ev.Change, path)
	}
}
