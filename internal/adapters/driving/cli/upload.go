package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

var (
	uploadRecursive bool
	uploadID        string
)

var uploadCmd = &cobra.Command{
	Use:   "upload [paths...]",
	Short: "Upload and index documents",
	Long: `Decodes each file, splits it into chunks, embeds the chunks and adds
them to the index. Directories are expanded; pass --recursive to include
subdirectories.

Supported types: .txt, .md, .html, .pdf and other text files.
Uploading the same path again replaces the earlier version.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "descend into subdirectories")
	uploadCmd.Flags().StringVar(&uploadID, "id", "", "document ID to use (single file only)")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if importService == nil {
		return errors.New("import service not configured")
	}

	docs, err := importService.ImportPaths(cmd.Context(), args, driving.ImportOptions{
		Recursive: uploadRecursive,
		ID:        uploadID,
	})

	indexed := 0
	for i := range docs {
		cmd.Printf("  %s  %s\n", docs[i].Name, statusLine(docs[i].State.String(), docs[i].ChunkCount, docs[i].Error))
		if docs[i].State == domain.StateIndexed {
			indexed++
		}
	}
	if len(docs) > 0 {
		cmd.Println()
	}
	cmd.Printf("%d document(s) processed and ready for chat.\n", indexed)

	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	return nil
}
