package cli

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

const timeLayout = "2006-01-02 15:04:05"

var documentListJSON bool

var documentCmd = &cobra.Command{
	Use:     "document",
	Aliases: []string{"docs"},
	Short:   "Manage uploaded documents",
	Long:    `List, inspect, print or remove uploaded documents. Removing a document also removes its chunks.`,
}

var documentListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List uploaded documents",
	Args:    cobra.NoArgs,
	RunE:    runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get <doc-id>",
	Short: "Show a document's metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentContentCmd = &cobra.Command{
	Use:   "content <doc-id>",
	Short: "Print a document's extracted text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentRemoveCmd = &cobra.Command{
	Use:     "remove <doc-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a document and its chunks",
	Args:    cobra.ExactArgs(1),
	RunE:    runDocumentRemove,
}

func init() {
	documentListCmd.Flags().BoolVar(&documentListJSON, "json", false, "output documents as JSON")
	documentCmd.AddCommand(documentListCmd, documentGetCmd, documentContentCmd, documentRemoveCmd)
	rootCmd.AddCommand(documentCmd)
}

func requireDocuments() error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	return nil
}

type documentView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	MIMEType   string    `json:"mime_type,omitempty"`
	State      string    `json:"state"`
	ChunkCount int       `json:"chunk_count"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toDocumentView(d *domain.Document) documentView {
	return documentView{
		ID:         d.ID,
		Name:       d.Name,
		MIMEType:   d.MIMEType,
		State:      d.State.String(),
		ChunkCount: d.ChunkCount,
		Error:      d.Error,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}
	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentListJSON {
		views := make([]documentView, len(docs))
		for i := range docs {
			views[i] = toDocumentView(&docs[i])
		}
		return outputJSON(cmd, views)
	}

	if len(docs) == 0 {
		cmd.Println("No documents uploaded.")
		return nil
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "STATUS", "UPDATED").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
	for i := range docs {
		d := &docs[i]
		t.Row(d.ID, d.Name, statusLine(d.State.String(), d.ChunkCount, d.Error), d.UpdatedAt.Format(timeLayout))
	}

	cmd.Println(t.Render())
	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}
	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	fields := [][2]string{
		{"Name", doc.Name},
		{"Type", doc.MIMEType},
		{"State", doc.State.String()},
		{"Chunks", fmt.Sprint(doc.ChunkCount)},
		{"Size", fmt.Sprintf("%d characters", utf8.RuneCountInString(doc.Content))},
		{"Created", doc.CreatedAt.Format(timeLayout)},
		{"Updated", doc.UpdatedAt.Format(timeLayout)},
		{"Error", doc.Error},
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		cmd.Printf("  %-9s %s\n", f[0]+":", f[1])
	}
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}
	content, err := documentService.GetContent(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document content: %w", err)
	}
	cmd.Println(content)
	return nil
}

func runDocumentRemove(cmd *cobra.Command, args []string) error {
	if err := requireDocuments(); err != nil {
		return err
	}
	id := args[0]
	if err := documentService.Remove(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}
	cmd.Printf("Document %s removed.\n", id)
	return nil
}

// statusLine appends the error or chunk count to the state name.
func statusLine(state string, chunks int, errMsg string) string {
	switch {
	case errMsg != "":
		return fmt.Sprintf("%s (%s)", state, errMsg)
	case chunks > 0:
		return fmt.Sprintf("%s (%d chunks)", state, chunks)
	}
	return state
}
