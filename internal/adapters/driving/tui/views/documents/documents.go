// Package documents lists uploaded documents in a table and lets the user
// open or remove them.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ErrNoDocumentService is returned when the view has no document service.
var ErrNoDocumentService = errors.New("document service not available")

const (
	// title, blank line, table header, blank line, footer
	chromeLines   = 6
	minNameWidth  = 12
	stateWidth    = 9
	chunksWidth   = 6
	updatedWidth  = 16
	updatedLayout = "2006-01-02 15:04"
)

// View is the documents table.
type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	service driving.DocumentService
	ctx     context.Context

	table     table.Model
	documents []domain.Document
	width     int
	ready     bool
	loading   bool
	err       error

	// confirming holds the ID awaiting a y/n answer.
	confirming string
}

// NewView creates the documents view.
func NewView(s *styles.Styles, service driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ts := table.DefaultStyles()
	ts.Header = ts.Header.Foreground(s.Theme().Faint).Bold(true)
	ts.Selected = s.Selected

	t := table.New(table.WithFocused(true), table.WithStyles(ts))
	v := &View{
		styles:    s,
		keys:      keymap.DefaultKeyMap(),
		service:   service,
		ctx:       context.Background(),
		table:     t,
		documents: []domain.Document{},
	}
	v.layout(80)
	return v
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init resets the view and reloads the list.
func (v *View) Init() tea.Cmd {
	v.err = nil
	v.confirming = ""
	v.table.SetCursor(0)
	return v.reload()
}

func (v *View) reload() tea.Cmd {
	v.loading = true
	ctx, svc := v.ctx, v.service
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentsLoaded{Err: ErrNoDocumentService}
		}
		docs, err := svc.List(ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

func (v *View) remove(id string) tea.Cmd {
	ctx, svc := v.ctx, v.service
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentRemoved{DocumentID: id, Err: ErrNoDocumentService}
		}
		return messages.DocumentRemoved{DocumentID: id, Err: svc.Remove(ctx, id)}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.DocumentsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.setDocuments(msg.Documents)
		}

	case messages.DocumentRemoved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.reload()

	case messages.ErrorOccurred:
		v.err = msg.Err

	case tea.KeyMsg:
		if v.confirming != "" {
			return v.answerConfirm(msg)
		}
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewMenu} }
	case key.Matches(msg, v.keys.Reload):
		return v, v.reload()
	case key.Matches(msg, v.keys.Select):
		if doc := v.SelectedDocument(); doc != nil {
			selected := *doc
			return v, func() tea.Msg { return messages.DocumentSelected{Document: selected} }
		}
		return v, nil
	case key.Matches(msg, v.keys.Remove):
		if doc := v.SelectedDocument(); doc != nil {
			v.confirming = doc.ID
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *View) answerConfirm(msg tea.KeyMsg) (*View, tea.Cmd) {
	id := v.confirming
	v.confirming = ""
	if msg.String() == "y" || msg.String() == "Y" {
		return v, v.remove(id)
	}
	return v, nil
}

func (v *View) setDocuments(docs []domain.Document) {
	v.documents = docs
	rows := make([]table.Row, 0, len(docs))
	for i := range docs {
		rows = append(rows, v.row(&docs[i]))
	}
	v.table.SetRows(rows)
	// SetCursor on an empty table leaves the cursor at -1.
	if len(rows) > 0 {
		v.table.SetCursor(min(max(v.table.Cursor(), 0), len(rows)-1))
	}
}

func (v *View) row(doc *domain.Document) table.Row {
	name := doc.Name
	if name == "" {
		name = doc.ID
	}
	chunks := "-"
	if doc.State == domain.StateIndexed {
		chunks = strconv.Itoa(doc.ChunkCount)
	}
	updated := ""
	if !doc.UpdatedAt.IsZero() {
		updated = doc.UpdatedAt.Local().Format(updatedLayout)
	}
	return table.Row{name, doc.State.String(), chunks, updated}
}

// layout sizes the name column to whatever the fixed columns leave over.
func (v *View) layout(width int) {
	v.width = width
	nameWidth := max(width-stateWidth-chunksWidth-updatedWidth-8, minNameWidth)
	v.table.SetColumns([]table.Column{
		{Title: "Name", Width: nameWidth},
		{Title: "State", Width: stateWidth},
		{Title: "Chunks", Width: chunksWidth},
		{Title: "Updated", Width: updatedWidth},
	})
	v.table.SetWidth(width)
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents (%d)", len(v.documents))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("No documents uploaded. Use 'docqa upload <path>' to add some."))
	default:
		b.WriteString(v.table.View())
		if doc := v.SelectedDocument(); doc != nil && doc.Error != "" {
			b.WriteString("\n")
			b.WriteString(v.styles.Error.Render(doc.Error))
		}
	}

	b.WriteString("\n\n")
	if doc := v.confirmTarget(); doc != nil {
		b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Remove %s and its chunks? [y/N]", doc.Name)))
		return b.String()
	}
	b.WriteString(v.styles.Help.Render("[↑/↓] move  [enter] open  [d] remove  [r] reload  [esc] back"))
	return b.String()
}

func (v *View) confirmTarget() *domain.Document {
	if v.confirming == "" {
		return nil
	}
	for i := range v.documents {
		if v.documents[i].ID == v.confirming {
			return &v.documents[i]
		}
	}
	return nil
}

// SetDimensions resizes the table to fit the terminal.
func (v *View) SetDimensions(width, height int) {
	v.layout(width)
	v.table.SetHeight(max(height-chromeLines, 3))
	v.ready = true
}

// Documents returns the loaded documents.
func (v *View) Documents() []domain.Document {
	return v.documents
}

// SelectedIndex returns the cursor row.
func (v *View) SelectedIndex() int {
	return v.table.Cursor()
}

// SelectedDocument returns the document under the cursor, or nil.
func (v *View) SelectedDocument() *domain.Document {
	c := v.table.Cursor()
	if c < 0 || c >= len(v.documents) {
		return nil
	}
	return &v.documents[c]
}

// Confirming reports whether a removal is waiting for confirmation.
func (v *View) Confirming() bool {
	return v.confirming != ""
}

// Loading reports whether a load is in progress.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
