// Package doccontent shows the decoded text of one uploaded document.
package doccontent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ErrNoDocumentService is reported when content is requested without a service.
var ErrNoDocumentService = errors.New("document service not available")

const (
	minWrapWidth = 20

	// title, rule, blank line, footer, help
	chromeLines = 5
)

// View is a scrollable reader for a document's text.
type View struct {
	styles  *styles.Styles
	service driving.DocumentService
	ctx     context.Context

	viewport viewport.Model
	document *domain.Document
	content  string
	width    int
	loading  bool
	err      error
}

// NewView creates a document reader. A nil style set falls back to the defaults.
func NewView(s *styles.Styles, service driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:   s,
		service:  service,
		ctx:      context.Background(),
		viewport: viewport.New(0, 0),
	}
}

// WithContext sets the context for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init implements the view lifecycle; content loads on SetDocument.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetDocument switches to doc and returns the command that fetches its text.
func (v *View) SetDocument(doc *domain.Document) tea.Cmd {
	v.document = doc
	v.content = ""
	v.err = nil
	v.loading = true
	v.refresh()

	ctx, svc := v.ctx, v.service
	return func() tea.Msg {
		if doc == nil || svc == nil {
			return messages.DocumentContentLoaded{Err: ErrNoDocumentService}
		}
		content, err := svc.GetContent(ctx, doc.ID)
		return messages.DocumentContentLoaded{DocumentID: doc.ID, Content: content, Err: err}
	}
}

// Update handles messages for the reader.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.DocumentContentLoaded:
		// A late reply for a document the user already left.
		if v.document != nil && msg.DocumentID != "" && msg.DocumentID != v.document.ID {
			return v, nil
		}
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.content = msg.Content
		}
		v.refresh()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewDocuments}
			}
		case "g", "home":
			v.viewport.GotoTop()
			return v, nil
		case "G", "end":
			v.viewport.GotoBottom()
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// SetDimensions resizes the reader and re-wraps the text.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.viewport.Width = max(width, 0)
	v.viewport.Height = max(height-chromeLines, 1)
	v.refresh()
}

func (v *View) refresh() {
	v.viewport.SetContent(wrap(v.content, v.width-4))
	v.viewport.GotoTop()
}

// wrap breaks every line of text at width runes; words are not kept whole
// because document text often has long unbroken tokens such as URLs.
func wrap(text string, width int) string {
	if text == "" {
		return ""
	}
	width = max(width, minWrapWidth)

	var b strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		runes := []rune(line)
		for len(runes) > width {
			b.WriteString(string(runes[:width]))
			b.WriteByte('\n')
			runes = runes[width:]
		}
		b.WriteString(string(runes))
	}
	return b.String()
}

// View renders the reader.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(v.title()))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(strings.Repeat("─", max(min(v.width-4, 60), 0))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading content..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.content == "":
		b.WriteString(v.styles.Muted.Render("(No content)"))
	default:
		b.WriteString(v.viewport.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(v.position()))
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back"))
	return b.String()
}

func (v *View) title() string {
	if v.document == nil {
		return "Document Content"
	}
	title := v.document.Name
	if title == "" {
		title = v.document.ID
	}
	if v.document.MIMEType != "" {
		title += " (" + v.document.MIMEType + ")"
	}
	return title
}

// position reports the visible line range and scroll percentage.
func (v *View) position() string {
	total := v.viewport.TotalLineCount()
	first := v.viewport.YOffset + 1
	last := min(v.viewport.YOffset+v.viewport.Height, total)
	return fmt.Sprintf("  [%3.f%%] lines %d-%d of %d", v.viewport.ScrollPercent()*100, first, last, total)
}

// Document returns the document being shown.
func (v *View) Document() *domain.Document {
	return v.document
}

// Content returns the loaded text.
func (v *View) Content() string {
	return v.content
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
