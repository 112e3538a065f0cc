// Package menu is the start screen of the chat TUI.
package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Selecting it either switches view or quits.
type Item struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

// View is the start menu.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	items  []Item
	cursor int
	ready  bool
}

// NewView builds the menu. Documents is offered only when withDocuments is set.
func NewView(s *styles.Styles, withDocuments bool) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	items := []Item{{Label: "Chat", Hint: "ask questions about your documents", View: messages.ViewChat}}
	if withDocuments {
		items = append(items, Item{Label: "Documents", Hint: "browse and remove uploads", View: messages.ViewDocuments})
	}
	items = append(items,
		Item{Label: "Help", Hint: "key bindings", View: messages.ViewHelp},
		Item{Label: "Quit", Quit: true},
	)

	return &View{styles: s, keys: keymap.DefaultKeyMap(), items: items}
}

// Init implements the view lifecycle.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor and activates entries. Navigation wraps around,
// and the digits 1-9 activate an entry directly.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.ready = true

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Up):
			v.cursor = (v.cursor - 1 + len(v.items)) % len(v.items)
		case key.Matches(msg, v.keys.Down):
			v.cursor = (v.cursor + 1) % len(v.items)
		case key.Matches(msg, v.keys.Select):
			return v, v.activate(v.cursor)
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		default:
			if n, ok := digit(msg); ok && n <= len(v.items) {
				v.cursor = n - 1
				return v, v.activate(v.cursor)
			}
		}
	}
	return v, nil
}

func digit(msg tea.KeyMsg) (int, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return 0, false
	}
	r := msg.Runes[0]
	if r < '1' || r > '9' {
		return 0, false
	}
	return int(r - '0'), true
}

func (v *View) activate(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg {
		return messages.ViewChanged{View: item.View}
	}
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("docqa"))
	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render("Ask questions about your documents"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := fmt.Sprintf("%d  %s", i+1, item.Label)
		if i == v.cursor {
			b.WriteString(v.styles.Selected.Render("> " + label))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + label))
		}
		if item.Hint != "" {
			b.WriteString(v.styles.Muted.Render("  " + item.Hint))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] move  [enter/1-9] open  [q] quit"))
	return b.String()
}

// SetDimensions marks the menu as sized; the layout does not depend on size.
func (v *View) SetDimensions(_, _ int) {
	v.ready = true
}

// Items returns the menu entries.
func (v *View) Items() []Item {
	return v.items
}

// Selected returns the cursor position.
func (v *View) Selected() int {
	return v.cursor
}
