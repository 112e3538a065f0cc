// Package status renders the one-line bar under the chat transcript.
package status

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
)

// State selects what the left side of the bar shows.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
	StateChat     State = "chat"
)

// Bar shows progress or the last outcome on the left and key hints on
// the right.
type Bar struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	help      help.Model
	spinner   spinner.Model
	state     State
	message   string
	turnCount int
	width     int
}

// NewBar falls back to the default styles and bindings for nil arguments.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	h := help.New()
	h.ShortSeparator = " · "
	h.Styles.ShortKey = s.Normal
	h.Styles.ShortDesc = s.Muted
	h.Styles.ShortSeparator = s.Muted

	return &Bar{
		styles:  s,
		keymap:  km,
		help:    h,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Subtitle)),
		state:   StateReady,
		width:   80,
	}
}

func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update only consumes spinner ticks, and only while thinking.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || s.state != StateThinking {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(tick)
	return s, cmd
}

// StartThinking returns the first spinner tick.
func (s *Bar) StartThinking() tea.Cmd {
	s.state, s.message = StateThinking, ""
	return s.spinner.Tick
}

func (s *Bar) View() string {
	left := s.status()
	inner := s.width - s.styles.StatusBar.GetHorizontalFrameSize()

	// The hints get whatever the status text leaves; help truncates them.
	s.help.Width = max(inner-lipgloss.Width(left)-1, 1)
	hints := s.keymap.Chat()
	if s.state == StateReady {
		hints = s.keymap.Idle()
	}
	right := s.help.View(hints)

	gap := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)
	row := lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.NewStyle().Width(gap).Render(""), right)
	return s.styles.StatusBar.Width(s.width).Render(row)
}

func (s *Bar) status() string {
	switch s.state {
	case StateThinking:
		return s.spinner.View() + s.styles.Muted.Render(" Thinking...")
	case StateError:
		if s.message == "" {
			return s.styles.Error.Render("Error")
		}
		return s.styles.Error.Render("Error: " + s.message)
	case StateChat:
		switch {
		case s.message != "":
			return s.styles.Normal.Render(s.message)
		case s.turnCount > 0:
			return s.styles.Normal.Render(fmt.Sprintf("%d messages", s.turnCount))
		}
	case StateReady:
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) SetState(state State) {
	s.state = state
}

func (s *Bar) State() State {
	return s.state
}

func (s *Bar) SetMessage(message string) {
	s.message = message
}

func (s *Bar) Message() string {
	return s.message
}

// SetTurnCount sets the number of transcript messages shown in chat state.
func (s *Bar) SetTurnCount(count int) {
	s.turnCount = count
}

func (s *Bar) TurnCount() int {
	return s.turnCount
}

func (s *Bar) SetWidth(width int) {
	s.width = width
}

func (s *Bar) Width() int {
	return s.width
}

// Clear returns to the ready state with no message or count.
func (s *Bar) Clear() {
	s.state, s.message, s.turnCount = StateReady, "", 0
}
