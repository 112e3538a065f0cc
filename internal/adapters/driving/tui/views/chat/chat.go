// Package chat provides the question and answer conversation view for the TUI.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ErrNoQueryService is returned when a question is sent without a query service.
var ErrNoQueryService = errors.New("query service not available")

const timeLayout = "15:04"

// Role identifies who wrote a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in the transcript.
type Turn struct {
	Role    Role
	Text    string
	Sources []string
	Outcome domain.AnswerOutcome
	At      time.Time
}

// View is the chat view: a scrolling transcript above an input line.
// The transcript lives only as long as the view.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.ChatInput
	viewport  viewport.Model
	statusbar *status.Bar

	queryService driving.QueryService
	ctx          context.Context
	now          func() time.Time

	turns   []Turn
	pending bool
	width   int
	height  int
	ready   bool
	err     error
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, queryService driving.QueryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:       s,
		keymap:       km,
		input:        input.NewChatInput(s),
		viewport:     viewport.New(80, 16),
		statusbar:    status.NewBar(s, km),
		queryService: queryService,
		ctx:          context.Background(),
		now:          time.Now,
		width:        80,
		height:       24,
	}
}

// WithContext sets the context used for questions.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.input.Focus())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.pending = false
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.statusbar, cmd = v.statusbar.Update(msg)
	cmds = append(cmds, cmd)
	v.input, cmd = v.input.Update(msg)
	cmds = append(cmds, cmd)
	return v, tea.Batch(cmds...)
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(keyStr, v.keymap.Clear):
		v.Clear()
		v.statusbar.SetMessage("Transcript cleared")
		return v, func() tea.Msg { return messages.TranscriptCleared{} }

	case keymap.Matches(keyStr, v.keymap.PageUp), keymap.Matches(keyStr, v.keymap.PageDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case keymap.Matches(keyStr, v.keymap.Send):
		return v, v.submit()
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit appends the typed question and asks the query service for a reply.
// Only one question is in flight at a time.
func (v *View) submit() tea.Cmd {
	question := v.input.Question()
	if question == "" || v.pending {
		return nil
	}

	at := v.now()
	v.turns = append(v.turns, Turn{Role: RoleUser, Text: question, At: at})
	v.input.Reset()
	v.pending = true
	v.err = nil
	v.refresh()

	return tea.Batch(v.statusbar.StartThinking(), v.ask(question))
}

func (v *View) ask(question string) tea.Cmd {
	ctx, svc, now := v.ctx, v.queryService, v.now
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoQueryService}
		}
		answer, err := svc.Answer(ctx, question, domain.QueryOptions{})
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err, At: now()}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.pending = false

	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}
	if msg.Answer == nil {
		return
	}

	v.err = nil
	v.turns = append(v.turns, Turn{
		Role:    RoleAssistant,
		Text:    answerBody(msg.Answer),
		Sources: msg.Answer.Sources,
		Outcome: msg.Answer.Outcome,
		At:      msg.At,
	})
	v.statusbar.SetState(status.StateChat)
	v.statusbar.SetMessage("")
	v.statusbar.SetTurnCount(len(v.turns))
	v.refresh()
}

// answerBody drops the Sources line from Text since the view renders
// sources separately.
func answerBody(a *domain.Answer) string {
	if a.Outcome == domain.OutcomeAnswered && a.Answer != "" {
		return a.Answer
	}
	return a.Text
}

// Clear empties the transcript.
func (v *View) Clear() {
	v.turns = nil
	v.err = nil
	v.statusbar.Clear()
	v.statusbar.SetState(status.StateChat)
	v.refresh()
}

// refresh re-renders the transcript into the viewport and scrolls to the end.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Ask a question about your uploaded documents.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.viewport.Width-2, 20))
	blocks := make([]string, 0, len(v.turns))
	for i := range v.turns {
		blocks = append(blocks, v.renderTurn(&v.turns[i], wrap))
	}
	return strings.Join(blocks, "\n\n")
}

func (v *View) renderTurn(turn *Turn, wrap lipgloss.Style) string {
	var b strings.Builder

	label := v.styles.UserLabel.Render("You")
	if turn.Role == RoleAssistant {
		label = v.styles.AssistantLabel.Render("Assistant")
	}
	b.WriteString(label)
	b.WriteString(" ")
	b.WriteString(v.styles.Timestamp.Render(turn.At.Format(timeLayout)))
	b.WriteString("\n")

	body := wrap.Render(turn.Text)
	if turn.Role == RoleAssistant && turn.Outcome != domain.OutcomeAnswered {
		body = v.styles.Fallback.Render(body)
	}
	b.WriteString(body)

	if len(turn.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Sources.Render("Sources: " + strings.Join(turn.Sources, ", ")))
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("docqa chat"),
		v.viewport.View(),
		v.input.View(),
		v.statusbar.View(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions and resizes the transcript.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)

	// Title, input box and status bar.
	reserved := 1 + v.input.Height() + 1
	v.viewport.Width = width
	v.viewport.Height = max(height-reserved, 3)
	v.refresh()
}

// Turns returns the transcript.
func (v *View) Turns() []Turn {
	return v.turns
}

// Pending reports whether a question is awaiting its answer.
func (v *View) Pending() bool {
	return v.pending
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Input returns the input component.
func (v *View) Input() *input.ChatInput {
	return v.input
}
