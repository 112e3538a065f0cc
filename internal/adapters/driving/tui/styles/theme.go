// Package styles holds the TUI palette and the lipgloss styles built from it.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the palette. Each entry adapts to light and dark terminals.
type Theme struct {
	Accent    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Text      lipgloss.AdaptiveColor
	Faint     lipgloss.AdaptiveColor
	Bar       lipgloss.AdaptiveColor
	Good      lipgloss.AdaptiveColor
	Caution   lipgloss.AdaptiveColor
	Bad       lipgloss.AdaptiveColor
	Edge      lipgloss.AdaptiveColor
}

func adaptive(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// DefaultTheme returns the built-in palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:    adaptive("#1D4ED8", "#60A5FA"),
		Highlight: adaptive("#0F766E", "#2DD4BF"),
		Text:      adaptive("#111827", "#E5E7EB"),
		Faint:     adaptive("#6B7280", "#9CA3AF"),
		Bar:       adaptive("#E5E7EB", "#1F2937"),
		Good:      adaptive("#15803D", "#4ADE80"),
		Caution:   adaptive("#B45309", "#FBBF24"),
		Bad:       adaptive("#B91C1C", "#F87171"),
		Edge:      adaptive("#D1D5DB", "#374151"),
	}
}

// Styles are the rendered styles every view draws with.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style

	// Chat transcript.
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Timestamp      lipgloss.Style
	Sources        lipgloss.Style
	Fallback       lipgloss.Style
}

// NewStyles derives the styles from t, or from DefaultTheme when t is nil.
func NewStyles(t *Theme) *Styles {
	if t == nil {
		t = DefaultTheme()
	}

	fg := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	framed := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Edge)

	return &Styles{
		theme: t,

		Title:    fg(t.Accent).Bold(true),
		Subtitle: fg(t.Faint).Italic(true),
		Normal:   fg(t.Text),
		Muted:    fg(t.Faint),
		Selected: fg(t.Accent).Bold(true).Underline(true),

		Error:   fg(t.Bad),
		Success: fg(t.Good),
		Warning: fg(t.Caution),

		InputField: framed.Padding(0, 1),
		StatusBar:  fg(t.Faint).Background(t.Bar).Padding(0, 1),
		Help:       fg(t.Faint),
		Border:     framed,

		UserLabel:      fg(t.Highlight).Bold(true),
		AssistantLabel: fg(t.Accent).Bold(true),
		Timestamp:      fg(t.Faint).Faint(true),
		Sources:        fg(t.Good),
		Fallback:       fg(t.Caution).Italic(true),
	}
}

// DefaultStyles is NewStyles(DefaultTheme()).
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}
