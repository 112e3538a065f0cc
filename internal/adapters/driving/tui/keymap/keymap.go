// Package keymap holds the TUI key bindings and the help sets shown for
// each screen.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap is the full set of bindings. Views read the fields they handle.
type KeyMap struct {
	Quit, Help, Back key.Binding

	// Chat.
	Send, Clear, PageUp, PageDown key.Binding

	// Lists.
	Up, Down, Select, Remove, Reload key.Binding
}

func bind(help string, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns the bindings used by every view.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: bind("q", "quit", "q", "ctrl+c"),
		Help: bind("?", "help", "?"),
		Back: bind("esc", "back", "esc"),

		Send:     bind("enter", "send", "enter"),
		Clear:    bind("ctrl+l", "clear", "ctrl+l"),
		PageUp:   bind("pgup", "scroll up", "pgup"),
		PageDown: bind("pgdn", "scroll down", "pgdown"),

		Up:     bind("↑/k", "up", "up", "k"),
		Down:   bind("↓/j", "down", "down", "j"),
		Select: bind("enter", "select", "enter"),
		Remove: bind("d", "remove", "d"),
		Reload: bind("r", "reload", "r"),
	}
}

// Set is a fixed group of bindings that satisfies help.KeyMap.
type Set struct {
	Short []key.Binding
	Full  [][]key.Binding
}

var _ help.KeyMap = Set{}

func (s Set) ShortHelp() []key.Binding  { return s.Short }
func (s Set) FullHelp() [][]key.Binding { return s.Full }

// Idle is shown when nothing is in progress.
func (k *KeyMap) Idle() Set {
	return Set{Short: []key.Binding{k.Quit, k.Help}}
}

// Chat is shown while a conversation is open.
func (k *KeyMap) Chat() Set {
	return Set{Short: []key.Binding{k.Send, k.Clear, k.PageUp, k.Back}}
}

// All groups every binding by the screen that uses it.
func (k *KeyMap) All() Set {
	return Set{
		Short: []key.Binding{k.Help, k.Quit},
		Full: [][]key.Binding{
			{k.Up, k.Down, k.Select},
			{k.Send, k.Clear, k.PageUp, k.PageDown},
			{k.Remove, k.Reload, k.Back},
			{k.Help, k.Quit},
		},
	}
}

// Matches reports whether the key string is one of the binding's keys.
func Matches(keyStr string, binding key.Binding) bool {
	return binding.Enabled() && slices.Contains(binding.Keys(), keyStr)
}
