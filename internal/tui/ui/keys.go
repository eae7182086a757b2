package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap contains the key bindings of the wait view.
type KeyMap struct {
	Refresh key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "check now"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "stop waiting"),
		),
	}
}

// IsQuit returns true if the key message stops the view.
func (k KeyMap) IsQuit(msg tea.KeyMsg) bool {
	return key.Matches(msg, k.Quit)
}

// IsRefresh returns true if the key message asks for an immediate check.
func (k KeyMap) IsRefresh(msg tea.KeyMsg) bool {
	return key.Matches(msg, k.Refresh)
}

// HelpLine renders the bindings as a one-line hint.
func (k KeyMap) HelpLine() string {
	r, q := k.Refresh.Help(), k.Quit.Help()
	return r.Key + " " + r.Desc + " • " + q.Key + " " + q.Desc
}
