package keys

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Command is an abstract editor command produced from a raw key. Hosts may
// define their own commands next to the ones below.
type Command string

const (
	None         Command = ""
	CommitEntity Command = "add-entity"
	UpEntity     Command = "up-entity"
	DownEntity   Command = "down-entity"
	EscapeEntity Command = "escape-entity"
)

// HandleResult tells whether a command was consumed
type HandleResult int

const (
	NotHandled HandleResult = iota
	Handled
)

// BindingFunc maps a raw key to a command, returning None for keys it ignores
type BindingFunc func(msg tea.KeyMsg) Command

// CommandHandler consumes a command
type CommandHandler func(cmd Command) HandleResult

// KeyMap holds the suggestion list bindings
type KeyMap struct {
	Commit key.Binding
	Up     key.Binding
	Down   key.Binding
	Escape key.Binding
}

// DefaultKeyMap binds enter and tab to commit, the arrows to navigation and
// esc to dismissal
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Commit: key.NewBinding(
			key.WithKeys("enter", "tab"),
			key.WithHelp("enter/tab", "insert suggestion"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous suggestion"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next suggestion"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss suggestions"),
		),
	}
}

// Map returns the command bound to msg, or None
func (k KeyMap) Map(msg tea.KeyMsg) Command {
	switch {
	case key.Matches(msg, k.Commit):
		return CommitEntity
	case key.Matches(msg, k.Up):
		return UpEntity
	case key.Matches(msg, k.Down):
		return DownEntity
	case key.Matches(msg, k.Escape):
		return EscapeEntity
	}
	return None
}

// Owns reports whether cmd is one of the suggestion list commands
func Owns(cmd Command) bool {
	switch cmd {
	case CommitEntity, UpEntity, DownEntity, EscapeEntity:
		return true
	}
	return false
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Commit, k.Up, k.Down, k.Escape}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Commit, k.Escape}, {k.Up, k.Down}}
}
