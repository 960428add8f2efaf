package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"tagcomplete/internal/keys"
)

// Host commands layered under the suggestion list commands
const (
	CommandShowHelp keys.Command = "show-help"
	CommandQuit     keys.Command = "quit"
)

// editorKeyMap holds the editor bindings
type editorKeyMap struct {
	Help    key.Binding
	Quit    key.Binding
	Newline key.Binding
	Move    key.Binding
	Line    key.Binding
	Select  key.Binding
	Edges   key.Binding
}

func defaultEditorKeyMap() editorKeyMap {
	return editorKeyMap{
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Newline: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "split block"),
		),
		Move: key.NewBinding(
			key.WithKeys("left", "right"),
			key.WithHelp("←/→", "move caret"),
		),
		Line: key.NewBinding(
			key.WithKeys("up", "down"),
			key.WithHelp("↑/↓", "previous/next block"),
		),
		Select: key.NewBinding(
			key.WithKeys("shift+left", "shift+right"),
			key.WithHelp("shift+←/→", "select"),
		),
		Edges: key.NewBinding(
			key.WithKeys("home", "end"),
			key.WithHelp("home/end", "start/end of block"),
		),
	}
}

// bind maps the host's own keys to commands
func (k editorKeyMap) bind(msg tea.KeyMsg) keys.Command {
	switch {
	case key.Matches(msg, k.Help):
		return CommandShowHelp
	case key.Matches(msg, k.Quit):
		return CommandQuit
	}
	return keys.None
}

// helpKeys shows the list bindings while the list is up and the editor
// bindings otherwise
type helpKeys struct {
	engaged bool
	list    keys.KeyMap
	editor  editorKeyMap
}

// ShortHelp implements help.KeyMap
func (h helpKeys) ShortHelp() []key.Binding {
	if h.engaged {
		return append(h.list.ShortHelp(), h.editor.Quit)
	}
	return []key.Binding{h.editor.Move, h.editor.Newline, h.editor.Help, h.editor.Quit}
}

// FullHelp implements help.KeyMap
func (h helpKeys) FullHelp() [][]key.Binding {
	return append(h.list.FullHelp(),
		[]key.Binding{h.editor.Move, h.editor.Line, h.editor.Select, h.editor.Edges},
		[]key.Binding{h.editor.Newline, h.editor.Help, h.editor.Quit},
	)
}
