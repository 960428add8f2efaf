package ui

import (
	"context"
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"tagcomplete/internal/autocomplete"
	"tagcomplete/internal/config"
	"tagcomplete/internal/document"
	"tagcomplete/internal/domain"
	"tagcomplete/internal/eventbus"
	"tagcomplete/internal/keys"
	"tagcomplete/internal/trigger"
	"tagcomplete/internal/ui/views"
)

// Model is the demo editor: a document, the autocomplete engine on top of it,
// and the terminal plumbing around both
type Model struct {
	bus      eventbus.EventBus
	config   *config.Config
	doc      *document.Document
	triggers *trigger.Registry
	ac       *autocomplete.Model

	width   int
	height  int
	focused bool
	help    help.Model
	keys    editorKeyMap

	status      string
	statusError bool
	inPagerMode bool // tracks if we're currently in pager mode

	// pending is the command a host key command asked for during HandleKey
	pending tea.Cmd

	renderer     *views.Renderer
	helpRenderer *HelpRenderer
	helpOps      *HelpOps

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model editing doc
func NewModel(ctx context.Context, bus eventbus.EventBus, cfg *config.Config, doc *document.Document, triggers *trigger.Registry) (*Model, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}

	m := &Model{
		bus:          bus,
		config:       cfg,
		doc:          doc,
		triggers:     triggers,
		focused:      true,
		help:         help.New(),
		keys:         defaultEditorKeyMap(),
		renderer:     views.NewRenderer(),
		helpRenderer: NewHelpRenderer(),
		helpOps:      NewHelpOps(nil),
	}

	m.ac = autocomplete.New(doc, autocomplete.Options{
		Triggers:           triggers,
		Bus:                bus,
		Focused:            true,
		LookupTimeout:      timeout,
		MaxSuggestions:     cfg.Engine.MaxSuggestions,
		PruneRemovedBlocks: cfg.Engine.PruneRemovedBlocks,
		KeyBindingFn:       m.keys.bind,
		HandleKeyCommand:   m.handleCommand,
		PositionFunc:       m.caretPosition,
		Context:            ctx,
	})
	return m, nil
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.helpOps = NewHelpOps(p)
}

// Init installs the engine on the document
func (m *Model) Init() tea.Cmd {
	return m.ac.Init()
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.FocusMsg:
		m.focused = true
		return m, m.ac.Update(msg)

	case tea.BlurMsg:
		m.focused = false
		return m, m.ac.Update(msg)

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case autocomplete.CommittedMsg:
		m.setStatus(fmt.Sprintf("inserted %s", msg.Result.Text), false)

	case EventMsg:
		m.handleEvent(msg.Event)

	case helpPagerMsg:
		if msg.err != nil {
			log.Printf("Help pager failed: %v", msg.err)
			m.setStatus(fmt.Sprintf("help: %v", msg.err), true)
		}

	case pauseRenderingMsg:
		m.inPagerMode = true

	case resumeRenderingMsg:
		m.inPagerMode = false

	default:
		// lookup results and anything else the engine understands
		return m, m.ac.Update(msg)
	}

	return m, nil
}

// handleKey offers the key to the engine first; what it leaves is editing
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	consumed, cmd := m.ac.HandleKey(msg)
	if consumed {
		pending := m.pending
		m.pending = nil
		return tea.Batch(cmd, pending)
	}

	if !m.edit(msg) {
		return nil
	}
	return m.ac.Update(autocomplete.DocumentChangedMsg{})
}

// handleCommand runs the host commands the engine passes through
func (m *Model) handleCommand(cmd keys.Command) keys.HandleResult {
	switch cmd {
	case CommandQuit:
		m.pending = tea.Quit
	case CommandShowHelp:
		m.pending = m.showHelp()
	default:
		return keys.NotHandled
	}
	return keys.Handled
}

// edit applies default editing behaviour and reports whether the document changed
func (m *Model) edit(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyRunes:
		m.doc.InsertText(string(msg.Runes))
	case tea.KeySpace:
		m.doc.InsertText(" ")
	case tea.KeyBackspace:
		m.doc.Backspace()
	case tea.KeyDelete:
		m.doc.Delete()
	case tea.KeyEnter:
		m.doc.SplitBlock()
	case tea.KeyLeft:
		m.doc.Move(-1, false)
	case tea.KeyRight:
		m.doc.Move(1, false)
	case tea.KeyShiftLeft:
		m.doc.Move(-1, true)
	case tea.KeyShiftRight:
		m.doc.Move(1, true)
	case tea.KeyUp:
		m.doc.MoveLine(-1)
	case tea.KeyDown:
		m.doc.MoveLine(1)
	case tea.KeyHome:
		m.doc.Home()
	case tea.KeyEnd:
		m.doc.End()
	default:
		return false
	}
	return true
}

// handleMouse commits clicked suggestions and places the caret on clicked text
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}

	row, ok := m.frame().RowAt(msg.Y)
	if !ok {
		return nil
	}

	switch row.Kind {
	case views.RowItem:
		return m.ac.Update(autocomplete.ItemClickedMsg{Index: row.Item})

	case views.RowBlock:
		blocks := m.doc.Blocks()
		if row.Block >= len(blocks) {
			return nil
		}
		b := blocks[row.Block]
		off := msg.X - views.GutterWidth
		if off < 0 {
			off = 0
		}
		if off > b.Len() {
			off = b.Len()
		}
		if err := m.doc.SetSelection(domain.Caret(domain.Cursor{BlockID: b.ID, Offset: off})); err != nil {
			log.Printf("Could not place caret: %v", err)
			return nil
		}
		m.focused = true
		m.ac.Update(tea.FocusMsg{})
		return m.ac.Update(autocomplete.DocumentChangedMsg{})
	}
	return nil
}

func (m *Model) handleEvent(e eventbus.DomainEvent) {
	switch e := e.(type) {
	case domain.LookupFailedEvent:
		m.setStatus(fmt.Sprintf("%s lookup failed: %v", e.TriggerType, e.Err), true)
	case domain.ConfigLoadedEvent:
		m.setStatus(fmt.Sprintf("loaded %s", e.Path), false)
	}
}

func (m *Model) setStatus(s string, isError bool) {
	m.status = s
	m.statusError = isError
}

// showHelp returns a command that shows help in the pager, pausing rendering
// while the pager owns the terminal
func (m *Model) showHelp() tea.Cmd {
	content := m.helpRenderer.Render([]HelpSection{
		{Title: "Suggestions", Bindings: m.ac.KeyMap().ShortHelp()},
		{Title: "Editing", Bindings: []key.Binding{m.keys.Move, m.keys.Line, m.keys.Select, m.keys.Edges, m.keys.Newline}},
		{Title: "Other", Bindings: []key.Binding{m.keys.Help, m.keys.Quit}},
	}, m.triggers.All())
	program := m.program
	ops := m.helpOps

	return func() tea.Msg {
		if program != nil {
			program.Send(pauseRenderingMsg{})
			defer program.Send(resumeRenderingMsg{})
		}
		return helpPagerMsg{err: ops.ShowHelpInPager(content)}
	}
}

// caretPosition is where the suggestion list hangs, in screen cells
func (m *Model) caretPosition() *domain.Position {
	sel := m.doc.Selection()
	for i, b := range m.doc.Blocks() {
		if b.ID == sel.Focus.BlockID {
			return &domain.Position{X: views.GutterWidth + sel.Focus.Offset, Y: views.HeaderRows + i}
		}
	}
	return nil
}

// frame builds the current screen
func (m *Model) frame() views.Frame {
	sel := m.doc.Selection()
	dec := m.doc.Decorator()

	state := views.ViewState{
		Width:   m.width,
		Height:  m.height,
		Title:   "tagcomplete",
		Status:  m.status,
		IsError: m.statusError,
		Focused: m.focused,
		List:    m.ac.View(),
	}

	active := m.ac.Active()
	if m.ac.Visible() {
		state.ListItems = len(active.Suggestions)
	}
	for i, b := range m.doc.Blocks() {
		line := views.BlockLine{Text: b.Text, Caret: -1}
		if dec != nil {
			line.Spans = dec.Decorate(m.doc, b)
		}
		if b.ID == sel.Focus.BlockID {
			line.Caret = sel.Focus.Offset
			if !sel.Collapsed() && sel.Anchor.BlockID == b.ID {
				r := domain.TextRange{Start: sel.Anchor.Offset, End: sel.Focus.Offset}
				if r.Start > r.End {
					r.Start, r.End = r.End, r.Start
				}
				line.Selected = &r
			}
		}
		if active != nil && active.Range.BlockID == b.ID {
			state.ListUnder = i
			state.ListX = views.GutterWidth
			if active.Position != nil {
				state.ListX = active.Position.X
			}
		}
		state.Blocks = append(state.Blocks, line)
	}

	if m.config.UI.ShowHelp {
		state.Help = m.help.View(helpKeys{engaged: m.ac.Engaged(), list: m.ac.KeyMap(), editor: m.keys})
	}
	return m.renderer.Render(state)
}

// View renders the UI
func (m *Model) View() string {
	if m.inPagerMode {
		return ""
	}
	return m.frame().String()
}

// Document returns the edited document
func (m *Model) Document() *document.Document {
	return m.doc
}

// Engine returns the autocomplete engine
func (m *Model) Engine() *autocomplete.Model {
	return m.ac
}
