package autocomplete

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"tagcomplete/internal/commit"
	"tagcomplete/internal/decorate"
	"tagcomplete/internal/domain"
	"tagcomplete/internal/keys"
	"tagcomplete/internal/match"
	"tagcomplete/internal/selection"
	"tagcomplete/internal/suggest"
)

// Reasons attached to MatchClearedEvent
const (
	ReasonNoCaret   = "caret"
	ReasonNoMatch   = "no-match"
	ReasonNoTrigger = "no-trigger"
	ReasonEscape    = "escape"
	ReasonCommit    = "commit"
)

// Model is the autocomplete engine as a Bubble Tea component. It owns the
// match table and the selection state; every mutation happens inside Update
// or HandleKey on the program's event loop.
type Model struct {
	doc      domain.Document
	opts     Options
	ctx      context.Context
	triggers []domain.TriggerConfig

	scanner *match.Scanner
	table   *match.Table
	machine *selection.Machine
	fetcher *suggest.Fetcher
	keyMap  keys.KeyMap

	strategies []domain.Strategy
	installed  domain.Decorator
}

// New creates an engine for doc
func New(doc domain.Document, opts Options) *Model {
	m := &Model{
		doc:     doc,
		opts:    opts,
		ctx:     opts.Context,
		scanner: match.NewScanner(),
		table:   match.NewTable(),
		machine: selection.NewMachine(opts.Focused),
		fetcher: suggest.NewFetcher(opts.LookupTimeout, opts.MaxSuggestions),
		keyMap:  keys.DefaultKeyMap(),
	}
	if m.ctx == nil {
		m.ctx = context.Background()
	}
	if opts.KeyMap != nil {
		m.keyMap = *opts.KeyMap
	}
	for _, t := range opts.Triggers.All() {
		m.triggers = append(m.triggers, withDefaults(t))
	}
	m.strategies = decorate.Bind(m.triggers, m.table)
	return m
}

// Init installs the decorator and resolves the initial match
func (m *Model) Init() tea.Cmd {
	m.installDecorator()
	return m.refresh()
}

// Update handles document, focus, click and lookup messages
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case DocumentChangedMsg:
		if msg.Document != nil && msg.Document != m.doc {
			m.doc = msg.Document
			m.installed = nil
			m.installDecorator()
		}
		if m.doc.Decorator() == nil {
			m.installDecorator()
		}
		return m.refresh()

	case tea.FocusMsg:
		m.machine.SetFocused(true)

	case tea.BlurMsg:
		m.machine.SetFocused(false)

	case tea.KeyMsg:
		_, cmd := m.HandleKey(msg)
		return cmd

	case ItemClickedMsg:
		return m.click(msg.Index)

	case suggest.ResultMsg:
		m.apply(msg)
	}
	return nil
}

// installDecorator puts the engine strategies behind whatever decorator the
// document already has
func (m *Model) installDecorator() {
	existing := m.doc.Decorator()
	if existing != nil && existing == m.installed {
		return
	}
	dec := decorate.Compose(existing, m.strategies)
	m.doc.SetDecorator(dec)
	m.installed = dec
}

// refresh rescans changed blocks and re-resolves the active match
func (m *Model) refresh() tea.Cmd {
	m.table.Sync(m.doc, m.triggers, m.scanner, m.opts.PruneRemovedBlocks)
	return m.updateMatch()
}

func (m *Model) updateMatch() tea.Cmd {
	cursor, ok := match.CaretGuard(m.doc)
	if !ok {
		m.reset(ReasonNoCaret)
		return nil
	}

	r, trig, ok := match.Resolve(cursor, m.table, m.triggers)
	if !ok {
		m.reset(ReasonNoMatch)
		return nil
	}
	if trig.Lookup == nil {
		m.reset(ReasonNoTrigger)
		return nil
	}

	block, _ := m.doc.Block(cursor.BlockID)
	query := match.QueryText(block, r, trig.Prefix)

	prev := m.machine.Active()
	var position *domain.Position
	if prev != nil {
		position = prev.Position
	}
	if m.machine.Focused() && m.opts.PositionFunc != nil {
		position = m.opts.PositionFunc()
	}

	if prev != nil && prev.Range == r && prev.Query == query && prev.Fetched() {
		next := *prev
		next.Position = position
		m.machine.Replace(&next)
		return nil
	}

	next := &domain.ActiveMatch{
		Range:    r,
		Trigger:  trig,
		Query:    query,
		Position: position,
	}
	// no suggestions until the lookup for this query comes back
	m.machine.Replace(next)

	m.publish(domain.MatchResolvedEvent{Range: r, Query: query})
	return m.fetcher.Fetch(m.ctx, trig, r, query)
}

func (m *Model) reset(reason string) {
	active := m.machine.Active()
	m.machine.Clear()
	if active != nil {
		m.publish(domain.MatchClearedEvent{Range: active.Range, Reason: reason})
	}
}

// apply installs a lookup result unless the match moved on since it started
func (m *Model) apply(msg suggest.ResultMsg) {
	active := m.machine.Active()
	if !msg.Targets(active) {
		log.Printf("Discarding stale suggestions for %q at %s:%d", msg.Query, msg.Target.BlockID, msg.Target.Start)
		m.publish(domain.SuggestionsDiscardedEvent{Range: msg.Target, Query: msg.Query})
		return
	}

	if msg.Err != nil {
		m.publish(domain.LookupFailedEvent{TriggerType: msg.Target.Type, Query: msg.Query, Err: msg.Err})
	}

	next := *active
	next.Suggestions = msg.Suggestions
	if next.Suggestions == nil {
		next.Suggestions = []domain.Suggestion{}
	}
	m.machine.Replace(&next)

	m.publish(domain.SuggestionsAppliedEvent{Range: next.Range, Query: next.Query, Count: len(next.Suggestions)})
}

// HandleKey runs a key through the two binding stages. It reports whether
// the key was consumed; unconsumed keys belong to the host's default editing.
func (m *Model) HandleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	cmd := m.bind(msg)
	if cmd == keys.None {
		return false, nil
	}
	res, teaCmd := m.HandleCommand(cmd)
	return res == keys.Handled, teaCmd
}

// bind maps a key to a command: list keys while engaged, then the host's binding
func (m *Model) bind(msg tea.KeyMsg) keys.Command {
	if m.machine.Engaged() {
		if cmd := m.keyMap.Map(msg); cmd != keys.None {
			return cmd
		}
	}
	if m.opts.KeyBindingFn != nil {
		return m.opts.KeyBindingFn(msg)
	}
	return keys.None
}

// HandleCommand executes a command. List commands are consumed only while
// engaged; everything else goes to the host's command handler.
func (m *Model) HandleCommand(cmd keys.Command) (keys.HandleResult, tea.Cmd) {
	if keys.Owns(cmd) && m.machine.Engaged() {
		switch cmd {
		case keys.CommitEntity:
			if s, ok := m.machine.Current(); ok {
				return keys.Handled, m.commit(s)
			}
		case keys.UpEntity:
			m.machine.Navigate(selection.DirectionUp)
		case keys.DownEntity:
			m.machine.Navigate(selection.DirectionDown)
		case keys.EscapeEntity:
			m.reset(ReasonEscape)
		}
		return keys.Handled, nil
	}

	if m.opts.HandleKeyCommand != nil {
		return m.opts.HandleKeyCommand(cmd), nil
	}
	return keys.NotHandled, nil
}

func (m *Model) click(index int) tea.Cmd {
	active := m.machine.Active()
	if !active.Fetched() || index < 0 || index >= len(active.Suggestions) {
		return nil
	}
	// the click took focus away from the editor; it comes straight back
	m.machine.SetFocused(true)
	return m.commit(active.Suggestions[index])
}

func (m *Model) commit(s domain.Suggestion) tea.Cmd {
	active := m.machine.Active()
	ctx := &commit.Context{Doc: m.doc, Bus: m.opts.Bus}

	res, err := commit.NewCommand(ctx, active, s).Execute()
	m.machine.Clear()
	if err != nil {
		log.Printf("Commit failed: %v", err)
		m.publish(domain.MatchClearedEvent{Range: active.Range, Reason: ReasonCommit})
		return nil
	}

	// rescan so the new annotation is excluded from live matching
	m.table.Sync(m.doc, m.triggers, m.scanner, m.opts.PruneRemovedBlocks)
	return func() tea.Msg { return CommittedMsg{Result: res} }
}

func (m *Model) publish(e domain.DomainEvent) {
	if m.opts.Bus != nil {
		m.opts.Bus.Publish(e)
	}
}

// View renders the suggestion list, or nothing when it is hidden
func (m *Model) View() string {
	if !m.machine.Visible() {
		return ""
	}

	active := m.machine.Active()
	render := active.Trigger.Render
	current := m.machine.Index()

	items := make([]string, len(active.Suggestions))
	for i, s := range active.Suggestions {
		items[i] = render.Item(domain.ItemProps{Suggestion: s, Index: i, Current: i == current})
	}
	return render.List(domain.ListProps{
		Focused:  m.machine.Focused(),
		Items:    items,
		Position: active.Position,
	})
}

// State returns the selection state
func (m *Model) State() selection.State {
	s := m.machine.State()
	s.Index = m.machine.Index()
	return s
}

// Status reports IDLE or SUGGESTING
func (m *Model) Status() selection.Status {
	return m.machine.Status()
}

// Active returns the active match, or nil
func (m *Model) Active() *domain.ActiveMatch {
	return m.machine.Active()
}

// Visible reports whether View renders a list
func (m *Model) Visible() bool {
	return m.machine.Visible()
}

// Engaged reports whether the list keys are currently consumed
func (m *Model) Engaged() bool {
	return m.machine.Engaged()
}

// Table exposes the match table
func (m *Model) Table() *match.Table {
	return m.table
}

// Document returns the document the engine works against
func (m *Model) Document() domain.Document {
	return m.doc
}

// KeyMap returns the suggestion list bindings
func (m *Model) KeyMap() keys.KeyMap {
	return m.keyMap
}
