package autocomplete

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagcomplete/internal/decorate"
	"tagcomplete/internal/document"
	"tagcomplete/internal/domain"
	"tagcomplete/internal/eventbus"
	"tagcomplete/internal/keys"
	"tagcomplete/internal/selection"
	"tagcomplete/internal/source"
	"tagcomplete/internal/suggest"
	"tagcomplete/internal/trigger"
)

var people = []string{"Bruce Wayne", "Jay Garrick", "Allan Scott", "Oliver Queen", "Princess Diana", "Peter Parker"}

func registry(t *testing.T) *trigger.Registry {
	t.Helper()
	r, err := trigger.New(
		domain.TriggerConfig{
			Prefix:     "@",
			Type:       "MENTION",
			Mutability: domain.Segmented,
			Lookup:     source.NewStatic(people, source.ModeContains).Lookup(),
		},
		domain.TriggerConfig{
			Prefix: "#",
			Type:   "HASHTAG",
			Lookup: source.NewStatic([]string{"react", "draft-js", "component"}, source.ModePrefix).Lookup(),
		},
	)
	require.NoError(t, err)
	return r
}

func newEngine(t *testing.T, doc domain.Document, opts Options) *Model {
	t.Helper()
	if opts.Triggers == nil {
		opts.Triggers = registry(t)
	}
	return New(doc, opts)
}

// drain runs commands to completion, feeding every message back into the engine
func drain(m *Model, cmd tea.Cmd) []tea.Msg {
	var msgs []tea.Msg
	for cmd != nil {
		msg := cmd()
		msgs = append(msgs, msg)
		cmd = m.Update(msg)
	}
	return msgs
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func suggesting(t *testing.T, text string, opts Options) (*document.Document, *Model) {
	t.Helper()
	doc := document.New(text)
	opts.Focused = true
	m := newEngine(t, doc, opts)
	drain(m, m.Init())
	require.Equal(t, selection.StatusSuggesting, m.Status())
	return doc, m
}

func TestMentionResolvesAndSuggests(t *testing.T) {
	doc := document.New("hello @bru")
	m := newEngine(t, doc, Options{Focused: true})

	cmd := m.Init()
	require.NotNil(t, cmd)

	active := m.Active()
	require.NotNil(t, active)
	assert.Equal(t, 6, active.Range.Start)
	assert.Equal(t, 10, active.Range.End)
	assert.Equal(t, "bru", active.Query)
	assert.Equal(t, selection.StatusIdle, m.Status(), "lookup still pending")

	drain(m, cmd)

	assert.Equal(t, selection.StatusSuggesting, m.Status())
	assert.Equal(t, []domain.Suggestion{"Bruce Wayne"}, m.Active().Suggestions)
	assert.Equal(t, 0, m.State().Index)
	assert.True(t, m.Visible())
	assert.Contains(t, m.View(), "Bruce Wayne")
}

func TestCommitReplacesTokenAndGoesIdle(t *testing.T) {
	doc, m := suggesting(t, "hello @bru", Options{})

	handled, cmd := m.HandleKey(key(tea.KeyEnter))
	require.True(t, handled)
	msgs := drain(m, cmd)

	require.Len(t, msgs, 1)
	committed, ok := msgs[0].(CommittedMsg)
	require.True(t, ok)
	assert.Equal(t, "@Bruce Wayne", committed.Result.Text)

	assert.Equal(t, "hello @Bruce Wayne", doc.Text())
	assert.Equal(t, 18, doc.Selection().Focus.Offset)
	assert.Equal(t, selection.StatusIdle, m.Status())
	assert.Nil(t, m.Active())
	assert.Equal(t, 0, m.State().Index)
	assert.Equal(t, "", m.View())

	// the committed text is not picked up again as a live mention
	drain(m, m.Update(DocumentChangedMsg{}))
	assert.Nil(t, m.Active())
	assert.Empty(t, m.Table().Matches(doc.Blocks()[0].ID, "MENTION"))

	ann, ok := doc.AnnotationAt(doc.Blocks()[0].ID, 6)
	require.True(t, ok)
	assert.Equal(t, domain.Segmented, ann.Mutability)
	assert.Equal(t, "Bruce Wayne", ann.Payload)
}

func TestCommitUsesSelectedIndex(t *testing.T) {
	doc, m := suggesting(t, "hello @", Options{})

	handled, _ := m.HandleKey(key(tea.KeyDown))
	require.True(t, handled)
	handled, cmd := m.HandleKey(key(tea.KeyTab))
	require.True(t, handled)
	drain(m, cmd)

	assert.Equal(t, "hello @Jay Garrick", doc.Text())
	assert.Equal(t, 0, m.State().Index)
}

func TestTrailingSpaceEndsMatch(t *testing.T) {
	doc := document.New("hello @bru ")
	m := newEngine(t, doc, Options{Focused: true})

	assert.Nil(t, m.Init())
	assert.Nil(t, m.Active())
	assert.Equal(t, selection.StatusIdle, m.Status())
	assert.Len(t, m.Table().Matches(doc.Blocks()[0].ID, "MENTION"), 1)
}

func TestTriggersAreTrackedIndependently(t *testing.T) {
	doc := document.New("hi @bru and #rea")
	b := doc.Blocks()[0]
	m := newEngine(t, doc, Options{Focused: true})
	drain(m, m.Init())

	assert.Equal(t, []domain.MatchRange{{BlockID: b.ID, Start: 3, End: 7, Type: "MENTION"}}, m.Table().Matches(b.ID, "MENTION"))
	assert.Equal(t, []domain.MatchRange{{BlockID: b.ID, Start: 12, End: 16, Type: "HASHTAG"}}, m.Table().Matches(b.ID, "HASHTAG"))

	require.NotNil(t, m.Active())
	assert.Equal(t, "HASHTAG", m.Active().Range.Type)
	assert.Equal(t, []domain.Suggestion{"react"}, m.Active().Suggestions)

	require.NoError(t, doc.SetSelection(domain.Caret(domain.Cursor{BlockID: b.ID, Offset: 7})))
	drain(m, m.Update(DocumentChangedMsg{}))

	require.NotNil(t, m.Active())
	assert.Equal(t, "MENTION", m.Active().Range.Type)
	assert.Equal(t, 0, m.State().Index)
}

func TestStaleResultIsDiscarded(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	discarded := make(chan eventbus.DomainEvent, 4)
	bus.Subscribe(eventbus.EventSuggestionsDiscarded, func(e eventbus.DomainEvent) { discarded <- e })

	doc := document.New("hello @b")
	m := newEngine(t, doc, Options{Focused: true, Bus: bus})

	first := m.Init()
	require.NotNil(t, first)

	doc.InsertText("r")
	second := m.Update(DocumentChangedMsg{})
	require.NotNil(t, second)
	assert.Equal(t, "br", m.Active().Query)

	// the lookup for "b" finishes after the one for "br" was started
	m.Update(first())
	assert.Nil(t, m.Active().Suggestions)
	assert.Equal(t, selection.StatusIdle, m.Status())

	select {
	case e := <-discarded:
		assert.Equal(t, "b", e.(domain.SuggestionsDiscardedEvent).Query)
	case <-time.After(time.Second):
		t.Fatal("discard not published")
	}

	m.Update(second())
	assert.Equal(t, []domain.Suggestion{"Bruce Wayne"}, m.Active().Suggestions)
}

func TestResultAfterMatchClearedIsDiscarded(t *testing.T) {
	doc := document.New("hello @bru")
	m := newEngine(t, doc, Options{Focused: true})
	pending := m.Init()

	doc.InsertText(" ")
	assert.Nil(t, m.Update(DocumentChangedMsg{}))
	require.Nil(t, m.Active())

	m.Update(pending())
	assert.Nil(t, m.Active())
	assert.Equal(t, selection.StatusIdle, m.Status())
}

func TestEnterBeforeLookupReturnsIsNotCommitted(t *testing.T) {
	doc, m := suggesting(t, "hello @bru", Options{})
	require.Equal(t, []domain.Suggestion{"Bruce Wayne"}, m.Active().Suggestions)

	doc.InsertText("x")
	pending := m.Update(DocumentChangedMsg{})
	require.NotNil(t, pending)

	assert.Equal(t, "brux", m.Active().Query)
	assert.Nil(t, m.Active().Suggestions)
	assert.Equal(t, selection.StatusIdle, m.Status())
	assert.False(t, m.Engaged())
	assert.False(t, m.Visible())

	for _, k := range []tea.KeyType{tea.KeyEnter, tea.KeyTab} {
		handled, cmd := m.HandleKey(key(k))
		assert.False(t, handled)
		assert.Nil(t, cmd)
	}
	assert.Equal(t, "hello @brux", doc.Text())

	drain(m, pending)
	assert.Equal(t, []domain.Suggestion{}, m.Active().Suggestions)
	assert.Equal(t, selection.StatusSuggesting, m.Status())
	handled, _ := m.HandleKey(key(tea.KeyEnter))
	assert.True(t, handled, "enter on an empty list is still consumed")
	assert.Equal(t, "hello @brux", doc.Text())
}

func TestEscapeResetsAndDropsInFlight(t *testing.T) {
	doc, m := suggesting(t, "hello @", Options{})

	m.HandleKey(key(tea.KeyDown))
	require.Equal(t, 1, m.State().Index)

	// an edit starts another lookup, then the user escapes
	doc.InsertText("e")
	pending := m.Update(DocumentChangedMsg{})
	require.NotNil(t, pending)

	handled, _ := m.HandleKey(key(tea.KeyEsc))
	assert.True(t, handled)
	assert.Nil(t, m.Active())
	assert.Equal(t, selection.StatusIdle, m.Status())
	assert.Equal(t, 0, m.State().Index)

	m.Update(pending())
	assert.Nil(t, m.Active())
}

func TestNavigationIsClamped(t *testing.T) {
	_, m := suggesting(t, "hello @", Options{MaxSuggestions: 3})
	require.Len(t, m.Active().Suggestions, 3)

	m.HandleKey(key(tea.KeyUp))
	assert.Equal(t, 0, m.State().Index)

	for i := 0; i < 5; i++ {
		handled, _ := m.HandleKey(key(tea.KeyDown))
		assert.True(t, handled)
	}
	assert.Equal(t, 2, m.State().Index)

	m.HandleKey(key(tea.KeyUp))
	assert.Equal(t, 1, m.State().Index)
}

func TestLikeForLikeEditKeepsIndex(t *testing.T) {
	doc, m := suggesting(t, "hello @", Options{})
	m.HandleKey(key(tea.KeyDown))
	m.HandleKey(key(tea.KeyDown))
	require.Equal(t, 2, m.State().Index)

	doc.InsertText("e")
	cmd := m.Update(DocumentChangedMsg{})
	assert.Equal(t, selection.StatusIdle, m.Status())
	drain(m, cmd)

	assert.Equal(t, []domain.Suggestion{"Bruce Wayne", "Oliver Queen", "Princess Diana", "Peter Parker"}, m.Active().Suggestions)
	assert.Equal(t, 2, m.State().Index)

	doc.InsertText("r")
	drain(m, m.Update(DocumentChangedMsg{}))
	assert.Equal(t, []domain.Suggestion{"Oliver Queen", "Peter Parker"}, m.Active().Suggestions)
	assert.Equal(t, 1, m.State().Index)
}

func TestKeysFallThroughWhenNotEngaged(t *testing.T) {
	// idle
	doc := document.New("plain text")
	m := newEngine(t, doc, Options{Focused: true})
	drain(m, m.Init())
	for _, k := range []tea.KeyType{tea.KeyEnter, tea.KeyTab, tea.KeyUp, tea.KeyDown, tea.KeyEsc} {
		handled, cmd := m.HandleKey(key(k))
		assert.False(t, handled)
		assert.Nil(t, cmd)
	}

	// suggesting but blurred
	doc2, m2 := suggesting(t, "hello @bru", Options{})
	m2.Update(tea.BlurMsg{})
	handled, _ := m2.HandleKey(key(tea.KeyEnter))
	assert.False(t, handled)
	handled, _ = m2.HandleKey(key(tea.KeyDown))
	assert.False(t, handled)
	assert.Equal(t, "hello @bru", doc2.Text())
	assert.False(t, m2.Visible())

	m2.Update(tea.FocusMsg{})
	assert.True(t, m2.Visible())
}

func TestHostBindingsReceiveUnconsumedKeys(t *testing.T) {
	var commands []keys.Command
	opts := Options{
		KeyBindingFn: func(msg tea.KeyMsg) keys.Command {
			switch msg.String() {
			case "ctrl+s":
				return "save"
			case "enter":
				return "split-block"
			}
			return keys.None
		},
		HandleKeyCommand: func(cmd keys.Command) keys.HandleResult {
			commands = append(commands, cmd)
			if cmd == "save" {
				return keys.Handled
			}
			return keys.NotHandled
		},
	}
	_, m := suggesting(t, "hello @bru", opts)

	handled, _ := m.HandleKey(key(tea.KeyCtrlS))
	assert.True(t, handled)

	handled, _ = m.HandleKey(key(tea.KeyLeft))
	assert.False(t, handled)

	// enter belongs to the list while engaged
	handled, cmd := m.HandleKey(key(tea.KeyEnter))
	assert.True(t, handled)
	drain(m, cmd)

	// and to the host once idle
	handled, _ = m.HandleKey(key(tea.KeyEnter))
	assert.False(t, handled)

	assert.Equal(t, []keys.Command{"save", "split-block"}, commands)
}

func TestCommitWithEmptyListIsNoop(t *testing.T) {
	doc, m := suggesting(t, "hello @zzz", Options{})
	require.Empty(t, m.Active().Suggestions)
	assert.False(t, m.Visible())

	handled, cmd := m.HandleKey(key(tea.KeyEnter))
	assert.True(t, handled)
	assert.Nil(t, cmd)
	assert.Equal(t, "hello @zzz", doc.Text())
	assert.Equal(t, selection.StatusSuggesting, m.Status())
}

func TestClickCommitsClickedItemAndRefocuses(t *testing.T) {
	doc, m := suggesting(t, "hello @", Options{})
	m.Update(tea.BlurMsg{})

	assert.Nil(t, m.Update(ItemClickedMsg{Index: 42}))

	drain(m, m.Update(ItemClickedMsg{Index: 3}))

	assert.Equal(t, "hello @Oliver Queen", doc.Text())
	assert.True(t, m.State().Focused)
	assert.Nil(t, m.Active())
}

func TestLookupFailureLeavesEmptyList(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	failed := make(chan eventbus.DomainEvent, 1)
	bus.Subscribe(eventbus.EventLookupFailed, func(e eventbus.DomainEvent) { failed <- e })

	reg := trigger.MustNew(domain.TriggerConfig{
		Prefix: "@",
		Type:   "MENTION",
		Lookup: func(context.Context, string) ([]domain.Suggestion, error) { return nil, errors.New("offline") },
	})
	_, m := suggesting(t, "hello @bru", Options{Triggers: reg, Bus: bus})

	assert.NotNil(t, m.Active().Suggestions)
	assert.Empty(t, m.Active().Suggestions)
	assert.False(t, m.Visible())

	select {
	case e := <-failed:
		assert.EqualError(t, e.(domain.LookupFailedEvent).Err, "offline")
	case <-time.After(time.Second):
		t.Fatal("lookup failure not published")
	}
}

func TestLookupTimeout(t *testing.T) {
	reg := trigger.MustNew(domain.TriggerConfig{
		Prefix: "@",
		Type:   "MENTION",
		Lookup: func(ctx context.Context, _ string) ([]domain.Suggestion, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})
	_, m := suggesting(t, "hello @bru", Options{Triggers: reg, LookupTimeout: 10 * time.Millisecond})
	assert.Empty(t, m.Active().Suggestions)
}

func TestRangeSelectionNeverTriggers(t *testing.T) {
	doc := document.New("hello @bru")
	b := doc.Blocks()[0]
	require.NoError(t, doc.SetSelection(domain.Selection{
		Anchor: domain.Cursor{BlockID: b.ID, Offset: 8},
		Focus:  domain.Cursor{BlockID: b.ID, Offset: 10},
	}))

	m := newEngine(t, doc, Options{Focused: true})
	assert.Nil(t, m.Init())
	assert.Nil(t, m.Active())
}

func TestDecoratorInstallation(t *testing.T) {
	doc := document.New("hello @bru")
	host := decorate.NewComposite(domain.Strategy{Name: "host"})
	doc.SetDecorator(host)

	m := newEngine(t, doc, Options{Focused: true})
	drain(m, m.Init())

	dec := doc.Decorator()
	require.NotNil(t, dec)
	names := []string{}
	for _, s := range dec.Strategies() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"host", "entity:MENTION", "live:MENTION", "entity:HASHTAG", "live:HASHTAG"}, names)

	// a second Init does not stack the strategies again
	m.Init()
	assert.Len(t, doc.Decorator().Strategies(), 5)

	// a document that lost its decorator gets it back
	doc.SetDecorator(nil)
	drain(m, m.Update(DocumentChangedMsg{}))
	require.NotNil(t, doc.Decorator())
	assert.Len(t, doc.Decorator().Strategies(), 4)

	spans := doc.Decorator().Decorate(doc, doc.Blocks()[0])
	require.Len(t, spans, 1)
	assert.Equal(t, "live:MENTION", spans[0].Strategy)
}

func TestDocumentReplacement(t *testing.T) {
	m := newEngine(t, document.New("nothing"), Options{Focused: true, PruneRemovedBlocks: true})
	drain(m, m.Init())
	require.Nil(t, m.Active())

	next := document.New("hey #re")
	drain(m, m.Update(DocumentChangedMsg{Document: next}))

	assert.Same(t, next, m.Document())
	assert.NotNil(t, next.Decorator())
	require.NotNil(t, m.Active())
	assert.Equal(t, []domain.Suggestion{"react"}, m.Active().Suggestions)
	assert.Equal(t, 1, m.Table().Len())
}

func TestPositionOnlyRefreshedWhileFocused(t *testing.T) {
	pos := &domain.Position{X: 3, Y: 1}
	doc, m := suggesting(t, "hello @b", Options{PositionFunc: func() *domain.Position { return pos }})
	assert.Equal(t, pos, m.Active().Position)

	m.Update(tea.BlurMsg{})
	moved := &domain.Position{X: 9, Y: 9}
	pos = moved
	doc.InsertText("r")
	drain(m, m.Update(DocumentChangedMsg{}))
	assert.Equal(t, &domain.Position{X: 3, Y: 1}, m.Active().Position)

	m.Update(tea.FocusMsg{})
	doc.InsertText("u")
	drain(m, m.Update(DocumentChangedMsg{}))
	assert.Equal(t, moved, m.Active().Position)
}

func TestPruneRemovedBlocks(t *testing.T) {
	doc := document.New("@a", "@b")
	m := newEngine(t, doc, Options{Focused: true, PruneRemovedBlocks: true})
	drain(m, m.Init())
	require.Equal(t, 2, m.Table().Len())

	doc.Home()
	doc.Backspace()
	drain(m, m.Update(DocumentChangedMsg{}))

	assert.Equal(t, 1, m.Table().Len())
	assert.Equal(t, "@a@b", doc.Text())
}

func TestUnchangedMatchDoesNotRefetch(t *testing.T) {
	_, m := suggesting(t, "hello @bru", Options{})
	assert.Nil(t, m.Update(DocumentChangedMsg{}))
	assert.Equal(t, selection.StatusSuggesting, m.Status())
}

func TestUpdateIgnoresForeignResult(t *testing.T) {
	_, m := suggesting(t, "hello @bru", Options{})
	before := m.Active()

	m.Update(suggest.ResultMsg{Target: domain.MatchRange{BlockID: "x"}, Query: "bru", Suggestions: []domain.Suggestion{"nope"}})

	assert.Equal(t, before, m.Active())
}
