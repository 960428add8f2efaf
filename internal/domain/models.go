package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Sentinel errors returned by Document implementations
var (
	ErrBlockNotFound    = errors.New("block not found")
	ErrRangeOutOfBounds = errors.New("range out of bounds")
	ErrNoActiveMatch    = errors.New("no active match")
	ErrStaleRange       = errors.New("match range no longer holds its trigger text")
)

// Mutability is the edit policy of a committed annotation
type Mutability int

const (
	Immutable Mutability = iota
	Mutable
	Segmented
)

// String returns the canonical name of the policy
func (m Mutability) String() string {
	switch m {
	case Immutable:
		return "IMMUTABLE"
	case Mutable:
		return "MUTABLE"
	case Segmented:
		return "SEGMENTED"
	default:
		return fmt.Sprintf("Mutability(%d)", int(m))
	}
}

// Valid reports whether m is one of the known policies
func (m Mutability) Valid() bool {
	return m == Immutable || m == Mutable || m == Segmented
}

// ParseMutability converts a policy name (case-insensitive) to a Mutability
func ParseMutability(s string) (Mutability, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "IMMUTABLE", "":
		return Immutable, nil
	case "MUTABLE":
		return Mutable, nil
	case "SEGMENTED":
		return Segmented, nil
	default:
		return Immutable, fmt.Errorf("unknown mutability %q", s)
	}
}

// Suggestion is an opaque, caller-defined payload returned by a lookup
type Suggestion = interface{}

// Labeler can be implemented by suggestion payloads that know their display label
type Labeler interface {
	Label() string
}

// LabelOf returns the display label of a suggestion
func LabelOf(s Suggestion) string {
	switch v := s.(type) {
	case nil:
		return ""
	case Labeler:
		return v.Label()
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Lookup returns the suggestions for a query. Implementations may block;
// the engine always calls them off the event loop.
type Lookup func(ctx context.Context, query string) ([]Suggestion, error)

// StaticLookup adapts a non-blocking, infallible filter function into a Lookup
func StaticLookup(fn func(query string) []Suggestion) Lookup {
	return func(_ context.Context, query string) ([]Suggestion, error) {
		return fn(query), nil
	}
}

// ItemProps is what an item render binding receives
type ItemProps struct {
	Suggestion Suggestion
	Index      int
	Current    bool
}

// ListProps is what a list render binding receives
type ListProps struct {
	Focused  bool
	Items    []string
	Position *Position
}

// RenderBindings are the caller-supplied renderers of a trigger. Nil members
// fall back to the engine defaults. List must put each item on its own line;
// any border or padding has to take the same number of lines above the items
// as below them, so a click on a row can be mapped back to an item.
type RenderBindings struct {
	Annotation func(text string) string
	List       func(props ListProps) string
	Item       func(props ItemProps) string
}

// TriggerConfig fully describes one autocomplete trigger
type TriggerConfig struct {
	Prefix     string
	Type       string
	Mutability Mutability
	Lookup     Lookup
	Format     func(Suggestion) string
	Render     RenderBindings
}

// FormatLabel returns the text a suggestion is committed as
func (t TriggerConfig) FormatLabel(s Suggestion) string {
	if t.Format != nil {
		return t.Format(s)
	}
	return t.Prefix + LabelOf(s)
}

// Block is a snapshot of one document block. Revision changes whenever the
// block's text or annotations change; zero means the document does not track
// revisions.
type Block struct {
	ID       string
	Text     string
	Revision uint64
}

// Len returns the block length in characters
func (b Block) Len() int {
	return utf8.RuneCountInString(b.Text)
}

// Cursor is a caret location: a character offset within a block
type Cursor struct {
	BlockID string
	Offset  int
}

// Selection is the document selection. A collapsed selection is a caret.
type Selection struct {
	Anchor Cursor
	Focus  Cursor
}

// Collapsed reports whether the selection is a single caret
func (s Selection) Collapsed() bool {
	return s.Anchor == s.Focus
}

// Caret returns a collapsed selection at c
func Caret(c Cursor) Selection {
	return Selection{Anchor: c, Focus: c}
}

// Position is a point in the host's coordinate space
type Position struct {
	X int
	Y int
}

// TextRange is a half-open character range [Start, End) inside a block
type TextRange struct {
	Start int
	End   int
}

// Overlaps reports whether r and o share at least one character
func (r TextRange) Overlaps(o TextRange) bool {
	return r.Start < o.End && o.Start < r.End
}

// MatchRange is a located live trigger candidate. End excludes the
// terminating whitespace.
type MatchRange struct {
	BlockID string
	Start   int
	End     int
	Type    string
}

// Contains reports whether the caret sits on the match: the character just
// before the caret must be one of the match characters.
func (r MatchRange) Contains(c Cursor) bool {
	if c.BlockID != r.BlockID {
		return false
	}
	return c.Offset > r.Start && c.Offset <= r.End
}

// Identity returns the part of a match that survives like-for-like edits
func (r MatchRange) Identity() MatchIdentity {
	return MatchIdentity{BlockID: r.BlockID, Start: r.Start, Type: r.Type}
}

// TextRange returns the character range of the match
func (r MatchRange) TextRange() TextRange {
	return TextRange{Start: r.Start, End: r.End}
}

// MatchIdentity identifies a match across edits that only extend or shrink its token
type MatchIdentity struct {
	BlockID string
	Start   int
	Type    string
}

// ActiveMatch is the match currently containing the caret. Suggestions is
// nil until the first lookup for this match completes.
type ActiveMatch struct {
	Range       MatchRange
	Trigger     TriggerConfig
	Query       string
	Suggestions []Suggestion
	Position    *Position
}

// Fetched reports whether a lookup result has been applied to the match
func (m *ActiveMatch) Fetched() bool {
	return m != nil && m.Suggestions != nil
}

// Annotation is a committed, style-bearing span. Key is assigned by the
// document and distinguishes adjacent annotations of the same type.
type Annotation struct {
	Key        string
	Type       string
	Mutability Mutability
	Payload    Suggestion
}
