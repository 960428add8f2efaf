package views

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tagcomplete/internal/decorate"
	"tagcomplete/internal/domain"
)

// Layout constants shared with mouse handling
const (
	HeaderRows  = 2
	GutterWidth = 2
)

// RowKind tells what a screen row shows
type RowKind int

const (
	RowOther RowKind = iota
	RowBlock
	RowItem
)

// Row maps a screen row back to the content it shows
type Row struct {
	Kind  RowKind
	Block int
	Item  int
	X     int
}

// BlockLine is one decorated block
type BlockLine struct {
	Text  string
	Spans []domain.Span
	// Caret is the caret offset, or -1 when the caret is elsewhere
	Caret int
	// Selected is the highlighted range of a range selection
	Selected *domain.TextRange
}

// ViewState contains all the data needed for rendering
type ViewState struct {
	Width   int
	Height  int
	Title   string
	Status  string
	IsError bool
	Focused bool
	Blocks  []BlockLine
	// List is the rendered suggestion list, empty when hidden
	List string
	// ListItems is how many suggestions List shows, one per line
	ListItems int
	ListUnder int
	ListX     int
	Help      string
}

// Frame is a rendered screen and the meaning of each of its rows
type Frame struct {
	Lines []string
	Rows  []Row
}

// String joins the frame lines
func (f Frame) String() string {
	return strings.Join(f.Lines, "\n")
}

// RowAt returns the row at screen line y
func (f Frame) RowAt(y int) (Row, bool) {
	if y < 0 || y >= len(f.Rows) {
		return Row{}, false
	}
	return f.Rows[y], true
}

// Renderer handles all view rendering
type Renderer struct {
	styles *Styles
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{styles: NewStyles()}
}

// Styles returns the renderer styles
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Render lays out the editor: header, blocks with the suggestion list hanging
// under the caret block, then the help bar
func (r *Renderer) Render(state ViewState) Frame {
	var f Frame
	add := func(line string, row Row) {
		f.Lines = append(f.Lines, line)
		f.Rows = append(f.Rows, row)
	}

	status := r.styles.Status
	if state.IsError {
		status = r.styles.StatusError
	}
	header := r.styles.Title.Render(state.Title)
	if state.Status != "" {
		header += "  " + status.Render(state.Status)
	}
	add(header, Row{})
	add("", Row{})

	gutter := r.styles.Gutter.Render(strings.Repeat(" ", GutterWidth))
	for i, b := range state.Blocks {
		add(gutter+r.RenderLine(b, state.Focused), Row{Kind: RowBlock, Block: i})
		if state.List == "" || i != state.ListUnder {
			continue
		}

		x := state.ListX
		if w := lipgloss.Width(state.List); state.Width > 0 && x+w > state.Width {
			x = state.Width - w
		}
		if x < 0 {
			x = 0
		}
		pad := strings.Repeat(" ", x)
		lines := strings.Split(state.List, "\n")
		// items sit in the middle, any chrome split evenly above and below
		top := (len(lines) - state.ListItems) / 2
		if top < 0 {
			top = 0
		}
		for k, line := range lines {
			row := Row{X: x}
			if item := k - top; item >= 0 && item < state.ListItems {
				row.Kind = RowItem
				row.Item = item
			}
			add(pad+line, row)
		}
	}

	if state.Help != "" {
		add("", Row{})
		add(r.styles.Help.Render(state.Help), Row{})
	}
	return f
}

// RenderLine renders a block with its decorations, selection and caret
func (r *Renderer) RenderLine(b BlockLine, focused bool) string {
	spans := b.Spans
	if b.Selected != nil && b.Selected.Start < b.Selected.End {
		spans = overlay(spans, domain.Span{TextRange: *b.Selected, Render: r.styles.Selection.Render})
	}

	n := len([]rune(b.Text))
	if b.Caret < 0 || b.Caret > n {
		return decorate.Apply(b.Text, spans)
	}

	caret := r.styles.Caret
	if !focused {
		caret = r.styles.CaretBlurred
	}
	if b.Caret == n {
		return decorate.Apply(b.Text, spans) + caret.Render(" ")
	}
	spans = overlay(spans, domain.Span{
		TextRange: domain.TextRange{Start: b.Caret, End: b.Caret + 1},
		Render:    caret.Render,
	})
	return decorate.Apply(b.Text, spans)
}

// overlay cuts top out of the spans it covers and inserts it
func overlay(spans []domain.Span, top domain.Span) []domain.Span {
	out := make([]domain.Span, 0, len(spans)+2)
	for _, s := range spans {
		if !s.Overlaps(top.TextRange) {
			out = append(out, s)
			continue
		}
		if s.Start < top.Start {
			left := s
			left.End = top.Start
			out = append(out, left)
		}
		if top.End < s.End {
			right := s
			right.Start = top.End
			out = append(out, right)
		}
	}
	out = append(out, top)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
