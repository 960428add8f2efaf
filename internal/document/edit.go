package document

import (
	"strings"
	"unicode"

	"tagcomplete/internal/domain"
)

// Editing operations act on the current selection the way a text widget
// would. They keep annotations consistent with their mutability policy:
// an immutable or segmented annotation never survives being split.

func (d *Document) caret() (int, *block, int) {
	c := d.selection.Focus
	i, b := d.find(c.BlockID)
	if b == nil {
		i, b = len(d.blocks)-1, d.blocks[len(d.blocks)-1]
		return i, b, len(b.text)
	}
	off := c.Offset
	if off > len(b.text) {
		off = len(b.text)
	}
	return i, b, off
}

func (d *Document) place(b *block, off int) {
	d.selection = domain.Caret(domain.Cursor{BlockID: b.id, Offset: off})
	d.revision++
}

func (d *Document) mutability(key string) domain.Mutability {
	return d.entities[key].Mutability
}

func (d *Document) strip(b *block, key string) {
	for i, k := range b.entities {
		if k == key {
			b.entities[i] = ""
		}
	}
}

// releaseEdge drops a non-mutable annotation that straddles position p
func (d *Document) releaseEdge(b *block, p int) {
	if p <= 0 || p >= len(b.entities) {
		return
	}
	key := b.entities[p-1]
	if key == "" || key != b.entities[p] {
		return
	}
	if d.mutability(key) != domain.Mutable {
		d.strip(b, key)
	}
}

// deleteSelection removes a range selection and reports whether there was one
func (d *Document) deleteSelection() bool {
	sel := d.selection
	if sel.Collapsed() || sel.Anchor.BlockID != sel.Focus.BlockID {
		return false
	}
	_, b := d.find(sel.Focus.BlockID)
	if b == nil {
		return false
	}

	start, end := sel.Anchor.Offset, sel.Focus.Offset
	if start > end {
		start, end = end, start
	}
	d.remove(b, start, end)
	d.place(b, start)
	return true
}

func (d *Document) remove(b *block, start, end int) {
	d.releaseEdge(b, start)
	d.releaseEdge(b, end)
	d.splice(b, start, end, nil, nil)
}

// InsertText types s at the caret, replacing any range selection. Newlines
// split the block.
func (d *Document) InsertText(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.deleteSelection()
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			d.split()
		}
		if line != "" {
			d.insert([]rune(line))
		}
	}
}

func (d *Document) insert(text []rune) {
	_, b, off := d.caret()
	d.releaseEdge(b, off)

	// typing at the end of a mutable annotation extends it
	inherit := ""
	if off > 0 && b.entities[off-1] != "" && d.mutability(b.entities[off-1]) == domain.Mutable {
		inherit = b.entities[off-1]
	}
	keys := make([]string, len(text))
	for i := range keys {
		keys[i] = inherit
	}

	d.splice(b, off, off, text, keys)
	d.place(b, off+len(text))
}

// SplitBlock breaks the block at the caret
func (d *Document) SplitBlock() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.deleteSelection()
	d.split()
}

func (d *Document) split() {
	i, b, off := d.caret()
	d.releaseEdge(b, off)

	tail := d.newBlock(append([]rune(nil), b.text[off:]...))
	copy(tail.entities, b.entities[off:])
	b.text = b.text[:off]
	b.entities = b.entities[:off]
	d.touch(b)

	d.blocks = append(d.blocks[:i+1], append([]*block{tail}, d.blocks[i+1:]...)...)
	d.place(tail, 0)
}

// Backspace deletes backwards from the caret. An immutable annotation goes
// away as a whole; a segmented one loses the word under the caret and the
// rest of it turns into plain text.
func (d *Document) Backspace() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.deleteSelection() {
		return
	}

	i, b, off := d.caret()
	if off == 0 {
		if i == 0 {
			return
		}
		prev := d.blocks[i-1]
		d.join(i - 1)
		d.place(prev, len(prev.text)-len(b.text))
		return
	}

	start, end := d.removalRange(b, off-1, true)
	d.remove(b, start, end)
	d.place(b, start)
}

// Delete deletes forwards from the caret
func (d *Document) Delete() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.deleteSelection() {
		return
	}

	i, b, off := d.caret()
	if off == len(b.text) {
		if i < len(d.blocks)-1 {
			d.join(i)
			d.place(b, off)
		}
		return
	}

	start, end := d.removalRange(b, off, false)
	d.remove(b, start, end)
	d.place(b, start)
}

// join appends block i+1 to block i and removes it from the document
func (d *Document) join(i int) {
	b, next := d.blocks[i], d.blocks[i+1]
	b.text = append(b.text, next.text...)
	b.entities = append(b.entities, next.entities...)
	d.touch(b)
	d.blocks = append(d.blocks[:i+1], d.blocks[i+2:]...)
}

// removalRange returns what deleting the character at p actually removes
func (d *Document) removalRange(b *block, p int, backward bool) (int, int) {
	key := b.entities[p]
	if key == "" {
		return p, p + 1
	}

	run := runOf(b, p)
	switch d.mutability(key) {
	case domain.Immutable:
		return run.Start, run.End
	case domain.Segmented:
		start, end := segmentOf(b, run, p, backward)
		d.strip(b, key)
		return start, end
	default:
		return p, p + 1
	}
}

func runOf(b *block, p int) domain.TextRange {
	key := b.entities[p]
	start, end := p, p+1
	for start > 0 && b.entities[start-1] == key {
		start--
	}
	for end < len(b.entities) && b.entities[end] == key {
		end++
	}
	return domain.TextRange{Start: start, End: end}
}

// segmentOf returns the whitespace-delimited word of run containing p plus
// one separating space, taken from the side the deletion comes from
func segmentOf(b *block, run domain.TextRange, p int, backward bool) (int, int) {
	if unicode.IsSpace(b.text[p]) {
		return p, p + 1
	}

	start, end := p, p+1
	for start > run.Start && !unicode.IsSpace(b.text[start-1]) {
		start--
	}
	for end < run.End && !unicode.IsSpace(b.text[end]) {
		end++
	}

	switch {
	case backward && start > run.Start:
		start--
	case end < run.End:
		end++
	case start > run.Start:
		start--
	}
	return start, end
}

// Move moves the caret by delta characters, crossing block boundaries.
// With extend set the anchor stays put, within the caret's block.
func (d *Document) Move(delta int, extend bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i, b, off := d.caret()
	anchor := d.selection.Anchor
	if !extend && !d.selection.Collapsed() && anchor.BlockID == b.id {
		// collapse to the side of travel
		if (delta < 0) == (anchor.Offset < off) {
			off = anchor.Offset
		}
		d.place(b, off)
		return
	}

	off += delta
	switch {
	case off < 0 && !extend && i > 0:
		b = d.blocks[i-1]
		off = len(b.text)
	case off > len(b.text) && !extend && i < len(d.blocks)-1:
		b = d.blocks[i+1]
		off = 0
	}
	off = clamp(off, len(b.text))

	if extend {
		if anchor.BlockID != b.id {
			anchor = d.selection.Focus
		}
		d.selection = domain.Selection{Anchor: anchor, Focus: domain.Cursor{BlockID: b.id, Offset: off}}
		d.revision++
		return
	}
	d.place(b, off)
}

// MoveLine moves the caret to the block above or below, keeping the column
func (d *Document) MoveLine(delta int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i, _, off := d.caret()
	i = clamp(i+delta, len(d.blocks)-1)
	b := d.blocks[i]
	d.place(b, clamp(off, len(b.text)))
}

// Home moves the caret to the start of its block
func (d *Document) Home() {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, b, _ := d.caret()
	d.place(b, 0)
}

// End moves the caret to the end of its block
func (d *Document) End() {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, b, _ := d.caret()
	d.place(b, len(b.text))
}

func clamp(v, hi int) int {
	if v > hi {
		v = hi
	}
	if v < 0 {
		v = 0
	}
	return v
}
