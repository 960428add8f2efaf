package document

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"tagcomplete/internal/domain"
)

type block struct {
	id       string
	text     []rune
	entities []string // entity key per character, "" when none
	revision uint64
}

func (b *block) snapshot() domain.Block {
	return domain.Block{ID: b.id, Text: string(b.text), Revision: b.revision}
}

// Document is an in-memory rich-text document: ordered blocks of characters,
// each character optionally pointing at an annotation.
type Document struct {
	mu        sync.RWMutex
	blocks    []*block
	entities  map[string]domain.Annotation
	nextKey   int
	revision  uint64
	selection domain.Selection
	decorator domain.Decorator
}

var _ domain.Document = (*Document)(nil)

// New creates a document with one block per text. The caret is placed at the
// end of the last block.
func New(texts ...string) *Document {
	if len(texts) == 0 {
		texts = []string{""}
	}

	d := &Document{entities: make(map[string]domain.Annotation)}
	for _, t := range texts {
		d.blocks = append(d.blocks, d.newBlock([]rune(t)))
	}
	last := d.blocks[len(d.blocks)-1]
	d.selection = domain.Caret(domain.Cursor{BlockID: last.id, Offset: len(last.text)})
	return d
}

func (d *Document) newBlock(text []rune) *block {
	b := &block{
		id:       uuid.NewString(),
		text:     text,
		entities: make([]string, len(text)),
	}
	d.touch(b)
	return b
}

// touch gives b a fresh revision. Revisions come from a document wide counter
// so a block never returns to a revision it had before.
func (d *Document) touch(b *block) {
	d.revision++
	b.revision = d.revision
}

// Version changes whenever any block or the selection changes
func (d *Document) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

func (d *Document) find(id string) (int, *block) {
	for i, b := range d.blocks {
		if b.id == id {
			return i, b
		}
	}
	return -1, nil
}

// Blocks returns snapshots of all blocks in order
func (d *Document) Blocks() []domain.Block {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]domain.Block, len(d.blocks))
	for i, b := range d.blocks {
		out[i] = b.snapshot()
	}
	return out
}

// Block returns a snapshot of one block
func (d *Document) Block(id string) (domain.Block, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, b := d.find(id)
	if b == nil {
		return domain.Block{}, false
	}
	return b.snapshot(), true
}

// AnnotationAt returns the annotation of one character
func (d *Document) AnnotationAt(blockID string, offset int) (domain.Annotation, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, b := d.find(blockID)
	if b == nil || offset < 0 || offset >= len(b.entities) {
		return domain.Annotation{}, false
	}
	key := b.entities[offset]
	if key == "" {
		return domain.Annotation{}, false
	}
	ann, ok := d.entities[key]
	return ann, ok
}

// Annotations returns the ranges of all annotations in a block
func (d *Document) Annotations(blockID string) []AnnotatedRange {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, b := d.find(blockID)
	if b == nil {
		return nil
	}

	var out []AnnotatedRange
	for _, r := range entityRuns(b) {
		out = append(out, AnnotatedRange{TextRange: r.TextRange, Annotation: d.entities[r.key]})
	}
	return out
}

// AnnotatedRange is an annotation together with the characters it covers
type AnnotatedRange struct {
	domain.TextRange
	Annotation domain.Annotation
}

type entityRun struct {
	domain.TextRange
	key string
}

func entityRuns(b *block) []entityRun {
	var out []entityRun
	for i := 0; i < len(b.entities); {
		key := b.entities[i]
		j := i + 1
		for j < len(b.entities) && b.entities[j] == key {
			j++
		}
		if key != "" {
			out = append(out, entityRun{TextRange: domain.TextRange{Start: i, End: j}, key: key})
		}
		i = j
	}
	return out
}

// Selection returns the current selection
func (d *Document) Selection() domain.Selection {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.selection
}

// SetSelection moves the selection. Both ends must lie in the same block.
func (d *Document) SetSelection(sel domain.Selection) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if sel.Anchor.BlockID != sel.Focus.BlockID {
		return fmt.Errorf("selection spans blocks %s and %s: %w", sel.Anchor.BlockID, sel.Focus.BlockID, domain.ErrRangeOutOfBounds)
	}
	_, b := d.find(sel.Focus.BlockID)
	if b == nil {
		return fmt.Errorf("select in %s: %w", sel.Focus.BlockID, domain.ErrBlockNotFound)
	}
	for _, c := range []domain.Cursor{sel.Anchor, sel.Focus} {
		if c.Offset < 0 || c.Offset > len(b.text) {
			return fmt.Errorf("select offset %d in %s: %w", c.Offset, b.id, domain.ErrRangeOutOfBounds)
		}
	}
	d.selection = sel
	d.revision++
	return nil
}

// ReplaceWithAnnotation replaces the characters of r with text, annotates them
// with ann under a fresh key and puts the caret right after the inserted text
func (d *Document) ReplaceWithAnnotation(r domain.MatchRange, text string, ann domain.Annotation) (domain.Cursor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, b := d.find(r.BlockID)
	if b == nil {
		return domain.Cursor{}, fmt.Errorf("replace in %s: %w", r.BlockID, domain.ErrBlockNotFound)
	}
	if r.Start < 0 || r.End > len(b.text) || r.Start > r.End {
		return domain.Cursor{}, fmt.Errorf("replace [%d,%d) in %s: %w", r.Start, r.End, r.BlockID, domain.ErrRangeOutOfBounds)
	}

	d.nextKey++
	ann.Key = strconv.Itoa(d.nextKey)
	d.entities[ann.Key] = ann

	inserted := []rune(text)
	keys := make([]string, len(inserted))
	for i := range keys {
		keys[i] = ann.Key
	}
	d.splice(b, r.Start, r.End, inserted, keys)

	cursor := domain.Cursor{BlockID: b.id, Offset: r.Start + len(inserted)}
	d.selection = domain.Caret(cursor)
	return cursor, nil
}

// splice replaces [start, end) of b and bumps its revision
func (d *Document) splice(b *block, start, end int, text []rune, keys []string) {
	nt := make([]rune, 0, len(b.text)-(end-start)+len(text))
	nt = append(nt, b.text[:start]...)
	nt = append(nt, text...)
	nt = append(nt, b.text[end:]...)

	ne := make([]string, 0, len(nt))
	ne = append(ne, b.entities[:start]...)
	ne = append(ne, keys...)
	ne = append(ne, b.entities[end:]...)

	b.text, b.entities = nt, ne
	d.touch(b)
}

// Decorator returns the installed decorator
func (d *Document) Decorator() domain.Decorator {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.decorator
}

// SetDecorator installs a decorator
func (d *Document) SetDecorator(dec domain.Decorator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.decorator = dec
}

// Text returns the plain text of the document, one line per block
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	lines := make([]string, len(d.blocks))
	for i, b := range d.blocks {
		lines[i] = string(b.text)
	}
	return strings.Join(lines, "\n")
}
