package match

import (
	"tagcomplete/internal/domain"
)

type tableEntry struct {
	revision uint64
	byType   map[string][]domain.MatchRange
}

// Table caches scan results per block and per trigger type. A block's entry is
// always replaced as a whole, never merged. It is owned by a single engine
// and is not safe for concurrent use.
type Table struct {
	blocks map[string]*tableEntry
}

// NewTable creates an empty match table
func NewTable() *Table {
	return &Table{blocks: make(map[string]*tableEntry)}
}

// Replace stores the scan results of one block, dropping whatever was there
func (t *Table) Replace(blockID string, revision uint64, byType map[string][]domain.MatchRange) {
	entry := &tableEntry{
		revision: revision,
		byType:   make(map[string][]domain.MatchRange, len(byType)),
	}
	for typ, ranges := range byType {
		entry.byType[typ] = append([]domain.MatchRange(nil), ranges...)
	}
	t.blocks[blockID] = entry
}

// Matches returns the matches of one trigger type in a block
func (t *Table) Matches(blockID, typ string) []domain.MatchRange {
	entry, ok := t.blocks[blockID]
	if !ok {
		return nil
	}
	return entry.byType[typ]
}

// HasMatches reports whether any trigger type has a match in the block
func (t *Table) HasMatches(blockID string) bool {
	entry, ok := t.blocks[blockID]
	if !ok {
		return false
	}
	for _, ranges := range entry.byType {
		if len(ranges) > 0 {
			return true
		}
	}
	return false
}

// Revision returns the block revision the entry was scanned at
func (t *Table) Revision(blockID string) (uint64, bool) {
	entry, ok := t.blocks[blockID]
	if !ok {
		return 0, false
	}
	return entry.revision, true
}

// Prune drops entries of blocks not in live and returns how many were removed
func (t *Table) Prune(live map[string]struct{}) int {
	removed := 0
	for id := range t.blocks {
		if _, ok := live[id]; !ok {
			delete(t.blocks, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of blocks with an entry
func (t *Table) Len() int {
	return len(t.blocks)
}

// Sync rescans every block whose revision changed since its last scan. Blocks
// with revision zero are always rescanned. With prune set, entries of blocks
// that left the document are dropped. It returns the number of rescanned blocks.
func (t *Table) Sync(doc domain.Document, triggers []domain.TriggerConfig, scanner *Scanner, prune bool) int {
	blocks := doc.Blocks()
	live := make(map[string]struct{}, len(blocks))
	rescanned := 0

	for _, block := range blocks {
		live[block.ID] = struct{}{}

		if rev, ok := t.Revision(block.ID); ok && block.Revision != 0 && rev == block.Revision {
			continue
		}

		byType := make(map[string][]domain.MatchRange, len(triggers))
		for _, trig := range triggers {
			excluded := AnnotatedRanges(doc, block, trig.Type)
			byType[trig.Type] = scanner.Scan(trig, block, excluded)
		}
		t.Replace(block.ID, block.Revision, byType)
		rescanned++
	}

	if prune {
		t.Prune(live)
	}
	return rescanned
}
