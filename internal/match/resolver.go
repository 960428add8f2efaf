package match

import (
	"tagcomplete/internal/domain"
)

// CaretGuard returns the caret when resolution may proceed at all: the
// selection is collapsed, its block exists and is not empty, and the caret is
// not sitting on a committed annotation.
func CaretGuard(doc domain.Document) (domain.Cursor, bool) {
	sel := doc.Selection()
	if !sel.Collapsed() {
		return domain.Cursor{}, false
	}

	caret := sel.Focus
	block, ok := doc.Block(caret.BlockID)
	if !ok || block.Text == "" {
		return domain.Cursor{}, false
	}

	if caret.Offset > 0 {
		if _, annotated := doc.AnnotationAt(caret.BlockID, caret.Offset-1); annotated {
			return domain.Cursor{}, false
		}
	}
	return caret, true
}

// Resolve returns the match containing the cursor. When matches of several
// trigger types contain it, the first trigger in registry order wins.
func Resolve(cursor domain.Cursor, table *Table, triggers []domain.TriggerConfig) (domain.MatchRange, domain.TriggerConfig, bool) {
	if table == nil || !table.HasMatches(cursor.BlockID) {
		return domain.MatchRange{}, domain.TriggerConfig{}, false
	}

	for _, trig := range triggers {
		for _, r := range table.Matches(cursor.BlockID, trig.Type) {
			if r.Contains(cursor) {
				return r, trig, true
			}
		}
	}
	return domain.MatchRange{}, domain.TriggerConfig{}, false
}

// QueryText returns the token typed after the prefix
func QueryText(block domain.Block, r domain.MatchRange, prefix string) string {
	runes := []rune(block.Text)
	start := r.Start + len([]rune(prefix))
	end := r.End
	if start < 0 || end > len(runes) || start >= end {
		return ""
	}
	return string(runes[start:end])
}
