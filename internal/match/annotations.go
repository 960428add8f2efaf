package match

import "tagcomplete/internal/domain"

// AnnotatedRanges returns the ranges of block covered by annotations of the
// given type. Adjacent annotations with different keys are reported separately.
func AnnotatedRanges(doc domain.Document, block domain.Block, typ string) []domain.TextRange {
	var (
		out     []domain.TextRange
		open    bool
		openKey string
		start   int
	)

	n := block.Len()
	for i := 0; i < n; i++ {
		ann, ok := doc.AnnotationAt(block.ID, i)
		covered := ok && ann.Type == typ

		if open && (!covered || ann.Key != openKey) {
			out = append(out, domain.TextRange{Start: start, End: i})
			open = false
		}
		if covered && !open {
			open, openKey, start = true, ann.Key, i
		}
	}
	if open {
		out = append(out, domain.TextRange{Start: start, End: n})
	}
	return out
}
