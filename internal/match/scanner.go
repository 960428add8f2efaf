package match

import (
	"regexp"
	"sort"
	"sync"
	"unicode/utf8"

	"tagcomplete/internal/domain"
)

// Scanner finds live trigger candidates in block text. Patterns are compiled
// once per prefix.
type Scanner struct {
	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// NewScanner creates a scanner with an empty pattern cache
func NewScanner() *Scanner {
	return &Scanner{patterns: make(map[string]*regexp.Regexp)}
}

func (s *Scanner) pattern(prefix string) *regexp.Regexp {
	s.mu.Lock()
	defer s.mu.Unlock()

	if re, ok := s.patterns[prefix]; ok {
		return re
	}
	// The token stops at the first whitespace; the whitespace itself is not
	// part of the range.
	re := regexp.MustCompile(regexp.QuoteMeta(prefix) + `[^\s\p{Z}]*`)
	s.patterns[prefix] = re
	return re
}

// Scan returns every match of trigger in block, left to right and non-overlapping.
// Characters inside excluded never take part in a match, so a committed
// annotation splits the block into independently scanned segments.
func (s *Scanner) Scan(trigger domain.TriggerConfig, block domain.Block, excluded []domain.TextRange) []domain.MatchRange {
	if block.Text == "" || trigger.Prefix == "" {
		return nil
	}

	re := s.pattern(trigger.Prefix)
	runes := []rune(block.Text)

	var out []domain.MatchRange
	for _, seg := range segments(len(runes), excluded) {
		text := string(runes[seg.Start:seg.End])
		for _, loc := range re.FindAllStringIndex(text, -1) {
			start := seg.Start + utf8.RuneCountInString(text[:loc[0]])
			end := start + utf8.RuneCountInString(text[loc[0]:loc[1]])
			out = append(out, domain.MatchRange{
				BlockID: block.ID,
				Start:   start,
				End:     end,
				Type:    trigger.Type,
			})
		}
	}
	return out
}

// segments returns the parts of [0, n) not covered by excluded
func segments(n int, excluded []domain.TextRange) []domain.TextRange {
	if len(excluded) == 0 {
		return []domain.TextRange{{Start: 0, End: n}}
	}

	sorted := make([]domain.TextRange, len(excluded))
	copy(sorted, excluded)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var out []domain.TextRange
	pos := 0
	for _, r := range sorted {
		start, end := clamp(r.Start, n), clamp(r.End, n)
		if start > pos {
			out = append(out, domain.TextRange{Start: pos, End: start})
		}
		if end > pos {
			pos = end
		}
	}
	if pos < n {
		out = append(out, domain.TextRange{Start: pos, End: n})
	}
	return out
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v > n {
		return n
	}
	return v
}
