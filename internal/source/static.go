package source

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"tagcomplete/internal/domain"
)

// Mode selects how a static source filters its items
type Mode string

const (
	ModeContains Mode = "contains"
	ModePrefix   Mode = "prefix"
	ModeFuzzy    Mode = "fuzzy"
)

// ParseMode validates a mode name; empty means contains
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeContains, nil
	case ModeContains, ModePrefix, ModeFuzzy:
		return m, nil
	default:
		return "", fmt.Errorf("unknown match mode %q", s)
	}
}

// Static filters a fixed list of labels
type Static struct {
	items []string
	mode  Mode
}

// NewStatic creates a static source over items
func NewStatic(items []string, mode Mode) *Static {
	return &Static{items: append([]string(nil), items...), mode: mode}
}

// Filter returns the items matching query, in list order except in fuzzy
// mode where the best matches come first. An empty query matches everything.
func (s *Static) Filter(query string) []domain.Suggestion {
	out := []domain.Suggestion{}
	if query == "" {
		for _, item := range s.items {
			out = append(out, item)
		}
		return out
	}

	if s.mode == ModeFuzzy {
		for _, m := range fuzzy.Find(query, s.items) {
			out = append(out, m.Str)
		}
		return out
	}

	q := strings.ToLower(query)
	for _, item := range s.items {
		l := strings.ToLower(item)
		matched := strings.Contains(l, q)
		if s.mode == ModePrefix {
			matched = strings.HasPrefix(l, q)
		}
		if matched {
			out = append(out, item)
		}
	}
	return out
}

// Lookup adapts the source to a trigger lookup
func (s *Static) Lookup() domain.Lookup {
	return domain.StaticLookup(s.Filter)
}
