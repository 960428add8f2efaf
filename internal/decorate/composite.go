package decorate

import (
	"sort"
	"strings"

	"tagcomplete/internal/domain"
)

// Composite applies strategies in order. A character claimed by an earlier
// strategy is never decorated again, so registration order is precedence.
type Composite struct {
	strategies []domain.Strategy
}

var _ domain.Decorator = (*Composite)(nil)

// NewComposite creates a decorator from strategies
func NewComposite(strategies ...domain.Strategy) *Composite {
	return &Composite{strategies: append([]domain.Strategy(nil), strategies...)}
}

// Compose keeps the strategies of an already installed decorator ahead of own
func Compose(existing domain.Decorator, own []domain.Strategy) *Composite {
	var strategies []domain.Strategy
	if existing != nil {
		strategies = append(strategies, existing.Strategies()...)
	}
	return NewComposite(append(strategies, own...)...)
}

// Strategies returns the strategies in precedence order
func (c *Composite) Strategies() []domain.Strategy {
	return append([]domain.Strategy(nil), c.strategies...)
}

// Decorate returns the spans of block sorted by start offset
func (c *Composite) Decorate(doc domain.Document, block domain.Block) []domain.Span {
	n := block.Len()
	claimed := make([]bool, n)

	var spans []domain.Span
	for _, s := range c.strategies {
		if s.Find == nil {
			continue
		}
	ranges:
		for _, r := range s.Find(doc, block) {
			if r.Start < 0 || r.End > n || r.Start >= r.End {
				continue
			}
			for i := r.Start; i < r.End; i++ {
				if claimed[i] {
					continue ranges
				}
			}
			for i := r.Start; i < r.End; i++ {
				claimed[i] = true
			}
			spans = append(spans, domain.Span{TextRange: r, Strategy: s.Name, Render: s.Render})
		}
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}

// Apply renders text with its spans. Text outside spans, and spans without a
// renderer, pass through unchanged.
func Apply(text string, spans []domain.Span) string {
	runes := []rune(text)

	var b strings.Builder
	pos := 0
	for _, s := range spans {
		if s.Start < pos || s.End > len(runes) {
			continue
		}
		b.WriteString(string(runes[pos:s.Start]))
		part := string(runes[s.Start:s.End])
		if s.Render != nil {
			part = s.Render(part)
		}
		b.WriteString(part)
		pos = s.End
	}
	b.WriteString(string(runes[pos:]))
	return b.String()
}
