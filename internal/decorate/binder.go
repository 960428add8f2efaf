package decorate

import (
	"tagcomplete/internal/domain"
	"tagcomplete/internal/match"
)

// Strategy name prefixes
const (
	EntityPrefix = "entity:"
	LivePrefix   = "live:"
)

// Bind turns triggers into render strategies: for each trigger, one over its
// committed annotations followed by one over its live matches. Live ranges
// are read from table, which must be synced before decorating.
func Bind(triggers []domain.TriggerConfig, table *match.Table) []domain.Strategy {
	strategies := make([]domain.Strategy, 0, 2*len(triggers))
	for _, trig := range triggers {
		typ := trig.Type
		strategies = append(strategies,
			domain.Strategy{
				Name: EntityPrefix + typ,
				Find: func(doc domain.Document, block domain.Block) []domain.TextRange {
					return match.AnnotatedRanges(doc, block, typ)
				},
				Render: trig.Render.Annotation,
			},
			domain.Strategy{
				Name: LivePrefix + typ,
				Find: func(_ domain.Document, block domain.Block) []domain.TextRange {
					live := table.Matches(block.ID, typ)
					out := make([]domain.TextRange, len(live))
					for i, r := range live {
						out[i] = r.TextRange()
					}
					return out
				},
			},
		)
	}
	return strategies
}
