package suggest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tagcomplete/internal/domain"
)

// ErrLookupPanic is reported when a lookup function panicked
var ErrLookupPanic = errors.New("lookup panicked")

// ResultMsg carries a finished lookup back into the Bubble Tea loop. Target and
// Query identify the match the lookup was started for.
type ResultMsg struct {
	Target      domain.MatchRange
	Query       string
	Suggestions []domain.Suggestion
	Err         error
}

// Targets reports whether the result belongs to the given active match. A
// result whose match was replaced or cleared in the meantime is stale.
func (m ResultMsg) Targets(active *domain.ActiveMatch) bool {
	if active == nil {
		return false
	}
	return active.Range == m.Target && active.Query == m.Query
}

// Fetcher runs trigger lookups off the event loop
type Fetcher struct {
	timeout time.Duration
	limit   int
}

// NewFetcher creates a fetcher. A zero timeout waits forever and a zero
// limit keeps every suggestion.
func NewFetcher(timeout time.Duration, limit int) *Fetcher {
	return &Fetcher{timeout: timeout, limit: limit}
}

// Fetch returns a command that looks up suggestions for the match
func (f *Fetcher) Fetch(ctx context.Context, trigger domain.TriggerConfig, target domain.MatchRange, query string) tea.Cmd {
	return func() tea.Msg {
		suggestions, err := f.Run(ctx, trigger, query)
		return ResultMsg{
			Target:      target,
			Query:       query,
			Suggestions: suggestions,
			Err:         err,
		}
	}
}

// Run invokes the trigger lookup and waits for it. Failures never surface as
// a missing list: the returned slice is empty but non-nil whenever err is set.
func (f *Fetcher) Run(ctx context.Context, trigger domain.TriggerConfig, query string) ([]domain.Suggestion, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if trigger.Lookup == nil {
		return []domain.Suggestion{}, fmt.Errorf("trigger %s: missing lookup", trigger.Type)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	type result struct {
		suggestions []domain.Suggestion
		err         error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %v", ErrLookupPanic, r)}
			}
		}()
		s, err := trigger.Lookup(ctx, query)
		done <- result{suggestions: s, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			log.Printf("Lookup %s for %q failed: %v", trigger.Type, query, r.err)
			return []domain.Suggestion{}, r.err
		}
		return f.cap(r.suggestions), nil
	case <-ctx.Done():
		log.Printf("Lookup %s for %q abandoned: %v", trigger.Type, query, ctx.Err())
		return []domain.Suggestion{}, fmt.Errorf("lookup %s: %w", trigger.Type, ctx.Err())
	}
}

func (f *Fetcher) cap(s []domain.Suggestion) []domain.Suggestion {
	if s == nil {
		return []domain.Suggestion{}
	}
	if f.limit > 0 && len(s) > f.limit {
		return s[:f.limit]
	}
	return s
}
