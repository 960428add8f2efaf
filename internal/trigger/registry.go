package trigger

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"tagcomplete/internal/domain"
)

// Registry is the ordered, immutable set of triggers an engine works with.
// Every trigger is scanned independently; registry order only breaks ties
// when several matches contain the caret.
type Registry struct {
	triggers []domain.TriggerConfig
	byType   map[string]int
}

// New validates the given triggers and returns a registry holding them in order
func New(configs ...domain.TriggerConfig) (*Registry, error) {
	r := &Registry{
		triggers: make([]domain.TriggerConfig, 0, len(configs)),
		byType:   make(map[string]int, len(configs)),
	}

	var errs []error
	for i, cfg := range configs {
		if err := validate(cfg); err != nil {
			errs = append(errs, fmt.Errorf("trigger %d: %w", i, err))
			continue
		}
		if _, dup := r.byType[cfg.Type]; dup {
			errs = append(errs, fmt.Errorf("trigger %d: duplicate type %q", i, cfg.Type))
			continue
		}
		r.byType[cfg.Type] = len(r.triggers)
		r.triggers = append(r.triggers, cfg)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return r, nil
}

// MustNew is like New but panics on invalid configuration
func MustNew(configs ...domain.TriggerConfig) *Registry {
	r, err := New(configs...)
	if err != nil {
		panic(err)
	}
	return r
}

func validate(cfg domain.TriggerConfig) error {
	if cfg.Prefix == "" {
		return errors.New("empty prefix")
	}
	if strings.IndexFunc(cfg.Prefix, unicode.IsSpace) >= 0 {
		return fmt.Errorf("prefix %q contains whitespace", cfg.Prefix)
	}
	if strings.TrimSpace(cfg.Type) == "" {
		return errors.New("empty type")
	}
	if !cfg.Mutability.Valid() {
		return fmt.Errorf("type %q: invalid mutability %d", cfg.Type, int(cfg.Mutability))
	}
	if cfg.Lookup == nil {
		return fmt.Errorf("type %q: missing lookup", cfg.Type)
	}
	return nil
}

// All returns the triggers in registration order
func (r *Registry) All() []domain.TriggerConfig {
	if r == nil {
		return nil
	}
	out := make([]domain.TriggerConfig, len(r.triggers))
	copy(out, r.triggers)
	return out
}

// Get returns the trigger registered for a type
func (r *Registry) Get(typ string) (domain.TriggerConfig, bool) {
	if r == nil {
		return domain.TriggerConfig{}, false
	}
	i, ok := r.byType[typ]
	if !ok {
		return domain.TriggerConfig{}, false
	}
	return r.triggers[i], true
}

// Types returns the registered types in order
func (r *Registry) Types() []string {
	if r == nil {
		return nil
	}
	types := make([]string, len(r.triggers))
	for i, t := range r.triggers {
		types[i] = t.Type
	}
	return types
}

// Len returns the number of registered triggers
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.triggers)
}
