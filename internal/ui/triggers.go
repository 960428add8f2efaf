package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tagcomplete/internal/autocomplete"
	"tagcomplete/internal/config"
	"tagcomplete/internal/domain"
	"tagcomplete/internal/source"
	"tagcomplete/internal/trigger"
)

// Triggers is the registry built from the configuration together with the
// sources that must be closed on exit
type Triggers struct {
	Registry *trigger.Registry
	closers  []io.Closer
}

// Close releases the trigger sources
func (t *Triggers) Close() error {
	var errs []error
	for _, c := range t.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// LoadTriggers builds a trigger registry from the configured triggers. SQLite
// sources are opened and seeded with the configured items.
func LoadTriggers(ctx context.Context, cfg *config.Config) (*Triggers, error) {
	t := &Triggers{}
	listWidth := cfg.UI.ListWidth

	var configs []domain.TriggerConfig
	for i, tc := range cfg.Triggers {
		mut, err := domain.ParseMutability(tc.Mutability)
		if err != nil {
			t.Close()
			return nil, fmt.Errorf("triggers[%d]: %w", i, err)
		}

		lookup, err := t.lookup(ctx, tc.Source)
		if err != nil {
			t.Close()
			return nil, fmt.Errorf("triggers[%d] %s: %w", i, tc.Type, err)
		}

		configs = append(configs, domain.TriggerConfig{
			Prefix:     tc.Prefix,
			Type:       tc.Type,
			Mutability: mut,
			Lookup:     lookup,
			Format: func(s domain.Suggestion) string {
				return tc.FormatLabel(domain.LabelOf(s))
			},
			Render: domain.RenderBindings{
				Annotation: annotationStyle(tc.Style).Render,
				List: func(props domain.ListProps) string {
					return renderList(props, listWidth)
				},
			},
		})
	}

	reg, err := trigger.New(configs...)
	if err != nil {
		t.Close()
		return nil, err
	}
	t.Registry = reg
	return t, nil
}

func (t *Triggers) lookup(ctx context.Context, src config.SourceConfig) (domain.Lookup, error) {
	switch src.Kind {
	case config.SourceStatic, "":
		mode, err := source.ParseMode(src.Match)
		if err != nil {
			return nil, err
		}
		return source.NewStatic(src.Items, mode).Lookup(), nil

	case config.SourceSQLite:
		db, err := source.OpenSQL(src.DSN, src.Query)
		if err != nil {
			return nil, err
		}
		t.closers = append(t.closers, db)
		if len(src.Items) > 0 {
			if err := db.Seed(ctx, src.Items...); err != nil {
				return nil, err
			}
		}
		return db.Lookup(), nil

	default:
		return nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}

func annotationStyle(s config.StyleSettings) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(s.Bold).Underline(s.Underline)
	if s.Foreground != "" {
		style = style.Foreground(lipgloss.Color(s.Foreground))
	}
	if s.Background != "" {
		style = style.Background(lipgloss.Color(s.Background))
	}
	return style
}

var listBorder = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("62"))

// renderList draws the list like the engine default, at a fixed width
func renderList(props domain.ListProps, width int) string {
	if width <= 0 {
		return autocomplete.DefaultList(props)
	}
	style := listBorder.Width(width)
	if !props.Focused {
		style = style.BorderForeground(lipgloss.Color("241"))
	}
	items := make([]string, len(props.Items))
	for i, item := range props.Items {
		items[i] = lipgloss.NewStyle().MaxWidth(width).Render(item)
	}
	return style.Render(strings.Join(items, "\n"))
}
