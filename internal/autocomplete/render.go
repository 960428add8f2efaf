package autocomplete

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tagcomplete/internal/domain"
)

var (
	annotationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
	itemStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			PaddingRight(1)
	currentItemStyle = itemStyle.
				Foreground(lipgloss.Color("230")).
				Background(lipgloss.Color("62"))
	listStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241"))
	blurredListStyle = listStyle.Faint(true)
)

// DefaultAnnotation renders committed annotations
func DefaultAnnotation(text string) string {
	return annotationStyle.Render(text)
}

// DefaultItem renders one suggestion, highlighting the selected one
func DefaultItem(props domain.ItemProps) string {
	label := domain.LabelOf(props.Suggestion)
	if props.Current {
		return currentItemStyle.Render(label)
	}
	return itemStyle.Render(label)
}

// DefaultList stacks the rendered items in a bordered box
func DefaultList(props domain.ListProps) string {
	style := listStyle
	if !props.Focused {
		style = blurredListStyle
	}
	return style.Render(strings.Join(props.Items, "\n"))
}

// withDefaults fills the render bindings a trigger left empty
func withDefaults(t domain.TriggerConfig) domain.TriggerConfig {
	if t.Render.Annotation == nil {
		t.Render.Annotation = DefaultAnnotation
	}
	if t.Render.Item == nil {
		t.Render.Item = DefaultItem
	}
	if t.Render.List == nil {
		t.Render.List = DefaultList
	}
	return t
}
