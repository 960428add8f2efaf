package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Dim           lipgloss.Style
	Status        lipgloss.Style
	StatusError   lipgloss.Style
	StatusSuccess lipgloss.Style
	Help          lipgloss.Style
	Caret         lipgloss.Style
	CaretBlurred  lipgloss.Style
	Selection     lipgloss.Style
	Gutter        lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Dim:           lipgloss.NewStyle().Faint(true),
		Status:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		Help:          lipgloss.NewStyle().Faint(true),
		Caret:         lipgloss.NewStyle().Reverse(true),
		CaretBlurred:  lipgloss.NewStyle().Underline(true),
		Selection:     lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Gutter:        lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
