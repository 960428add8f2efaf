package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"

	"tagcomplete/internal/domain"
)

const keyColumn = 14

// HelpRenderer handles help content rendering
type HelpRenderer struct {
	titleStyle   lipgloss.Style
	sectionStyle lipgloss.Style
	keyStyle     lipgloss.Style
	descStyle    lipgloss.Style
}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer() *HelpRenderer {
	return &HelpRenderer{
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		sectionStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginTop(1),
		keyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		descStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	}
}

// HelpSection is a titled group of key bindings
type HelpSection struct {
	Title    string
	Bindings []key.Binding
}

// Render generates the help content for the pager
func (r *HelpRenderer) Render(sections []HelpSection, triggers []domain.TriggerConfig) string {
	var help strings.Builder

	help.WriteString(r.titleStyle.Render("tagcomplete Help"))
	help.WriteString("\n")

	for _, s := range sections {
		help.WriteString(r.sectionStyle.Render(s.Title))
		help.WriteString("\n")
		for _, b := range s.Bindings {
			h := b.Help()
			help.WriteString(r.line(h.Key, h.Desc))
		}
		help.WriteString("\n")
	}

	help.WriteString(r.sectionStyle.Render("Triggers"))
	help.WriteString("\n")
	for _, t := range triggers {
		help.WriteString(r.line(t.Prefix, fmt.Sprintf("%s (%s)", t.Type, t.Mutability)))
	}

	return strings.TrimRight(help.String(), "\n")
}

// line pads the key before styling it; escape codes must not count toward the column
func (r *HelpRenderer) line(key, desc string) string {
	return "  " + r.keyStyle.Render(fmt.Sprintf("%-*s", keyColumn, key)) + " " + r.descStyle.Render(desc) + "\n"
}

// HelpOps handles help operations
type HelpOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewHelpOps creates a new help operations instance
func NewHelpOps(program *tea.Program) *HelpOps {
	return &HelpOps{
		program: program,
	}
}

// ShowHelpInPager shows help content using ov pager
func (h *HelpOps) ShowHelpInPager(helpContent string) error {
	if h.program == nil {
		return fmt.Errorf("program not set")
	}

	// Release terminal control to run ov
	if err := h.program.ReleaseTerminal(); err != nil {
		return err
	}

	defer func() {
		// give ov time to leave the alternate screen
		time.Sleep(100 * time.Millisecond)
		_ = h.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(helpContent))
	if err != nil {
		return err
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
