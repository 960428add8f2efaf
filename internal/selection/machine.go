package selection

import "tagcomplete/internal/domain"

// Machine tracks the active match and the selected suggestion index
type Machine struct {
	state State
}

// NewMachine creates an idle machine
func NewMachine(focused bool) *Machine {
	return &Machine{state: State{Focused: focused}}
}

// State returns a copy of the current state
func (m *Machine) State() State {
	return m.state
}

// Active returns the active match, or nil when idle
func (m *Machine) Active() *domain.ActiveMatch {
	return m.state.Active
}

// Status reports IDLE until a lookup result has been applied to an active match
func (m *Machine) Status() Status {
	if m.state.Active.Fetched() {
		return StatusSuggesting
	}
	return StatusIdle
}

// Focused reports whether the host editor has focus
func (m *Machine) Focused() bool {
	return m.state.Focused
}

// SetFocused updates the focus dimension
func (m *Machine) SetFocused(focused bool) {
	m.state.Focused = focused
}

// Engaged reports whether navigation and commit commands apply
func (m *Machine) Engaged() bool {
	return m.state.Focused && m.Status() == StatusSuggesting
}

// Visible reports whether the suggestion list should be rendered
func (m *Machine) Visible() bool {
	return m.Engaged() && len(m.state.Active.Suggestions) > 0
}

// Replace installs the next active match. The index returns to 0 when the
// match identity changes and is otherwise clamped to the new list. A match
// still waiting for its lookup keeps the index until the result arrives.
func (m *Machine) Replace(next *domain.ActiveMatch) {
	if next == nil {
		m.Clear()
		return
	}

	prev := m.state.Active
	m.state.Active = next
	if prev == nil || prev.Range.Identity() != next.Range.Identity() {
		m.state.Index = 0
		return
	}
	if !next.Fetched() {
		return
	}
	m.state.Index = clampIndex(m.state.Index, len(next.Suggestions))
}

// Clear drops the active match
func (m *Machine) Clear() {
	m.state.Active = nil
	m.state.Index = 0
}

// Navigate moves the selected index, stopping at both ends of the list
func (m *Machine) Navigate(direction Direction) bool {
	if m.Status() != StatusSuggesting {
		return false
	}

	old := m.state.Index
	switch direction {
	case DirectionUp:
		m.state.Index--
	case DirectionDown:
		m.state.Index++
	}
	m.state.Index = clampIndex(m.state.Index, len(m.state.Active.Suggestions))
	return old != m.state.Index
}

// Index returns the selected index clamped to the current list
func (m *Machine) Index() int {
	if m.state.Active == nil {
		return 0
	}
	return clampIndex(m.state.Index, len(m.state.Active.Suggestions))
}

// Current returns the selected suggestion
func (m *Machine) Current() (domain.Suggestion, bool) {
	if m.Status() != StatusSuggesting || len(m.state.Active.Suggestions) == 0 {
		return nil, false
	}
	return m.state.Active.Suggestions[m.Index()], true
}

func clampIndex(i, n int) int {
	if i > n-1 {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
