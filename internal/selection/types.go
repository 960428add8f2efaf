package selection

import "tagcomplete/internal/domain"

// Status is the match dimension of the selection state
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSuggesting Status = "suggesting"
)

// Direction represents list navigation
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// State holds the whole selection state. Focus is orthogonal to Status.
type State struct {
	Focused bool
	Active  *domain.ActiveMatch
	Index   int
}
