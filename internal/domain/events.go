package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventMatchResolved        EventType = "MatchResolved"
	EventMatchCleared         EventType = "MatchCleared"
	EventSuggestionsApplied   EventType = "SuggestionsApplied"
	EventSuggestionsDiscarded EventType = "SuggestionsDiscarded"
	EventLookupFailed         EventType = "LookupFailed"
	EventAnnotationCommitted  EventType = "AnnotationCommitted"
	EventConfigLoaded         EventType = "ConfigLoaded"
	EventConfigSaved          EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// MatchResolvedEvent is emitted when the caret enters a match and a lookup is dispatched
type MatchResolvedEvent struct {
	Range MatchRange
	Query string
}

func (e MatchResolvedEvent) Type() EventType { return EventMatchResolved }

// MatchClearedEvent is emitted when the active match goes away
type MatchClearedEvent struct {
	Range  MatchRange
	Reason string
}

func (e MatchClearedEvent) Type() EventType { return EventMatchCleared }

// SuggestionsAppliedEvent is emitted when a lookup result reaches the selection state
type SuggestionsAppliedEvent struct {
	Range MatchRange
	Query string
	Count int
}

func (e SuggestionsAppliedEvent) Type() EventType { return EventSuggestionsApplied }

// SuggestionsDiscardedEvent is emitted when a superseded lookup result is dropped
type SuggestionsDiscardedEvent struct {
	Range MatchRange
	Query string
}

func (e SuggestionsDiscardedEvent) Type() EventType { return EventSuggestionsDiscarded }

// LookupFailedEvent is emitted when a lookup errors, panics or times out
type LookupFailedEvent struct {
	TriggerType string
	Query       string
	Err         error
}

func (e LookupFailedEvent) Type() EventType { return EventLookupFailed }

// AnnotationCommittedEvent is emitted after a suggestion replaced its match
type AnnotationCommittedEvent struct {
	Range      MatchRange
	Text       string
	Annotation Annotation
	Cursor     Cursor
}

func (e AnnotationCommittedEvent) Type() EventType { return EventAnnotationCommitted }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path     string
	Triggers int
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
