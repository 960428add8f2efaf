package autocomplete

import (
	"context"
	"time"

	"tagcomplete/internal/domain"
	"tagcomplete/internal/eventbus"
	"tagcomplete/internal/keys"
	"tagcomplete/internal/trigger"
)

// Options configures an engine
type Options struct {
	Triggers *trigger.Registry
	Bus      eventbus.EventBus

	// Focused is the initial focus state; later changes arrive as
	// tea.FocusMsg and tea.BlurMsg
	Focused bool

	// LookupTimeout bounds every lookup; zero waits forever
	LookupTimeout time.Duration
	// MaxSuggestions caps the list; zero keeps everything
	MaxSuggestions int
	// PruneRemovedBlocks drops match table entries of deleted blocks
	PruneRemovedBlocks bool

	// KeyMap overrides the default suggestion list bindings
	KeyMap *keys.KeyMap
	// KeyBindingFn and HandleKeyCommand receive the keys and commands the
	// engine does not consume
	KeyBindingFn     keys.BindingFunc
	HandleKeyCommand keys.CommandHandler

	// PositionFunc returns where the list should be drawn, in host coordinates
	PositionFunc func() *domain.Position

	// Context is the parent of every lookup context
	Context context.Context
}
