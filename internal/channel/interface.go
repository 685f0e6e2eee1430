package channel

import (
	"context"

	"github.com/heraldbot/herald/internal/params"
)

// Actions is the runtime adapter between herald and one configured channel
// of a messaging provider (for example Telegram). Implementations
// translate raw action parameters into provider API calls on behalf of the
// accounts configured for that channel.
//
// Adapters hold connection handles only. Each call below is an
// independent, stateless operation; nothing is cached between calls.
type Actions interface {
	// ID returns the unique configured channel identifier.
	ID() string

	// Type returns the channel provider type used for routing.
	Type() Type

	// ListActions returns the action kinds currently usable on this
	// channel, the union across its enabled accounts. The result always
	// starts with send when at least one account exists and is empty when
	// none do.
	ListActions() []ActionKind

	// SupportsButtons reports whether any enabled account on this channel
	// can attach inline keyboard buttons.
	SupportsButtons() bool

	// HandleAction builds the canonical request for kind from args and
	// performs exactly one provider call, returning its outcome unchanged.
	// Kinds outside the channel's closed set fail with
	// ErrUnsupportedAction. Parameter violations fail with params.ErrInvalid
	// before any provider effect occurs.
	HandleAction(ctx context.Context, kind ActionKind, args params.Bag, opts *DispatchOpts) (*ActionResult, error)

	// Close releases provider connections.
	Close(ctx context.Context) error
}
