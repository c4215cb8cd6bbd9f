package alert

import "context"

// Notifier delivers an event to its channels. Delivery is fire-and-forget
// from the caller's point of view; transport failures are handled inside
// the implementation, never surfaced to the monitor loop.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}
