package push

import (
	"github.com/stratalab/gensync/track"
	"github.com/stratalab/gensync/wire"
)

// The channel carries one event type; "complete" and "error" are views over
// it, keyed by status. They are predicates rather than separately registered
// callbacks so the three views can never diverge.

// IsComplete reports whether the event announces successful completion.
func IsComplete(ev wire.ProgressEvent) bool {
	return wire.Normalize(ev).Status == track.StatusSucceeded
}

// IsFailed reports whether the event announces failure.
func IsFailed(ev wire.ProgressEvent) bool {
	return wire.Normalize(ev).Status == track.StatusFailed
}

// IsTerminal reports whether the event ends its job either way.
func IsTerminal(ev wire.ProgressEvent) bool {
	return wire.Normalize(ev).Status.Terminal()
}
