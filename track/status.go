// Package track is the reconciliation core for generation jobs.
//
// Progress updates arrive from three independent transports (the unary submit
// call, the request-scoped event stream, and the shared push channel) with
// at-least-once delivery and no cross-transport ordering. All of them funnel
// through Store.Apply, which enforces status monotonicity, the progress floor,
// and terminal absorption so duplicates and stale replays collapse into one
// consistent view.
package track

// Status is the canonical job status. Wire vocabularies are mapped into this
// closed set by the wire package; nothing else performs string-to-status
// mapping.
type Status string

const (
	// StatusUnknown tags wire statuses outside the known vocabulary. It never
	// outranks a known status.
	StatusUnknown Status = "unknown"

	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is absorbing: once reached, no event
// may change a job's status, progress, result, or failure reason.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// rank orders statuses for monotonic transitions: queued < running < terminal.
// Unknown ranks below queued so it can never regress a known status.
func (s Status) rank() int {
	switch s {
	case StatusQueued:
		return 1
	case StatusRunning:
		return 2
	case StatusSucceeded, StatusFailed:
		return 3
	default:
		return 0
	}
}

// IsValidStatus returns true if the string is a canonical status.
func IsValidStatus(s string) bool {
	switch Status(s) {
	case StatusUnknown, StatusQueued, StatusRunning, StatusSucceeded, StatusFailed:
		return true
	default:
		return false
	}
}
