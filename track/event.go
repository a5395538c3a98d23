package track

// Event is the canonical progress event all transports are normalized into
// before reaching the Store. See the wire package for the mapping.
type Event struct {
	JobID  string
	Status Status

	// RawStatus is the original wire status string, kept when Status is
	// StatusUnknown so the change is not lost.
	RawStatus string

	// Progress is 0-100. Values outside the range are clamped; values below
	// the job's stored progress are ignored (progress floor).
	Progress int

	Message     string
	CurrentStep string

	// Files accompanies a succeeded event.
	Files map[string]string

	// FailureReason accompanies a failed event.
	FailureReason string
}
