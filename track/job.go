package track

import "time"

// Job is the current reconciled state of one generation job.
type Job struct {
	// ID is the opaque server-assigned identifier, immutable once issued.
	ID     string `json:"id"`
	Status Status `json:"status"`

	// Progress is 0-100 and never decreases while the job is running.
	Progress int `json:"progress"`

	// Message is the human-readable current step. Display-only; even a stale
	// or regressed event may update it.
	Message     string `json:"message,omitempty"`
	CurrentStep string `json:"current_step,omitempty"`

	// RawStatus holds the last unrecognized wire status, if any, so an
	// unknown vocabulary change is recorded rather than silently dropped.
	RawStatus string `json:"raw_status,omitempty"`

	// Files is the result payload, set only on the transition to succeeded.
	Files map[string]string `json:"files,omitempty"`

	// FailureReason is set only on the transition to failed.
	FailureReason string `json:"failure_reason,omitempty"`

	// Seq counts observable changes to this job. Assigned by the Store;
	// consumers use it to discard out-of-order snapshots.
	Seq int64 `json:"seq"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// snapshot returns a copy safe to hand to subscribers. Files is copied too:
// a consumer mutating its map must not leak into the store or other
// consumers.
func (j *Job) snapshot() Job {
	snap := *j
	if j.Files != nil {
		files := make(map[string]string, len(j.Files))
		for k, v := range j.Files {
			files[k] = v
		}
		snap.Files = files
	}
	return snap
}
