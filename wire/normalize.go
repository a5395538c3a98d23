package wire

import (
	"strings"

	"github.com/stratalab/gensync/track"
)

// statusFromWire maps a wire status string to the canonical variant.
// Unknown strings map to StatusUnknown rather than being dropped, so the
// store can at least record that something changed.
func statusFromWire(s string) track.Status {
	switch strings.ToLower(s) {
	case "pending", "queued":
		return track.StatusQueued
	case "processing", "validating", "running":
		return track.StatusRunning
	case "completed", "succeeded":
		return track.StatusSucceeded
	case "failed":
		return track.StatusFailed
	default:
		return track.StatusUnknown
	}
}

// Normalize maps a push-source progress event into the canonical shape.
func Normalize(ev ProgressEvent) track.Event {
	status := statusFromWire(ev.Status)

	out := track.Event{
		JobID:       ev.ProjectID,
		Status:      status,
		Progress:    ev.Progress,
		Message:     ev.Message,
		CurrentStep: ev.CurrentStep,
	}

	if status == track.StatusUnknown {
		out.RawStatus = ev.Status
	}
	if status == track.StatusSucceeded {
		out.Files = ev.Files
	}
	if status == track.StatusFailed {
		// Both `error` and `message` carry the failure reason on the wire;
		// prefer the structured field when present.
		out.FailureReason = ev.Error
		if out.FailureReason == "" {
			out.FailureReason = ev.Message
		}
	}
	return out
}

// NormalizeProject folds a project snapshot from the listing endpoints into
// the same canonical event shape, so polling consumers reuse Store.Apply.
func NormalizeProject(p Project) track.Event {
	status := statusFromWire(p.Status)

	out := track.Event{
		JobID:    p.ID,
		Status:   status,
		Progress: p.Progress,
	}

	if status == track.StatusUnknown {
		out.RawStatus = p.Status
	}
	if status == track.StatusSucceeded && len(p.Files) > 0 {
		files := make(map[string]string, len(p.Files))
		for _, f := range p.Files {
			files[f.FilePath] = f.Content
		}
		out.Files = files
	}
	if status == track.StatusFailed {
		out.FailureReason = p.ErrorMessage
	}
	return out
}
