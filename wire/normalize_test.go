package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stratalab/gensync/track"
)

func TestNormalizeStatusVocabulary(t *testing.T) {
	cases := []struct {
		wire string
		want track.Status
	}{
		{"processing", track.StatusRunning},
		{"validating", track.StatusRunning},
		{"completed", track.StatusSucceeded},
		{"failed", track.StatusFailed},
		{"pending", track.StatusQueued},
		{"queued", track.StatusQueued},
		{"PROCESSING", track.StatusRunning}, // project endpoints shout
		{"COMPLETED", track.StatusSucceeded},
	}
	for _, tc := range cases {
		got := Normalize(ProgressEvent{ProjectID: "j1", Status: tc.wire})
		assert.Equal(t, tc.want, got.Status, "wire status %q", tc.wire)
		assert.Empty(t, got.RawStatus)
	}
}

func TestNormalizeUnknownStatusPassesThroughTagged(t *testing.T) {
	got := Normalize(ProgressEvent{ProjectID: "j1", Status: "hibernating", Message: "zzz"})
	assert.Equal(t, track.StatusUnknown, got.Status)
	assert.Equal(t, "hibernating", got.RawStatus)
	assert.Equal(t, "zzz", got.Message)
}

func TestNormalizeFailurePrefersStructuredError(t *testing.T) {
	got := Normalize(ProgressEvent{
		ProjectID: "j1",
		Status:    "failed",
		Message:   "generation failed",
		Error:     "quota exceeded",
	})
	assert.Equal(t, track.StatusFailed, got.Status)
	assert.Equal(t, "quota exceeded", got.FailureReason)
}

func TestNormalizeFailureFallsBackToMessage(t *testing.T) {
	got := Normalize(ProgressEvent{ProjectID: "j1", Status: "failed", Message: "model unavailable"})
	assert.Equal(t, "model unavailable", got.FailureReason)
}

func TestNormalizeFilesOnlyOnSuccess(t *testing.T) {
	files := map[string]string{"index.html": "<html></html>"}

	got := Normalize(ProgressEvent{ProjectID: "j1", Status: "completed", Progress: 100, Files: files})
	assert.Equal(t, files, got.Files)

	got = Normalize(ProgressEvent{ProjectID: "j1", Status: "processing", Progress: 50, Files: files})
	assert.Nil(t, got.Files)
}

func TestNormalizeProject(t *testing.T) {
	p := Project{
		ID:       "p1",
		Status:   "COMPLETED",
		Progress: 100,
		Files: []ProjectFile{
			{FilePath: "/index.html", Content: "<html></html>"},
			{FilePath: "/style.css", Content: "body{}"},
		},
	}
	got := NormalizeProject(p)
	assert.Equal(t, "p1", got.JobID)
	assert.Equal(t, track.StatusSucceeded, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Len(t, got.Files, 2)
	assert.Equal(t, "<html></html>", got.Files["/index.html"])
}

func TestNormalizeProjectFailed(t *testing.T) {
	got := NormalizeProject(Project{ID: "p2", Status: "FAILED", Progress: 40, ErrorMessage: "upstream timeout"})
	assert.Equal(t, track.StatusFailed, got.Status)
	assert.Equal(t, "upstream timeout", got.FailureReason)
}
