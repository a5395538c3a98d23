package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelWrappingPreservesIdentity(t *testing.T) {
	err := Wrap(ErrTransport, "dial tcp: connection refused")
	err = Wrap(err, "submitting generation job")

	assert.True(t, IsTransportError(err))
	assert.False(t, IsSubmissionError(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNewSubmissionErrorCarriesServerMessage(t *testing.T) {
	err := NewSubmissionError("companyName already in use")
	assert.True(t, IsSubmissionError(err))
	assert.Contains(t, err.Error(), "companyName already in use")
}

func TestNewSubmissionErrorEmptyMessage(t *testing.T) {
	err := NewSubmissionError("")
	assert.True(t, IsSubmissionError(err))
	assert.Contains(t, err.Error(), "no message from server")
}

func TestValidationErrorFormatting(t *testing.T) {
	err := NewValidationError("missing field %q", "companyName")
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), `missing field "companyName"`)
}

func TestNilChecks(t *testing.T) {
	assert.False(t, IsValidationError(nil))
	assert.False(t, IsTransportError(nil))
	assert.False(t, IsUnauthorizedError(nil))
}
