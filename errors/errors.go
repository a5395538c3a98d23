// Package errors provides error handling for gensync.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - PII-safe error formatting
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrTransport) {
//	    // the request never produced a response
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinel errors for the generation client. Every failure surfaced by the
// transport layers is or wraps exactly one of these, so callers can branch
// with errors.Is() instead of matching message strings.
var (
	// ErrValidation indicates the job specification was rejected before any
	// network call was made.
	ErrValidation = New("invalid job specification")

	// ErrTransport indicates no usable response: connection refused, dropped
	// mid-flight, or deadline expired. A dropped stream means "unknown", not
	// "failed": only an explicit failed event may fail a job.
	ErrTransport = New("transport failure")

	// ErrSubmission indicates the server rejected the submission with a
	// message. The server's message is attached via Wrap.
	ErrSubmission = New("submission rejected")

	// ErrDecode indicates a single malformed frame. Decoders recover from it;
	// it is logged, never surfaced through an event sequence.
	ErrDecode = New("malformed frame")

	// ErrUnauthorized indicates a 401 response; the session is invalid and
	// the calling layer decides what to do. Never retried here.
	ErrUnauthorized = New("unauthorized")

	// ErrChannelClosed indicates the push channel was explicitly disconnected
	// while a caller was still using it.
	ErrChannelClosed = New("push channel closed")
)

// IsValidationError checks if an error is or wraps ErrValidation.
func IsValidationError(err error) bool {
	return err != nil && Is(err, ErrValidation)
}

// IsTransportError checks if an error is or wraps ErrTransport.
func IsTransportError(err error) bool {
	return err != nil && Is(err, ErrTransport)
}

// IsSubmissionError checks if an error is or wraps ErrSubmission.
func IsSubmissionError(err error) bool {
	return err != nil && Is(err, ErrSubmission)
}

// IsUnauthorizedError checks if an error is or wraps ErrUnauthorized.
func IsUnauthorizedError(err error) bool {
	return err != nil && Is(err, ErrUnauthorized)
}

// NewValidationError creates a validation error with a formatted message.
func NewValidationError(format string, args ...interface{}) error {
	return Wrap(ErrValidation, Newf(format, args...).Error())
}

// NewSubmissionError wraps the server's rejection message.
func NewSubmissionError(serverMessage string) error {
	if serverMessage == "" {
		serverMessage = "no message from server"
	}
	return Wrap(ErrSubmission, serverMessage)
}
