// Package stream decodes the request-scoped server-push stream into discrete
// progress events.
//
// The wire format is SSE-style framing: frames separated by a blank line,
// payload lines prefixed "data: ", payload is a JSON progress event. Frames
// are buffered across read chunks and only emitted once complete.
package stream

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/stratalab/gensync/errors"
	"github.com/stratalab/gensync/internal/telemetry"
	"github.com/stratalab/gensync/logger"
	"github.com/stratalab/gensync/wire"
)

var (
	frameDelim = []byte("\n\n")
	dataPrefix = []byte("data: ")
)

// Stream is a pull-based decoder over one HTTP exchange's response body.
// The caller drives iteration with Next and must Close on every exit path
// to release the underlying connection. It is not safe for concurrent use.
type Stream struct {
	rc      io.ReadCloser
	buf     []byte
	readBuf []byte
	eof     bool
	err     error
	closed  bool
}

// New wraps a response body in a frame decoder.
func New(rc io.ReadCloser) *Stream {
	return &Stream{
		rc:      rc,
		readBuf: make([]byte, 4096),
	}
}

// Next blocks for the next complete frame and returns its decoded event.
//
// A malformed frame is logged and skipped; it never terminates iteration.
// Normal stream end returns io.EOF. A connection abort returns an error
// wrapping errors.ErrTransport, distinguishable from both io.EOF and a job's
// own terminal status. Trailing bytes with no closing delimiter at stream end
// cannot be a complete frame and are discarded.
func (s *Stream) Next() (wire.ProgressEvent, error) {
	if s.err != nil {
		return wire.ProgressEvent{}, s.err
	}

	for {
		if idx := bytes.Index(s.buf, frameDelim); idx >= 0 {
			frame := s.buf[:idx]
			s.buf = s.buf[idx+len(frameDelim):]

			ev, ok := decodeFrame(frame)
			if !ok {
				continue
			}
			return ev, nil
		}

		if s.eof {
			s.err = io.EOF
			return wire.ProgressEvent{}, io.EOF
		}

		n, err := s.rc.Read(s.readBuf)
		if n > 0 {
			s.buf = append(s.buf, s.readBuf[:n]...)
		}
		if err == io.EOF {
			s.eof = true
			continue
		}
		if err != nil {
			s.err = errors.Wrap(errors.ErrTransport, err.Error())
			return wire.ProgressEvent{}, s.err
		}
	}
}

// Close releases the underlying connection. Safe to call more than once and
// required on every exit path: normal completion, abandonment, or error.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.rc.Close()
}

// decodeFrame extracts the data payload from one complete frame. Frames
// without a data line (comments, heartbeats) and frames with malformed JSON
// are skipped.
func decodeFrame(frame []byte) (wire.ProgressEvent, bool) {
	for _, line := range bytes.Split(frame, []byte("\n")) {
		line = bytes.TrimSuffix(line, []byte("\r"))
		if !bytes.HasPrefix(line, dataPrefix) {
			continue
		}

		var ev wire.ProgressEvent
		if err := json.Unmarshal(line[len(dataPrefix):], &ev); err != nil {
			telemetry.DecodeFailures.Inc()
			logger.Warnw("Skipping malformed stream frame",
				"error", err.Error(),
				"bytes", len(line),
			)
			return wire.ProgressEvent{}, false
		}
		return ev, true
	}
	return wire.ProgressEvent{}, false
}
