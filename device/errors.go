package device

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConnected is returned when a send is attempted on a communicator
	// that is not (or no longer) connected.
	ErrNotConnected = errors.New("not connected")

	// ErrClosed is returned for requests still queued when the communicator
	// shuts down.
	ErrClosed = errors.New("communicator closed")
)

// TransportError wraps a fatal I/O failure. The connection is unusable
// afterwards and the communicator transitions to disconnected.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError reports that a request exhausted all its attempts without an
// answer arriving.
type TimeoutError struct {
	Request  string
	Attempts int
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no answer to %q after %d attempts of %s", e.Request, e.Attempts, e.Timeout)
}

// HandshakeError reports a handshake answer that could not be interpreted.
// The device is then treated as unknown.
type HandshakeError struct {
	Raw string
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("cannot interpret handshake answer %q", e.Raw)
}
