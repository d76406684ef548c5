package fetch

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when the request did not complete within the timeout.
	ErrTimeout = errors.New("fetch timed out")
	// ErrBadStatus is matched by every *StatusError.
	ErrBadStatus = errors.New("bad status")
	// ErrTransport is matched by every *TransportError.
	ErrTransport = errors.New("transport error")
	// ErrTooLarge is wrapped in a *TransportError when the body exceeds the size cap.
	ErrTooLarge = errors.New("response body too large")
)

// StatusError reports a completed response outside [200,300).
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: bad status %d", e.URL, e.Code)
}

// Is lets errors.Is(err, ErrBadStatus) match.
func (e *StatusError) Is(target error) bool {
	return target == ErrBadStatus
}

// TransportError wraps connection, DNS and body read failures.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("GET %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrTransport) match.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
