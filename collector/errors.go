package collector

import (
	"errors"
	"fmt"
)

var (
	// ErrListener is matched by every ListenerError
	ErrListener = errors.New("listener failure")
	// ErrStoreRejected is matched by every StatusError
	ErrStoreRejected = errors.New("store rejected write")
	// ErrNotConnected is returned by forwarders used before Connect
	ErrNotConnected = errors.New("not connected")
)

// ListenerError wraps a bind or accept failure of the Collector
type ListenerError struct {
	Op      string
	Address string
	Err     error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("Collector: %s %s: %v", e.Op, e.Address, e.Err)
}

func (e *ListenerError) Unwrap() error { return e.Err }

// Is reports ErrListener as a match
func (e *ListenerError) Is(target error) bool { return target == ErrListener }

// StatusError is returned when the store answers with a non-success status
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("LineWriter: store responded %s", e.Status)
	}

	return fmt.Sprintf("LineWriter: store responded %s: %s", e.Status, e.Body)
}

// Is reports ErrStoreRejected as a match
func (e *StatusError) Is(target error) bool { return target == ErrStoreRejected }
