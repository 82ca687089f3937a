package acquisition

import (
	"errors"
	"fmt"
)

var (
	// ErrDeviceUnavailable is returned when the serial device is not present
	ErrDeviceUnavailable = errors.New("device unavailable")
	// ErrRead is matched by every ReadError
	ErrRead = errors.New("sensor read failed")
	// ErrTransport is matched by every TransportError
	ErrTransport = errors.New("relay transport failed")
	// ErrWrite is matched by every WriteError
	ErrWrite = errors.New("store write failed")
)

// ReadError wraps a transport, timeout or protocol failure during a poll
type ReadError struct {
	Device  string
	SlaveID byte
	Err     error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("BusReader: read %s (slave %d): %v", e.Device, e.SlaveID, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Is reports ErrRead as a match
func (e *ReadError) Is(target error) bool { return target == ErrRead }

// TransportError wraps a connect or write failure of the RelayClient
type TransportError struct {
	Address string
	Op      string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("RelayClient: %s %s: %v", e.Op, e.Address, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is reports ErrTransport as a match
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// WriteError wraps a rejected or failed point submission
type WriteError struct {
	Bucket string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("StoreWriter: write to bucket %s: %v", e.Bucket, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Is reports ErrWrite as a match
func (e *WriteError) Is(target error) bool { return target == ErrWrite }
