package remoter

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPayload is reported when a payload cannot be decoded
	ErrMalformedPayload = errors.New("remoter: malformed payload")

	// ErrReadOnly is returned when mutating a read-only List or Map
	ErrReadOnly = errors.New("remoter: container is read-only")

	// ErrNoBroker is reported when a callback crosses a transport that
	// cannot export or import dispatchers
	ErrNoBroker = errors.New("remoter: transport has no callback broker")

	// ErrServiceNotFound is returned when no dispatcher serves a descriptor
	// or callback token
	ErrServiceNotFound = errors.New("remoter: service not found")

	// ErrTransportClosed is returned by a transport after Close
	ErrTransportClosed = errors.New("remoter: transport closed")

	// ErrConnectorClosed is returned by connections of a closed Connector
	ErrConnectorClosed = errors.New("remoter: connector closed")
)

// RemoteError is a declared failure raised by the remote implementation.
// Kind is the package sentinel the method declared, so errors.Is(err, Kind)
// holds on the caller side.
type RemoteError struct {
	Kind    error
	Ordinal int
	Message string
}

// Error implements the error interface
func (e *RemoteError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

// Unwrap returns the declared failure kind
func (e *RemoteError) Unwrap() error {
	return e.Kind
}

// UnknownMethodError is returned when a dispatch index has no method
type UnknownMethodError struct {
	Service string
	Index   uint32
}

// Error implements the error interface
func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("remoter: %s has no method with index %d", e.Service, e.Index)
}

// TransportFailure is returned when a call could not complete: the
// transport failed, or the remote side failed in a way the method did not
// declare.
type TransportFailure struct {
	Message string
	Err     error
}

// Error implements the error interface
func (e *TransportFailure) Error() string {
	return "remoter: transport failure: " + e.Message
}

// Unwrap returns the underlying transport error, if any
func (e *TransportFailure) Unwrap() error {
	return e.Err
}

// PanicError wraps a value recovered from a panicking handler
type PanicError struct {
	Method string
	Value  any
	Stack  []byte
}

// Error implements the error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("remoter: panic in %s: %v", e.Method, e.Value)
}

// NewTransportFailure wraps err as a TransportFailure
func NewTransportFailure(err error) *TransportFailure {
	return &TransportFailure{Message: err.Error(), Err: err}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedPayload, fmt.Sprintf(format, args...))
}
