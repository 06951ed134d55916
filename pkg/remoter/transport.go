package remoter

import "context"

// Transport carries one transaction to a dispatcher and returns the raw
// response. Implementations must be safe for concurrent use.
type Transport interface {
	// Send delivers payload under the dispatch index and waits for the
	// response payload
	Send(ctx context.Context, index uint32, payload []byte) ([]byte, error)

	// SendOneWay delivers payload without waiting for the remote side
	SendOneWay(ctx context.Context, index uint32, payload []byte) error
}

// CallbackBroker turns dispatchers into tokens that can cross a transport
// and back. A transport that is also a CallbackBroker can carry callback
// interfaces.
type CallbackBroker interface {
	Export(d *Dispatcher) (string, error)
	Import(token string) (Transport, error)
}

// CallbackRegistry is a CallbackBroker that tracks callback identity. A
// value exported twice keeps its first token, a token imported twice
// yields the same proxy, and a proxy sent back travels as the token it was
// imported under. Values of uncomparable types get a fresh token each time.
type CallbackRegistry interface {
	CallbackBroker

	// ExportValue returns the token of v, calling stub only when v has none
	ExportValue(v any, stub func() *Dispatcher) (string, error)

	// ImportValue returns the proxy bound to token, calling proxy only the
	// first time token is seen
	ImportValue(token string, proxy func(Transport) any) (any, error)

	// ReleaseValue drops the token of an exported value or imported proxy
	// and reports whether there was one
	ReleaseValue(v any) bool
}

// Status is the first byte of every response
type Status uint8

const (
	StatusOK Status = iota
	StatusDeclaredFailure
	StatusUnknownMethod
	StatusFailure
)

// String returns the label used in logs and metrics
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDeclaredFailure:
		return "declared_failure"
	case StatusUnknownMethod:
		return "unknown_method"
	case StatusFailure:
		return "failure"
	default:
		return "invalid"
	}
}
