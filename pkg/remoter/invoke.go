package remoter

import (
	"context"
)

// Invoke sends the transaction encoded in w to index over t and waits for
// the response. On success the returned Reader is positioned at the result.
// A declared failure comes back as a *RemoteError whose Kind is the entry
// of failures at the transmitted ordinal.
func Invoke(ctx context.Context, t Transport, index uint32, w *Writer, failures ...error) (*Reader, error) {
	payload, err := w.Bytes()
	if err != nil {
		return nil, err
	}
	resp, err := t.Send(ctx, index, payload)
	if err != nil {
		return nil, NewTransportFailure(err)
	}

	broker, _ := t.(CallbackBroker)
	r := newReader(resp, broker)
	status := Status(r.ReadUint8())
	if err := r.Err(); err != nil {
		return nil, &TransportFailure{Message: "empty response", Err: err}
	}

	switch status {
	case StatusOK:
		return r, nil

	case StatusDeclaredFailure:
		ordinal := int(r.ReadInt32())
		message := r.ReadString()
		if err := r.Done(); err != nil {
			return nil, &TransportFailure{Message: "malformed failure response", Err: err}
		}
		if ordinal < 0 || ordinal >= len(failures) {
			return nil, &TransportFailure{Message: "failure ordinal out of range: " + message}
		}
		return nil, &RemoteError{Kind: failures[ordinal], Ordinal: ordinal, Message: message}

	case StatusUnknownMethod:
		service := r.ReadString()
		got := r.ReadUint32()
		if err := r.Done(); err != nil {
			return nil, &TransportFailure{Message: "malformed unknown-method response", Err: err}
		}
		return nil, &UnknownMethodError{Service: service, Index: got}

	case StatusFailure:
		message := r.ReadString()
		if err := r.Done(); err != nil {
			return nil, &TransportFailure{Message: "malformed failure response", Err: err}
		}
		return nil, &TransportFailure{Message: message}

	default:
		return nil, &TransportFailure{Message: "invalid response status " + status.String()}
	}
}

// InvokeOneWay sends the transaction encoded in w without waiting. Only
// local encoding and transport errors are reported.
func InvokeOneWay(ctx context.Context, t Transport, index uint32, w *Writer) error {
	payload, err := w.Bytes()
	if err != nil {
		return err
	}
	if err := t.SendOneWay(ctx, index, payload); err != nil {
		return NewTransportFailure(err)
	}
	return nil
}
