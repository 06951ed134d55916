package remoter

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"

	"golang.org/x/exp/constraints"
)

// WriteEnum writes an enum constant as int64
func WriteEnum[E constraints.Integer](w *Writer, v E) {
	w.WriteInt64(int64(v))
}

// ReadEnum reads an enum constant written by WriteEnum
func ReadEnum[E constraints.Integer](r *Reader) E {
	return E(r.ReadInt64())
}

// SortedKeys returns the keys of m in ascending order. Generated encoders
// use it so builtin maps encode deterministically.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

// WriteCallback exports cb through the writer's broker, wrapping it with
// the generated stub constructor. A nil callback writes the empty token.
// When the broker tracks identity the same cb always travels as the same
// token, and a proxy received from the peer travels as its own token.
func WriteCallback[C any](w *Writer, cb C, stub func(C, ...DispatcherOption) *Dispatcher) {
	if any(cb) == nil {
		w.Export(nil)
		return
	}
	w.exportValue(cb, func() *Dispatcher { return stub(cb) })
}

// ReadCallback imports a callback token and wraps the transport with the
// generated proxy constructor. The empty token yields the zero C.
func ReadCallback[C any](r *Reader, proxy func(Transport) C) C {
	var zero C
	v := r.importValue(func(t Transport) any { return proxy(t) })
	if v == nil {
		return zero
	}
	c, ok := v.(C)
	if !ok {
		r.Fail(fmt.Errorf("%w: callback token is bound to %T", ErrMalformedPayload, v))
		return zero
	}
	return c
}

type brokerKey struct{}

func withBroker(ctx context.Context, broker CallbackBroker) context.Context {
	if broker == nil {
		return ctx
	}
	return context.WithValue(ctx, brokerKey{}, broker)
}

// BrokerFromContext returns the broker of the transaction ctx belongs to
func BrokerFromContext(ctx context.Context) (CallbackBroker, bool) {
	broker, ok := ctx.Value(brokerKey{}).(CallbackBroker)
	return broker, ok
}

// ReleaseCallback drops the token behind cb, a callback received during the
// transaction ctx belongs to. It reports whether a token was released; it
// is always false when the broker does not track identity.
func ReleaseCallback(ctx context.Context, cb any) bool {
	if cb == nil {
		return false
	}
	broker, _ := BrokerFromContext(ctx)
	registry, ok := broker.(CallbackRegistry)
	if !ok {
		return false
	}
	return registry.ReleaseValue(cb)
}
