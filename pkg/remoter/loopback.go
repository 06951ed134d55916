package remoter

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"
)

// Loopback is an in-memory transport. Services register their dispatcher
// under its descriptor; Connect returns a Transport that dispatches on a
// separate goroutine. Loopback is also the CallbackBroker for every
// connection it hands out.
type Loopback struct {
	services  *xsync.Map[string, *Dispatcher]
	callbacks *xsync.Map[string, *Dispatcher]
	logger    *zap.Logger
	pending   sync.WaitGroup

	// tokens maps exported callback values and imported proxies to their
	// token; exports and proxies map the token back
	tokens  *xsync.Map[any, string]
	exports *xsync.Map[string, any]
	proxies *xsync.Map[string, any]
}

var _ CallbackRegistry = (*Loopback)(nil)

// NewLoopback returns an empty loopback
func NewLoopback(opts ...Option) *Loopback {
	o := newOptions(opts)
	return &Loopback{
		services:  xsync.NewMap[string, *Dispatcher](),
		callbacks: xsync.NewMap[string, *Dispatcher](),
		logger:    o.logger.Named("loopback"),
		tokens:    xsync.NewMap[any, string](),
		exports:   xsync.NewMap[string, any](),
		proxies:   xsync.NewMap[string, any](),
	}
}

// Register serves d under its descriptor
func (l *Loopback) Register(d *Dispatcher) error {
	if _, loaded := l.services.LoadOrStore(d.Service(), d); loaded {
		return fmt.Errorf("remoter: service %s already registered", d.Service())
	}
	l.logger.Debug("registered service", zap.String("service", d.Service()))
	return nil
}

// Unregister stops serving descriptor. Existing connections keep working.
func (l *Loopback) Unregister(service string) {
	l.services.Delete(service)
}

// Connect returns a transport to the service registered under descriptor
func (l *Loopback) Connect(service string) (Transport, error) {
	d, ok := l.services.Load(service)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, service)
	}
	return l.conn(d), nil
}

// Dial is Connect with the Dialer signature
func (l *Loopback) Dial(_ context.Context, target string) (Transport, error) {
	return l.Connect(target)
}

// Export registers a callback dispatcher under a fresh token
func (l *Loopback) Export(d *Dispatcher) (string, error) {
	token := uuid.NewString()
	l.callbacks.Store(token, d)
	return token, nil
}

// Import returns a transport to the callback exported under token
func (l *Loopback) Import(token string) (Transport, error) {
	d, ok := l.callbacks.Load(token)
	if !ok {
		return nil, fmt.Errorf("%w: callback %s", ErrServiceNotFound, token)
	}
	return l.conn(d), nil
}

// ExportValue returns the token v was first exported under, or exports
// the dispatcher built by stub under a fresh token
func (l *Loopback) ExportValue(v any, stub func() *Dispatcher) (string, error) {
	if !hashable(v) {
		return l.Export(stub())
	}
	token, _ := l.tokens.LoadOrCompute(v, func() (string, bool) {
		token := uuid.NewString()
		l.callbacks.Store(token, stub())
		l.exports.Store(token, v)
		return token, false
	})
	return token, nil
}

// ImportValue returns the proxy bound to token, building it on first use
func (l *Loopback) ImportValue(token string, proxy func(Transport) any) (any, error) {
	d, ok := l.callbacks.Load(token)
	if !ok {
		return nil, fmt.Errorf("%w: callback %s", ErrServiceNotFound, token)
	}
	v, _ := l.proxies.LoadOrCompute(token, func() (any, bool) {
		p := proxy(l.conn(d))
		if hashable(p) {
			l.tokens.Store(p, token)
		}
		return p, false
	})
	return v, nil
}

// Release forgets an exported callback together with the value and proxy
// bound to its token. It reports whether the token was live.
func (l *Loopback) Release(token string) bool {
	_, live := l.callbacks.LoadAndDelete(token)
	if v, ok := l.exports.LoadAndDelete(token); ok {
		l.tokens.Delete(v)
	}
	if p, ok := l.proxies.LoadAndDelete(token); ok && hashable(p) {
		l.tokens.Delete(p)
	}
	if live {
		l.logger.Debug("released callback", zap.String("token", token))
	}
	return live
}

// ReleaseValue releases the token of an exported value or imported proxy
func (l *Loopback) ReleaseValue(v any) bool {
	if !hashable(v) {
		return false
	}
	token, ok := l.tokens.Load(v)
	if !ok {
		return false
	}
	return l.Release(token)
}

// Exported returns the number of live callback tokens
func (l *Loopback) Exported() int {
	return l.callbacks.Size()
}

// Wait blocks until every one-way transaction sent so far was dispatched
func (l *Loopback) Wait() {
	l.pending.Wait()
}

func (l *Loopback) conn(d *Dispatcher) *loopbackConn {
	return &loopbackConn{loopback: l, dispatcher: d}
}

type loopbackConn struct {
	loopback   *Loopback
	dispatcher *Dispatcher
	closed     atomic.Bool
}

func (c *loopbackConn) Send(ctx context.Context, index uint32, payload []byte) ([]byte, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}
	payload = bytes.Clone(payload)
	done := make(chan []byte, 1)
	go func() {
		done <- c.dispatch(context.WithoutCancel(ctx), index, payload)
	}()

	select {
	case resp := <-done:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *loopbackConn) SendOneWay(ctx context.Context, index uint32, payload []byte) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	payload = bytes.Clone(payload)
	c.loopback.pending.Add(1)
	go func() {
		defer c.loopback.pending.Done()
		c.dispatch(context.WithoutCancel(ctx), index, payload)
	}()
	return nil
}

func (c *loopbackConn) dispatch(ctx context.Context, index uint32, payload []byte) []byte {
	resp, err := c.dispatcher.Dispatch(ctx, index, payload, c.loopback)
	if err != nil {
		c.loopback.logger.Debug("dispatch raised",
			zap.String("service", c.dispatcher.Service()),
			zap.Uint32("index", index),
			zap.Error(err))
	}
	return resp
}

func (c *loopbackConn) check(ctx context.Context) error {
	if c.closed.Load() {
		return ErrTransportClosed
	}
	return ctx.Err()
}

func (c *loopbackConn) Export(d *Dispatcher) (string, error) { return c.loopback.Export(d) }
func (c *loopbackConn) Import(token string) (Transport, error) { return c.loopback.Import(token) }
func (c *loopbackConn) ReleaseValue(v any) bool { return c.loopback.ReleaseValue(v) }

func (c *loopbackConn) ExportValue(v any, stub func() *Dispatcher) (string, error) {
	return c.loopback.ExportValue(v, stub)
}

func (c *loopbackConn) ImportValue(token string, proxy func(Transport) any) (any, error) {
	return c.loopback.ImportValue(token, proxy)
}

// hashable reports whether v can key a map without panicking
func hashable(v any) bool {
	return v != nil && reflect.ValueOf(v).Comparable()
}

// Close makes further sends fail with ErrTransportClosed
func (c *loopbackConn) Close() error {
	c.closed.Store(true)
	return nil
}
