package remoter

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"
)

// Dialer opens a transport to target
type Dialer func(ctx context.Context, target string) (Transport, error)

// Connector hands out shared, lazily dialled connections. Of returns the
// same Connection for the same target and suffix until DisconnectAll.
type Connector struct {
	dial   Dialer
	conns  *xsync.Map[connKey, *Connection]
	logger *zap.Logger
	closed atomic.Bool
}

type connKey struct {
	target string
	suffix string
}

// NewConnector returns a connector dialling through dial
func NewConnector(dial Dialer, opts ...Option) *Connector {
	o := newOptions(opts)
	return &Connector{
		dial:   dial,
		conns:  xsync.NewMap[connKey, *Connection](),
		logger: o.logger.Named("connector"),
	}
}

// Of returns the connection for target. The suffix lets callers hold
// several independent connections to one target.
func (c *Connector) Of(target, suffix string) (*Connection, error) {
	if c.closed.Load() {
		return nil, ErrConnectorClosed
	}
	conn, _ := c.conns.LoadOrStore(connKey{target: target, suffix: suffix}, &Connection{
		target: target,
		dial:   c.dial,
		logger: c.logger.With(zap.String("target", target)),
	})
	return conn, nil
}

// DisconnectAll disconnects and forgets every connection. Connections
// handed out earlier can still reconnect; Of fails afterwards.
func (c *Connector) DisconnectAll() {
	c.closed.Store(true)
	c.conns.Range(func(key connKey, conn *Connection) bool {
		conn.Disconnect()
		c.conns.Delete(key)
		return true
	})
}

// Connection is a lazily dialled transport to one target
type Connection struct {
	target string
	dial   Dialer
	logger *zap.Logger

	mu           sync.Mutex
	transport    Transport
	onConnect    func(Transport)
	onDisconnect func()
}

// Transport returns the connected transport, dialling on first use or
// after a disconnect. The OnConnect function runs after the connection is
// unlocked, so it may use the connection.
func (c *Connection) Transport(ctx context.Context) (Transport, error) {
	c.mu.Lock()
	if c.transport != nil {
		t := c.transport
		c.mu.Unlock()
		return t, nil
	}

	t, err := c.dial(ctx, c.target)
	if err != nil {
		c.mu.Unlock()
		c.logger.Debug("dial failed", zap.Error(err))
		return nil, err
	}
	c.transport = t
	callback := c.onConnect
	c.mu.Unlock()

	c.logger.Debug("connected")
	if callback != nil {
		callback(t)
	}
	return t, nil
}

// Connected reports whether a transport is currently held
func (c *Connection) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport != nil
}

// Disconnect drops the transport, closing it when it is an io.Closer
func (c *Connection) Disconnect() {
	c.mu.Lock()
	t := c.transport
	c.transport = nil
	callback := c.onDisconnect
	c.mu.Unlock()

	if t == nil {
		return
	}
	if closer, ok := t.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			c.logger.Warn("close failed", zap.Error(err))
		}
	}
	c.logger.Debug("disconnected")
	if callback != nil {
		callback()
	}
}

// OnConnect sets the function called with each newly dialled transport
func (c *Connection) OnConnect(fn func(Transport)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = fn
}

// OnDisconnect sets the function called after the transport is dropped
func (c *Connection) OnDisconnect(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDisconnect = fn
}
