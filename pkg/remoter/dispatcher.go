package remoter

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

// Handler decodes the arguments of one method from in, calls the
// implementation and encodes the result into out. The returned error is
// the implementation's failure, or a decoding error.
type Handler func(ctx context.Context, in *Reader, out *Writer) error

// Method is one entry of a dispatch table
type Method struct {
	Name     string
	OneWay   bool
	Failures []error // declared failure kinds, by ordinal
	Handle   Handler
}

// FailureHook observes failures a method did not declare. They are sent to
// the caller as a generic failure and re-raised on the serving side through
// this hook.
type FailureHook func(ctx context.Context, info DispatchInfo, err error)

// Dispatcher routes transactions to the methods of one service by dispatch
// index. Generated stub constructors return a Dispatcher.
type Dispatcher struct {
	service string
	methods []Method
	logger  *zap.Logger
	onFail  FailureHook

	mu   sync.RWMutex
	hook DispatchHook
}

// NewDispatcher returns a dispatcher for service. The position of each
// method in methods is its dispatch index.
func NewDispatcher(service string, methods []Method, opts ...Option) *Dispatcher {
	o := newOptions(opts)
	d := &Dispatcher{
		service: service,
		methods: methods,
		logger:  o.logger.With(zap.String("service", service)),
		hook:    o.hook,
		onFail:  o.failureHook,
	}
	if d.onFail == nil {
		d.onFail = d.logFailure
	}
	return d
}

// Service returns the wire descriptor of the served interface
func (d *Dispatcher) Service() string {
	return d.service
}

// Method returns the method registered under index
func (d *Dispatcher) Method(index uint32) (Method, bool) {
	if int64(index) >= int64(len(d.methods)) || d.methods[index].Handle == nil {
		return Method{}, false
	}
	return d.methods[index], true
}

// Use adds a dispatch hook after construction, chained after the existing
// ones
func (d *Dispatcher) Use(hook DispatchHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hook = ChainHooks(d.hook, hook)
}

func (d *Dispatcher) dispatchHook() DispatchHook {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hook
}

// Dispatch handles one transaction and returns the response payload. It
// never fails for an unknown index or a failing implementation: both are
// encoded in the response. The returned error is non-nil only when the
// implementation failed in a way the method did not declare, after the
// failure hook ran.
func (d *Dispatcher) Dispatch(ctx context.Context, index uint32, payload []byte, broker CallbackBroker) ([]byte, error) {
	m, ok := d.Method(index)
	info := DispatchInfo{Service: d.service, Method: m.Name, Index: index, OneWay: m.OneWay}

	hook := d.dispatchHook()
	var token HookToken
	if hook != nil {
		ctx, token = hook.OnDispatchStart(ctx, info)
	}

	var (
		resp   []byte
		status Status
		err    error
	)
	if !ok {
		d.logger.Warn("unknown method index", zap.Uint32("index", index))
		resp, status = d.unknownMethod(index)
	} else {
		resp, status, err = d.invoke(ctx, m, info, payload, broker)
	}

	if hook != nil {
		hook.OnDispatchEnd(ctx, token, info, DispatchStats{
			Status:        status,
			RequestBytes:  len(payload),
			ResponseBytes: len(resp),
		}, err)
	}
	return resp, err
}

func (d *Dispatcher) invoke(ctx context.Context, m Method, info DispatchInfo, payload []byte, broker CallbackBroker) ([]byte, Status, error) {
	in := newReader(payload, broker)
	out := newWriter(broker)

	err := d.call(withBroker(ctx, broker), m, in, out)
	var body []byte
	if err == nil {
		body, err = out.Bytes()
	}

	switch {
	case err == nil:
		return response(StatusOK, func(w *Writer) { w.writeRaw(body) }), StatusOK, nil

	case errors.Is(err, ErrMalformedPayload):
		d.logger.Debug("rejected malformed payload", zap.String("method", m.Name), zap.Error(err))
		return failureResponse(err), StatusFailure, nil
	}

	for ordinal, kind := range m.Failures {
		if errors.Is(err, kind) {
			return response(StatusDeclaredFailure, func(w *Writer) {
				w.WriteInt32(int32(ordinal))
				w.WriteString(err.Error())
			}), StatusDeclaredFailure, nil
		}
	}

	d.onFail(ctx, info, err)
	return failureResponse(err), StatusFailure, err
}

func (d *Dispatcher) call(ctx context.Context, m Method, in *Reader, out *Writer) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Method: m.Name, Value: v, Stack: debug.Stack()}
		}
	}()
	return m.Handle(ctx, in, out)
}

func (d *Dispatcher) unknownMethod(index uint32) ([]byte, Status) {
	return response(StatusUnknownMethod, func(w *Writer) {
		w.WriteString(d.service)
		w.WriteUint32(index)
	}), StatusUnknownMethod
}

func (d *Dispatcher) logFailure(_ context.Context, info DispatchInfo, err error) {
	fields := []zap.Field{
		zap.String("method", info.Method),
		zap.Uint32("index", info.Index),
		zap.Error(err),
	}
	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		fields = append(fields, zap.ByteString("stack", panicErr.Stack))
	}
	d.logger.Error("undeclared failure", fields...)
}

func failureResponse(err error) []byte {
	return response(StatusFailure, func(w *Writer) {
		w.WriteString(err.Error())
	})
}

func response(status Status, body func(w *Writer)) []byte {
	w := NewWriter()
	w.WriteUint8(uint8(status))
	body(w)
	b, err := w.Bytes()
	if err != nil {
		panic(fmt.Sprintf("remoter: encoding %s response: %v", status, err))
	}
	return b
}
