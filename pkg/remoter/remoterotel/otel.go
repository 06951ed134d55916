// Package remoterotel adds OpenTelemetry tracing and metrics to remoter
// dispatchers.
//
// Usage:
//
//	stub := NewGreeterStub(impl)
//	remoterotel.Instrument(stub, remoterotel.DefaultConfig())
package remoterotel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/toyz/remoter/pkg/remoter"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/toyz/remoter"

// Config configures instrumentation of a dispatcher
type Config struct {
	// TracerProvider supplies the tracer. Defaults to otel.GetTracerProvider().
	TracerProvider trace.TracerProvider
	// MeterProvider supplies the meter. Defaults to otel.GetMeterProvider().
	MeterProvider metric.MeterProvider
	// EnableTracing starts a server span per dispatch
	EnableTracing bool
	// EnableMetrics records the request counter and duration histogram
	EnableMetrics bool
	// RecordExceptions calls RecordError on the span of a failed dispatch
	RecordExceptions bool
	// ServiceName is the rpc.service attribute. Defaults to the
	// dispatcher's descriptor.
	ServiceName string
	// CustomAttributes are added to every span
	CustomAttributes []attribute.KeyValue
}

// DefaultConfig enables tracing, metrics and exception recording against
// the global providers
func DefaultConfig() Config {
	return Config{
		EnableTracing:    true,
		EnableMetrics:    true,
		RecordExceptions: true,
	}
}

// Instrument installs the instrumentation hook on d
func Instrument(d *remoter.Dispatcher, cfg Config) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = d.Service()
	}
	d.Use(NewHook(cfg))
}

// NewHook returns the instrumentation as a DispatchHook, for use with
// remoter.WithDispatchHook
func NewHook(cfg Config) remoter.DispatchHook {
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.MeterProvider == nil {
		cfg.MeterProvider = otel.GetMeterProvider()
	}

	h := &hook{
		cfg:    cfg,
		tracer: cfg.TracerProvider.Tracer(instrumentationName),
	}
	if cfg.EnableMetrics {
		meter := cfg.MeterProvider.Meter(instrumentationName)
		h.requests, _ = meter.Int64Counter("rpc.server.requests",
			metric.WithUnit("{request}"),
			metric.WithDescription("Number of remoter transactions dispatched"),
		)
		h.duration, _ = meter.Float64Histogram("rpc.server.duration",
			metric.WithUnit("s"),
			metric.WithDescription("Duration of remoter transactions"),
		)
	}
	return h
}

type hook struct {
	cfg      Config
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

type spanToken struct {
	span  trace.Span
	start time.Time
}

func (h *hook) service(info remoter.DispatchInfo) string {
	if h.cfg.ServiceName != "" {
		return h.cfg.ServiceName
	}
	return info.Service
}

func (h *hook) OnDispatchStart(ctx context.Context, info remoter.DispatchInfo) (context.Context, remoter.HookToken) {
	if !h.cfg.EnableTracing {
		return ctx, &spanToken{start: time.Now()}
	}

	attrs := []attribute.KeyValue{
		attribute.String("rpc.system", "remoter"),
		attribute.String("rpc.service", h.service(info)),
		attribute.String("rpc.method", info.Method),
		attribute.Int64("rpc.remoter.index", int64(info.Index)),
		attribute.Bool("rpc.remoter.oneway", info.OneWay),
	}
	attrs = append(attrs, h.cfg.CustomAttributes...)

	ctx, span := h.tracer.Start(ctx, fmt.Sprintf("remoter/%s", spanMethod(info)),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
	return ctx, &spanToken{span: span, start: time.Now()}
}

func (h *hook) OnDispatchEnd(ctx context.Context, token remoter.HookToken, info remoter.DispatchInfo, stats remoter.DispatchStats, err error) {
	st, ok := token.(*spanToken)
	if !ok {
		return
	}

	if h.cfg.EnableMetrics {
		attrs := metric.WithAttributes(
			attribute.String("rpc.system", "remoter"),
			attribute.String("rpc.service", h.service(info)),
			attribute.String("rpc.method", info.Method),
			attribute.String("status", stats.Status.String()),
		)
		if h.requests != nil {
			h.requests.Add(ctx, 1, attrs)
		}
		if h.duration != nil {
			h.duration.Record(ctx, time.Since(st.start).Seconds(), attrs)
		}
	}

	if st.span == nil {
		return
	}
	defer st.span.End()

	st.span.SetAttributes(
		attribute.String("rpc.remoter.status", stats.Status.String()),
		attribute.Int("rpc.remoter.request_bytes", stats.RequestBytes),
		attribute.Int("rpc.remoter.response_bytes", stats.ResponseBytes),
	)
	switch {
	case err != nil:
		st.span.SetStatus(codes.Error, err.Error())
		if h.cfg.RecordExceptions {
			st.span.RecordError(err)
		}
		errType := fmt.Sprintf("%T", err)
		var panicErr *remoter.PanicError
		if errors.As(err, &panicErr) {
			errType = "panic"
		}
		st.span.SetAttributes(attribute.String("rpc.remoter.error_type", errType))
	case stats.Status == remoter.StatusOK:
		st.span.SetStatus(codes.Ok, "")
	default:
		// declared failures and rejected requests are answered normally
		st.span.SetStatus(codes.Unset, "")
	}
}

func spanMethod(info remoter.DispatchInfo) string {
	if info.Method == "" {
		return fmt.Sprintf("unknown#%d", info.Index)
	}
	return info.Method
}
