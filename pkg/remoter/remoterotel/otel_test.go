package remoterotel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/remoter/pkg/remoter"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var errRejected = errors.New("rejected")

func newPingStub(fail error) *remoter.Dispatcher {
	return remoter.NewDispatcher("test.Ping", []remoter.Method{{
		Name:     "Ping",
		Failures: []error{errRejected},
		Handle: func(ctx context.Context, in *remoter.Reader, out *remoter.Writer) error {
			if err := in.Done(); err != nil {
				return err
			}
			if fail != nil {
				return fail
			}
			out.WriteString("pong")
			return nil
		},
	}}, remoter.WithFailureHook(func(context.Context, remoter.DispatchInfo, error) {}))
}

func setup(t *testing.T, d *remoter.Dispatcher) (*tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()
	cfg := DefaultConfig()
	cfg.TracerProvider = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	cfg.MeterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	cfg.CustomAttributes = []attribute.KeyValue{attribute.String("deployment", "test")}
	Instrument(d, cfg)
	return spans, reader
}

func attrMap(kvs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

func TestSpanPerDispatch(t *testing.T) {
	d := newPingStub(nil)
	spans, _ := setup(t, d)

	_, err := d.Dispatch(context.Background(), 0, nil, nil)
	require.NoError(t, err)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	span := ended[0]
	assert.Equal(t, "remoter/Ping", span.Name())
	assert.Equal(t, codes.Ok, span.Status().Code)

	attrs := attrMap(span.Attributes())
	assert.Equal(t, "remoter", attrs["rpc.system"])
	assert.Equal(t, "test.Ping", attrs["rpc.service"])
	assert.Equal(t, "ok", attrs["rpc.remoter.status"])
	assert.Equal(t, "test", attrs["deployment"])
}

func TestSpanRecordsUndeclaredFailure(t *testing.T) {
	d := newPingStub(errors.New("boom"))
	spans, _ := setup(t, d)

	_, err := d.Dispatch(context.Background(), 0, nil, nil)
	require.Error(t, err)

	span := spans.Ended()[0]
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "boom", span.Status().Description)
	require.Len(t, span.Events(), 1)
	assert.Equal(t, "exception", span.Events()[0].Name)
}

func TestDeclaredFailureIsNotASpanError(t *testing.T) {
	d := newPingStub(errRejected)
	spans, _ := setup(t, d)

	_, err := d.Dispatch(context.Background(), 0, nil, nil)
	require.NoError(t, err)

	span := spans.Ended()[0]
	assert.Equal(t, codes.Unset, span.Status().Code)
	assert.Equal(t, "declared_failure", attrMap(span.Attributes())["rpc.remoter.status"])
}

func TestUnknownIndexSpanName(t *testing.T) {
	d := newPingStub(nil)
	spans, _ := setup(t, d)

	_, err := d.Dispatch(context.Background(), 9, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "remoter/unknown#9", spans.Ended()[0].Name())
}

func TestMetrics(t *testing.T) {
	d := newPingStub(nil)
	_, reader := setup(t, d)

	for range 3 {
		_, err := d.Dispatch(context.Background(), 0, nil, nil)
		require.NoError(t, err)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	requests, ok := byName["rpc.server.requests"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, requests.DataPoints, 1)
	assert.Equal(t, int64(3), requests.DataPoints[0].Value)
	status, _ := requests.DataPoints[0].Attributes.Value("status")
	assert.Equal(t, "ok", status.AsString())

	duration, ok := byName["rpc.server.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, duration.DataPoints, 1)
	assert.Equal(t, uint64(3), duration.DataPoints[0].Count)
}
