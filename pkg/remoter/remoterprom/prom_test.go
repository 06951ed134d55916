package remoterprom

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/remoter/pkg/remoter"
)

var errDenied = errors.New("denied")

func newStub(hook remoter.DispatchHook, fail error) *remoter.Dispatcher {
	return remoter.NewDispatcher("test.Counter", []remoter.Method{{
		Name:     "Bump",
		Failures: []error{errDenied},
		Handle: func(context.Context, *remoter.Reader, *remoter.Writer) error {
			return fail
		},
	}}, remoter.WithDispatchHook(hook))
}

func TestDispatchCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	hook, err := NewHook(reg)
	require.NoError(t, err)

	ok := newStub(hook, nil)
	denied := newStub(hook, errDenied)
	for range 2 {
		_, err := ok.Dispatch(context.Background(), 0, nil, nil)
		require.NoError(t, err)
	}
	_, err = denied.Dispatch(context.Background(), 0, nil, nil)
	require.NoError(t, err)
	_, err = ok.Dispatch(context.Background(), 5, nil, nil)
	require.NoError(t, err)

	expected := `
# HELP remoter_dispatch_total Transactions dispatched, by response status
# TYPE remoter_dispatch_total counter
remoter_dispatch_total{method="Bump",service="test.Counter",status="declared_failure"} 1
remoter_dispatch_total{method="Bump",service="test.Counter",status="ok"} 2
remoter_dispatch_total{method="unknown",service="test.Counter",status="unknown_method"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "remoter_dispatch_total"))
	assert.Equal(t, 2, testutil.CollectAndCount(hook.duration))
}

func TestHooksShareCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewHook(reg)
	require.NoError(t, err)
	second, err := NewHook(reg)
	require.NoError(t, err)
	assert.Same(t, first.requests, second.requests)

	_, err = newStub(second, nil).Dispatch(context.Background(), 0, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(first.requests.WithLabelValues("test.Counter", "Bump", "ok")))
}
