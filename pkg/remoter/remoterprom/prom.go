// Package remoterprom exports remoter dispatch metrics to Prometheus.
package remoterprom

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/toyz/remoter/pkg/remoter"
)

// Hook counts dispatches and observes their duration
type Hook struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ remoter.DispatchHook = (*Hook)(nil)

// NewHook creates the collectors and registers them with reg. A nil reg
// uses prometheus.DefaultRegisterer. Collectors already registered by an
// earlier hook are reused, so several dispatchers can share them.
func NewHook(reg prometheus.Registerer) (*Hook, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remoter_dispatch_total",
			Help: "Transactions dispatched, by response status",
		},
		[]string{"service", "method", "status"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remoter_dispatch_duration_seconds",
			Help:    "Time spent dispatching a transaction",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method"},
	)

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	return &Hook{requests: requests, duration: duration}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

type token struct {
	start time.Time
}

// OnDispatchStart implements remoter.DispatchHook
func (h *Hook) OnDispatchStart(ctx context.Context, _ remoter.DispatchInfo) (context.Context, remoter.HookToken) {
	return ctx, token{start: time.Now()}
}

// OnDispatchEnd implements remoter.DispatchHook
func (h *Hook) OnDispatchEnd(_ context.Context, t remoter.HookToken, info remoter.DispatchInfo, stats remoter.DispatchStats, _ error) {
	method := info.Method
	if method == "" {
		method = "unknown"
	}
	h.requests.WithLabelValues(info.Service, method, stats.Status.String()).Inc()
	if tok, ok := t.(token); ok {
		h.duration.WithLabelValues(info.Service, method).Observe(time.Since(tok.start).Seconds())
	}
}
