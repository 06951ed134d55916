package remoter

import "go.uber.org/zap"

type options struct {
	logger      *zap.Logger
	hook        DispatchHook
	failureHook FailureHook
}

// Option configures a Dispatcher, Loopback or Connector
type Option func(*options)

// DispatcherOption is the option type accepted by generated stub constructors
type DispatcherOption = Option

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDispatchHook installs a hook observing every dispatch. Repeated
// options are chained.
func WithDispatchHook(hook DispatchHook) Option {
	return func(o *options) {
		o.hook = ChainHooks(o.hook, hook)
	}
}

// WithFailureHook replaces the hook that receives undeclared failures.
// The default logs them at error level.
func WithFailureHook(hook FailureHook) Option {
	return func(o *options) {
		o.failureHook = hook
	}
}
