package remoter

import "context"

// DispatchInfo describes the transaction being dispatched
type DispatchInfo struct {
	Service string
	Method  string // empty for an unknown index
	Index   uint32
	OneWay  bool
}

// HookToken is opaque state passed from OnDispatchStart to OnDispatchEnd
type HookToken any

// DispatchStats is reported when a dispatch completes
type DispatchStats struct {
	Status        Status
	RequestBytes  int
	ResponseBytes int
}

// DispatchHook observes every transaction a Dispatcher handles.
// OnDispatchStart may return a derived context, e.g. one carrying a span.
type DispatchHook interface {
	OnDispatchStart(ctx context.Context, info DispatchInfo) (context.Context, HookToken)
	OnDispatchEnd(ctx context.Context, token HookToken, info DispatchInfo, stats DispatchStats, err error)
}

type hookChain []DispatchHook

// ChainHooks combines hooks. Starts run in order and ends in reverse, so
// the first hook wraps the others. Nil hooks are skipped.
func ChainHooks(hooks ...DispatchHook) DispatchHook {
	var chain hookChain
	for _, h := range hooks {
		if h != nil {
			chain = append(chain, h)
		}
	}
	switch len(chain) {
	case 0:
		return nil
	case 1:
		return chain[0]
	}
	return chain
}

func (c hookChain) OnDispatchStart(ctx context.Context, info DispatchInfo) (context.Context, HookToken) {
	tokens := make([]HookToken, len(c))
	for i, h := range c {
		ctx, tokens[i] = h.OnDispatchStart(ctx, info)
	}
	return ctx, tokens
}

func (c hookChain) OnDispatchEnd(ctx context.Context, token HookToken, info DispatchInfo, stats DispatchStats, err error) {
	tokens, _ := token.([]HookToken)
	for i := len(c) - 1; i >= 0; i-- {
		var t HookToken
		if i < len(tokens) {
			t = tokens[i]
		}
		c[i].OnDispatchEnd(ctx, t, info, stats, err)
	}
}
