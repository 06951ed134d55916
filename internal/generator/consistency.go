package generator

import (
	"github.com/toyz/remoter/internal/errors"
	"github.com/toyz/remoter/internal/models"
)

// Step is one slot of one method as seen by a generator: a parameter, the
// return value or the failure list, with the wire signature it resolved to
type Step struct {
	Index     int
	Method    string
	Slot      string
	Signature string
}

// Trace is the ordered record of every strategy a generator used
type Trace struct {
	Steps []Step
}

// Record appends a step for m
func (t *Trace) Record(m *models.MethodModel, slot, signature string) {
	t.Steps = append(t.Steps, Step{Index: m.Index, Method: m.Name, Slot: slot, Signature: signature})
}

// CheckConsistency compares the proxy and stub traces of iface step by
// step. Both sides must encode and decode every slot the same way.
func CheckConsistency(iface string, proxy, stub *Trace) error {
	n := max(len(proxy.Steps), len(stub.Steps))
	for i := range n {
		switch {
		case i >= len(stub.Steps):
			p := proxy.Steps[i]
			return errors.NewStrategyMismatchError(iface, p.Method, p.Index, p.Slot, p.Signature, "")
		case i >= len(proxy.Steps):
			s := stub.Steps[i]
			return errors.NewStrategyMismatchError(iface, s.Method, s.Index, s.Slot, "", s.Signature)
		}

		p, s := proxy.Steps[i], stub.Steps[i]
		if p != s {
			return errors.NewStrategyMismatchError(iface, p.Method, p.Index, p.Slot, p.Signature, s.Signature)
		}
	}
	return nil
}
