package errors

import (
	"fmt"
	"strings"
)

// PathSeparator joins the segments of a descriptor path
const PathSeparator = " → "

// UnsupportedTypeError reports a descriptor the classifier cannot map to a
// marshalling strategy. Path locates it inside the method signature.
type UnsupportedTypeError struct {
	*BaseError
	Interface  string   // interface being classified, if known
	Method     string   // method being classified, if known
	Path       []string // e.g. ["parameter 2", "map value", "element 0"]
	Descriptor string   // Go spelling of the offending type
	Reason     string
}

// NewUnsupportedTypeError creates an error for the descriptor at path
func NewUnsupportedTypeError(path []string, descriptor, reason string) *UnsupportedTypeError {
	e := &UnsupportedTypeError{
		BaseError:  New(UnsupportedTypeErrorCode, ""),
		Path:       append([]string(nil), path...),
		Descriptor: descriptor,
		Reason:     reason,
	}
	e.refresh()
	return e
}

// PathString renders the path with arrows
func (e *UnsupportedTypeError) PathString() string {
	return strings.Join(e.Path, PathSeparator)
}

// Within prefixes the path with an outer segment
func (e *UnsupportedTypeError) Within(segment string) *UnsupportedTypeError {
	e.Path = append([]string{segment}, e.Path...)
	e.refresh()
	return e
}

// WithMethod sets the interface and method the descriptor belongs to
func (e *UnsupportedTypeError) WithMethod(iface, method string) *UnsupportedTypeError {
	e.Interface = iface
	e.Method = method
	e.refresh()
	return e
}

// WithLocation adds location information to the error
func (e *UnsupportedTypeError) WithLocation(loc SourceLocation) *UnsupportedTypeError {
	e.BaseError.WithLocation(loc)
	return e
}

func (e *UnsupportedTypeError) refresh() {
	var b strings.Builder
	if e.Interface != "" {
		b.WriteString(e.Interface)
		if e.Method != "" {
			b.WriteString(".")
			b.WriteString(e.Method)
		}
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "unsupported type %s", e.Descriptor)
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, " at %s", e.PathString())
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, " (%s)", e.Reason)
	}
	e.Message = b.String()
}

// Violation is one structural problem found in an interface
type Violation struct {
	Method  string // empty for interface-level violations
	Message string
	Loc     SourceLocation
}

// String returns a formatted representation of the violation
func (v Violation) String() string {
	msg := v.Message
	if v.Method != "" {
		msg = v.Method + ": " + msg
	}
	if !v.Loc.IsEmpty() {
		msg = v.Loc.String() + ": " + msg
	}
	return msg
}

// InvalidInterfaceError accumulates every violation found while building one
// interface model. It is reported once, after the whole interface is checked.
type InvalidInterfaceError struct {
	*BaseError
	Interface  string
	Violations []Violation
}

// NewInvalidInterfaceError creates an empty collector for the named interface
func NewInvalidInterfaceError(iface string, loc SourceLocation) *InvalidInterfaceError {
	e := &InvalidInterfaceError{
		BaseError: New(InvalidInterfaceErrorCode, "").WithLocation(loc),
		Interface: iface,
	}
	e.refresh()
	return e
}

// Add records a violation
func (e *InvalidInterfaceError) Add(method, format string, args ...interface{}) {
	e.AddAt(SourceLocation{}, method, fmt.Sprintf(format, args...))
}

// AddAt records a violation with its own location
func (e *InvalidInterfaceError) AddAt(loc SourceLocation, method, message string) {
	e.Violations = append(e.Violations, Violation{Method: method, Message: message, Loc: loc})
	e.refresh()
}

// HasViolations reports whether anything was recorded
func (e *InvalidInterfaceError) HasViolations() bool {
	return len(e.Violations) > 0
}

// ErrorOrNil returns nil when no violation was recorded
func (e *InvalidInterfaceError) ErrorOrNil() error {
	if !e.HasViolations() {
		return nil
	}
	return e
}

// Error lists every violation. The location prefix is omitted; each
// violation carries its own.
func (e *InvalidInterfaceError) Error() string {
	return e.Message
}

func (e *InvalidInterfaceError) refresh() {
	switch len(e.Violations) {
	case 0:
		e.Message = fmt.Sprintf("interface %s is valid", e.Interface)
	case 1:
		e.Message = fmt.Sprintf("invalid interface %s: %s", e.Interface, e.Violations[0])
	default:
		lines := make([]string, len(e.Violations))
		for i, v := range e.Violations {
			lines[i] = fmt.Sprintf("  %d. %s", i+1, v)
		}
		e.Message = fmt.Sprintf("invalid interface %s (%d violations):\n%s", e.Interface, len(e.Violations), strings.Join(lines, "\n"))
	}
}

// StrategyMismatchError reports that the proxy and stub sides resolved
// different strategies for the same slot. It always indicates a generator
// defect.
type StrategyMismatchError struct {
	*BaseError
	Interface string
	Method    string
	Index     int    // dispatch index, or the step position when the traces differ in length
	Slot      string // "parameter N", "return value" or "failures"
	Proxy     string // proxy-side wire signature, empty when missing
	Stub      string // stub-side wire signature, empty when missing
}

// NewStrategyMismatchError creates a mismatch error for one slot
func NewStrategyMismatchError(iface, method string, index int, slot, proxy, stub string) *StrategyMismatchError {
	message := fmt.Sprintf("strategy mismatch in %s.%s (index %d) at %s: proxy %q, stub %q",
		iface, method, index, slot, proxy, stub)

	return &StrategyMismatchError{
		BaseError: New(StrategyMismatchErrorCode, message).
			WithSuggestion("This is a generator defect; please report it with the interface source"),
		Interface: iface,
		Method:    method,
		Index:     index,
		Slot:      slot,
		Proxy:     proxy,
		Stub:      stub,
	}
}
