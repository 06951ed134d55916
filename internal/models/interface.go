package models

// SourceLocation points at a declaration in Go source
type SourceLocation struct {
	File string // file path
	Line int    // line number (1-based)
}

// RawParam is a parameter as reported by the metadata source
type RawParam struct {
	Name string          // parameter name, synthesised as argN when unnamed
	Type *TypeDescriptor // resolved type
}

// RawMethod is a method as reported by the metadata source, before validation
type RawMethod struct {
	Name       string
	Params     []RawParam        // marshalled parameters, context excluded
	HasContext bool              // first Go parameter is context.Context
	Results    []*TypeDescriptor // value results, the trailing error excluded
	ReturnsErr bool              // last Go result is error
	OneWay     bool
	Failures   []string // declared failure kinds: package-level sentinel error names
	Location   SourceLocation

	// Signature is the erased parameter list used for duplicate detection
	Signature string

	// Problems found by the metadata source that do not prevent parsing,
	// e.g. an annotation naming a parameter that does not exist.
	Problems []string
}

// RawInterface is an interface declaration as reported by the metadata source
type RawInterface struct {
	Name        string // Go type name
	Alias       string // generated type prefix, defaults to Name
	Package     string // Go package name
	ImportPath  string // full import path, when known
	Descriptor  string // wire descriptor, defaults to ImportPath.Name
	Callback    bool   // declared with //remoter::callback
	TypeParams  []string
	Methods     []RawMethod
	KnownErrors map[string]bool // package-level error variables, for failure validation
	Location    SourceLocation
}

// CallMode is how the proxy waits for a method
type CallMode int

const (
	CallSync CallMode = iota
	CallOneWay
	CallCallback
)

// String returns the string representation of the call mode
func (m CallMode) String() string {
	switch m {
	case CallOneWay:
		return "oneway"
	case CallCallback:
		return "callback"
	default:
		return "sync"
	}
}

// ParamModel is a validated parameter
type ParamModel struct {
	Name  string
	Index int // 0-based position among marshalled parameters
	Type  *TypeDescriptor
}

// MethodModel is a validated method with a stable dispatch index
type MethodModel struct {
	Name       string
	Index      int // dispatch index, the wire identifier
	Params     []ParamModel
	Return     *TypeDescriptor // nil when the method has no value result
	Failures   []string
	Mode       CallMode
	HasContext bool
	Location   SourceLocation
}

// IsOneWay reports whether the proxy sends without waiting
func (m *MethodModel) IsOneWay() bool {
	return m.Mode == CallOneWay
}

// InterfaceModel is a validated remote interface. It is immutable once built
// and shared read-only by both generators.
type InterfaceModel struct {
	Name       string
	Alias      string
	Package    string
	ImportPath string
	Descriptor string
	Callback   bool
	Methods    []MethodModel
	Location   SourceLocation
}

// Identity is the key used to detect callback cycles within a run
func (m *InterfaceModel) Identity() string {
	if m.ImportPath == "" {
		return m.Package + "." + m.Name
	}
	return m.ImportPath + "." + m.Name
}

// TypePrefix is the prefix of generated type names
func (m *InterfaceModel) TypePrefix() string {
	if m.Alias != "" {
		return m.Alias
	}
	return m.Name
}
