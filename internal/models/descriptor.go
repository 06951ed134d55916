package models

import (
	"fmt"
	"strings"
)

// Kind is the base kind of a TypeDescriptor. The set is closed.
type Kind int

const (
	KindPrimitive Kind = iota
	KindRecord
	KindEnum
	KindCollection
	KindMap
	KindCallback
	KindArray
)

// Kinds lists every base kind in declaration order.
var Kinds = []Kind{KindPrimitive, KindRecord, KindEnum, KindCollection, KindMap, KindCallback, KindArray}

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindRecord:
		return "record"
	case KindEnum:
		return "enum"
	case KindCollection:
		return "collection"
	case KindMap:
		return "map"
	case KindCallback:
		return "callback"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Primitive identifies a built-in scalar type
type Primitive int

const (
	PrimitiveNone Primitive = iota
	PrimitiveBool
	PrimitiveInt
	PrimitiveInt8
	PrimitiveInt16
	PrimitiveInt32
	PrimitiveInt64
	PrimitiveUint
	PrimitiveUint8
	PrimitiveUint16
	PrimitiveUint32
	PrimitiveUint64
	PrimitiveFloat32
	PrimitiveFloat64
	PrimitiveString
	PrimitiveBytes
)

var primitiveNames = map[Primitive]string{
	PrimitiveBool:    "bool",
	PrimitiveInt:     "int",
	PrimitiveInt8:    "int8",
	PrimitiveInt16:   "int16",
	PrimitiveInt32:   "int32",
	PrimitiveInt64:   "int64",
	PrimitiveUint:    "uint",
	PrimitiveUint8:   "uint8",
	PrimitiveUint16:  "uint16",
	PrimitiveUint32:  "uint32",
	PrimitiveUint64:  "uint64",
	PrimitiveFloat32: "float32",
	PrimitiveFloat64: "float64",
	PrimitiveString:  "string",
	PrimitiveBytes:   "[]byte",
}

// String returns the Go spelling of the primitive
func (p Primitive) String() string {
	if name, ok := primitiveNames[p]; ok {
		return name
	}
	return "none"
}

// IsInteger reports whether the primitive is a signed or unsigned integer
func (p Primitive) IsInteger() bool {
	return p >= PrimitiveInt && p <= PrimitiveUint64
}

// ParsePrimitive resolves a Go builtin identifier. "byte" and "rune" alias uint8 and int32.
func ParsePrimitive(name string) (Primitive, bool) {
	switch name {
	case "byte":
		return PrimitiveUint8, true
	case "rune":
		return PrimitiveInt32, true
	}
	for p, n := range primitiveNames {
		if n == name && p != PrimitiveBytes {
			return p, true
		}
	}
	return PrimitiveNone, false
}

// Container selects the Go shape used for collections and maps
type Container int

const (
	// ContainerBuiltin is a Go slice or map
	ContainerBuiltin Container = iota
	// ContainerRuntime is remoter.List or remoter.Map
	ContainerRuntime
)

// Direction of a parameter relative to the call
type Direction int

const (
	DirectionIn Direction = iota
	DirectionOut
	DirectionInOut
)

// String returns the annotation spelling of the direction
func (d Direction) String() string {
	switch d {
	case DirectionOut:
		return "out"
	case DirectionInOut:
		return "inout"
	default:
		return "in"
	}
}

// ParseDirection converts an annotation value to a Direction
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "in":
		return DirectionIn, nil
	case "out":
		return DirectionOut, nil
	case "inout":
		return DirectionInOut, nil
	default:
		return DirectionIn, fmt.Errorf("unknown direction: %s", s)
	}
}

// Field is a structured-record field
type Field struct {
	Name string          // Go field name
	Type *TypeDescriptor // field type
}

// TypeDescriptor identifies a parameter or return type together with its
// marshalling metadata. Descriptors are trees: recursive kinds carry their
// element descriptors.
type TypeDescriptor struct {
	Kind      Kind
	Primitive Primitive       // primitive and enum kinds
	Name      string          // record, enum and callback kinds
	Elem      *TypeDescriptor // collection/array element, map value
	Key       *TypeDescriptor // map key
	Length    int             // array length
	Fields    []Field         // record fields in declaration order
	Container Container       // collection and map kinds
	Nullable  bool
	Mutable   bool
	Direction Direction

	// BackRef marks a record occurrence nested inside its own definition.
	// Its Fields are left empty and resolve to the enclosing record.
	BackRef bool

	// Unsupported is set by the metadata source when the Go type has no
	// descriptor kind; the classifier reports it with a path.
	Unsupported string
}

// NewPrimitive returns a descriptor for a builtin scalar
func NewPrimitive(p Primitive) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindPrimitive, Primitive: p}
}

// NewCollection returns a collection descriptor of the given container shape
func NewCollection(elem *TypeDescriptor, container Container) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindCollection, Elem: elem, Container: container}
}

// NewMap returns a map descriptor of the given container shape
func NewMap(key, value *TypeDescriptor, container Container) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindMap, Key: key, Elem: value, Container: container}
}

// IsContainer reports whether the descriptor decodes into a collection or map
func (d *TypeDescriptor) IsContainer() bool {
	return d.Kind == KindCollection || d.Kind == KindMap
}

// WithMutable returns a copy of the descriptor with the mutability flag set on
// every container in the tree. Records are not descended into; their fields
// keep their own metadata.
func (d *TypeDescriptor) WithMutable(mutable bool) *TypeDescriptor {
	if d == nil {
		return nil
	}
	clone := *d
	if clone.IsContainer() || clone.Kind == KindArray {
		clone.Mutable = mutable && clone.IsContainer()
		clone.Elem = d.Elem.WithMutable(mutable)
		clone.Key = d.Key.WithMutable(mutable)
	}
	return &clone
}

// String renders the descriptor the way it is spelled in Go source
func (d *TypeDescriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	if d.Unsupported != "" {
		return d.Unsupported
	}
	var base string
	switch d.Kind {
	case KindPrimitive:
		base = d.Primitive.String()
	case KindRecord, KindEnum, KindCallback:
		base = d.Name
	case KindCollection:
		if d.Container == ContainerRuntime {
			base = fmt.Sprintf("remoter.List[%s]", d.Elem)
		} else {
			base = "[]" + d.Elem.String()
		}
	case KindMap:
		if d.Container == ContainerRuntime {
			base = fmt.Sprintf("remoter.Map[%s, %s]", d.Key, d.Elem)
		} else {
			base = fmt.Sprintf("map[%s]%s", d.Key, d.Elem)
		}
	case KindArray:
		base = fmt.Sprintf("[%d]%s", d.Length, d.Elem)
	default:
		base = "unknown"
	}
	if d.Nullable {
		return "*" + base
	}
	return base
}

// Fingerprint is a canonical key covering every field that affects
// classification. Structurally identical descriptors share a fingerprint.
func (d *TypeDescriptor) Fingerprint() string {
	var b strings.Builder
	d.writeFingerprint(&b)
	return b.String()
}

func (d *TypeDescriptor) writeFingerprint(b *strings.Builder) {
	if d == nil {
		b.WriteString("_")
		return
	}
	fmt.Fprintf(b, "%d:%d:%s:%d:%d:%t:%t:%d:%t:%s", d.Kind, d.Primitive, d.Name, d.Length, d.Container, d.Nullable, d.Mutable, d.Direction, d.BackRef, d.Unsupported)
	b.WriteString("(")
	d.Key.writeFingerprint(b)
	b.WriteString(",")
	d.Elem.writeFingerprint(b)
	for _, f := range d.Fields {
		b.WriteString(",")
		b.WriteString(f.Name)
		b.WriteString("=")
		f.Type.writeFingerprint(b)
	}
	b.WriteString(")")
}
