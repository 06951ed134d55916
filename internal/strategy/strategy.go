// Package strategy holds the closed table of marshalling rules and the
// strategies the classifier resolves descriptors to.
package strategy

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/toyz/remoter/internal/models"
)

// RuntimePath is the import path of the runtime used by generated code
const RuntimePath = "github.com/toyz/remoter/pkg/remoter"

// Strategy is a resolved marshalling strategy. It mirrors the descriptor it
// was classified from; recursive kinds carry their children's strategies.
// Strategies are immutable once built.
type Strategy struct {
	Kind      models.Kind
	Primitive models.Primitive // primitives, and the underlying type of enums
	Name      string           // record, enum and callback kinds
	Container models.Container
	Length    int
	Nullable  bool
	Mutable   bool // decode builds a growable container
	Ref       bool // record back-reference; Fields are empty
	Elem      *Strategy
	Key       *Strategy
	Fields    []FieldStrategy
}

// FieldStrategy is the strategy of one record field
type FieldStrategy struct {
	Name     string
	Strategy *Strategy
}

// Signature is the canonical form of the strategy. Equal strategies have
// equal signatures.
func (s *Strategy) Signature() string {
	var b strings.Builder
	s.write(&b, true)
	return b.String()
}

// WireSignature is Signature without the decode-only mutability bit. Two
// strategies with the same wire signature produce identical bytes.
func (s *Strategy) WireSignature() string {
	var b strings.Builder
	s.write(&b, false)
	return b.String()
}

// String returns the signature
func (s *Strategy) String() string {
	return s.Signature()
}

func (s *Strategy) write(b *strings.Builder, withMutability bool) {
	if s == nil {
		b.WriteString("void")
		return
	}
	if s.Nullable {
		b.WriteString("?")
	}
	if withMutability && s.Mutable {
		b.WriteString("mut ")
	}
	switch s.Kind {
	case models.KindPrimitive:
		b.WriteString(s.Primitive.String())
	case models.KindEnum:
		fmt.Fprintf(b, "enum %s:%s", s.Name, s.Primitive)
	case models.KindCallback:
		fmt.Fprintf(b, "callback %s", s.Name)
	case models.KindRecord:
		if s.Ref {
			fmt.Fprintf(b, "record %s^", s.Name)
			return
		}
		fmt.Fprintf(b, "record %s{", s.Name)
		for i, f := range s.Fields {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(f.Name)
			b.WriteString(":")
			f.Strategy.write(b, withMutability)
		}
		b.WriteString("}")
	case models.KindCollection:
		if s.Container == models.ContainerRuntime {
			b.WriteString("list<")
		} else {
			b.WriteString("slice<")
		}
		s.Elem.write(b, withMutability)
		b.WriteString(">")
	case models.KindMap:
		if s.Container == models.ContainerRuntime {
			b.WriteString("dict<")
		} else {
			b.WriteString("map<")
		}
		s.Key.write(b, withMutability)
		b.WriteString(",")
		s.Elem.write(b, withMutability)
		b.WriteString(">")
	case models.KindArray:
		fmt.Fprintf(b, "array%d<", s.Length)
		s.Elem.write(b, withMutability)
		b.WriteString(">")
	default:
		fmt.Fprintf(b, "kind%d", int(s.Kind))
	}
}

// GoType renders the Go type the strategy marshals
func (s *Strategy) GoType() jen.Code {
	var base *jen.Statement
	switch s.Kind {
	case models.KindPrimitive:
		if s.Primitive == models.PrimitiveBytes {
			base = jen.Index().Byte()
		} else {
			base = jen.Id(s.Primitive.String())
		}
	case models.KindRecord, models.KindEnum, models.KindCallback:
		base = jen.Id(s.Name)
	case models.KindCollection:
		if s.Container == models.ContainerRuntime {
			base = jen.Qual(RuntimePath, "List").Types(s.Elem.GoType())
		} else {
			base = jen.Index().Add(s.Elem.GoType())
		}
	case models.KindMap:
		if s.Container == models.ContainerRuntime {
			base = jen.Qual(RuntimePath, "Map").Types(s.Key.GoType(), s.Elem.GoType())
		} else {
			base = jen.Map(s.Key.GoType()).Add(s.Elem.GoType())
		}
	case models.KindArray:
		base = jen.Index(jen.Lit(s.Length)).Add(s.Elem.GoType())
	default:
		base = jen.Id("invalid")
	}
	if s.Nullable {
		return jen.Op("*").Add(base)
	}
	return base
}

// Walk calls fn for s and every strategy nested in it, parents first.
// Record back-references are visited but not expanded.
func (s *Strategy) Walk(fn func(*Strategy)) {
	if s == nil {
		return
	}
	fn(s)
	s.Key.Walk(fn)
	s.Elem.Walk(fn)
	for _, f := range s.Fields {
		f.Strategy.Walk(fn)
	}
}
