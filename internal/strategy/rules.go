package strategy

import (
	"fmt"

	"github.com/dave/jennifer/jen"
	"github.com/toyz/remoter/internal/models"
)

var primitiveMethods = map[models.Primitive]string{
	models.PrimitiveBool:    "Bool",
	models.PrimitiveInt:     "Int",
	models.PrimitiveInt8:    "Int8",
	models.PrimitiveInt16:   "Int16",
	models.PrimitiveInt32:   "Int32",
	models.PrimitiveInt64:   "Int64",
	models.PrimitiveUint:    "Uint",
	models.PrimitiveUint8:   "Uint8",
	models.PrimitiveUint16:  "Uint16",
	models.PrimitiveUint32:  "Uint32",
	models.PrimitiveUint64:  "Uint64",
	models.PrimitiveFloat32: "Float32",
	models.PrimitiveFloat64: "Float64",
	models.PrimitiveString:  "String",
	models.PrimitiveBytes:   "Bytes",
}

// RegisterBuiltins registers the rule of every kind
func RegisterBuiltins(t *Table) error {
	builtins := []struct {
		kind models.Kind
		rule Rule
	}{
		{models.KindPrimitive, Rule{Encode: encodePrimitive, Decode: decodePrimitive}},
		{models.KindEnum, Rule{Encode: encodeEnum, Decode: decodeEnum}},
		{models.KindRecord, Rule{Encode: encodeRecord, Decode: decodeRecord}},
		{models.KindCollection, Rule{Encode: encodeCollection, Decode: decodeCollection}},
		{models.KindMap, Rule{Encode: encodeMap, Decode: decodeMap}},
		{models.KindArray, Rule{Encode: encodeArray, Decode: decodeArray}},
		{models.KindCallback, Rule{Encode: encodeCallback, Decode: decodeCallback}},
	}
	for _, b := range builtins {
		if err := t.Register(b.kind, b.rule); err != nil {
			return err
		}
	}
	return nil
}

func primitiveMethod(p models.Primitive) string {
	name, ok := primitiveMethods[p]
	if !ok {
		panic(fmt.Sprintf("strategy: no wire method for primitive %s", p))
	}
	return name
}

func encodePrimitive(e *Emitter, s *Strategy, value jen.Code) []jen.Code {
	return []jen.Code{e.W().Dot("Write" + primitiveMethod(s.Primitive)).Call(value)}
}

func decodePrimitive(e *Emitter, s *Strategy, target jen.Code) []jen.Code {
	return []jen.Code{jen.Add(target).Op("=").Add(e.R()).Dot("Read" + primitiveMethod(s.Primitive)).Call()}
}

func encodeEnum(e *Emitter, s *Strategy, value jen.Code) []jen.Code {
	return []jen.Code{jen.Qual(RuntimePath, "WriteEnum").Call(e.W(), value)}
}

func decodeEnum(e *Emitter, s *Strategy, target jen.Code) []jen.Code {
	return []jen.Code{
		jen.Add(target).Op("=").Qual(RuntimePath, "ReadEnum").Types(jen.Id(s.Name)).Call(e.R()),
	}
}

// RecordWriter is the name of the generated helper encoding record name
func RecordWriter(name string) string { return "remoterWrite" + name }

// RecordReader is the name of the generated helper decoding record name
func RecordReader(name string) string { return "remoterRead" + name }

func encodeRecord(e *Emitter, s *Strategy, value jen.Code) []jen.Code {
	e.records.Add(s)
	return []jen.Code{jen.Id(RecordWriter(s.Name)).Call(e.W(), value)}
}

func decodeRecord(e *Emitter, s *Strategy, target jen.Code) []jen.Code {
	e.records.Add(s)
	return []jen.Code{jen.Add(target).Op("=").Id(RecordReader(s.Name)).Call(e.R())}
}

// nilCheck is the condition under which a collection or map encodes as nil
func nilCheck(s *Strategy, value jen.Code) *jen.Statement {
	if s.Container == models.ContainerRuntime {
		return jen.Add(value).Dot("IsNil").Call()
	}
	return jen.Add(value).Op("==").Nil()
}

func length(s *Strategy, value jen.Code) *jen.Statement {
	if s.Container == models.ContainerRuntime {
		return jen.Add(value).Dot("Len").Call()
	}
	return jen.Len(value)
}

func encodeCollection(e *Emitter, s *Strategy, value jen.Code) []jen.Code {
	el := e.temp("e")
	source := jen.Add(value)
	if s.Container == models.ContainerRuntime {
		source = jen.Add(value).Dot("All").Call()
	}
	return []jen.Code{
		jen.If(nilCheck(s, value)).Block(
			e.W().Dot("WriteNil").Call(),
		).Else().Block(
			e.W().Dot("WriteLen").Call(length(s, value)),
			jen.For(jen.List(jen.Id("_"), jen.Id(el)).Op(":=").Range().Add(source)).Block(
				e.Encode(s.Elem, jen.Id(el))...,
			),
		),
	}
}

// decodeCollection builds the container in one of two shapes. A mutable
// builtin slice grows by append in wire order; everything else is filled
// by index into a slice of the final length.
func decodeCollection(e *Emitter, s *Strategy, target jen.Code) []jen.Code {
	n := e.next()
	count := fmt.Sprintf("_n%d", n)
	items := fmt.Sprintf("_items%d", n)
	elemType := s.Elem.GoType()

	var body []jen.Code
	if s.Mutable && s.Container == models.ContainerBuiltin {
		el := fmt.Sprintf("_e%d", n)
		loop := []jen.Code{jen.Var().Id(el).Add(elemType)}
		loop = append(loop, e.Decode(s.Elem, jen.Id(el))...)
		loop = append(loop, jen.Id(items).Op("=").Append(jen.Id(items), jen.Id(el)))
		body = []jen.Code{
			jen.Id(items).Op(":=").Make(jen.Index().Add(elemType), jen.Lit(0), jen.Id(count)),
			jen.For(jen.Range().Id(count)).Block(loop...),
		}
	} else {
		i := fmt.Sprintf("_i%d", n)
		body = []jen.Code{
			jen.Id(items).Op(":=").Make(jen.Index().Add(elemType), jen.Id(count)),
			jen.For(jen.Id(i).Op(":=").Range().Id(items)).Block(
				e.Decode(s.Elem, jen.Id(items).Index(jen.Id(i)))...,
			),
		}
	}

	var result jen.Code = jen.Id(items)
	if s.Container == models.ContainerRuntime {
		constructor := "NewReadOnlyList"
		if s.Mutable {
			constructor = "NewList"
		}
		result = jen.Qual(RuntimePath, constructor).Call(jen.Id(items).Op("..."))
	}
	body = append(body, jen.Add(target).Op("=").Add(result))

	return []jen.Code{
		jen.If(
			jen.Id(count).Op(":=").Add(e.R()).Dot("ReadLen").Call(),
			jen.Id(count).Op(">=").Lit(0),
		).Block(body...),
	}
}

func encodeMap(e *Emitter, s *Strategy, value jen.Code) []jen.Code {
	n := e.next()
	k := fmt.Sprintf("_k%d", n)

	var loop *jen.Statement
	if s.Container == models.ContainerRuntime {
		v := fmt.Sprintf("_v%d", n)
		body := append(e.Encode(s.Key, jen.Id(k)), e.Encode(s.Elem, jen.Id(v))...)
		loop = jen.For(jen.List(jen.Id(k), jen.Id(v)).Op(":=").Range().Add(value).Dot("All").Call()).Block(body...)
	} else {
		body := append(e.Encode(s.Key, jen.Id(k)), e.Encode(s.Elem, jen.Add(value).Index(jen.Id(k)))...)
		loop = jen.For(
			jen.List(jen.Id("_"), jen.Id(k)).Op(":=").Range().Qual(RuntimePath, "SortedKeys").Call(value),
		).Block(body...)
	}

	return []jen.Code{
		jen.If(nilCheck(s, value)).Block(
			e.W().Dot("WriteNil").Call(),
		).Else().Block(
			e.W().Dot("WriteLen").Call(length(s, value)),
			loop,
		),
	}
}

// decodeMap fills a map entry by entry. Builtin maps decode the same way
// whatever the mutability flag; an immutable runtime map is handed out as
// a read-only view.
func decodeMap(e *Emitter, s *Strategy, target jen.Code) []jen.Code {
	n := e.next()
	count := fmt.Sprintf("_n%d", n)
	m := fmt.Sprintf("_m%d", n)
	k := fmt.Sprintf("_k%d", n)
	v := fmt.Sprintf("_v%d", n)
	keyType, valueType := s.Key.GoType(), s.Elem.GoType()

	loop := []jen.Code{
		jen.Var().Id(k).Add(keyType),
		jen.Var().Id(v).Add(valueType),
	}
	loop = append(loop, e.Decode(s.Key, jen.Id(k))...)
	loop = append(loop, e.Decode(s.Elem, jen.Id(v))...)

	var create, result jen.Code
	if s.Container == models.ContainerRuntime {
		create = jen.Id(m).Op(":=").Qual(RuntimePath, "NewMap").Types(keyType, valueType).Call()
		loop = append(loop, jen.Id("_").Op("=").Id(m).Dot("Put").Call(jen.Id(k), jen.Id(v)))
		result = jen.Id(m)
		if !s.Mutable {
			result = jen.Id(m).Dot("ReadOnlyView").Call()
		}
	} else {
		create = jen.Id(m).Op(":=").Make(jen.Map(keyType).Add(valueType), jen.Id(count))
		loop = append(loop, jen.Id(m).Index(jen.Id(k)).Op("=").Id(v))
		result = jen.Id(m)
	}

	return []jen.Code{
		jen.If(
			jen.Id(count).Op(":=").Add(e.R()).Dot("ReadLen").Call(),
			jen.Id(count).Op(">=").Lit(0),
		).Block(
			create,
			jen.For(jen.Range().Id(count)).Block(loop...),
			jen.Add(target).Op("=").Add(result),
		),
	}
}

func encodeArray(e *Emitter, s *Strategy, value jen.Code) []jen.Code {
	el := e.temp("e")
	return []jen.Code{
		e.W().Dot("WriteLen").Call(jen.Lit(s.Length)),
		jen.For(jen.List(jen.Id("_"), jen.Id(el)).Op(":=").Range().Add(value)).Block(
			e.Encode(s.Elem, jen.Id(el))...,
		),
	}
}

func decodeArray(e *Emitter, s *Strategy, target jen.Code) []jen.Code {
	i := e.temp("i")
	return []jen.Code{
		jen.If(e.R().Dot("ExpectLen").Call(jen.Lit(s.Length))).Block(
			jen.For(jen.Id(i).Op(":=").Range().Lit(s.Length)).Block(
				e.Decode(s.Elem, jen.Add(target).Index(jen.Id(i)))...,
			),
		),
	}
}

func encodeCallback(e *Emitter, s *Strategy, value jen.Code) []jen.Code {
	stub := "New" + e.CallbackPrefix(s.Name) + "Stub"
	return []jen.Code{jen.Qual(RuntimePath, "WriteCallback").Call(e.W(), value, jen.Id(stub))}
}

func decodeCallback(e *Emitter, s *Strategy, target jen.Code) []jen.Code {
	proxy := "New" + e.CallbackPrefix(s.Name) + "Proxy"
	return []jen.Code{
		jen.Add(target).Op("=").Qual(RuntimePath, "ReadCallback").Call(
			e.R(),
			jen.Func().Params(jen.Id("t").Qual(RuntimePath, "Transport")).Id(s.Name).Block(
				jen.Return(jen.Id(proxy).Call(jen.Id("t"))),
			),
		),
	}
}
