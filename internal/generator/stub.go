package generator

import (
	"github.com/dave/jennifer/jen"

	"github.com/toyz/remoter/internal/models"
	"github.com/toyz/remoter/internal/strategy"
)

func (g *Generator) stubFile(model *models.InterfaceModel, s *side, records *strategy.RecordSet, prefixes func(string) string) *jen.File {
	f := newFile(model.Package)
	prefix := model.TypePrefix()

	entries := jen.Dict{}
	for _, rm := range s.methods {
		e := strategy.NewEmitter(g.table, "out", "in", records).WithCallbackPrefix(prefixes)
		entries[jen.Id(indexName(prefix, rm.model))] = jen.Values(methodEntry(e, rm))
	}

	f.Commentf("New%sStub returns a dispatcher serving impl under %sDescriptor.", prefix, prefix)
	f.Comment("Register it with a transport's receive loop.")
	f.Func().Id("New"+prefix+"Stub").
		Params(
			jen.Id("impl").Id(model.Name),
			jen.Id("opts").Op("...").Qual(strategy.RuntimePath, "DispatcherOption"),
		).
		Op("*").Qual(strategy.RuntimePath, "Dispatcher").
		Block(
			jen.Return(jen.Qual(strategy.RuntimePath, "NewDispatcher").Call(
				jen.Id(prefix+"Descriptor"),
				jen.Index().Qual(strategy.RuntimePath, "Method").Values(entries),
				jen.Id("opts").Op("..."),
			)),
		)
	return f
}

func methodEntry(e *strategy.Emitter, rm resolvedMethod) jen.Dict {
	m := rm.model
	entry := jen.Dict{
		jen.Id("Name"): jen.Lit(m.Name),
		jen.Id("Handle"): jen.Func().
			Params(
				contextParam(m),
				jen.Id("in").Op("*").Qual(strategy.RuntimePath, "Reader"),
				jen.Id("out").Op("*").Qual(strategy.RuntimePath, "Writer"),
			).
			Error().
			Block(handlerBody(e, rm)...),
	}
	if m.IsOneWay() {
		entry[jen.Id("OneWay")] = jen.True()
	}
	if len(m.Failures) > 0 {
		failures := make([]jen.Code, len(m.Failures))
		for i, failure := range m.Failures {
			failures[i] = jen.Id(failure)
		}
		entry[jen.Id("Failures")] = jen.Index().Error().Values(failures...)
	}
	return entry
}

func contextParam(m *models.MethodModel) jen.Code {
	if m.HasContext {
		return jen.Id("ctx").Qual("context", "Context")
	}
	return jen.Id("_").Qual("context", "Context")
}

// handlerBody decodes the parameters, rejects trailing bytes, calls the
// implementation and encodes its result
func handlerBody(e *strategy.Emitter, rm resolvedMethod) []jen.Code {
	m := rm.model

	var body []jen.Code
	var args []jen.Code
	if m.HasContext {
		args = append(args, jen.Id("ctx"))
	}
	for i, p := range m.Params {
		name := localName(p.Name)
		body = append(body, jen.Var().Id(name).Add(rm.params[i].GoType()))
		body = append(body, e.Decode(rm.params[i], jen.Id(name))...)
		args = append(args, jen.Id(name))
	}
	body = append(body, jen.If(
		jen.Err().Op(":=").Id("in").Dot("Done").Call(),
		jen.Err().Op("!=").Nil(),
	).Block(jen.Return(jen.Err())))

	call := jen.Id("impl").Dot(m.Name).Call(args...)
	if rm.result == nil {
		return append(body, jen.Return(call))
	}

	body = append(body,
		jen.List(jen.Id("result"), jen.Err()).Op(":=").Add(call),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
	)
	body = append(body, e.Encode(rm.result, jen.Id("result"))...)
	return append(body, jen.Return(jen.Nil()))
}
