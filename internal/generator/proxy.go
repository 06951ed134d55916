package generator

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/toyz/remoter/internal/models"
	"github.com/toyz/remoter/internal/strategy"
)

func (g *Generator) proxyFile(model *models.InterfaceModel, s *side, records *strategy.RecordSet, prefixes func(string) string) *jen.File {
	f := newFile(model.Package)
	prefix := model.TypePrefix()
	proxy := prefix + "Proxy"

	f.Commentf("%sDescriptor identifies %s on a transport", prefix, model.Name)
	f.Const().Id(prefix + "Descriptor").Op("=").Lit(model.Descriptor)

	f.Line()
	f.Commentf("Dispatch indices of %s", model.Name)
	f.Const().DefsFunc(func(defs *jen.Group) {
		for i := range model.Methods {
			m := &model.Methods[i]
			defs.Id(indexName(prefix, m)).Uint32().Op("=").Lit(m.Index)
		}
	})

	f.Line()
	f.Commentf("%s implements %s by forwarding every call over a remoter.Transport", proxy, model.Name)
	f.Type().Id(proxy).Struct(
		jen.Id("transport").Qual(strategy.RuntimePath, "Transport"),
	)

	f.Line()
	f.Var().Id("_").Id(model.Name).Op("=").Parens(jen.Op("*").Id(proxy)).Parens(jen.Nil())

	f.Line()
	f.Commentf("New%s returns a %s that calls the service behind t", proxy, model.Name)
	f.Func().Id("New"+proxy).Params(jen.Id("t").Qual(strategy.RuntimePath, "Transport")).Op("*").Id(proxy).Block(
		jen.Return(jen.Op("&").Id(proxy).Values(jen.Dict{jen.Id("transport"): jen.Id("t")})),
	)

	for _, rm := range s.methods {
		e := strategy.NewEmitter(g.table, "w", "r", records).WithCallbackPrefix(prefixes)
		f.Line()
		f.Comment(describe(rm.model))
		f.Func().Params(jen.Id("p").Op("*").Id(proxy)).Id(rm.model.Name).
			Params(proxyParams(rm)...).
			Add(results(rm)).
			Block(proxyBody(e, prefix, rm)...)
	}
	return f
}

func proxyParams(rm resolvedMethod) []jen.Code {
	var params []jen.Code
	if rm.model.HasContext {
		params = append(params, jen.Id("ctx").Qual("context", "Context"))
	}
	for i, p := range rm.model.Params {
		params = append(params, jen.Id(localName(p.Name)).Add(rm.params[i].GoType()))
	}
	return params
}

func results(rm resolvedMethod) jen.Code {
	if rm.result == nil {
		return jen.Error()
	}
	return jen.Params(jen.Id("result").Add(rm.result.GoType()), jen.Err().Error())
}

func proxyBody(e *strategy.Emitter, prefix string, rm resolvedMethod) []jen.Code {
	m := rm.model
	transport := jen.Id("p").Dot("transport")

	var body []jen.Code
	if !m.HasContext {
		body = append(body, jen.Id("ctx").Op(":=").Qual("context", "Background").Call())
	}
	body = append(body, jen.Id("w").Op(":=").Qual(strategy.RuntimePath, "NewWriterFor").Call(transport))
	for i, p := range m.Params {
		body = append(body, e.Encode(rm.params[i], jen.Id(localName(p.Name)))...)
	}

	if m.IsOneWay() {
		return append(body, jen.Return(
			jen.Qual(strategy.RuntimePath, "InvokeOneWay").Call(jen.Id("ctx"), transport, jen.Id(indexName(prefix, m)), jen.Id("w")),
		))
	}

	args := []jen.Code{jen.Id("ctx"), transport, jen.Id(indexName(prefix, m)), jen.Id("w")}
	for _, failure := range m.Failures {
		args = append(args, jen.Id(failure))
	}
	body = append(body, jen.List(jen.Id("r"), jen.Err()).Op(":=").Qual(strategy.RuntimePath, "Invoke").Call(args...))

	if rm.result == nil {
		return append(body,
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
			jen.Return(jen.Id("r").Dot("Done").Call()),
		)
	}

	body = append(body, jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Id("result"), jen.Err())))
	body = append(body, e.Decode(rm.result, jen.Id("result"))...)
	return append(body, jen.Return(jen.Id("result"), jen.Id("r").Dot("Done").Call()))
}

// describe is the doc comment of a generated method
func describe(m *models.MethodModel) string {
	if m.IsOneWay() {
		return fmt.Sprintf("%s sends dispatch index %d without waiting", m.Name, m.Index)
	}
	return fmt.Sprintf("%s calls dispatch index %d and waits for the response", m.Name, m.Index)
}
