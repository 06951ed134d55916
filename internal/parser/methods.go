package parser

import (
	"fmt"
	"go/ast"
	"strings"

	"github.com/toyz/remoter/internal/annotations"
	"github.com/toyz/remoter/internal/models"
)

func (p *Parser) buildMethod(pkg *packageScope, res *resolver, name string, fn *ast.FuncType, field *ast.Field) (*models.RawMethod, error) {
	method := &models.RawMethod{
		Name:     name,
		Location: pkg.modelLocation(field.Pos()),
	}

	var signature []string
	if fn.Params != nil {
		position := 0
		for i, param := range fn.Params.List {
			if i == 0 && res.isContext(param.Type) && len(param.Names) <= 1 {
				method.HasContext = true
				continue
			}

			names := param.Names
			if len(names) == 0 {
				names = []*ast.Ident{nil}
			}
			for _, ident := range names {
				paramName := fmt.Sprintf("arg%d", position)
				if ident != nil && ident.Name != "_" {
					paramName = ident.Name
				}
				method.Params = append(method.Params, models.RawParam{
					Name: paramName,
					Type: res.resolve(param.Type),
				})
				signature = append(signature, typeString(param.Type, res.typeParams))
				position++
			}
		}
	}
	method.Signature = "(" + strings.Join(signature, ", ") + ")"

	if fn.Results != nil {
		var results []ast.Expr
		for _, result := range fn.Results.List {
			count := len(result.Names)
			if count == 0 {
				count = 1
			}
			for i := 0; i < count; i++ {
				results = append(results, result.Type)
			}
		}
		if n := len(results); n > 0 && identName(results[n-1]) == "error" {
			method.ReturnsErr = true
			results = results[:n-1]
		}
		for _, result := range results {
			method.Results = append(method.Results, res.resolve(result))
		}
	}

	parsed, err := p.annotations.ParseCommentGroup(field.Doc, pkg.fset, annotations.OnMethod)
	if err != nil {
		return nil, err
	}
	applyMethodAnnotations(method, parsed)
	return method, nil
}

func applyMethodAnnotations(method *models.RawMethod, parsed []*annotations.ParsedAnnotation) {
	seenParams := make(map[string]bool)
	seenReturns := false

	for _, a := range parsed {
		switch a.Type {
		case annotations.OneWayAnnotation:
			method.OneWay = true

		case annotations.ThrowsAnnotation:
			method.Failures = append(method.Failures, a.GetStringSlice("Errors")...)

		case annotations.ParamAnnotation:
			if seenParams[a.Target] {
				method.Problems = append(method.Problems, fmt.Sprintf("parameter '%s' is annotated more than once", a.Target))
				continue
			}
			seenParams[a.Target] = true

			idx := -1
			for i := range method.Params {
				if method.Params[i].Name == a.Target {
					idx = i
					break
				}
			}
			if idx < 0 {
				method.Problems = append(method.Problems, fmt.Sprintf("annotation names unknown parameter '%s'", a.Target))
				continue
			}

			desc := method.Params[idx].Type
			if a.GetBool("Mutable") {
				desc = desc.WithMutable(true)
			}
			direction, err := models.ParseDirection(a.GetString("Direction"))
			if err != nil {
				method.Problems = append(method.Problems, err.Error())
				continue
			}
			if direction != models.DirectionIn {
				clone := *desc
				clone.Direction = direction
				desc = &clone
			}
			method.Params[idx].Type = desc

		case annotations.ReturnsAnnotation:
			if seenReturns {
				method.Problems = append(method.Problems, "result is annotated more than once")
				continue
			}
			seenReturns = true
			if len(method.Results) == 0 {
				method.Problems = append(method.Problems, "//remoter::returns on a method without a value result")
				continue
			}
			if a.GetBool("Mutable") {
				method.Results[0] = method.Results[0].WithMutable(true)
			}
		}
	}
}
