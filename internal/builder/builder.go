// Package builder validates raw interface metadata and produces the
// immutable models both generators share.
package builder

import (
	"fmt"
	"strings"

	"github.com/toyz/remoter/internal/errors"
	"github.com/toyz/remoter/internal/models"
)

// Build validates raw and assigns dispatch indices. Every violation found in
// the interface is reported together in one *errors.InvalidInterfaceError.
func Build(raw *models.RawInterface) (*models.InterfaceModel, error) {
	invalid := errors.NewInvalidInterfaceError(raw.Name, location(raw.Location))

	if len(raw.TypeParams) > 0 {
		invalid.Add("", "generic interfaces are not supported (type parameters %s)", strings.Join(raw.TypeParams, ", "))
	}

	model := &models.InterfaceModel{
		Name:       raw.Name,
		Alias:      raw.Alias,
		Package:    raw.Package,
		ImportPath: raw.ImportPath,
		Descriptor: raw.Descriptor,
		Callback:   raw.Callback,
		Location:   raw.Location,
	}
	if model.Descriptor == "" {
		model.Descriptor = model.Identity()
	}

	signatures := make(map[string]string, len(raw.Methods))
	for i := range raw.Methods {
		method := &raw.Methods[i]
		if previous, seen := signatures[method.Name]; seen {
			if previous == method.Signature {
				invalid.AddAt(location(method.Location), method.Name,
					fmt.Sprintf("duplicate method signature %s%s", method.Name, method.Signature))
			} else {
				invalid.AddAt(location(method.Location), method.Name,
					fmt.Sprintf("overloading is not supported: %s%s conflicts with %s%s", method.Name, method.Signature, method.Name, previous))
			}
			continue
		}
		signatures[method.Name] = method.Signature

		built, problems := buildMethod(method, len(model.Methods), raw.KnownErrors)
		for _, problem := range problems {
			invalid.AddAt(location(method.Location), method.Name, problem)
		}
		model.Methods = append(model.Methods, built)
	}

	for i, m := range model.Methods {
		if m.Index != i {
			invalid.Add(m.Name, "dispatch index %d is out of sequence, expected %d", m.Index, i)
		}
	}

	if err := invalid.ErrorOrNil(); err != nil {
		return nil, err
	}
	return model, nil
}

func buildMethod(raw *models.RawMethod, index int, known map[string]bool) (models.MethodModel, []string) {
	problems := append([]string(nil), raw.Problems...)

	method := models.MethodModel{
		Name:       raw.Name,
		Index:      index,
		HasContext: raw.HasContext,
		Location:   raw.Location,
		Mode:       models.CallSync,
	}

	if !raw.ReturnsErr {
		problems = append(problems, "the last result must be error")
	}
	switch len(raw.Results) {
	case 0:
	case 1:
		method.Return = raw.Results[0]
	default:
		problems = append(problems, fmt.Sprintf("at most one value result may precede error, found %d", len(raw.Results)))
		method.Return = raw.Results[0]
	}

	seen := make(map[string]bool, len(raw.Failures))
	for _, failure := range raw.Failures {
		switch {
		case seen[failure]:
			problems = append(problems, fmt.Sprintf("failure kind %s is declared more than once", failure))
		case !known[failure]:
			problems = append(problems, fmt.Sprintf("failure kind %s is not a package-level error variable", failure))
		}
		seen[failure] = true
	}
	method.Failures = append([]string(nil), raw.Failures...)

	callbacks := make(map[models.Direction]int)
	for i, param := range raw.Params {
		method.Params = append(method.Params, models.ParamModel{Name: param.Name, Index: i, Type: param.Type})
		if param.Type == nil {
			continue
		}
		if param.Type.Kind == models.KindCallback && param.Type.Unsupported == "" {
			callbacks[param.Type.Direction]++
			continue
		}
		if param.Type.Direction != models.DirectionIn {
			problems = append(problems, fmt.Sprintf("parameter %s: direction %s is only allowed on callback parameters", param.Name, param.Type.Direction))
		}
	}
	if method.Return != nil && method.Return.Kind == models.KindCallback {
		callbacks[models.DirectionOut]++
	}
	for _, direction := range []models.Direction{models.DirectionIn, models.DirectionOut, models.DirectionInOut} {
		if n := callbacks[direction]; n > 1 {
			problems = append(problems, fmt.Sprintf("at most one %s callback is allowed, found %d", direction, n))
		}
	}
	if len(callbacks) > 0 {
		method.Mode = models.CallCallback
	}

	if raw.OneWay {
		method.Mode = models.CallOneWay
		if len(raw.Results) > 0 {
			if raw.Results[0].Kind == models.KindCallback {
				problems = append(problems, "one-way methods cannot return a callback")
			} else {
				problems = append(problems, "one-way methods cannot return a value")
			}
		}
		if len(raw.Failures) > 0 {
			problems = append(problems, fmt.Sprintf("one-way methods cannot declare failure kinds (%s)", strings.Join(raw.Failures, ", ")))
		}
	}

	return method, problems
}

func location(loc models.SourceLocation) errors.SourceLocation {
	return errors.SourceLocation{File: loc.File, Line: loc.Line}
}
