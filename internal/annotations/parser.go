package annotations

import (
	stderrors "errors"
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/remoter/internal/errors"
)

var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//`},
	{Name: "Separator", Pattern: `::`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*(?:[./-][a-zA-Z0-9_]+)*`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[-=,]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// annotationAST is the grammar of one annotation comment:
//
//	//remoter::<type> [positional...] [-Option[=value[,value...]]...]
type annotationAST struct {
	Pos        lexer.Position
	Prefix     string       `parser:"'//' @Ident '::'"`
	Type       string       `parser:"@Ident"`
	Positional []string     `parser:"@(Ident | String | Number)*"`
	Options    []*optionAST `parser:"@@*"`
}

type optionAST struct {
	Pos    lexer.Position
	Name   string   `parser:"'-' @Ident"`
	Values []string `parser:"( '=' @(Ident | String | Number) ( ',' @(Ident | String | Number) )* )?"`
}

// Parser turns annotation comments into schema-checked annotations
type Parser struct {
	parser   *participle.Parser[annotationAST]
	registry AnnotationRegistry
}

// NewParser creates a parser backed by the given registry. A nil registry
// selects DefaultRegistry.
func NewParser(registry AnnotationRegistry) *Parser {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Parser{
		parser: participle.MustBuild[annotationAST](
			participle.Lexer(annotationLexer),
			participle.Elide("Whitespace"),
		),
		registry: registry,
	}
}

// IsAnnotation reports whether a comment line is a remoter annotation
func IsAnnotation(comment string) bool {
	return strings.HasPrefix(strings.TrimSpace(comment), Prefix)
}

// ParseAnnotation parses and validates a single annotation comment
func (p *Parser) ParseAnnotation(comment string, loc SourceLocation) (*ParsedAnnotation, error) {
	collector := errors.NewAnnotationErrorCollector(0)
	annotation := p.parse(comment, loc, collector)
	if err := collector.ToError(); err != nil {
		return nil, err
	}
	return annotation, nil
}

// ParseCommentGroup parses every annotation in a doc comment attached to a
// declaration of the given placement. Non-annotation lines are ignored. All
// problems are reported together.
func (p *Parser) ParseCommentGroup(group *ast.CommentGroup, fset *token.FileSet, placement Placement) ([]*ParsedAnnotation, error) {
	if group == nil {
		return nil, nil
	}

	collector := errors.NewAnnotationErrorCollector(0)
	var out []*ParsedAnnotation
	for _, c := range group.List {
		if !IsAnnotation(c.Text) {
			continue
		}
		var loc SourceLocation
		if fset != nil {
			pos := fset.Position(c.Slash)
			loc = SourceLocation{File: pos.Filename, Line: pos.Line, Column: pos.Column}
		}

		annotation := p.parse(c.Text, loc, collector)
		if annotation == nil {
			continue
		}
		schema, _ := p.registry.GetSchema(annotation.Type)
		if schema.Placement != placement {
			collector.AddSchema(
				fmt.Sprintf("annotation remoter::%s is not allowed on %s declarations", annotation.Type, placement),
				loc, annotation.Type.String())
			continue
		}
		out = append(out, annotation)
	}

	if err := collector.ToError(); err != nil {
		return out, err
	}
	return out, nil
}

func (p *Parser) parse(comment string, loc SourceLocation, collector *errors.AnnotationErrorCollector) *ParsedAnnotation {
	text := strings.TrimSpace(comment)
	if !IsAnnotation(text) {
		collector.AddSyntax(fmt.Sprintf("annotation must start with %s", Prefix), loc, text)
		return nil
	}

	tree, err := p.parser.ParseString(loc.File, text)
	if err != nil {
		errLoc := loc
		var perr participle.Error
		if stderrors.As(err, &perr) {
			errLoc.Column = loc.Column + perr.Position().Column - 1
			collector.AddSyntax(perr.Message(), errLoc, text)
		} else {
			collector.AddSyntax(err.Error(), errLoc, text)
		}
		return nil
	}

	annotationType, err := ParseAnnotationType(tree.Type)
	if err != nil {
		collector.AddSyntax(err.Error(), loc, text)
		return nil
	}
	schema, err := p.registry.GetSchema(annotationType)
	if err != nil {
		collector.AddSchema(err.Error(), loc, tree.Type)
		return nil
	}

	before := collector.Count()
	annotation := &ParsedAnnotation{
		Type:       annotationType,
		Parameters: make(map[string]interface{}),
		Location:   loc,
		Raw:        text,
	}

	for i, raw := range tree.Positional {
		if i >= len(schema.Positional) {
			collector.AddSchema(fmt.Sprintf("unexpected argument '%s' for remoter::%s", raw, annotationType), loc, annotationType.String())
			continue
		}
		value := unquote(raw)
		if i == 0 {
			annotation.Target = value
		}
		annotation.Parameters[schema.Positional[i]] = value
	}

	for _, opt := range tree.Options {
		spec, ok := schema.Parameters[opt.Name]
		if !ok || isPositional(schema, opt.Name) {
			collector.AddSchema(fmt.Sprintf("unknown parameter '-%s' for remoter::%s", opt.Name, annotationType), loc, annotationType.String())
			continue
		}
		if annotation.HasParameter(opt.Name) {
			collector.AddSchema(fmt.Sprintf("parameter '-%s' given more than once", opt.Name), loc, annotationType.String())
			continue
		}
		value, verr := convertOption(spec, opt.Values)
		if verr != nil {
			collector.AddValidation(opt.Name, spec.Type.String(), verr.Error(), loc, annotationType.String())
			continue
		}
		annotation.Parameters[opt.Name] = value
	}

	for name, spec := range schema.Parameters {
		value, present := annotation.Parameters[name]
		if !present {
			switch {
			case spec.Required:
				collector.AddValidation(name, "a value", "missing", loc, annotationType.String())
			case spec.DefaultValue != nil:
				annotation.Parameters[name] = spec.DefaultValue
			}
			continue
		}
		if spec.Validator != nil {
			if verr := spec.Validator(value); verr != nil {
				collector.AddValidation(name, spec.Description, verr.Error(), loc, annotationType.String())
			}
		}
	}

	if collector.Count() > before {
		return nil
	}

	for _, validate := range schema.Validators {
		if verr := validate(annotation); verr != nil {
			collector.AddSchema(verr.Error(), loc, annotationType.String())
		}
	}
	if collector.Count() > before {
		return nil
	}
	return annotation
}

func convertOption(spec ParameterSpec, values []string) (interface{}, error) {
	switch spec.Type {
	case BoolType:
		if len(values) == 0 {
			return true, nil
		}
		if len(values) > 1 {
			return nil, fmt.Errorf("expected one value, got %d", len(values))
		}
		b, err := strconv.ParseBool(unquote(values[0]))
		if err != nil {
			return nil, fmt.Errorf("'%s' is not a bool", values[0])
		}
		return b, nil
	case StringType:
		if len(values) != 1 {
			return nil, fmt.Errorf("expected one value, got %d", len(values))
		}
		return unquote(values[0]), nil
	case StringSliceType:
		if len(values) == 0 {
			return nil, fmt.Errorf("expected at least one value")
		}
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = unquote(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported parameter type %s", spec.Type)
	}
}

func isPositional(schema AnnotationSchema, name string) bool {
	for _, p := range schema.Positional {
		if p == name {
			return true
		}
	}
	return false
}

func unquote(s string) string {
	if strings.HasPrefix(s, `"`) {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
	}
	return s
}
