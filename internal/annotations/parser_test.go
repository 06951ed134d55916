package annotations

import (
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strings"
	"testing"

	"github.com/toyz/remoter/internal/errors"
)

func TestParseAnnotation_Valid(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantType   AnnotationType
		wantTarget string
		wantParams map[string]interface{}
	}{
		{
			name:       "bare remote",
			input:      "//remoter::remote",
			wantType:   RemoteAnnotation,
			wantParams: map[string]interface{}{},
		},
		{
			name:       "remote with descriptor",
			input:      "//remoter::remote -Descriptor=com.example.Greeter",
			wantType:   RemoteAnnotation,
			wantParams: map[string]interface{}{"Descriptor": "com.example.Greeter"},
		},
		{
			name:       "quoted descriptor",
			input:      `//remoter::remote -Descriptor="com.example/greeter-v2"`,
			wantType:   RemoteAnnotation,
			wantParams: map[string]interface{}{"Descriptor": "com.example/greeter-v2"},
		},
		{
			name:       "oneway",
			input:      "  //remoter::oneway  ",
			wantType:   OneWayAnnotation,
			wantParams: map[string]interface{}{},
		},
		{
			name:       "throws list",
			input:      "//remoter::throws -Errors=ErrNotFound,ErrDenied",
			wantType:   ThrowsAnnotation,
			wantParams: map[string]interface{}{"Errors": []string{"ErrNotFound", "ErrDenied"}},
		},
		{
			name:       "param defaults",
			input:      "//remoter::param names",
			wantType:   ParamAnnotation,
			wantTarget: "names",
			wantParams: map[string]interface{}{"name": "names", "Mutable": false, "Direction": "in"},
		},
		{
			name:       "param mutable inout",
			input:      "//remoter::param listener -Mutable -Direction=inout",
			wantType:   ParamAnnotation,
			wantTarget: "listener",
			wantParams: map[string]interface{}{"name": "listener", "Mutable": true, "Direction": "inout"},
		},
		{
			name:       "explicit bool value",
			input:      "//remoter::returns -Mutable=false",
			wantType:   ReturnsAnnotation,
			wantParams: map[string]interface{}{"Mutable": false},
		},
	}

	p := NewParser(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParseAnnotation(tt.input, SourceLocation{File: "greeter.go", Line: 3})
			if err != nil {
				t.Fatalf("ParseAnnotation() error = %v", err)
			}
			if got.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", got.Type, tt.wantType)
			}
			if got.Target != tt.wantTarget {
				t.Errorf("Target = %q, want %q", got.Target, tt.wantTarget)
			}
			if !reflect.DeepEqual(got.Parameters, tt.wantParams) {
				t.Errorf("Parameters = %#v, want %#v", got.Parameters, tt.wantParams)
			}
			if got.Location.Line != 3 {
				t.Errorf("Location.Line = %d, want 3", got.Location.Line)
			}
		})
	}
}

func TestParseAnnotation_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode errors.ErrorCode
		wantMsg  string
	}{
		{"not an annotation", "// just a comment", errors.SyntaxErrorCode, "must start with"},
		{"unknown type", "//remoter::route GET", errors.SyntaxErrorCode, "unknown annotation type"},
		{"dangling dash", "//remoter::returns -", errors.SyntaxErrorCode, ""},
		{"unknown option", "//remoter::oneway -Fast", errors.SchemaErrorCode, "unknown parameter '-Fast'"},
		{"extra positional", "//remoter::oneway now", errors.SchemaErrorCode, "unexpected argument 'now'"},
		{"missing param name", "//remoter::param -Mutable", errors.ValidationErrorCode, "name"},
		{"missing throws errors", "//remoter::throws", errors.ValidationErrorCode, "Errors"},
		{"bad direction", "//remoter::param cb -Direction=sideways", errors.ValidationErrorCode, "Direction"},
		{"bad bool", "//remoter::returns -Mutable=maybe", errors.ValidationErrorCode, "not a bool"},
		{"invalid error name", `//remoter::throws -Errors="not-valid"`, errors.ValidationErrorCode, "Errors"},
		{"duplicate error name", "//remoter::throws -Errors=ErrA,ErrA", errors.SchemaErrorCode, "more than once"},
		{"repeated option", "//remoter::returns -Mutable -Mutable", errors.SchemaErrorCode, "more than once"},
	}

	p := NewParser(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParseAnnotation(tt.input, SourceLocation{File: "greeter.go", Line: 7})
			if err == nil {
				t.Fatalf("ParseAnnotation() = %+v, want error", got)
			}
			rerr, ok := err.(errors.RemoterError)
			if !ok {
				t.Fatalf("error %T does not implement RemoterError", err)
			}
			if rerr.ErrorCode() != tt.wantCode {
				t.Errorf("ErrorCode() = %v, want %v (%v)", rerr.ErrorCode(), tt.wantCode, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
			if rerr.Location().Line != 7 {
				t.Errorf("Location().Line = %d, want 7", rerr.Location().Line)
			}
		})
	}
}

func TestParseAnnotation_CollectsEveryProblem(t *testing.T) {
	p := NewParser(nil)
	_, err := p.ParseAnnotation("//remoter::param -Direction=up -Bogus", SourceLocation{})
	multi, ok := err.(*errors.MultipleErrors)
	if !ok {
		t.Fatalf("error = %T, want *errors.MultipleErrors", err)
	}
	if multi.Count() != 3 {
		t.Errorf("Count() = %d, want 3: %v", multi.Count(), err)
	}
}

const source = `package demo

// Greeter says hello.
//remoter::remote -Descriptor=demo.Greeter
type Greeter interface {
	// Hello greets.
	//remoter::throws -Errors=ErrNotFound
	//remoter::param names -Mutable
	Hello(names []string) (string, error)

	//remoter::remote
	Bad()
}
`

func TestParseCommentGroup(t *testing.T) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "demo.go", source, parser.ParseComments)
	if err != nil {
		t.Fatal(err)
	}

	gen := file.Decls[0].(*ast.GenDecl)
	iface := gen.Specs[0].(*ast.TypeSpec).Type.(*ast.InterfaceType)
	p := NewParser(nil)

	t.Run("interface", func(t *testing.T) {
		got, err := p.ParseCommentGroup(gen.Doc, fset, OnInterface)
		if err != nil {
			t.Fatalf("ParseCommentGroup() error = %v", err)
		}
		if len(got) != 1 || got[0].GetString("Descriptor") != "demo.Greeter" {
			t.Fatalf("got %+v", got)
		}
		if got[0].Location.Line != 4 {
			t.Errorf("Line = %d, want 4", got[0].Location.Line)
		}
	})

	t.Run("method", func(t *testing.T) {
		got, err := p.ParseCommentGroup(iface.Methods.List[0].Doc, fset, OnMethod)
		if err != nil {
			t.Fatalf("ParseCommentGroup() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if !reflect.DeepEqual(got[0].GetStringSlice("Errors"), []string{"ErrNotFound"}) {
			t.Errorf("Errors = %v", got[0].GetStringSlice("Errors"))
		}
		if got[1].Target != "names" || !got[1].GetBool("Mutable") {
			t.Errorf("param = %+v", got[1])
		}
	})

	t.Run("wrong placement", func(t *testing.T) {
		got, err := p.ParseCommentGroup(iface.Methods.List[1].Doc, fset, OnMethod)
		if err == nil {
			t.Fatal("expected placement error")
		}
		if len(got) != 0 {
			t.Errorf("got %d annotations, want 0", len(got))
		}
		if !strings.Contains(err.Error(), "not allowed on method") {
			t.Errorf("error = %v", err)
		}
	})

	t.Run("nil group", func(t *testing.T) {
		got, err := p.ParseCommentGroup(nil, fset, OnMethod)
		if err != nil || got != nil {
			t.Errorf("got %v, %v", got, err)
		}
	})
}
