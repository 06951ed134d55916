package annotations

import (
	"reflect"
	"strings"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	want := []AnnotationType{RemoteAnnotation, CallbackAnnotation, OneWayAnnotation, ThrowsAnnotation, ParamAnnotation, ReturnsAnnotation}
	if got := r.ListTypes(); !reflect.DeepEqual(got, want) {
		t.Errorf("ListTypes() = %v, want %v", got, want)
	}
	if DefaultRegistry() != r {
		t.Error("DefaultRegistry() is not shared")
	}

	for _, typ := range want {
		schema, err := r.GetSchema(typ)
		if err != nil {
			t.Fatalf("GetSchema(%v) error = %v", typ, err)
		}
		if len(schema.Examples) == 0 {
			t.Errorf("%v has no examples", typ)
		}
		for _, example := range schema.Examples {
			if _, err := NewParser(r).ParseAnnotation(example, SourceLocation{}); err != nil {
				t.Errorf("example %q does not parse: %v", example, err)
			}
		}
	}
}

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name    string
		typ     AnnotationType
		schema  AnnotationSchema
		wantErr string
	}{
		{
			name:   "valid",
			typ:    OneWayAnnotation,
			schema: AnnotationSchema{Type: OneWayAnnotation},
		},
		{
			name:    "mismatched key",
			typ:     RemoteAnnotation,
			schema:  AnnotationSchema{Type: OneWayAnnotation},
			wantErr: "does not match",
		},
		{
			name: "positional without spec",
			typ:  ParamAnnotation,
			schema: AnnotationSchema{
				Type:       ParamAnnotation,
				Positional: []string{"name"},
			},
			wantErr: "no parameter spec",
		},
		{
			name: "default of wrong type",
			typ:  ReturnsAnnotation,
			schema: AnnotationSchema{
				Type:       ReturnsAnnotation,
				Parameters: map[string]ParameterSpec{"Mutable": {Type: BoolType, DefaultValue: "no"}},
			},
			wantErr: "default for parameter 'Mutable'",
		},
		{
			name: "required with default",
			typ:  ThrowsAnnotation,
			schema: AnnotationSchema{
				Type:       ThrowsAnnotation,
				Parameters: map[string]ParameterSpec{"Errors": {Type: StringSliceType, Required: true, DefaultValue: []string{"ErrX"}}},
			},
			wantErr: "cannot have a default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRegistry().Register(tt.typ, tt.schema)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Register() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Register() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := RegisterBuiltinSchemas(r); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(RemoteAnnotation, RemoteAnnotationSchema); err == nil {
		t.Error("expected duplicate registration to fail")
	}
	if _, err := r.GetSchema(AnnotationType(99)); err == nil {
		t.Error("expected unknown type lookup to fail")
	}
}

func TestParseAnnotationType(t *testing.T) {
	for typ, name := range annotationNames {
		got, err := ParseAnnotationType(name)
		if err != nil || got != typ {
			t.Errorf("ParseAnnotationType(%q) = %v, %v", name, got, err)
		}
		if typ.String() != name {
			t.Errorf("String() = %q, want %q", typ.String(), name)
		}
	}
	if _, err := ParseAnnotationType("Remote"); err == nil {
		t.Error("annotation types are case-sensitive")
	}
}
