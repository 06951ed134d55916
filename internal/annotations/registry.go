package annotations

import (
	"fmt"
	"sort"
	"sync"

	"github.com/toyz/remoter/internal/utils"
)

// AnnotationRegistry manages annotation schemas
type AnnotationRegistry interface {
	Register(annotationType AnnotationType, schema AnnotationSchema) error
	GetSchema(annotationType AnnotationType) (AnnotationSchema, error)
	ListTypes() []AnnotationType
	IsRegistered(annotationType AnnotationType) bool
}

type registry struct {
	*utils.BaseRegistry[AnnotationType, AnnotationSchema]
}

// NewRegistry creates an empty annotation registry
func NewRegistry() AnnotationRegistry {
	base := utils.NewBaseRegistry[AnnotationType, AnnotationSchema]("annotation", "annotation type", "schema")
	base.SetValidator(utils.ChainValidators(
		utils.NoDuplicateValidator[AnnotationType, AnnotationSchema]("annotation type"),
		validateSchema,
	))
	return &registry{BaseRegistry: base}
}

var (
	defaultRegistry     AnnotationRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared registry holding the built-in schemas
func DefaultRegistry() AnnotationRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		if err := RegisterBuiltinSchemas(defaultRegistry); err != nil {
			panic(fmt.Sprintf("failed to register built-in annotation schemas: %v", err))
		}
	})
	return defaultRegistry
}

func (r *registry) GetSchema(annotationType AnnotationType) (AnnotationSchema, error) {
	schema, ok := r.Get(annotationType)
	if !ok {
		return AnnotationSchema{}, fmt.Errorf("no schema registered for annotation type '%s'", annotationType)
	}
	return schema, nil
}

func (r *registry) ListTypes() []AnnotationType {
	types := r.List()
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func (r *registry) IsRegistered(annotationType AnnotationType) bool {
	return r.Has(annotationType)
}

func validateSchema(key AnnotationType, schema AnnotationSchema, _ map[AnnotationType]AnnotationSchema) error {
	if schema.Type != key {
		return fmt.Errorf("schema type '%s' does not match registration key '%s'", schema.Type, key)
	}
	for _, name := range schema.Positional {
		spec, ok := schema.Parameters[name]
		if !ok {
			return fmt.Errorf("positional argument '%s' has no parameter spec", name)
		}
		if spec.Type == BoolType {
			return fmt.Errorf("positional argument '%s' cannot be a bool", name)
		}
	}
	for name, spec := range schema.Parameters {
		if spec.DefaultValue == nil {
			continue
		}
		if !valueMatches(spec.Type, spec.DefaultValue) {
			return fmt.Errorf("default for parameter '%s' is %T, want %s", name, spec.DefaultValue, spec.Type)
		}
		if spec.Required {
			return fmt.Errorf("parameter '%s' is required and cannot have a default", name)
		}
	}
	return nil
}

func valueMatches(t ParameterType, v interface{}) bool {
	switch t {
	case StringType:
		_, ok := v.(string)
		return ok
	case BoolType:
		_, ok := v.(bool)
		return ok
	case StringSliceType:
		_, ok := v.([]string)
		return ok
	default:
		return false
	}
}
