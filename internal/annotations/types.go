package annotations

import (
	"fmt"

	"github.com/toyz/remoter/internal/errors"
)

// Prefix starts every annotation comment
const Prefix = "//remoter::"

// AnnotationType represents the type of annotation
type AnnotationType int

const (
	RemoteAnnotation AnnotationType = iota
	CallbackAnnotation
	OneWayAnnotation
	ThrowsAnnotation
	ParamAnnotation
	ReturnsAnnotation
)

var annotationNames = map[AnnotationType]string{
	RemoteAnnotation:   "remote",
	CallbackAnnotation: "callback",
	OneWayAnnotation:   "oneway",
	ThrowsAnnotation:   "throws",
	ParamAnnotation:    "param",
	ReturnsAnnotation:  "returns",
}

// String returns the string representation of the annotation type
func (a AnnotationType) String() string {
	if name, ok := annotationNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAnnotationType converts string to AnnotationType
func ParseAnnotationType(s string) (AnnotationType, error) {
	for t, name := range annotationNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown annotation type '%s'", s)
}

// Placement is the kind of declaration an annotation may be attached to
type Placement int

const (
	OnInterface Placement = iota
	OnMethod
)

// String returns the string representation of the placement
func (p Placement) String() string {
	if p == OnMethod {
		return "method"
	}
	return "interface"
}

// SourceLocation represents the location of an annotation in source code
type SourceLocation = errors.SourceLocation

// ParsedAnnotation is an annotation with typed, schema-checked parameters
type ParsedAnnotation struct {
	Type       AnnotationType
	Target     string                 // first positional argument, e.g. the parameter name of //remoter::param
	Parameters map[string]interface{} // named and positional parameters by schema name
	Location   SourceLocation
	Raw        string
}

// GetString returns a string parameter value with optional default
func (p *ParsedAnnotation) GetString(paramName string, defaultValue ...string) string {
	if value, ok := p.Parameters[paramName].(string); ok {
		return value
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetBool returns a boolean parameter value with optional default
func (p *ParsedAnnotation) GetBool(paramName string, defaultValue ...bool) bool {
	if value, ok := p.Parameters[paramName].(bool); ok {
		return value
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// GetStringSlice returns a string slice parameter value
func (p *ParsedAnnotation) GetStringSlice(paramName string) []string {
	if value, ok := p.Parameters[paramName].([]string); ok {
		return value
	}
	return nil
}

// HasParameter checks if a parameter exists
func (p *ParsedAnnotation) HasParameter(paramName string) bool {
	_, exists := p.Parameters[paramName]
	return exists
}

// ParameterType represents the type of a parameter
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
	StringSliceType
)

// String returns the string representation of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	case StringSliceType:
		return "[]string"
	default:
		return "unknown"
	}
}

// ParameterSpec defines the specification for an annotation parameter
type ParameterSpec struct {
	Type         ParameterType
	Required     bool
	DefaultValue interface{}
	Description  string
	Validator    func(interface{}) error
}

// CustomValidator validates a whole annotation after its parameters pass
type CustomValidator func(*ParsedAnnotation) error

// AnnotationSchema defines the schema for an annotation type
type AnnotationSchema struct {
	Type        AnnotationType
	Description string
	Placement   Placement
	Positional  []string // parameter names bound to positional arguments, in order
	Parameters  map[string]ParameterSpec
	Validators  []CustomValidator
	Examples    []string
}
