package errors

import "fmt"

// ValidationError is an annotation parameter whose value was rejected
type ValidationError struct {
	*BaseError
	Field    string
	Expected string
	Actual   string
}

// NewValidationError reports that field held actual where expected was required
func NewValidationError(field, expected, actual string) *ValidationError {
	return &ValidationError{
		BaseError: Newf(ValidationErrorCode, "invalid value for '%s': expected %s, got %s", field, expected, actual),
		Field:     field,
		Expected:  expected,
		Actual:    actual,
	}
}

// SyntaxError is a comment or source file that could not be parsed
type SyntaxError struct {
	*BaseError
}

// NewSyntaxError creates a syntax error with message
func NewSyntaxError(message string) *SyntaxError {
	return &SyntaxError{BaseError: New(SyntaxErrorCode, message)}
}

// RegistrationError is a rejected registry entry: a duplicate annotation
// schema, or a strategy rule missing one of its halves.
type RegistrationError struct {
	*BaseError
	ComponentType string
	ComponentName string
	Reason        string
}

func NewRegistrationError(componentType, componentName, reason string) *RegistrationError {
	return &RegistrationError{
		BaseError:     Newf(RegistrationErrorCode, "cannot register %s %s: %s", componentType, componentName, reason),
		ComponentType: componentType,
		ComponentName: componentName,
		Reason:        reason,
	}
}

// WithCause keeps the concrete type so callers can still match it with As
func (e *RegistrationError) WithCause(cause error) *RegistrationError {
	e.BaseError.WithCause(cause)
	return e
}

// SchemaError is an annotation that does not fit the schema registered for it
type SchemaError struct {
	*BaseError
	SchemaName string
}

func NewSchemaError(schema, message string) *SchemaError {
	return &SchemaError{BaseError: New(SchemaErrorCode, message), SchemaName: schema}
}

// GenerationError is a failure while rendering or writing one output file
type GenerationError struct {
	*BaseError
	TargetFile string
	Stage      string // proxy, stub, records or callbacks
}

func newGenerationError(stage, target string, cause error) *GenerationError {
	return &GenerationError{
		BaseError:  Wrap(GenerationErrorCode, fmt.Sprintf("cannot generate %s", target), cause),
		TargetFile: target,
		Stage:      stage,
	}
}
