package errors

import (
	"fmt"
	"strings"
)

// Constructors for annotation problems. The annotation is named by string so
// this package stays independent of internal/annotations.

func NewAnnotationValidationError(parameter, expected, actual string, loc SourceLocation, annotation string) *ValidationError {
	err := NewValidationError(parameter, expected, actual)
	err.WithLocation(loc).WithContext("annotation_type", annotation)
	suggest(err.BaseError, generateValidationSuggestion(parameter, expected, actual, annotation))
	return err
}

func NewAnnotationSyntaxError(message string, loc SourceLocation, context string) *SyntaxError {
	err := NewSyntaxError(message)
	err.WithLocation(loc).WithContext("parse_context", context)
	suggest(err.BaseError, generateSyntaxSuggestion(message, context))
	return err
}

func NewAnnotationSchemaError(message string, loc SourceLocation, annotation string) *SchemaError {
	err := NewSchemaError(annotation, message)
	err.WithLocation(loc)
	suggest(err.BaseError, generateSchemaSuggestion(message, annotation))
	return err
}

func suggest(err *BaseError, suggestion string) {
	if suggestion != "" {
		err.WithSuggestion(suggestion)
	}
}

// AnnotationErrorCollector collects annotation errors up to a limit
type AnnotationErrorCollector struct {
	*MultipleErrors
	maxErrors int
}

// NewAnnotationErrorCollector creates a new error collector
func NewAnnotationErrorCollector(maxErrors int) *AnnotationErrorCollector {
	if maxErrors <= 0 {
		maxErrors = 100
	}

	return &AnnotationErrorCollector{
		MultipleErrors: NewMultipleErrors(),
		maxErrors:      maxErrors,
	}
}

// Collect adds an already built error to the collection
func (c *AnnotationErrorCollector) Collect(err RemoterError) {
	if err == nil || c.Count() >= c.maxErrors {
		return
	}
	c.Add(err)
}

// AddValidation adds a validation error to the collection
func (c *AnnotationErrorCollector) AddValidation(parameter, expected, actual string, loc SourceLocation, annotation string) {
	c.Collect(NewAnnotationValidationError(parameter, expected, actual, loc, annotation))
}

// AddSyntax adds a syntax error to the collection
func (c *AnnotationErrorCollector) AddSyntax(message string, loc SourceLocation, context string) {
	c.Collect(NewAnnotationSyntaxError(message, loc, context))
}

// AddSchema adds a schema error to the collection
func (c *AnnotationErrorCollector) AddSchema(message string, loc SourceLocation, annotation string) {
	c.Collect(NewAnnotationSchemaError(message, loc, annotation))
}

// ToError returns the collected errors as a single error
func (c *AnnotationErrorCollector) ToError() RemoterError {
	if c.IsEmpty() {
		return nil
	}
	if c.Count() == 1 {
		return c.Errors[0]
	}
	return c.MultipleErrors
}

// AnnotationErrorSummary groups errors by kind for reporting
type AnnotationErrorSummary struct {
	SyntaxErrors     []RemoterError
	ValidationErrors []RemoterError
	SchemaErrors     []RemoterError
	OtherErrors      []RemoterError
	TotalCount       int
}

// SummarizeAnnotationErrors creates an error summary from a collection of errors
func SummarizeAnnotationErrors(errs []RemoterError) AnnotationErrorSummary {
	summary := AnnotationErrorSummary{TotalCount: len(errs)}

	for _, err := range errs {
		switch err.ErrorCode() {
		case SyntaxErrorCode:
			summary.SyntaxErrors = append(summary.SyntaxErrors, err)
		case ValidationErrorCode:
			summary.ValidationErrors = append(summary.ValidationErrors, err)
		case SchemaErrorCode:
			summary.SchemaErrors = append(summary.SchemaErrors, err)
		default:
			summary.OtherErrors = append(summary.OtherErrors, err)
		}
	}

	return summary
}

// String returns a formatted summary of errors
func (s AnnotationErrorSummary) String() string {
	if s.TotalCount == 0 {
		return "No errors found"
	}

	var parts []string
	if len(s.SyntaxErrors) > 0 {
		parts = append(parts, fmt.Sprintf("%d syntax error(s)", len(s.SyntaxErrors)))
	}
	if len(s.ValidationErrors) > 0 {
		parts = append(parts, fmt.Sprintf("%d validation error(s)", len(s.ValidationErrors)))
	}
	if len(s.SchemaErrors) > 0 {
		parts = append(parts, fmt.Sprintf("%d schema error(s)", len(s.SchemaErrors)))
	}
	if len(s.OtherErrors) > 0 {
		parts = append(parts, fmt.Sprintf("%d other error(s)", len(s.OtherErrors)))
	}

	return fmt.Sprintf("Found %d total error(s): %s", s.TotalCount, strings.Join(parts, ", "))
}

func generateSyntaxSuggestion(msg, context string) string {
	msg = strings.ToLower(msg)
	context = strings.ToLower(context)

	switch {
	case strings.Contains(msg, "missing annotation type"):
		return "Try: //remoter::remote or //remoter::oneway"
	case strings.Contains(msg, "invalid annotation prefix"):
		return "Annotation must start with '//remoter::' (note the double colon)"
	case strings.Contains(msg, "unterminated quoted string"):
		return "Make sure quoted strings are properly closed with matching quotes"
	case strings.Contains(msg, "unexpected token"), strings.Contains(msg, "invalid parameter format"):
		switch {
		case strings.Contains(context, "param"):
			return "Param format: //remoter::param <name> [-Mutable] [-Direction=in|out|inout]"
		case strings.Contains(context, "throws"):
			return "Throws format: //remoter::throws -Errors=ErrNotFound,ErrDenied"
		}
		return "Parameters should be in format '-Name=Value' or '-Flag' for boolean flags"
	default:
		return "Check annotation syntax: //remoter::<type> [positional] [-Name=Value]"
	}
}

func generateValidationSuggestion(parameter, expected, actual, annotation string) string {
	switch parameter {
	case "Direction":
		return "Direction must be in, out or inout. Example: -Direction=inout"
	case "Mutable":
		return "Mutable is a boolean flag. Use: -Mutable (no value needed)"
	case "Errors":
		return "Errors names package-level error variables. Example: -Errors=ErrNotFound,ErrDenied"
	case "name":
		return "The first argument names a method parameter. Example: //remoter::param names -Mutable"
	case "Descriptor":
		return "Descriptor should be a dotted name. Example: -Descriptor=com.example.Greeter"
	case "Name":
		return "Name should be a Go identifier used as the generated type prefix. Example: -Name=RemoteGreeter"
	default:
		return fmt.Sprintf("%s annotation parameter '%s' should be %s, got '%s'", annotation, parameter, expected, actual)
	}
}

func generateSchemaSuggestion(msg, annotation string) string {
	msg = strings.ToLower(msg)

	switch {
	case strings.Contains(msg, "unknown annotation type"):
		return "Supported annotation types: remote, callback, oneway, throws, param, returns"
	case strings.Contains(msg, "parameter not defined"), strings.Contains(msg, "unknown parameter"):
		switch annotation {
		case "remote":
			return "remote annotation supports: Name, Descriptor parameters"
		case "throws":
			return "throws annotation supports: Errors parameter"
		case "param":
			return "param annotation supports: name (positional), Mutable, Direction parameters"
		case "returns":
			return "returns annotation supports: Mutable parameter"
		default:
			return fmt.Sprintf("%s annotation takes no parameters", annotation)
		}
	case strings.Contains(msg, "not allowed on"):
		return "remote and callback go on interface types; oneway, throws, param and returns go on methods"
	default:
		return "Check annotation schema and parameter definitions"
	}
}
