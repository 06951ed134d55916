package errors

import (
	"fmt"
	"maps"
)

// RemoterError is implemented by every build-time error the generator reports
type RemoterError interface {
	error
	ErrorCode() ErrorCode
	Location() SourceLocation
	Context() map[string]interface{}
	Suggestions() []string
	Unwrap() error
}

// ErrorCode classifies a RemoterError
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota

	// annotation and source problems
	SyntaxErrorCode
	ValidationErrorCode
	RegistrationErrorCode
	SchemaErrorCode

	// interface model problems
	UnsupportedTypeErrorCode
	InvalidInterfaceErrorCode
	StrategyMismatchErrorCode

	// output and environment problems
	GenerationErrorCode
	FileSystemErrorCode
	ConfigurationErrorCode
)

var codeNames = [...]string{
	UnknownErrorCode:          "UnknownError",
	SyntaxErrorCode:           "SyntaxError",
	ValidationErrorCode:       "ValidationError",
	RegistrationErrorCode:     "RegistrationError",
	SchemaErrorCode:           "SchemaError",
	UnsupportedTypeErrorCode:  "UnsupportedTypeError",
	InvalidInterfaceErrorCode: "InvalidInterfaceError",
	StrategyMismatchErrorCode: "StrategyMismatchError",
	GenerationErrorCode:       "GenerationError",
	FileSystemErrorCode:       "FileSystemError",
	ConfigurationErrorCode:    "ConfigurationError",
}

// String returns the name the diagnostics print for the code
func (e ErrorCode) String() string {
	if e < 0 || int(e) >= len(codeNames) {
		return codeNames[UnknownErrorCode]
	}
	return codeNames[e]
}

// SourceLocation points at a position in Go source. Line and Column are
// 1-based; zero means unknown.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// String renders file:line:column, dropping the unknown parts
func (s SourceLocation) String() string {
	switch {
	case s.File == "":
		return "unknown location"
	case s.Line == 0:
		return s.File
	case s.Column == 0:
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// IsEmpty reports whether the file is unknown
func (s SourceLocation) IsEmpty() bool {
	return s.File == ""
}

// BaseError carries the fields shared by every RemoterError. The concrete
// error types embed it and keep Message in sync with their own fields.
type BaseError struct {
	Code    ErrorCode
	Message string

	loc     SourceLocation
	cause   error
	context map[string]interface{}
	hints   []string
}

// New creates an error with the given code and message
func New(code ErrorCode, message string) *BaseError {
	return &BaseError{Code: code, Message: message}
}

// Newf is New with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BaseError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates an error caused by cause
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return New(code, message).WithCause(cause)
}

// Wrapf is Wrap with a formatted message
func Wrapf(code ErrorCode, cause error, format string, args ...interface{}) *BaseError {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// Error prefixes the message with the location when it is known
func (e *BaseError) Error() string {
	if e.loc.IsEmpty() {
		return e.Message
	}
	return e.loc.String() + ": " + e.Message
}

func (e *BaseError) ErrorCode() ErrorCode     { return e.Code }
func (e *BaseError) Location() SourceLocation { return e.loc }
func (e *BaseError) Unwrap() error            { return e.cause }

// Context returns a copy of the key/value details attached to the error
func (e *BaseError) Context() map[string]interface{} {
	out := make(map[string]interface{}, len(e.context))
	maps.Copy(out, e.context)
	return out
}

// Suggestions returns the fixes proposed to the user, in the order added
func (e *BaseError) Suggestions() []string {
	return e.hints
}

func (e *BaseError) WithLocation(loc SourceLocation) *BaseError {
	e.loc = loc
	return e
}

func (e *BaseError) WithCause(cause error) *BaseError {
	e.cause = cause
	return e
}

// WithContext attaches a detail shown under "Context:" in reports
func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.context == nil {
		e.context = make(map[string]interface{})
	}
	e.context[key] = value
	return e
}

func (e *BaseError) WithSuggestion(suggestion string) *BaseError {
	return e.WithSuggestions(suggestion)
}

func (e *BaseError) WithSuggestions(suggestions ...string) *BaseError {
	e.hints = append(e.hints, suggestions...)
	return e
}
