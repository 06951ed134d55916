package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// MultipleErrors collects the problems of a whole run so that they can be
// reported together. Its own code and location are those of the first
// problem.
type MultipleErrors struct {
	Errors []RemoterError
}

// NewMultipleErrors returns an empty collection
func NewMultipleErrors() *MultipleErrors {
	return &MultipleErrors{}
}

// CollectErrors returns a collection holding errs
func CollectErrors(errs ...RemoterError) *MultipleErrors {
	return &MultipleErrors{Errors: errs}
}

// Add appends err
func (e *MultipleErrors) Add(err RemoterError) {
	e.Errors = append(e.Errors, err)
}

func (e *MultipleErrors) IsEmpty() bool { return len(e.Errors) == 0 }
func (e *MultipleErrors) Count() int    { return len(e.Errors) }

// ErrorOrNil returns nil when nothing was collected
func (e *MultipleErrors) ErrorOrNil() error {
	if e == nil || e.IsEmpty() {
		return nil
	}
	return e
}

// Error lists every problem on its own numbered line
func (e *MultipleErrors) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "multiple errors (%d total):", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, err.Error())
	}
	return b.String()
}

func (e *MultipleErrors) first() RemoterError {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0]
}

func (e *MultipleErrors) ErrorCode() ErrorCode {
	if first := e.first(); first != nil {
		return first.ErrorCode()
	}
	return UnknownErrorCode
}

func (e *MultipleErrors) Location() SourceLocation {
	if first := e.first(); first != nil {
		return first.Location()
	}
	return SourceLocation{}
}

// Unwrap returns the first problem
func (e *MultipleErrors) Unwrap() error {
	if first := e.first(); first != nil {
		return first
	}
	return nil
}

// Context merges the context of every problem. Keys are prefixed with the
// problem's index.
func (e *MultipleErrors) Context() map[string]interface{} {
	merged := make(map[string]interface{})
	for i, err := range e.Errors {
		for k, v := range err.Context() {
			merged[fmt.Sprintf("error_%d_%s", i, k)] = v
		}
	}
	return merged
}

func (e *MultipleErrors) Suggestions() []string {
	var out []string
	for _, err := range e.Errors {
		out = append(out, err.Suggestions()...)
	}
	return out
}

// GetByCode returns the problems with the given code
func (e *MultipleErrors) GetByCode(code ErrorCode) []RemoterError {
	var out []RemoterError
	for _, err := range e.Errors {
		if err.ErrorCode() == code {
			out = append(out, err)
		}
	}
	return out
}

// HasCode reports whether any problem has the given code
func (e *MultipleErrors) HasCode(code ErrorCode) bool {
	return len(e.GetByCode(code)) > 0
}

// Is matches target against every problem, not only the first
func (e *MultipleErrors) Is(target error) bool {
	for _, err := range e.Errors {
		if stderrors.Is(err, target) {
			return true
		}
	}
	return false
}

// As finds the first problem assignable to target
func (e *MultipleErrors) As(target interface{}) bool {
	for _, err := range e.Errors {
		if stderrors.As(err, target) {
			return true
		}
	}
	return false
}
