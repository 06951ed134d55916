package utils

import (
	"fmt"
	"go/token"
	"regexp"
	"slices"
	"strings"
)

// ValidationError is returned by every Validator in this package
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

type Validator[T any] func(T) error

// ValidatorChain runs validators in order and stops at the first failure
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

func (vc *ValidatorChain[T]) Add(validator Validator[T]) *ValidatorChain[T] {
	vc.validators = append(vc.validators, validator)
	return vc
}

func (vc *ValidatorChain[T]) Validate(value T) error {
	for _, v := range vc.validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// check builds a Validator that rejects values for which ok is false
func check[T any](field, message string, ok func(T) bool) Validator[T] {
	return func(value T) error {
		if ok(value) {
			return nil
		}
		return ValidationError{Field: field, Value: value, Message: message}
	}
}

func NotEmpty(field string) Validator[string] {
	return check(field, "cannot be empty", func(s string) bool { return s != "" })
}

func MatchesRegex(field, pattern string) Validator[string] {
	return check(field, "must match pattern "+pattern, regexp.MustCompile(pattern).MatchString)
}

func IsValidGoIdentifier(field string) Validator[string] {
	return check(field, "must be a valid Go identifier", token.IsIdentifier)
}

func IsOneOf[T comparable](field string, allowed ...T) Validator[T] {
	return check(field, fmt.Sprintf("must be one of: %v", allowed), func(v T) bool {
		return slices.Contains(allowed, v)
	})
}

// ValidateEach applies item to every element and names the failing index
func ValidateEach[T any](field string, item Validator[T]) Validator[[]T] {
	return func(values []T) error {
		for i, v := range values {
			if err := item(v); err != nil {
				return ValidationError{Field: fmt.Sprintf("%s[%d]", field, i), Value: v, Message: err.Error()}
			}
		}
		return nil
	}
}

func Custom[T any](field, message string, ok func(T) bool) Validator[T] {
	return check(field, message, ok)
}

// ValidateDirection accepts in, out and inout in any case
func ValidateDirection(field string) Validator[string] {
	oneOf := IsOneOf(field, "in", "out", "inout")
	return func(value string) error {
		return oneOf(strings.ToLower(value))
	}
}

// ValidateDescriptor accepts dotted or slashed interface descriptors such as
// com.example.Greeter or github.com/acme/greeter.Greeter
func ValidateDescriptor(field string) Validator[string] {
	return NewValidatorChain(
		NotEmpty(field),
		MatchesRegex(field, `^[A-Za-z_][A-Za-z0-9_\-./]*[A-Za-z0-9_]$`),
	).Validate
}

// ValidateErrorNames checks a -Errors list: at least one name, each a Go identifier
func ValidateErrorNames(field string) Validator[[]string] {
	return NewValidatorChain(
		Custom(field, "must name at least one error", func(v []string) bool { return len(v) > 0 }),
		ValidateEach(field, IsValidGoIdentifier(field)),
	).Validate
}
