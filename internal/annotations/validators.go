package annotations

import (
	"fmt"

	"github.com/toyz/remoter/internal/utils"
)

// Parameter validators adapt the typed validators in utils to schema values

// ValidateDirection accepts in, out or inout
func ValidateDirection(v interface{}) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("must be a string, got %T", v)
	}
	return utils.ValidateDirection("Direction")(s)
}

// ValidateDescriptor accepts dotted interface descriptors
func ValidateDescriptor(v interface{}) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("must be a string, got %T", v)
	}
	return utils.ValidateDescriptor("Descriptor")(s)
}

// ValidateIdentifier accepts a Go identifier
func ValidateIdentifier(field string) func(interface{}) error {
	return func(v interface{}) error {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("must be a string, got %T", v)
		}
		return utils.IsValidGoIdentifier(field)(s)
	}
}

// ValidateErrorNames accepts a non-empty list of error variable names
func ValidateErrorNames(v interface{}) error {
	names, ok := v.([]string)
	if !ok {
		return fmt.Errorf("must be a list, got %T", v)
	}
	return utils.ValidateErrorNames("Errors")(names)
}

// uniqueErrors rejects a throws annotation naming the same error twice
func uniqueErrors(a *ParsedAnnotation) error {
	seen := make(map[string]bool)
	for _, name := range a.GetStringSlice("Errors") {
		if seen[name] {
			return fmt.Errorf("error '%s' is listed more than once", name)
		}
		seen[name] = true
	}
	return nil
}
