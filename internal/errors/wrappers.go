package errors

import "fmt"

// WrapWithOperation records which pipeline step failed on item
func WrapWithOperation(operation, item string, cause error) *BaseError {
	return Wrapf(UnknownErrorCode, cause, "cannot %s %s", operation, item).
		WithContext("operation", operation)
}

// WrapParseError marks cause as a syntax problem in the named source
func WrapParseError(source string, cause error) *SyntaxError {
	err := NewSyntaxError(fmt.Sprintf("cannot parse %s", source))
	err.WithCause(cause)
	return err
}

// WrapGenerateError attributes cause to one generation stage and output file
func WrapGenerateError(stage, target string, cause error) *GenerationError {
	return newGenerationError(stage, target, cause)
}

func WrapFileSystemError(operation, path string, cause error) *BaseError {
	return Wrapf(FileSystemErrorCode, cause, "cannot %s %s", operation, path).
		WithContext("operation", operation).
		WithContext("path", path)
}

func WrapConfigurationError(source, operation string, cause error) *BaseError {
	return Wrapf(ConfigurationErrorCode, cause, "cannot %s %s", operation, source).
		WithContext("config_type", source).
		WithContext("operation", operation)
}

// ConfigurationError rejects the setting named by key
func ConfigurationError(key, message string) *BaseError {
	return Newf(ConfigurationErrorCode, "invalid %s setting: %s", key, message).
		WithContext("config_type", key)
}
