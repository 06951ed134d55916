package cli

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/remoter/internal/errors"
)

func report(verbose bool, err error) string {
	var buf bytes.Buffer
	r := NewDiagnosticReporter(verbose)
	r.SetOutput(&buf)
	r.ReportError(err)
	return buf.String()
}

func TestDiagnosticReporter_ReportError(t *testing.T) {
	t.Run("invalid interface lists violations", func(t *testing.T) {
		e := errors.NewInvalidInterfaceError("Greeter", errors.SourceLocation{File: "greeter.go", Line: 4})
		e.AddAt(errors.SourceLocation{File: "greeter.go", Line: 9}, "Notify", "one-way methods cannot declare failure kinds (ErrNotFound)")
		e.Add("Hello", "the last result must be error")

		out := report(false, e)
		assert.Contains(t, out, "ERROR: Code Generation Failed")
		assert.Contains(t, out, "Type: InvalidInterfaceError")
		assert.Contains(t, out, "Interface: Greeter")
		assert.Contains(t, out, "- greeter.go:9: Notify: one-way methods cannot declare failure kinds (ErrNotFound)")
		assert.Contains(t, out, "- Hello: the last result must be error")
	})

	t.Run("unsupported type shows path", func(t *testing.T) {
		e := errors.NewUnsupportedTypeError([]string{"map value", "element 0"}, "chan int", "channels cannot be marshalled").
			Within("parameter 2").
			WithMethod("Greeter", "Find")

		out := report(false, e)
		assert.Contains(t, out, "Type: UnsupportedTypeError")
		assert.Contains(t, out, "Path: parameter 2 → map value → element 0")
	})

	t.Run("multiple errors are numbered", func(t *testing.T) {
		multi := errors.CollectErrors(
			errors.New(errors.ConfigurationErrorCode, "first").WithContext("config_type", "workers"),
			errors.WrapFileSystemError("write", "/tmp/x.go", fmt.Errorf("disk full")).
				WithSuggestion("Check write permissions\nfor the target directory"),
		)

		out := report(false, multi)
		assert.Contains(t, out, "(2 errors)")
		assert.Contains(t, out, "[1/2] Type: ConfigurationError")
		assert.Contains(t, out, "[2/2] Type: FileSystemError")
		assert.Contains(t, out, "Config Type: workers")
		assert.Contains(t, out, "1. Check write permissions")
		assert.Contains(t, out, "      for the target directory")
		assert.NotContains(t, out, "Error Chain:")
	})

	t.Run("verbose prints the cause chain", func(t *testing.T) {
		cause := fmt.Errorf("open: %w", fmt.Errorf("permission denied"))
		out := report(true, errors.WrapFileSystemError("write", "/tmp/x.go", cause))
		assert.Contains(t, out, "Error Chain:")
		assert.Contains(t, out, "1. open: permission denied")
		assert.Contains(t, out, "2. permission denied")
	})

	t.Run("plain error", func(t *testing.T) {
		out := report(false, fmt.Errorf("boom"))
		assert.Contains(t, out, "Message: boom")
	})

	t.Run("nil error prints nothing", func(t *testing.T) {
		assert.Empty(t, report(false, nil))
	})
}

func TestFormatContextKey(t *testing.T) {
	assert.Equal(t, "Package Directory", formatContextKey("package_directory"))
	assert.Equal(t, "Path", formatContextKey("path"))
}
