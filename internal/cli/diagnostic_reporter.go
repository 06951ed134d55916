package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/toyz/remoter/internal/errors"
)

// DiagnosticReporter prints build-time errors with their code, location,
// context and suggestions
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     os.Stderr,
	}
}

// SetOutput redirects the report, mainly for tests
func (r *DiagnosticReporter) SetOutput(w io.Writer) {
	r.out = w
}

// ReportError prints every error carried by err. A MultipleErrors is
// expanded into its members.
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}

	list := flatten(err)
	title := "ERROR: Code Generation Failed"
	if len(list) > 1 {
		title = fmt.Sprintf("ERROR: Code Generation Failed (%d errors)", len(list))
	}
	fmt.Fprintf(r.out, "\n%s\n%s\n\n", title, strings.Repeat("=", len(title)))

	for i, e := range list {
		if len(list) > 1 {
			fmt.Fprintf(r.out, "[%d/%d] ", i+1, len(list))
		}
		var rerr errors.RemoterError
		if stderrors.As(e, &rerr) {
			r.reportRemoterError(rerr)
		} else {
			fmt.Fprintf(r.out, "Message: %s\n\n", e.Error())
		}
	}

	fmt.Fprintf(r.out, "Run with --verbose for more detailed output\n")
}

// flatten expands nested MultipleErrors into one list
func flatten(err error) []error {
	var multi *errors.MultipleErrors
	if m, ok := err.(*errors.MultipleErrors); ok {
		multi = m
	}
	if multi == nil {
		return []error{err}
	}

	var out []error
	for _, e := range multi.Errors {
		out = append(out, flatten(e)...)
	}
	return out
}

func (r *DiagnosticReporter) reportRemoterError(err errors.RemoterError) {
	r.printErrorHeader(err.ErrorCode())

	switch e := err.(type) {
	case *errors.InvalidInterfaceError:
		fmt.Fprintf(r.out, "Interface: %s\n", e.Interface)
		fmt.Fprintf(r.out, "Violations:\n")
		for _, v := range e.Violations {
			fmt.Fprintf(r.out, "   - %s\n", v)
		}
		fmt.Fprintf(r.out, "\n")
	case *errors.UnsupportedTypeError:
		fmt.Fprintf(r.out, "Message: %s\n", e.Error())
		if len(e.Path) > 0 {
			fmt.Fprintf(r.out, "Path: %s\n", e.PathString())
		}
		fmt.Fprintf(r.out, "\n")
	case *errors.StrategyMismatchError:
		fmt.Fprintf(r.out, "Message: %s\n", e.Error())
		fmt.Fprintf(r.out, "   Proxy: %s\n   Stub:  %s\n\n", e.Proxy, e.Stub)
	default:
		fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
	}

	if ctx := err.Context(); len(ctx) > 0 {
		r.printContext(ctx)
	}
	if hints := err.Suggestions(); len(hints) > 0 {
		r.printSuggestions(hints)
	}
	if r.verbose {
		r.printErrorChain(err)
	}
}

// printErrorHeader prints the error code as a heading
func (r *DiagnosticReporter) printErrorHeader(code errors.ErrorCode) {
	label := code.String()
	fmt.Fprintf(r.out, "Type: %s\n", label)
	fmt.Fprintf(r.out, "%s\n", strings.Repeat("-", len(label)+6))
}

// printContext prints context entries sorted by key
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(r.out, "Context:\n")
	for _, key := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), context[key])
	}
	fmt.Fprintf(r.out, "\n")
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}
	fmt.Fprintf(r.out, "\n")
}

// printErrorChain walks the wrapped causes in verbose mode
func (r *DiagnosticReporter) printErrorChain(err error) {
	cause := stderrors.Unwrap(err)
	if cause == nil {
		return
	}
	fmt.Fprintf(r.out, "Error Chain:\n")
	for level := 1; cause != nil; level++ {
		fmt.Fprintf(r.out, "   %d. %s\n", level, cause.Error())
		cause = stderrors.Unwrap(cause)
	}
	fmt.Fprintf(r.out, "\n")
}
