package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestDiagnosticSystem_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	d := NewQuietDiagnostics()
	d.SetOutput(&out, &errOut)

	d.Info("scanning %d packages", 3)
	d.Warn("skipping")
	d.Error("invalid interface %s", "Greeter")

	if out.Len() != 0 {
		t.Errorf("quiet diagnostics wrote to stdout: %q", out.String())
	}
	if got := errOut.String(); got != "[ERROR] invalid interface Greeter\n" {
		t.Errorf("unexpected error output %q", got)
	}
}

func TestDiagnosticSystem_PhasesAndSummary(t *testing.T) {
	var out bytes.Buffer
	d := NewDiagnosticSystem(DiagnosticInfo)
	d.SetOutput(&out, &out)

	d.Header("Generating remote interfaces")
	d.PhaseHeader("Generating")
	d.Indent()
	d.PhaseItem("Greeter (3 methods)")
	d.Unindent()
	d.PhaseProgress("Writing %s", "autogen_greeter_proxy.go")
	d.Summary("Summary", map[string]interface{}{"interfaces": 1, "files": 2})
	d.Verbose("hidden")

	got := out.String()
	for _, want := range []string{
		"remoter: Generating remote interfaces\n",
		"Generating:\n",
		"✓   Greeter (3 methods)\n",
		"✏ Writing autogen_greeter_proxy.go\n",
		"   files: 2\n   interfaces: 1\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "hidden") {
		t.Error("verbose output must be hidden at info level")
	}
}
