package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGoModParser_ImportPath(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module github.com/acme/app\n\ngo 1.25\n"), 0644); err != nil {
		t.Fatal(err)
	}
	pkgDir := filepath.Join(root, "internal", "greeter")
	if err := os.MkdirAll(pkgDir, 0755); err != nil {
		t.Fatal(err)
	}

	p := NewGoModParser(NewFileReader())

	tests := []struct {
		name     string
		dir      string
		override string
		want     string
	}{
		{"module root", root, "", "github.com/acme/app"},
		{"nested package", pkgDir, "", "github.com/acme/app/internal/greeter"},
		{"override", pkgDir, "example.com/other", "example.com/other/internal/greeter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ImportPath(tt.dir, tt.override)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ImportPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGoModParser_ParseModuleNameErrors(t *testing.T) {
	dir := t.TempDir()
	p := NewGoModParser(NewFileReader())

	if _, err := p.ParseModuleName(filepath.Join(dir, "go.sum")); err == nil {
		t.Error("expected non-go.mod path to be rejected")
	}

	bad := filepath.Join(dir, "go.mod")
	if err := os.WriteFile(bad, []byte("go 1.25\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := p.ParseModuleName(bad); err == nil {
		t.Error("expected missing module directive to fail")
	}
}

func TestGoModParser_RejectsInvalidOverride(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module github.com/acme/app\n"), 0644); err != nil {
		t.Fatal(err)
	}

	p := NewGoModParser(NewFileReader())
	if _, err := p.ImportPath(root, "not a path"); err == nil {
		t.Error("expected an override with spaces to be rejected")
	}
}
