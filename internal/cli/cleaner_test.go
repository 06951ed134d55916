package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/remoter/internal/utils"
)

const generatedHeader = "// Code generated by remoter. DO NOT EDIT.\n\npackage calc\n"

func TestCleaner_CleanGeneratedFiles(t *testing.T) {
	setup := func(t *testing.T) string {
		return writeTree(t, map[string]string{
			"calc/calc.go":                        "package calc\n",
			"calc/autogen_calculator_proxy.go":    generatedHeader,
			"calc/sub/autogen_remoter_records.go": generatedHeader,
			"calc/autogen_handwritten.go":         "package calc\n",
		})
	}

	t.Run("removes marked files only", func(t *testing.T) {
		root := setup(t)
		chdir(t, root)
		diagnostics, out := captureDiagnostics(utils.DiagnosticInfo)

		removed, err := NewCleaner(diagnostics).CleanGeneratedFiles([]string{"./..."}, false)
		require.NoError(t, err)
		assert.Len(t, removed, 2)

		assert.NoFileExists(t, filepath.Join(root, "calc/autogen_calculator_proxy.go"))
		assert.NoFileExists(t, filepath.Join(root, "calc/sub/autogen_remoter_records.go"))
		assert.FileExists(t, filepath.Join(root, "calc/autogen_handwritten.go"))
		assert.FileExists(t, filepath.Join(root, "calc/calc.go"))
		assert.Contains(t, out.String(), "Removed 2 generated files")
	})

	t.Run("dry run keeps files", func(t *testing.T) {
		root := setup(t)
		diagnostics, out := captureDiagnostics(utils.DiagnosticInfo)

		removed, err := NewCleaner(diagnostics).CleanGeneratedFiles([]string{filepath.Join(root, "calc")}, true)
		require.NoError(t, err)
		assert.Len(t, removed, 2)
		for _, path := range removed {
			_, err := os.Stat(path)
			assert.NoError(t, err)
		}
		assert.Contains(t, out.String(), "would remove")
	})

	t.Run("nothing to clean", func(t *testing.T) {
		diagnostics, out := captureDiagnostics(utils.DiagnosticInfo)
		removed, err := NewCleaner(diagnostics).CleanGeneratedFiles([]string{t.TempDir()}, false)
		require.NoError(t, err)
		assert.Empty(t, removed)
		assert.Contains(t, out.String(), "No generated files found")
	})
}
