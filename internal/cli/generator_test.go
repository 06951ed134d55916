package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/remoter/internal/errors"
	"github.com/toyz/remoter/internal/utils"
)

const goMod = "module example.com/demo\n\ngo 1.25\n"

func newTestGenerator(t *testing.T, cfg Config) *Generator {
	t.Helper()
	diagnostics, _ := captureDiagnostics(utils.DiagnosticVerbose)
	g := NewGenerator(cfg, diagnostics)
	g.Reporter().SetOutput(io.Discard)
	return g
}

func TestGenerator_Run(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":       goMod,
		"calc/calc.go": calculatorSource,
		"plain/doc.go": "package plain\n\ntype Nothing struct{}\n",
	})
	chdir(t, root)

	g := newTestGenerator(t, Config{Directories: []string{"./..."}, Workers: 2})
	require.NoError(t, g.Run())

	for _, name := range []string{"autogen_calculator_proxy.go", "autogen_calculator_stub.go", "autogen_remoter_records.go"} {
		path := filepath.Join(root, "calc", name)
		require.FileExists(t, path)

		ok, err := utils.IsGeneratedFile(path)
		require.NoError(t, err)
		assert.True(t, ok, name)
	}

	proxy, err := os.ReadFile(filepath.Join(root, "calc", "autogen_calculator_proxy.go"))
	require.NoError(t, err)
	assert.Contains(t, string(proxy), `CalculatorDescriptor = "example.com/demo/calc.Calculator"`)
	assert.NoError(t, utils.ValidateGoCode(proxy))

	entries, err := os.ReadDir(filepath.Join(root, "plain"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "packages without annotations get no files")

	summary := g.Summary()
	assert.Equal(t, 2, summary.PackagesScanned)
	assert.Equal(t, 1, summary.PackagesGenerated)
	assert.Equal(t, 1, summary.InterfacesFound)
	assert.Equal(t, 1, summary.RecordsFound)
	assert.Len(t, summary.GeneratedFiles, 3)
}

func TestGenerator_RunIsRepeatable(t *testing.T) {
	root := writeTree(t, map[string]string{"go.mod": goMod, "calc/calc.go": calculatorSource})
	chdir(t, root)

	read := func() []byte {
		data, err := os.ReadFile(filepath.Join(root, "calc", "autogen_calculator_stub.go"))
		require.NoError(t, err)
		return data
	}

	require.NoError(t, newTestGenerator(t, Config{Directories: []string{"calc"}}).Run())
	first := read()
	require.NoError(t, newTestGenerator(t, Config{Directories: []string{"calc"}}).Run())
	assert.Equal(t, first, read())
}

func TestGenerator_RunDryRun(t *testing.T) {
	root := writeTree(t, map[string]string{"go.mod": goMod, "calc/calc.go": calculatorSource})
	chdir(t, root)

	g := newTestGenerator(t, Config{Directories: []string{"./..."}, DryRun: true})
	require.NoError(t, g.Run())

	assert.Len(t, g.Summary().GeneratedFiles, 3)
	assert.NoFileExists(t, filepath.Join(root, "calc", "autogen_calculator_proxy.go"))
}

func TestGenerator_RunReportsEveryFailure(t *testing.T) {
	root := writeTree(t, map[string]string{
		"go.mod":           goMod,
		"calc/calc.go":     calculatorSource,
		"broken/broken.go": brokenSource,
	})
	chdir(t, root)

	g := newTestGenerator(t, Config{Directories: []string{"./..."}, Workers: 4})
	err := g.Run()
	require.Error(t, err)

	var multi *errors.MultipleErrors
	require.ErrorAs(t, err, &multi)
	assert.True(t, multi.HasCode(errors.UnsupportedTypeErrorCode))

	var unsupported *errors.UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "Broken", unsupported.Interface)
	assert.Equal(t, "Stream", unsupported.Method)

	assert.NoFileExists(t, filepath.Join(root, "broken", "autogen_broken_proxy.go"))
	assert.FileExists(t, filepath.Join(root, "calc", "autogen_calculator_proxy.go"), "healthy packages are still written")
}

func TestGenerator_RunWithoutPackages(t *testing.T) {
	chdir(t, writeTree(t, map[string]string{"go.mod": goMod, "README.md": "empty"}))

	err := newTestGenerator(t, Config{Directories: []string{"./..."}}).Run()
	var rerr errors.RemoterError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, errors.ConfigurationErrorCode, rerr.ErrorCode())
}

func TestGenerator_RunRejectsInvalidConfig(t *testing.T) {
	err := newTestGenerator(t, Config{Verbose: true, Quiet: true}).Run()
	assert.Error(t, err)
}
