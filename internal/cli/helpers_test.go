package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/toyz/remoter/internal/utils"
)

const calculatorSource = `package calc

import (
	"context"
	"errors"
)

var ErrOverflow = errors.New("overflow")

type Pair struct {
	A, B int64
}

//remoter::remote
type Calculator interface {
	//remoter::throws -Errors=ErrOverflow
	Add(ctx context.Context, p Pair) (int64, error)

	//remoter::oneway
	Reset() error
}
`

const brokenSource = `package broken

import "context"

//remoter::remote
type Broken interface {
	Stream(ctx context.Context, c chan int) error
}
`

// writeTree creates files below a fresh temp dir and returns its path
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// chdir switches the working directory for the rest of the test
func chdir(t *testing.T, dir string) {
	t.Helper()
	original, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(original) })
}

// captureDiagnostics returns a diagnostic system writing to buffers
func captureDiagnostics(level utils.DiagnosticLevel) (*utils.DiagnosticSystem, *bytes.Buffer) {
	var out bytes.Buffer
	d := utils.NewDiagnosticSystem(level)
	d.SetOutput(&out, &out)
	return d, &out
}
