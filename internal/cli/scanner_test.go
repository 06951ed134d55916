package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryScanner_ScanDirectories(t *testing.T) {
	root := writeTree(t, map[string]string{
		"api/api.go":              "package api\n",
		"api/v2/api.go":           "package v2\n",
		"api/autogen_x_proxy.go":  "package api\n",
		"internal/helper_test.go": "package internal\n",
		"vendor/dep/dep.go":       "package dep\n",
		"_scratch/scratch.go":     "package scratch\n",
	})
	chdir(t, root)

	abs := func(rel string) string {
		p, err := filepath.Abs(rel)
		require.NoError(t, err)
		return p
	}

	scanner := NewDirectoryScanner()

	t.Run("recursive pattern", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{"./..."})
		require.NoError(t, err)
		assert.Contains(t, dirs, abs("api"))
		assert.Contains(t, dirs, abs("api/v2"))
		assert.NotContains(t, dirs, abs("internal"), "test files alone do not make a package")
		assert.NotContains(t, dirs, abs("vendor/dep"))
		assert.NotContains(t, dirs, abs("_scratch"))
	})

	t.Run("plain directory is not recursive", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{"api"})
		require.NoError(t, err)
		assert.Equal(t, []string{abs("api")}, dirs)
	})

	t.Run("duplicates are dropped", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{"api", "api/...", "./api"})
		require.NoError(t, err)
		assert.Equal(t, []string{abs("api"), abs("api/v2")}, dirs)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := scanner.ScanDirectories([]string{"nope"})
		assert.Error(t, err)
	})
}

func TestSplitPattern(t *testing.T) {
	tests := []struct {
		arg       string
		recursive bool
	}{
		{"./...", true},
		{"...", true},
		{"api/...", true},
		{"api", false},
		{".", false},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			p, err := splitPattern(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.recursive, p.recursive)
			assert.True(t, filepath.IsAbs(p.dir))
		})
	}
}
