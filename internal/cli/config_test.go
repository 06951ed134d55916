package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/remoter/internal/errors"
)

func TestLoadConfigFile(t *testing.T) {
	t.Run("file values over defaults", func(t *testing.T) {
		root := writeTree(t, map[string]string{
			DefaultConfigFile: "directories: [./api/...]\nmodule: example.com/demo\nworkers: 3\ndry_run: true\n",
		})

		cfg, err := LoadConfigFile(filepath.Join(root, DefaultConfigFile), false)
		require.NoError(t, err)
		assert.Equal(t, []string{"./api/..."}, cfg.Directories)
		assert.Equal(t, "example.com/demo", cfg.ModuleName)
		assert.Equal(t, 3, cfg.Workers)
		assert.True(t, cfg.DryRun)
		assert.False(t, cfg.Verbose)
	})

	t.Run("optional missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), DefaultConfigFile), true)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("required missing file", func(t *testing.T) {
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"), false)
		var rerr errors.RemoterError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, errors.FileSystemErrorCode, rerr.ErrorCode())
	})

	t.Run("malformed yaml", func(t *testing.T) {
		root := writeTree(t, map[string]string{"bad.yaml": "workers: [1\n"})
		_, err := LoadConfigFile(filepath.Join(root, "bad.yaml"), false)
		var rerr errors.RemoterError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, errors.ConfigurationErrorCode, rerr.ErrorCode())
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"verbose and quiet", Config{Verbose: true, Quiet: true}, true},
		{"negative workers", Config{Workers: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigWorkers(t *testing.T) {
	assert.Equal(t, 1, Config{}.workers())
	assert.Equal(t, 4, Config{Workers: 4}.workers())
}
