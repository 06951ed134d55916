package cli

import (
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/toyz/remoter/internal/errors"
)

// DefaultConfigFile is read from the working directory when --config is not set
const DefaultConfigFile = "remoter.yaml"

// Config holds the configuration for the CLI generator
type Config struct {
	// Directories is the list of directories to scan for annotated interfaces.
	// A trailing "/..." scans recursively.
	Directories []string `yaml:"directories"`

	// ModuleName overrides the module path read from go.mod
	ModuleName string `yaml:"module"`

	// DescriptorPrefix replaces the import path in default descriptors
	DescriptorPrefix string `yaml:"descriptor_prefix"`

	// Verbose enables detailed logging and error reporting
	Verbose bool `yaml:"verbose"`

	// Quiet reports errors only
	Quiet bool `yaml:"quiet"`

	// Workers bounds the number of packages generated in parallel
	Workers int `yaml:"workers"`

	// DryRun generates without writing files
	DryRun bool `yaml:"dry_run"`
}

// DefaultConfig returns the configuration used when neither flags nor a
// config file set a value
func DefaultConfig() Config {
	return Config{
		Directories: []string{"./..."},
		Workers:     runtime.GOMAXPROCS(0),
	}
}

// LoadConfigFile reads a YAML config file over DefaultConfig. A missing file
// is not an error when optional is set.
func LoadConfigFile(path string, optional bool) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.WrapFileSystemError("read", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.WrapConfigurationError(path, "parse", err).
			WithSuggestion("Check the YAML syntax of the config file")
	}

	return cfg, cfg.Validate()
}

// Validate reports settings that cannot be used together
func (c Config) Validate() error {
	if c.Verbose && c.Quiet {
		return errors.ConfigurationError("output", "verbose and quiet cannot both be set")
	}
	if c.Workers < 0 {
		return errors.ConfigurationError("workers", "must not be negative").
			WithContext("workers", c.Workers)
	}
	return nil
}

// workers returns the effective pool size
func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return 1
}
