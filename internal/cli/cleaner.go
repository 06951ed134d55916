package cli

import (
	"github.com/toyz/remoter/internal/errors"
	"github.com/toyz/remoter/internal/utils"
)

// Cleaner removes files written by a previous generate run
type Cleaner struct {
	fileProcessor *utils.FileProcessor
	diagnostics   *utils.DiagnosticSystem
}

// NewCleaner creates a new cleaner
func NewCleaner(diagnostics *utils.DiagnosticSystem) *Cleaner {
	return &Cleaner{
		fileProcessor: utils.NewFileProcessor(),
		diagnostics:   diagnostics,
	}
}

// CleanGeneratedFiles removes generated files under directories. Only
// autogen_* files whose first line carries the remoter marker are touched.
// With dryRun set the files are listed but kept.
func (c *Cleaner) CleanGeneratedFiles(directories []string, dryRun bool) ([]string, error) {
	roots, err := baseDirectories(directories)
	if err != nil {
		return nil, err
	}

	removed, err := c.fileProcessor.CleanDirectories(roots, dryRun)
	for _, path := range removed {
		if dryRun {
			c.diagnostics.List("would remove %s", path)
		} else {
			c.diagnostics.Verbose("removed %s", path)
		}
	}
	if err != nil {
		return removed, errors.WrapWithOperation("clean", "generated files", err)
	}

	switch {
	case len(removed) == 0:
		c.diagnostics.Info("No generated files found")
	case dryRun:
		c.diagnostics.Info("%d generated files would be removed", len(removed))
	default:
		c.diagnostics.Success("Removed %d generated files", len(removed))
	}
	return removed, nil
}
