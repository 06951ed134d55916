package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/toyz/remoter/internal/errors"
	"github.com/toyz/remoter/internal/utils"
)

// DirectoryScanner expands directory arguments into package directories
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner() *DirectoryScanner {
	return &DirectoryScanner{
		fileProcessor: utils.NewFileProcessor(),
	}
}

// pattern is a cleaned directory argument
type pattern struct {
	dir       string
	recursive bool
}

// splitPattern handles Go-style recursive patterns like "./..."
func splitPattern(arg string) (pattern, error) {
	recursive := false
	base := arg
	if base == "..." || strings.HasSuffix(base, "/...") {
		recursive = true
		base = strings.TrimSuffix(strings.TrimSuffix(base, "..."), "/")
	}
	if base == "" {
		base = "."
	}

	abs, err := filepath.Abs(base)
	if err != nil {
		return pattern{}, errors.WrapWithOperation("process", fmt.Sprintf("path resolution %s", base), err)
	}
	return pattern{dir: abs, recursive: recursive}, nil
}

// ScanDirectories returns the package directories named by rootDirs. A plain
// directory names one package; "dir/..." names every package below dir.
// Directories are returned once each, in argument order.
func (s *DirectoryScanner) ScanDirectories(rootDirs []string) ([]string, error) {
	var packageDirs []string
	seen := make(map[string]bool)

	add := func(dirs ...string) {
		for _, dir := range dirs {
			if !seen[dir] {
				seen[dir] = true
				packageDirs = append(packageDirs, dir)
			}
		}
	}

	for _, arg := range rootDirs {
		p, err := splitPattern(arg)
		if err != nil {
			return nil, err
		}

		if p.recursive {
			dirs, err := s.fileProcessor.ScanDirectoriesWithGoFiles([]string{p.dir})
			if err != nil {
				return nil, errors.WrapFileSystemError("scan", p.dir, err)
			}
			add(dirs...)
			continue
		}

		ok, err := s.fileProcessor.HasGoFiles(p.dir)
		if err != nil {
			return nil, errors.WrapFileSystemError("scan", p.dir, err)
		}
		if ok {
			add(p.dir)
		}
	}

	return packageDirs, nil
}

// baseDirectories returns the cleaned roots of rootDirs, dropping the
// recursive suffix
func baseDirectories(rootDirs []string) ([]string, error) {
	dirs := make([]string, 0, len(rootDirs))
	for _, arg := range rootDirs {
		p, err := splitPattern(arg)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, p.dir)
	}
	return dirs, nil
}
