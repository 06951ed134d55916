package utils

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

// GoModParser resolves the import path of a package directory, which is
// the default prefix of the wire descriptors generated for it
type GoModParser struct {
	fileReader *FileReader
}

// NewGoModParser creates a parser sharing the reader's cache
func NewGoModParser(fileReader *FileReader) *GoModParser {
	return &GoModParser{fileReader: fileReader}
}

// ParseModuleName returns the module path declared in a go.mod file
func (p *GoModParser) ParseModuleName(goModPath string) (string, error) {
	goModPath = filepath.Clean(goModPath)
	if filepath.Base(goModPath) != "go.mod" {
		return "", fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	content, err := p.fileReader.ReadFile(goModPath)
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod file: %w", err)
	}
	name := modfile.ModulePath([]byte(content))
	if name == "" {
		return "", fmt.Errorf("no module declaration found in %s", goModPath)
	}
	return name, nil
}

// FindGoModFile returns the go.mod of the module containing startDir
func (p *GoModParser) FindGoModFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, "go.mod")
		if content, err := p.fileReader.ReadFile(candidate); err == nil && content != "" {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod file not found above %s", startDir)
		}
		dir = parent
	}
}

// ImportPath returns the import path of the package in dir. moduleOverride,
// when set, replaces the module path read from go.mod and must itself be a
// valid module path.
func (p *GoModParser) ImportPath(dir, moduleOverride string) (string, error) {
	goMod, err := p.FindGoModFile(dir)
	if err != nil {
		return "", err
	}

	modulePath := moduleOverride
	if modulePath == "" {
		if modulePath, err = p.ParseModuleName(goMod); err != nil {
			return "", err
		}
	} else if err := module.CheckImportPath(modulePath); err != nil {
		return "", fmt.Errorf("invalid module override: %w", err)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(filepath.Dir(goMod), absDir)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside module %s", dir, modulePath)
	}
	return path.Join(modulePath, rel), nil
}
