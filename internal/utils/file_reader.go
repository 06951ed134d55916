package utils

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
)

// FileReader reads and parses Go sources for the metadata source. Parsed
// files and raw contents are cached until the file changes on disk. All
// positions resolve against one shared file set. Safe for concurrent use.
type FileReader struct {
	fileSet  *token.FileSet
	asts     *Cache[string, *ast.File]
	contents *Cache[string, string]
}

// NewFileReader creates a reader with empty caches
func NewFileReader() *FileReader {
	return &FileReader{
		fileSet:  token.NewFileSet(),
		asts:     NewCache[string, *ast.File](),
		contents: NewCache[string, string](),
	}
}

// throughCache serves path from c while the file is unchanged, and calls
// load otherwise
func throughCache[V any](c *Cache[string, V], filePath string, load func(path string) (V, error)) (V, error) {
	var zero V
	if err := NotEmpty("filePath")(filePath); err != nil {
		return zero, err
	}
	path := filepath.Clean(filePath)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return zero, fmt.Errorf("file does not exist: %s", path)
		}
		return zero, err
	}

	if v, ok := c.GetWithFileValidation(path, path); ok {
		return v, nil
	}
	v, err := load(path)
	if err != nil {
		return zero, err
	}
	_ = c.SetWithFileInfo(path, v, path)
	return v, nil
}

// ParseGoFile parses a Go source file with its comments, which carry the
// //remoter:: annotations
func (fr *FileReader) ParseGoFile(filePath string) (*ast.File, error) {
	return throughCache(fr.asts, filePath, func(path string) (*ast.File, error) {
		file, err := parser.ParseFile(fr.fileSet, path, nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Go file %s: %w", filepath.Base(path), err)
		}
		return file, nil
	})
}

// ParseGoSource parses in-memory source. The result is not cached.
func (fr *FileReader) ParseGoSource(filename, source string) (*ast.File, error) {
	file, err := parser.ParseFile(fr.fileSet, filename, source, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Go source: %w", err)
	}
	return file, nil
}

// ReadFile returns the contents of a file, e.g. go.mod
func (fr *FileReader) ReadFile(filePath string) (string, error) {
	return throughCache(fr.contents, filePath, func(path string) (string, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", filepath.Base(path), err)
		}
		return string(data), nil
	})
}

// Position resolves a token position against the shared file set
func (fr *FileReader) Position(pos token.Pos) token.Position {
	return fr.fileSet.Position(pos)
}

func (fr *FileReader) FileSet() *token.FileSet {
	return fr.fileSet
}

// InvalidateFile drops a file from both caches
func (fr *FileReader) InvalidateFile(filePath string) {
	path := filepath.Clean(filePath)
	fr.asts.Delete(path)
	fr.contents.Delete(path)
}

// CacheStats returns the number of cached ASTs and file contents
func (fr *FileReader) CacheStats() (astFiles, contentFiles int) {
	return fr.asts.Size(), fr.contents.Size()
}
