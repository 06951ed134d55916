package utils

import (
	"fmt"
	"go/parser"
	"go/scanner"
	"go/token"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"
)

// FormatGoCode formats generated source and resolves its imports. The
// filename is only used to pick the package context for import resolution.
func FormatGoCode(filename string, source []byte) ([]byte, error) {
	formatted, err := imports.Process(filename, source, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		if parseErr := ValidateGoCode(source); parseErr != nil {
			return source, fmt.Errorf("invalid Go syntax: %w", parseErr)
		}
		return source, err
	}
	return formatted, nil
}

// ValidateGoCode checks if the provided code is valid Go syntax
func ValidateGoCode(source []byte) error {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "", source, parser.ParseComments)
	return err
}

// SourceTokens lists the tokens of a Go file with its layout removed.
// Semicolons inserted at line ends and commas in front of a closing bracket
// are dropped, so two files that differ only in formatting yield the same
// list. Comments are kept.
func SourceTokens(source []byte) ([]string, error) {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(source))

	var (
		s      scanner.Scanner
		errs   scanner.ErrorList
		tokens []string
	)
	s.Init(file, source, errs.Add, scanner.ScanComments)
	for {
		_, tok, lit := s.Scan()
		switch tok {
		case token.EOF:
			errs.Sort()
			return tokens, errs.Err()
		case token.SEMICOLON:
			if lit == "\n" {
				continue
			}
		case token.RPAREN, token.RBRACK, token.RBRACE:
			if n := len(tokens); n > 0 && tokens[n-1] == token.COMMA.String() {
				tokens = tokens[:n-1]
			}
		}
		if lit == "" {
			lit = tok.String()
		}
		tokens = append(tokens, lit)
	}
}

// WriteFileAtomic writes data to a temporary file in the target directory
// and renames it into place, so readers never observe a partial file
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".remoter-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
