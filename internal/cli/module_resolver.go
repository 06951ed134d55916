package cli

import (
	"os"

	"github.com/toyz/remoter/internal/errors"
	"github.com/toyz/remoter/internal/utils"
)

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	gomod *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver() *ModuleResolver {
	return &ModuleResolver{gomod: utils.NewGoModParser(utils.NewFileReader())}
}

// ResolveModuleName returns customModule when set and otherwise the module
// declared by the go.mod enclosing the working directory
func (r *ModuleResolver) ResolveModuleName(customModule string) (string, error) {
	if customModule != "" {
		return customModule, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapFileSystemError("resolve", ".", err)
	}

	goMod, err := r.gomod.FindGoModFile(cwd)
	if err != nil {
		return "", errors.WrapConfigurationError("go.mod", "locate", err).
			WithSuggestion("Run remoter from inside a Go module or pass --module")
	}

	module, err := r.gomod.ParseModuleName(goMod)
	if err != nil {
		return "", errors.WrapConfigurationError(goMod, "parse", err)
	}
	return module, nil
}
