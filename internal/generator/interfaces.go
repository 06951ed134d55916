package generator

import "github.com/toyz/remoter/internal/models"

// CodeGenerator turns the metadata of one package into generated files
type CodeGenerator interface {
	GeneratePackage(metadata *models.PackageMetadata) (*models.GenerationResult, error)
}

var _ CodeGenerator = (*Generator)(nil)
