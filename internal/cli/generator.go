package cli

import (
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/toyz/remoter/internal/errors"
	"github.com/toyz/remoter/internal/generator"
	"github.com/toyz/remoter/internal/models"
	"github.com/toyz/remoter/internal/parser"
	"github.com/toyz/remoter/internal/strategy"
	"github.com/toyz/remoter/internal/utils"
)

// GenerationSummary contains information about the generation process
type GenerationSummary struct {
	PackagesScanned   int
	PackagesGenerated int
	InterfacesFound   int
	CallbacksFound    int
	RecordsFound      int
	GeneratedFiles    []string
	Duration          time.Duration
}

// Generator coordinates the CLI generation process
type Generator struct {
	config         Config
	scanner        *DirectoryScanner
	moduleResolver *ModuleResolver
	reporter       *DiagnosticReporter
	diagnostics    *utils.DiagnosticSystem
	table          *strategy.Table
	summary        GenerationSummary
}

// NewGenerator creates a CLI generator for cfg
func NewGenerator(cfg Config, diagnostics *utils.DiagnosticSystem) *Generator {
	return &Generator{
		config:         cfg,
		scanner:        NewDirectoryScanner(),
		moduleResolver: NewModuleResolver(),
		reporter:       NewDiagnosticReporter(cfg.Verbose),
		diagnostics:    diagnostics,
		table:          strategy.Default(),
	}
}

// Reporter returns the reporter used for generation failures
func (g *Generator) Reporter() *DiagnosticReporter {
	return g.reporter
}

// Summary returns the summary of the last run
func (g *Generator) Summary() GenerationSummary {
	return g.summary
}

// packageResult is the outcome of one package
type packageResult struct {
	dir    string
	result *models.GenerationResult
	files  []string
	err    error
}

// Run scans, generates and writes every package named by the config.
// Packages are independent: a failing package does not stop the others, and
// the returned error aggregates every failure. Errors are reported before
// they are returned.
func (g *Generator) Run() error {
	err := g.run()
	if err != nil {
		g.reporter.ReportError(err)
	}
	return err
}

func (g *Generator) run() error {
	start := time.Now()
	g.summary = GenerationSummary{}

	if err := g.config.Validate(); err != nil {
		return err
	}

	g.diagnostics.Header("Generating remoter proxies and stubs")
	g.diagnostics.Debug("Scanning directories: %v", g.config.Directories)

	g.diagnostics.PhaseHeader("Resolving module")
	module, err := g.moduleResolver.ResolveModuleName(g.config.ModuleName)
	if err != nil {
		// Descriptors fall back to the package name outside a module.
		g.diagnostics.Warn("module path unknown, descriptors use package names: %v", err)
	} else {
		g.diagnostics.PhaseItem("module %s", module)
	}

	g.diagnostics.PhaseHeader("Scanning packages")
	packageDirs, err := g.scanner.ScanDirectories(g.config.Directories)
	if err != nil {
		return err
	}
	if len(packageDirs) == 0 {
		return errors.New(errors.ConfigurationErrorCode, "no Go packages found in the specified directories").
			WithContext("directories", g.config.Directories).
			WithSuggestions(
				"Ensure the directories contain Go files",
				"Use the './...' pattern to scan recursively",
			)
	}
	g.summary.PackagesScanned = len(packageDirs)
	g.diagnostics.Info("Found %d packages to process", len(packageDirs))
	g.diagnostics.Indent()
	for _, dir := range packageDirs {
		g.diagnostics.List("%s", dir)
	}
	g.diagnostics.Unindent()

	g.diagnostics.PhaseHeader("Generating")
	results := g.generateAll(packageDirs)

	problems := errors.NewMultipleErrors()
	for _, res := range results {
		if res.err != nil {
			addError(problems, res.dir, res.err)
		}
		if res.result == nil || len(res.files) == 0 {
			continue
		}
		g.summary.PackagesGenerated++
		g.summary.InterfacesFound += res.result.Interfaces
		g.summary.CallbacksFound += res.result.Callbacks
		g.summary.RecordsFound += res.result.Records
		g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, res.files...)
	}
	sort.Strings(g.summary.GeneratedFiles)
	g.summary.Duration = time.Since(start)

	g.printSummary()
	if !problems.IsEmpty() {
		return problems
	}
	if g.config.DryRun {
		g.diagnostics.Complete("Dry run finished, no files written")
	} else {
		g.diagnostics.Complete("Code generation completed successfully")
	}
	return nil
}

// generateAll runs the package pipeline on a bounded pool of workers.
// Results come back in packageDirs order.
func (g *Generator) generateAll(packageDirs []string) []packageResult {
	results := make([]packageResult, len(packageDirs))
	jobs := make(chan int)

	workers := min(g.config.workers(), len(packageDirs))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Each worker owns its parser and generator; neither is shared.
			p := parser.NewParser()
			p.SetModuleName(g.config.ModuleName)
			p.SetDescriptorPrefix(g.config.DescriptorPrefix)
			gen := generator.NewGeneratorWithTable(g.table)

			for i := range jobs {
				results[i] = g.generatePackage(p, gen, packageDirs[i])
			}
		}()
	}

	for i := range packageDirs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// generatePackage parses, generates and writes one package. Nothing is
// written when any interface of the package fails.
func (g *Generator) generatePackage(p parser.MetadataSource, gen generator.CodeGenerator, dir string) packageResult {
	res := packageResult{dir: dir}

	metadata, err := p.ParseDirectory(dir)
	if err != nil {
		res.err = err
		return res
	}
	if len(metadata.Interfaces) == 0 {
		g.diagnostics.Verbose("%s: no annotated interfaces", dir)
		return res
	}

	result, err := gen.GeneratePackage(metadata)
	res.result = result
	if err != nil {
		res.err = err
		return res
	}

	for _, file := range result.Files {
		path := filepath.Join(dir, file.Name)
		if g.config.DryRun {
			g.diagnostics.PhaseProgress("would write %s", path)
		} else {
			g.diagnostics.PhaseProgress("Writing %s", path)
			if err := utils.WriteFileAtomic(path, file.Content); err != nil {
				res.err = errors.WrapFileSystemError("write", path, err)
				return res
			}
		}
		res.files = append(res.files, path)
	}
	g.diagnostics.PhaseItem("%s: %d interfaces, %d callbacks, %d records",
		metadata.PackageName, result.Interfaces, result.Callbacks, result.Records)
	return res
}

// addError flattens err into problems, tagging plain errors with the package
func addError(problems *errors.MultipleErrors, dir string, err error) {
	switch e := err.(type) {
	case *errors.MultipleErrors:
		for _, inner := range e.Errors {
			problems.Add(inner)
		}
	case errors.RemoterError:
		problems.Add(e)
	default:
		problems.Add(errors.WrapWithOperation("generate", dir, err).WithContext("package_directory", dir))
	}
}

func (g *Generator) printSummary() {
	g.diagnostics.Summary("Generation Summary", map[string]interface{}{
		"Packages scanned":   g.summary.PackagesScanned,
		"Packages generated": g.summary.PackagesGenerated,
		"Remote interfaces":  g.summary.InterfacesFound,
		"Callbacks":          g.summary.CallbacksFound,
		"Records":            g.summary.RecordsFound,
		"Files":              len(g.summary.GeneratedFiles),
		"Duration":           g.summary.Duration.Round(time.Millisecond),
	})
}
