package parser

import (
	"go/ast"
	"go/token"
	"sort"

	"github.com/toyz/remoter/internal/annotations"
	"github.com/toyz/remoter/internal/errors"
	"github.com/toyz/remoter/internal/models"
	"github.com/toyz/remoter/internal/utils"
)

// MetadataSource reads annotated interfaces from a package directory
type MetadataSource interface {
	ParseDirectory(dir string) (*models.PackageMetadata, error)
}

// Parser implements MetadataSource over Go source
type Parser struct {
	reader           *utils.FileReader
	processor        *utils.FileProcessor
	gomod            *utils.GoModParser
	annotations      *annotations.Parser
	moduleName       string
	descriptorPrefix string
}

// NewParser creates a parser with its own file cache
func NewParser() *Parser {
	return NewParserWithReader(utils.NewFileReader())
}

// NewParserWithReader creates a parser sharing an existing file cache
func NewParserWithReader(reader *utils.FileReader) *Parser {
	return &Parser{
		reader:      reader,
		processor:   utils.NewFileProcessorWithReader(reader),
		gomod:       utils.NewGoModParser(reader),
		annotations: annotations.NewParser(nil),
	}
}

// SetModuleName overrides the module path read from go.mod
func (p *Parser) SetModuleName(name string) {
	p.moduleName = name
}

// SetDescriptorPrefix replaces the import path in default descriptors
func (p *Parser) SetDescriptorPrefix(prefix string) {
	p.descriptorPrefix = prefix
}

// ParseDirectory parses the package in dir. Generated and test files are
// skipped. The import path is resolved from the enclosing go.mod and left
// empty when there is none.
func (p *Parser) ParseDirectory(dir string) (*models.PackageMetadata, error) {
	files, packageName, err := p.processor.ParseDirectoryFiles(dir)
	if err != nil {
		return nil, err
	}

	importPath, _ := p.gomod.ImportPath(dir, p.moduleName)
	return p.parseFiles(files, packageName, dir, importPath)
}

// ParseSource parses a single in-memory file
func (p *Parser) ParseSource(filename, source string) (*models.PackageMetadata, error) {
	file, err := p.reader.ParseGoSource(filename, source)
	if err != nil {
		return nil, errors.WrapParseError(filename, err)
	}
	return p.parseFiles([]*ast.File{file}, file.Name.Name, "./", p.moduleName)
}

func (p *Parser) parseFiles(files []*ast.File, packageName, dir, importPath string) (*models.PackageMetadata, error) {
	pkg := newPackageScope(p.reader.FileSet(), files)
	problems := errors.NewMultipleErrors()

	metadata := &models.PackageMetadata{
		PackageName: packageName,
		PackagePath: dir,
		ImportPath:  importPath,
		Errors:      pkg.errorVars,
	}

	// Annotations are read up front so that any interface can be referenced as
	// a callback regardless of declaration order.
	var found []*interfaceDecl
	for _, decl := range pkg.interfaces {
		parsed, err := p.annotations.ParseCommentGroup(decl.doc, pkg.fset, annotations.OnInterface)
		collect(problems, err)
		if len(parsed) == 0 {
			continue
		}
		if len(parsed) > 1 {
			problems.Add(errors.Newf(errors.ValidationErrorCode,
				"interface %s carries more than one remoter annotation", decl.spec.Name.Name).
				WithLocation(pkg.location(decl.spec.Pos())).
				WithSuggestion("Use either //remoter::remote or //remoter::callback"))
			continue
		}
		decl.annotation = parsed[0]
		pkg.remotable[decl.spec.Name.Name] = true
		found = append(found, decl)
	}

	known := make(map[string]bool, len(pkg.errorVars))
	for _, name := range pkg.errorVars {
		known[name] = true
	}

	for _, decl := range found {
		raw := p.buildInterface(pkg, decl, packageName, importPath, problems)
		if raw == nil {
			continue
		}
		raw.KnownErrors = known
		metadata.Interfaces = append(metadata.Interfaces, raw)
	}

	if !problems.IsEmpty() {
		return nil, problems
	}
	return metadata, nil
}

func (p *Parser) buildInterface(pkg *packageScope, decl *interfaceDecl, packageName, importPath string, problems *errors.MultipleErrors) *models.RawInterface {
	name := decl.spec.Name.Name
	raw := &models.RawInterface{
		Name:       name,
		Alias:      decl.annotation.GetString("Name"),
		Package:    packageName,
		ImportPath: importPath,
		Callback:   decl.annotation.Type == annotations.CallbackAnnotation,
		Location:   pkg.modelLocation(decl.spec.Pos()),
	}
	raw.Descriptor = decl.annotation.GetString("Descriptor", p.defaultDescriptor(packageName, importPath, name))

	if decl.spec.TypeParams != nil {
		for _, field := range decl.spec.TypeParams.List {
			for _, ident := range field.Names {
				raw.TypeParams = append(raw.TypeParams, ident.Name)
			}
		}
	}

	res := &resolver{pkg: pkg, file: decl.file, typeParams: make(map[string]bool)}
	for _, tp := range raw.TypeParams {
		res.typeParams[tp] = true
	}

	iface := decl.spec.Type.(*ast.InterfaceType)
	ok := true
	for _, field := range iface.Methods.List {
		fn, isFunc := field.Type.(*ast.FuncType)
		if len(field.Names) == 0 || !isFunc {
			problems.Add(errors.Newf(errors.ValidationErrorCode,
				"interface %s embeds %s; embedded interfaces are not supported", name, typeString(field.Type, nil)).
				WithLocation(pkg.location(field.Pos())).
				WithSuggestion("Declare the methods directly on the remote interface"))
			ok = false
			continue
		}

		method, err := p.buildMethod(pkg, res, field.Names[0].Name, fn, field)
		if err != nil {
			collect(problems, err)
			ok = false
			continue
		}
		raw.Methods = append(raw.Methods, *method)
	}

	if !ok {
		return nil
	}
	return raw
}

func (p *Parser) defaultDescriptor(packageName, importPath, name string) string {
	switch {
	case p.descriptorPrefix != "":
		return p.descriptorPrefix + "." + name
	case importPath != "":
		return importPath + "." + name
	default:
		return packageName + "." + name
	}
}

// collect flattens err into problems
func collect(problems *errors.MultipleErrors, err error) {
	if err == nil {
		return
	}
	switch e := err.(type) {
	case *errors.MultipleErrors:
		for _, inner := range e.Errors {
			problems.Add(inner)
		}
	case errors.RemoterError:
		problems.Add(e)
	default:
		problems.Add(errors.Wrap(errors.UnknownErrorCode, err.Error(), err))
	}
}

// interfaceDecl is an interface type declaration and its doc comment
type interfaceDecl struct {
	spec       *ast.TypeSpec
	doc        *ast.CommentGroup
	file       *ast.File
	annotation *annotations.ParsedAnnotation
}

// typeDecl is any named type declared in the package
type typeDecl struct {
	spec *ast.TypeSpec
	file *ast.File
}

// packageScope indexes the declarations of one package
type packageScope struct {
	fset       *token.FileSet
	types      map[string]*typeDecl
	interfaces []*interfaceDecl
	enumTypes  map[string]bool // types named by at least one typed constant
	errorVars  []string
	remotable  map[string]bool // interfaces carrying remote or callback annotations
}

func newPackageScope(fset *token.FileSet, files []*ast.File) *packageScope {
	scope := &packageScope{
		fset:      fset,
		types:     make(map[string]*typeDecl),
		enumTypes: make(map[string]bool),
		remotable: make(map[string]bool),
	}

	for _, file := range files {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok {
				continue
			}
			switch gen.Tok {
			case token.TYPE:
				scope.addTypes(gen, file)
			case token.CONST:
				scope.addConsts(gen)
			case token.VAR:
				scope.addErrorVars(gen)
			}
		}
	}

	sort.Strings(scope.errorVars)
	return scope
}

func (s *packageScope) addTypes(gen *ast.GenDecl, file *ast.File) {
	for _, spec := range gen.Specs {
		ts := spec.(*ast.TypeSpec)
		s.types[ts.Name.Name] = &typeDecl{spec: ts, file: file}

		if _, ok := ts.Type.(*ast.InterfaceType); !ok {
			continue
		}
		doc := ts.Doc
		if doc == nil && len(gen.Specs) == 1 {
			doc = gen.Doc
		}
		s.interfaces = append(s.interfaces, &interfaceDecl{spec: ts, doc: doc, file: file})
	}
}

// addConsts records the named types used by constants. Within a block a
// spec without type or value repeats the previous one, as with iota.
func (s *packageScope) addConsts(gen *ast.GenDecl) {
	var current string
	for _, spec := range gen.Specs {
		vs := spec.(*ast.ValueSpec)
		switch {
		case vs.Type != nil:
			current = identName(vs.Type)
		case len(vs.Values) > 0:
			current = ""
			if call, ok := vs.Values[0].(*ast.CallExpr); ok {
				current = identName(call.Fun)
			}
		}
		if current != "" {
			s.enumTypes[current] = true
		}
	}
}

// addErrorVars records package-level error variables: those declared with
// type error or initialised by errors.New or fmt.Errorf.
func (s *packageScope) addErrorVars(gen *ast.GenDecl) {
	for _, spec := range gen.Specs {
		vs := spec.(*ast.ValueSpec)
		for i, ident := range vs.Names {
			if ident.Name == "_" {
				continue
			}
			if identName(vs.Type) == "error" {
				s.errorVars = append(s.errorVars, ident.Name)
				continue
			}
			if i < len(vs.Values) && isErrorConstructor(vs.Values[i]) {
				s.errorVars = append(s.errorVars, ident.Name)
			}
		}
	}
}

func isErrorConstructor(expr ast.Expr) bool {
	call, ok := expr.(*ast.CallExpr)
	if !ok {
		return false
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	switch identName(sel.X) + "." + sel.Sel.Name {
	case "errors.New", "fmt.Errorf":
		return true
	}
	return false
}

func identName(expr ast.Expr) string {
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}

func (s *packageScope) location(pos token.Pos) errors.SourceLocation {
	position := s.fset.Position(pos)
	return errors.SourceLocation{File: position.Filename, Line: position.Line, Column: position.Column}
}

func (s *packageScope) modelLocation(pos token.Pos) models.SourceLocation {
	position := s.fset.Position(pos)
	return models.SourceLocation{File: position.Filename, Line: position.Line}
}
