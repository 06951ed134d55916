// Package generator emits the proxy, stub and record codec files for the
// remote interfaces of a package.
package generator

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/toyz/remoter/internal/builder"
	"github.com/toyz/remoter/internal/classifier"
	"github.com/toyz/remoter/internal/errors"
	"github.com/toyz/remoter/internal/models"
	"github.com/toyz/remoter/internal/strategy"
	"github.com/toyz/remoter/internal/utils"
)

const (
	// RecordsFile holds the record codecs shared by every interface of a package
	RecordsFile = utils.GeneratedPrefix + "remoter_records.go"

	header = "Code generated by remoter. DO NOT EDIT."
)

// ProxyFile is the name of the proxy file generated for iface
func ProxyFile(iface string) string {
	return utils.GeneratedPrefix + strings.ToLower(iface) + "_proxy.go"
}

// StubFile is the name of the stub file generated for iface
func StubFile(iface string) string {
	return utils.GeneratedPrefix + strings.ToLower(iface) + "_stub.go"
}

// Generator implements CodeGenerator. The proxy and stub sides classify
// with separate classifiers so each resolves its strategies on its own.
type Generator struct {
	table *strategy.Table
	proxy *classifier.Classifier
	stub  *classifier.Classifier
}

// NewGenerator creates a generator over the default strategy table
func NewGenerator() *Generator {
	return NewGeneratorWithTable(strategy.Default())
}

// NewGeneratorWithTable creates a generator over a sealed table
func NewGeneratorWithTable(table *strategy.Table) *Generator {
	return &Generator{
		table: table,
		proxy: classifier.New(),
		stub:  classifier.New(),
	}
}

// unit is the output of one interface
type unit struct {
	model   *models.InterfaceModel
	files   []models.GeneratedFile
	records *strategy.RecordSet
	refs    []string
}

// GeneratePackage generates every annotated interface of metadata. An
// interface that fails produces no files, and neither does any interface
// passing it as a callback. Files for the rest are returned together with
// the collected errors.
func (g *Generator) GeneratePackage(metadata *models.PackageMetadata) (*models.GenerationResult, error) {
	if metadata == nil {
		return nil, fmt.Errorf("metadata cannot be nil")
	}

	result := &models.GenerationResult{PackagePath: metadata.PackagePath}
	problems := errors.NewMultipleErrors()
	prefixes := callbackPrefixes(metadata)

	order := generationOrder(metadata)
	units := make(map[string]*unit, len(order))
	failed := make(map[string]bool)
	for _, raw := range order {
		u, err := g.generateInterface(metadata, raw, prefixes)
		if err != nil {
			collect(problems, err)
			failed[raw.Name] = true
			continue
		}
		units[raw.Name] = u
	}

	for changed := true; changed; {
		changed = false
		for _, raw := range order {
			u, ok := units[raw.Name]
			if !ok {
				continue
			}
			for _, ref := range u.refs {
				_, known := metadata.Lookup(ref)
				if known && !failed[ref] {
					continue
				}
				problems.Add(errors.WrapGenerateError("callbacks", raw.Name,
					fmt.Errorf("interface %s uses callback %s, which could not be generated", raw.Name, ref)))
				delete(units, raw.Name)
				failed[raw.Name] = true
				changed = true
				break
			}
		}
	}

	records := strategy.NewRecordSet()
	for _, raw := range order {
		u, ok := units[raw.Name]
		if !ok {
			continue
		}
		result.Files = append(result.Files, u.files...)
		records.Merge(u.records)
		if u.model.Callback {
			result.Callbacks++
		} else {
			result.Interfaces++
		}
	}

	if records.Len() > 0 {
		file := g.recordsFile(metadata.PackageName, records, prefixes)
		content, err := render(metadata.PackagePath, RecordsFile, file)
		if err != nil {
			problems.Add(errors.WrapGenerateError("records", RecordsFile, err))
		} else {
			result.Files = append(result.Files, models.GeneratedFile{Name: RecordsFile, Content: content})
			result.Records = records.Len()
		}
	}

	if !problems.IsEmpty() {
		return result, problems
	}
	return result, nil
}

func (g *Generator) generateInterface(metadata *models.PackageMetadata, raw *models.RawInterface, prefixes func(string) string) (*unit, error) {
	model, err := builder.Build(raw)
	if err != nil {
		return nil, err
	}

	proxySide, err := resolve(g.proxy, model)
	if err != nil {
		return nil, err
	}
	stubSide, err := resolve(g.stub, model)
	if err != nil {
		return nil, err
	}
	if err := CheckConsistency(model.Name, proxySide.trace, stubSide.trace); err != nil {
		return nil, err
	}

	u := &unit{model: model, records: strategy.NewRecordSet(), refs: callbackRefs(raw)}

	proxyName := ProxyFile(model.Name)
	proxy, err := render(metadata.PackagePath, proxyName, g.proxyFile(model, proxySide, u.records, prefixes))
	if err != nil {
		return nil, errors.WrapGenerateError("proxy", proxyName, err)
	}
	stubName := StubFile(model.Name)
	stub, err := render(metadata.PackagePath, stubName, g.stubFile(model, stubSide, u.records, prefixes))
	if err != nil {
		return nil, errors.WrapGenerateError("stub", stubName, err)
	}

	u.files = []models.GeneratedFile{
		{Name: proxyName, Content: proxy},
		{Name: stubName, Content: stub},
	}
	return u, nil
}

// side is one generator's view of an interface: the strategies of every
// slot and the trace recording them
type side struct {
	methods []resolvedMethod
	trace   *Trace
}

type resolvedMethod struct {
	model  *models.MethodModel
	params []*strategy.Strategy
	result *strategy.Strategy
}

func resolve(c *classifier.Classifier, model *models.InterfaceModel) (*side, error) {
	s := &side{trace: &Trace{}}
	problems := errors.NewMultipleErrors()

	for i := range model.Methods {
		m := &model.Methods[i]
		rm := resolvedMethod{model: m}
		for j, p := range m.Params {
			st, err := c.ClassifyParam(j, p.Type)
			if err != nil {
				problems.Add(annotate(err, model, m))
				continue
			}
			rm.params = append(rm.params, st)
			s.trace.Record(m, fmt.Sprintf("parameter %d", j+1), st.WireSignature())
		}
		if m.Return != nil {
			st, err := c.ClassifyReturn(m.Return)
			if err != nil {
				problems.Add(annotate(err, model, m))
			} else {
				rm.result = st
				s.trace.Record(m, "return value", st.WireSignature())
			}
		}
		s.trace.Record(m, "failures", strings.Join(m.Failures, ","))
		s.methods = append(s.methods, rm)
	}

	if !problems.IsEmpty() {
		return nil, problems
	}
	return s, nil
}

func annotate(err error, model *models.InterfaceModel, m *models.MethodModel) errors.RemoterError {
	loc := errors.SourceLocation{File: m.Location.File, Line: m.Location.Line}
	if ute, ok := err.(*errors.UnsupportedTypeError); ok {
		return ute.WithMethod(model.Name, m.Name).WithLocation(loc)
	}
	return errors.Wrapf(errors.GenerationErrorCode, err, "%s.%s", model.Name, m.Name).WithLocation(loc)
}

// generationOrder lists remote interfaces depth first through the callbacks
// they use, then any callback interface nothing refers to. Each interface
// appears once, so callback cycles terminate.
func generationOrder(metadata *models.PackageMetadata) []*models.RawInterface {
	visited := make(map[string]bool)
	var order []*models.RawInterface

	var visit func(raw *models.RawInterface)
	visit = func(raw *models.RawInterface) {
		key := identity(raw)
		if visited[key] {
			return
		}
		visited[key] = true
		order = append(order, raw)
		for _, name := range callbackRefs(raw) {
			if ref, ok := metadata.Lookup(name); ok {
				visit(ref)
			}
		}
	}

	for _, raw := range metadata.Remote() {
		visit(raw)
	}
	for _, raw := range metadata.Interfaces {
		visit(raw)
	}
	return order
}

func identity(raw *models.RawInterface) string {
	if raw.ImportPath == "" {
		return raw.Package + "." + raw.Name
	}
	return raw.ImportPath + "." + raw.Name
}

// callbackRefs names the callback interfaces raw's methods pass or return,
// in first-use order
func callbackRefs(raw *models.RawInterface) []string {
	seen := make(map[string]bool)
	var refs []string
	var walk func(d *models.TypeDescriptor)
	walk = func(d *models.TypeDescriptor) {
		if d == nil {
			return
		}
		if d.Kind == models.KindCallback && d.Unsupported == "" && d.Name != "" && !seen[d.Name] {
			seen[d.Name] = true
			refs = append(refs, d.Name)
		}
		walk(d.Key)
		walk(d.Elem)
		for _, f := range d.Fields {
			walk(f.Type)
		}
	}

	for _, m := range raw.Methods {
		for _, p := range m.Params {
			walk(p.Type)
		}
		for _, r := range m.Results {
			walk(r)
		}
	}
	return refs
}

// callbackPrefixes maps a callback interface name to the prefix of its
// generated constructors
func callbackPrefixes(metadata *models.PackageMetadata) func(string) string {
	return func(name string) string {
		if raw, ok := metadata.Lookup(name); ok && raw.Alias != "" {
			return raw.Alias
		}
		return name
	}
}

func collect(problems *errors.MultipleErrors, err error) {
	switch e := err.(type) {
	case *errors.MultipleErrors:
		for _, inner := range e.Errors {
			problems.Add(inner)
		}
	case errors.RemoterError:
		problems.Add(e)
	default:
		problems.Add(errors.Wrap(errors.GenerationErrorCode, err.Error(), err))
	}
}

func newFile(packageName string) *jen.File {
	f := jen.NewFile(packageName)
	f.HeaderComment(header)
	f.HeaderComment(fmt.Sprintf("Strategy table version %d.", strategy.Version))
	f.ImportName(strategy.RuntimePath, "remoter")
	return f
}

func render(dir, name string, f *jen.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, err
	}
	return utils.FormatGoCode(filepath.Join(dir, name), buf.Bytes())
}

// reserved are identifiers generated method bodies declare or refer to
var reserved = map[string]bool{
	"p": true, "w": true, "r": true, "t": true,
	"in": true, "out": true, "impl": true, "opts": true,
	"ctx": true, "err": true, "result": true,
	"context": true, "errors": true, "remoter": true,
}

// localName is the identifier a parameter gets in generated code
func localName(name string) string {
	if reserved[name] {
		return name + "Arg"
	}
	return name
}

func indexName(prefix string, m *models.MethodModel) string {
	return prefix + m.Name + "Index"
}
