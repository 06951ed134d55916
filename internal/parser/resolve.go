package parser

import (
	"go/ast"
	"go/token"
	"strconv"
	"strings"

	"github.com/toyz/remoter/internal/models"
)

// RuntimeImportPath is the import path of the runtime containers
const RuntimeImportPath = "github.com/toyz/remoter/pkg/remoter"

// resolver turns Go type expressions into descriptors. Types are looked up
// in the package scope; imports are resolved against the file the
// expression appears in.
type resolver struct {
	pkg        *packageScope
	file       *ast.File
	typeParams map[string]bool
	records    []string // records being resolved, outermost first
}

func (r *resolver) in(file *ast.File) *resolver {
	clone := *r
	clone.file = file
	return &clone
}

func (r *resolver) resolve(expr ast.Expr) *models.TypeDescriptor {
	switch t := expr.(type) {
	case *ast.Ident:
		return r.resolveIdent(t)

	case *ast.ParenExpr:
		return r.resolve(t.X)

	case *ast.StarExpr:
		inner := r.resolve(t.X)
		if inner.Unsupported != "" || inner.Nullable {
			return unsupported(expr)
		}
		clone := *inner
		clone.Nullable = true
		return &clone

	case *ast.ArrayType:
		if t.Len == nil {
			if name := identName(t.Elt); name == "byte" || name == "uint8" {
				return models.NewPrimitive(models.PrimitiveBytes)
			}
			return models.NewCollection(r.resolve(t.Elt), models.ContainerBuiltin)
		}
		lit, ok := t.Len.(*ast.BasicLit)
		if !ok || lit.Kind != token.INT {
			return unsupported(expr)
		}
		n, err := strconv.ParseInt(lit.Value, 0, 32)
		if err != nil {
			return unsupported(expr)
		}
		return &models.TypeDescriptor{Kind: models.KindArray, Length: int(n), Elem: r.resolve(t.Elt)}

	case *ast.MapType:
		return models.NewMap(r.resolve(t.Key), r.resolve(t.Value), models.ContainerBuiltin)

	case *ast.IndexExpr:
		if r.isRuntime(t.X, "List") {
			return models.NewCollection(r.resolve(t.Index), models.ContainerRuntime)
		}

	case *ast.IndexListExpr:
		if r.isRuntime(t.X, "Map") && len(t.Indices) == 2 {
			return models.NewMap(r.resolve(t.Indices[0]), r.resolve(t.Indices[1]), models.ContainerRuntime)
		}
	}
	return unsupported(expr)
}

func (r *resolver) resolveIdent(ident *ast.Ident) *models.TypeDescriptor {
	name := ident.Name
	if r.typeParams[name] {
		return unsupported(ident)
	}
	if prim, ok := models.ParsePrimitive(name); ok {
		return models.NewPrimitive(prim)
	}

	decl, ok := r.pkg.types[name]
	if !ok || decl.spec.TypeParams != nil {
		return unsupported(ident)
	}
	if decl.spec.Assign.IsValid() {
		return r.in(decl.file).resolve(decl.spec.Type)
	}

	switch underlying := decl.spec.Type.(type) {
	case *ast.StructType:
		return r.in(decl.file).resolveRecord(name, underlying)

	case *ast.InterfaceType:
		if r.pkg.remotable[name] {
			return &models.TypeDescriptor{Kind: models.KindCallback, Name: name}
		}

	case *ast.Ident:
		prim, ok := models.ParsePrimitive(underlying.Name)
		if ok && prim.IsInteger() && r.pkg.enumTypes[name] {
			return &models.TypeDescriptor{Kind: models.KindEnum, Name: name, Primitive: prim}
		}
	}
	return unsupported(ident)
}

// resolveRecord describes the exported fields of a struct. A record met
// again while its own fields are being resolved becomes a back reference.
func (r *resolver) resolveRecord(name string, st *ast.StructType) *models.TypeDescriptor {
	for _, open := range r.records {
		if open == name {
			return &models.TypeDescriptor{Kind: models.KindRecord, Name: name, BackRef: true}
		}
	}

	inner := *r
	inner.records = append(append([]string(nil), r.records...), name)

	desc := &models.TypeDescriptor{Kind: models.KindRecord, Name: name}
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			embedded := strings.TrimPrefix(typeString(field.Type, nil), "*")
			if ast.IsExported(embedded) {
				desc.Fields = append(desc.Fields, models.Field{Name: embedded, Type: unsupported(field.Type)})
			}
			continue
		}
		for _, fieldName := range field.Names {
			if !fieldName.IsExported() {
				continue
			}
			desc.Fields = append(desc.Fields, models.Field{Name: fieldName.Name, Type: inner.resolve(field.Type)})
		}
	}
	return desc
}

func (r *resolver) isContext(expr ast.Expr) bool {
	sel, ok := expr.(*ast.SelectorExpr)
	return ok && sel.Sel.Name == "Context" && identName(sel.X) == importName(r.file, "context")
}

func (r *resolver) isRuntime(expr ast.Expr, name string) bool {
	sel, ok := expr.(*ast.SelectorExpr)
	return ok && sel.Sel.Name == name && identName(sel.X) == importName(r.file, RuntimeImportPath)
}

// importName returns the local name of an import, or "" when the file does
// not import path
func importName(file *ast.File, path string) string {
	if file == nil {
		return ""
	}
	for _, spec := range file.Imports {
		if strings.Trim(spec.Path.Value, `"`) != path {
			continue
		}
		if spec.Name != nil {
			return spec.Name.Name
		}
		return path[strings.LastIndex(path, "/")+1:]
	}
	return ""
}

func unsupported(expr ast.Expr) *models.TypeDescriptor {
	return &models.TypeDescriptor{Unsupported: typeString(expr, nil)}
}

// typeString spells a type expression. Names in erase are replaced by any.
func typeString(expr ast.Expr, erase map[string]bool) string {
	switch t := expr.(type) {
	case *ast.Ident:
		if erase[t.Name] {
			return "any"
		}
		return t.Name
	case *ast.ParenExpr:
		return "(" + typeString(t.X, erase) + ")"
	case *ast.StarExpr:
		return "*" + typeString(t.X, erase)
	case *ast.SelectorExpr:
		return typeString(t.X, erase) + "." + t.Sel.Name
	case *ast.Ellipsis:
		return "..." + typeString(t.Elt, erase)
	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + typeString(t.Elt, erase)
		}
		return "[" + typeString(t.Len, erase) + "]" + typeString(t.Elt, erase)
	case *ast.BasicLit:
		return t.Value
	case *ast.MapType:
		return "map[" + typeString(t.Key, erase) + "]" + typeString(t.Value, erase)
	case *ast.IndexExpr:
		return typeString(t.X, erase) + "[" + typeString(t.Index, erase) + "]"
	case *ast.IndexListExpr:
		args := make([]string, len(t.Indices))
		for i, index := range t.Indices {
			args[i] = typeString(index, erase)
		}
		return typeString(t.X, erase) + "[" + strings.Join(args, ", ") + "]"
	case *ast.InterfaceType:
		if t.Methods == nil || len(t.Methods.List) == 0 {
			return "interface{}"
		}
		return "interface{...}"
	case *ast.StructType:
		return "struct{...}"
	case *ast.FuncType:
		var params []string
		if t.Params != nil {
			for _, param := range t.Params.List {
				params = append(params, typeString(param.Type, erase))
			}
		}
		return "func(" + strings.Join(params, ", ") + ")"
	case *ast.ChanType:
		switch t.Dir {
		case ast.SEND:
			return "chan<- " + typeString(t.Value, erase)
		case ast.RECV:
			return "<-chan " + typeString(t.Value, erase)
		default:
			return "chan " + typeString(t.Value, erase)
		}
	default:
		return "unknown"
	}
}
