package codegen

import (
	"errors"
	"fmt"
	"go/ast"
	"go/types"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// FinalDirective marks a type or method that must not be overridden
const FinalDirective = "//phroxy:final"

var (
	// ErrNotFound is returned when the package does not declare the type
	ErrNotFound = errors.New("codegen: type not found")

	// ErrNotProxyable is returned for types no wrapper can be generated for
	ErrNotProxyable = errors.New("codegen: type is not proxyable")
)

// Parser extracts type models from Go packages
type Parser interface {
	Parse(pkgPath string, typeName string) (*TypeModel, error)
}

type parserImpl struct {
	cache map[string]*packages.Package
}

// NewParser returns the default parser. Loaded packages are reused across
// calls.
func NewParser() Parser {
	return &parserImpl{cache: make(map[string]*packages.Package)}
}

func (p *parserImpl) Parse(pkgPath string, typeName string) (*TypeModel, error) {
	pkg, err := p.loadPackage(pkgPath)
	if err != nil {
		return nil, err
	}

	obj := pkg.Types.Scope().Lookup(typeName)
	if obj == nil {
		return nil, fmt.Errorf("%w: %q in package %q", ErrNotFound, typeName, pkgPath)
	}
	tn, ok := obj.(*types.TypeName)
	if !ok {
		return nil, fmt.Errorf("%w: %q in package %q is not a type", ErrNotFound, typeName, pkgPath)
	}
	named, ok := tn.Type().(*types.Named)
	if !ok || tn.IsAlias() {
		return nil, fmt.Errorf("%w: %q is an alias", ErrNotProxyable, typeName)
	}
	if _, ok := named.Underlying().(*types.Struct); !ok {
		return nil, fmt.Errorf("%w: %q is not a struct type", ErrNotProxyable, typeName)
	}
	if named.TypeParams().Len() > 0 {
		return nil, fmt.Errorf("%w: %q is generic", ErrNotProxyable, typeName)
	}

	directives := collectDirectives(pkg, typeName)
	if directives.typeFinal {
		return nil, fmt.Errorf("%w: %q is marked final", ErrNotProxyable, typeName)
	}

	imports := map[string]string{}
	qualifier := func(other *types.Package) string {
		if other == nil || other.Path() == pkg.Types.Path() {
			return ""
		}
		imports[other.Path()] = other.Name()
		return other.Name()
	}

	model := &TypeModel{
		Name:    typeName,
		PkgName: pkg.Name,
		PkgPath: pkg.Types.Path(),
	}
	if len(pkg.GoFiles) > 0 {
		model.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	mset := types.NewMethodSet(types.NewPointer(named))
	for i := 0; i < mset.Len(); i++ {
		fn, ok := mset.At(i).Obj().(*types.Func)
		if !ok || !fn.Exported() {
			continue
		}
		sig := fn.Type().(*types.Signature)
		m := methodModel(fn.Name(), sig, qualifier)
		m.Final = directives.finalMethods[fn.Name()]
		model.Methods = append(model.Methods, m)
	}

	// Imports of final-only types are pruned by the formatter
	for path := range imports {
		model.Imports = append(model.Imports, path)
	}
	sort.Strings(model.Imports)
	return model, nil
}

func (p *parserImpl) loadPackage(pkgPath string) (*packages.Package, error) {
	if cached, ok := p.cache[pkgPath]; ok {
		return cached, nil
	}

	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedTypes |
			packages.NeedSyntax,
	}

	pkgs, err := packages.Load(cfg, pkgPath)
	if err != nil {
		return nil, fmt.Errorf("load package %q: %w", pkgPath, err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, fmt.Errorf("package %q has compilation errors", pkgPath)
	}
	if len(pkgs) == 0 || pkgs[0].Types == nil {
		return nil, fmt.Errorf("package %q not found", pkgPath)
	}
	p.cache[pkgPath] = pkgs[0]
	return pkgs[0], nil
}

func methodModel(name string, sig *types.Signature, qualifier types.Qualifier) MethodModel {
	m := MethodModel{Name: name, Variadic: sig.Variadic()}

	params := sig.Params()
	used := map[string]bool{"p": true, "out": true, "err": true, "v": true, "ok": true}
	for i := 0; i < params.Len(); i++ {
		param := params.At(i)
		t := param.Type()
		if m.Variadic && i == params.Len()-1 {
			t = t.(*types.Slice).Elem()
		}
		m.Params = append(m.Params, ParamModel{
			Name: paramName(param.Name(), i, used),
			Type: types.TypeString(t, qualifier),
		})
	}

	results := sig.Results()
	for i := 0; i < results.Len(); i++ {
		t := results.At(i).Type()
		if i == results.Len()-1 && isError(t) {
			m.ReturnsError = true
			continue
		}
		m.Results = append(m.Results, types.TypeString(t, qualifier))
	}
	return m
}

func paramName(name string, i int, used map[string]bool) string {
	if name == "" || name == "_" || used[name] || isResultName(name) {
		name = fmt.Sprintf("a%d", i)
	}
	for used[name] {
		name += "_"
	}
	used[name] = true
	return name
}

func isResultName(name string) bool {
	if len(name) < 2 || name[0] != 'r' {
		return false
	}
	for _, c := range name[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isError(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

type directiveSet struct {
	typeFinal    bool
	finalMethods map[string]bool
}

// collectDirectives scans doc comments of the type and its methods
func collectDirectives(pkg *packages.Package, typeName string) directiveSet {
	ds := directiveSet{finalMethods: make(map[string]bool)}
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				for _, spec := range d.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok || ts.Name.Name != typeName {
						continue
					}
					if hasDirective(ts.Doc) || len(d.Specs) == 1 && hasDirective(d.Doc) {
						ds.typeFinal = true
					}
				}
			case *ast.FuncDecl:
				if d.Recv == nil || receiverName(d.Recv) != typeName {
					continue
				}
				if hasDirective(d.Doc) {
					ds.finalMethods[d.Name.Name] = true
				}
			}
		}
	}
	return ds
}

func receiverName(recv *ast.FieldList) string {
	if len(recv.List) == 0 {
		return ""
	}
	expr := recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}

func hasDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if strings.TrimSpace(c.Text) == FinalDirective {
			return true
		}
	}
	return false
}
