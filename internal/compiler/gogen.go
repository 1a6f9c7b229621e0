package compiler

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	goparser "go/parser"
	"go/token"
	"path"
	"sort"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/vango-dev/rsx/internal/parser"
)

// NodeImportPath is the import path of the runtime used by generated code.
const NodeImportPath = "github.com/vango-dev/rsx/pkg/node"

// doctypeName is the built-in component rendering <!DOCTYPE html>.
const doctypeName = "HTML5Doctype"

// Generator lowers a template to a Go expression of type *node.Node.
// Embedded expressions are Go expressions, custom elements are composite
// literals of Go types implementing node.Component.
type Generator struct {
	source
	pkg     string
	imports map[string]string
	used    map[string]bool
}

// NewGenerator creates a Generator for res. imports maps the package
// qualifiers of dotted component names to import paths.
func NewGenerator(res *parser.Result, imports map[string]string) *Generator {
	return &Generator{
		source:  source{filename: res.Filename, src: res.Source},
		pkg:     "node",
		imports: imports,
		used:    make(map[string]bool),
	}
}

func (g *Generator) sel(name string) ast.Expr {
	return &ast.SelectorExpr{X: ast.NewIdent(g.pkg), Sel: ast.NewIdent(name)}
}

func (g *Generator) call(name string, args ...ast.Expr) ast.Expr {
	return &ast.CallExpr{Fun: g.sel(name), Args: args}
}

func strLit(s string) *ast.BasicLit {
	return &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(s)}
}

func (g *Generator) parseExpr(e *parser.Expr) (ast.Expr, error) {
	x, err := goparser.ParseExpr(e.Src)
	if err != nil {
		return nil, g.diag(e.Pos, "R104", e.Src).Wrap(err)
	}
	return x, nil
}

func (g *Generator) Literal(lit *parser.Literal) (ast.Expr, error) {
	return g.call("Text", strLit(lit.Text)), nil
}

func (g *Generator) Block(block *parser.RawBlock) (ast.Expr, error) {
	if block.Expr.Src == "" {
		return g.call("Unit"), nil
	}
	x, err := g.parseExpr(&block.Expr)
	if err != nil {
		return nil, err
	}
	return g.call("From", x), nil
}

func (g *Generator) Value(attr *parser.Attribute) (ast.Expr, error) {
	switch {
	case attr.Punned():
		return ast.NewIdent(attr.Key.String()), nil
	case attr.Value.Quoted:
		if _, err := strconv.Unquote(attr.Value.Src); err != nil {
			return nil, g.diag(attr.Value.Pos, "R101", "invalid string "+attr.Value.Src).Wrap(err)
		}
		return &ast.BasicLit{Kind: token.STRING, Value: attr.Value.Src}, nil
	case attr.Value.Src == "":
		return nil, g.diag(attr.Value.Pos, "R104", "")
	default:
		return g.parseExpr(attr.Value)
	}
}

func (g *Generator) Simple(el *parser.Element, attrs []Prop[ast.Expr], content ast.Expr) (ast.Expr, error) {
	var attrsExpr ast.Expr = ast.NewIdent("nil")
	if len(attrs) > 0 {
		pairs := make([]ast.Expr, 0, 2*len(attrs))
		for _, a := range attrs {
			pairs = append(pairs, strLit(a.Name), a.Value)
		}
		attrsExpr = g.call("AttrsOf", pairs...)
	}
	return g.call("Element",
		strLit(el.Tag.Name.String()),
		attrsExpr,
		ast.NewIdent(strconv.FormatBool(el.Tag.SelfClosing)),
		content,
	), nil
}

func (g *Generator) Custom(el *parser.Element, fields []Prop[ast.Expr], children ast.Expr, hasChildren bool) (ast.Expr, error) {
	switch el.Tag.Name.String() {
	case fragmentName:
		return g.call("Fragment", children), nil
	case doctypeName:
		return g.call("Doctype"), nil
	}

	typ, err := g.componentType(el)
	if err != nil {
		return nil, err
	}

	lit := &ast.CompositeLit{Type: typ}
	for _, f := range fields {
		lit.Elts = append(lit.Elts, &ast.KeyValueExpr{Key: ast.NewIdent(fieldName(f.Name)), Value: f.Value})
	}
	if hasChildren {
		lit.Elts = append(lit.Elts, &ast.KeyValueExpr{Key: ast.NewIdent(fieldName(ChildrenProp)), Value: children})
	}
	return g.call("Comp", &ast.UnaryExpr{Op: token.AND, X: lit}), nil
}

// componentType resolves Card to the local type Card and ui.Card to the
// type Card of the package imported as ui.
func (g *Generator) componentType(el *parser.Element) (ast.Expr, error) {
	name := el.Tag.Name
	if len(name) == 1 {
		return ast.NewIdent(name[0]), nil
	}

	qual := name[:len(name)-1].String()
	if _, ok := g.imports[qual]; !ok || len(name) > 2 || qual == g.pkg {
		return nil, g.diag(el.Tag.Pos, "R106", qual, name.String()).
			WithSuggestion("Pass an import for " + qual + ", for example --import " + qual + "=example.com/app/" + qual)
	}
	g.used[qual] = true
	return &ast.SelectorExpr{X: ast.NewIdent(qual), Sel: ast.NewIdent(name.Local())}, nil
}

// fieldName maps a prop onto the exported Go field holding it.
func fieldName(prop string) string {
	r, n := utf8.DecodeRuneInString(prop)
	return string(unicode.ToUpper(r)) + prop[n:]
}

func (g *Generator) Fragment(_ *parser.Element, content ast.Expr) (ast.Expr, error) {
	return g.call("Fragment", content), nil
}

func (g *Generator) Reduce(children []ast.Expr) ast.Expr {
	switch len(children) {
	case 0:
		return g.call("Unit")
	case 1:
		return children[0]
	}
	acc := g.call("Pair", children[0], children[1])
	for _, c := range children[2:] {
		acc = g.call("Pair", acc, c)
	}
	return acc
}

// GenOptions controls the generated file.
type GenOptions struct {
	// Package is the package clause of the generated file.
	Package string

	// Func is the name of the generated function.
	Func string

	// Params is the parameter list of the generated function, for example
	// "title string, items []string". Punned attributes and expressions
	// refer to these names.
	Params string

	// Imports maps the package qualifier of dotted component names to its
	// import path, for example "ui" to "example.com/app/ui".
	Imports map[string]string
}

// Generate analyzes res and returns a formatted Go file declaring a
// function that builds the template's tree.
func Generate(res *parser.Result, opts GenOptions) ([]byte, error) {
	if opts.Package == "" {
		opts.Package = "main"
	}
	if opts.Func == "" {
		return nil, fmt.Errorf("generate %s: missing function name", res.Filename)
	}

	params := &ast.FieldList{}
	if opts.Params != "" {
		x, err := goparser.ParseExpr("func(" + opts.Params + ")")
		if err != nil {
			return nil, fmt.Errorf("generate %s: invalid params %q: %w", res.Filename, opts.Params, err)
		}
		ft, ok := x.(*ast.FuncType)
		if !ok {
			return nil, fmt.Errorf("generate %s: invalid params %q", res.Filename, opts.Params)
		}
		params = ft.Params
	}

	Analyze(res)
	g := NewGenerator(res, opts.Imports)
	body, err := Lower[ast.Expr, ast.Expr](g, res.Roots)
	if err != nil {
		return nil, err
	}

	specs := []ast.Spec{&ast.ImportSpec{Path: strLit(NodeImportPath)}}
	quals := make([]string, 0, len(g.used))
	for qual := range g.used {
		quals = append(quals, qual)
	}
	sort.Strings(quals)
	for _, qual := range quals {
		spec := &ast.ImportSpec{Path: strLit(opts.Imports[qual])}
		if path.Base(opts.Imports[qual]) != qual {
			spec.Name = ast.NewIdent(qual)
		}
		specs = append(specs, spec)
	}
	imports := &ast.GenDecl{Tok: token.IMPORT, Specs: specs}

	file := &ast.File{
		Name: ast.NewIdent(opts.Package),
		Decls: []ast.Decl{
			imports,
			&ast.FuncDecl{
				Name: ast.NewIdent(opts.Func),
				Type: &ast.FuncType{
					Params: params,
					Results: &ast.FieldList{List: []*ast.Field{
						{Type: &ast.StarExpr{X: g.sel("Node")}},
					}},
				},
				Body: &ast.BlockStmt{List: []ast.Stmt{
					&ast.ReturnStmt{Results: []ast.Expr{body}},
				}},
			},
		},
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by rsx gen from %s. DO NOT EDIT.\n\n", res.Filename)
	if err := format.Node(&buf, token.NewFileSet(), file); err != nil {
		return nil, fmt.Errorf("generate %s: %w", res.Filename, err)
	}
	return format.Source(buf.Bytes())
}
