package compiler

import (
	"errors"
	"fmt"
	"go/ast"
	"go/importer"
	goparser "go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"

	rsxerrors "github.com/vango-dev/rsx/internal/errors"
)

func TestGenerateFile(t *testing.T) {
	res := mustParse(t, `<ul><li>{"1"}</li><li>{"2"}</li></ul>`)
	res.Filename = "list.rsx"

	out, err := Generate(res, GenOptions{Package: "views", Func: "List"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	src := string(out)

	for _, want := range []string{
		"// Code generated by rsx gen from list.rsx. DO NOT EDIT.",
		"package views",
		`import "github.com/vango-dev/rsx/pkg/node"`,
		"func List() *node.Node {",
		`return node.Element("ul", nil, false, node.Pair(node.Element("li", nil, false, node.From("1")), node.Element("li", nil, false, node.From("2"))))`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source missing %q:\n%s", want, src)
		}
	}

	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, "list.go", out, goparser.ParseComments)
	if err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, src)
	}
	if !ast.IsGenerated(file) {
		t.Error("generated file should carry the generated header")
	}
}

func TestGenerateExpressions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "dashed attribute",
			src:  `<div data-test-id={"x"} />`,
			want: `node.Element("div", node.AttrsOf("data-test-id", "x"), true, node.Unit())`,
		},
		{
			name: "punned and quoted attributes",
			src:  `<input value type="text"/>`,
			want: `node.AttrsOf("value", value, "type", "text")`,
		},
		{
			name: "text",
			src:  `<p>Hello, world</p>`,
			want: `node.Element("p", nil, false, node.Text("Hello, world"))`,
		},
		{
			name: "three children nest to the left",
			src:  `<p>a{b}<br/></p>`,
			want: `node.Pair(node.Pair(node.Text("a"), node.From(b)), node.Element("br", nil, true, node.Unit()))`,
		},
		{
			name: "custom element",
			src:  `<ui.Card title={t}>x</ui.Card>`,
			want: `node.Comp(&ui.Card{Title: t, Children: node.Text("x")})`,
		},
		{
			name: "bare custom element",
			src:  `<Logo/>`,
			want: `node.Comp(&Logo{})`,
		},
		{
			name: "fragment",
			src:  `<>a</>`,
			want: `node.Fragment(node.Text("a"))`,
		},
		{
			name: "built-in components",
			src:  `<HTML5Doctype/><Fragment>b</Fragment>`,
			want: `node.Pair(node.Doctype(), node.Fragment(node.Text("b")))`,
		},
		{
			name: "empty block",
			src:  `<p>{}</p>`,
			want: `node.Element("p", nil, false, node.Unit())`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Generate(mustParse(t, tt.src), GenOptions{
				Package: "views",
				Func:    "View",
				Params:  "value, t, b any",
				Imports: map[string]string{"ui": "example.com/app/ui"},
			})
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if !strings.Contains(string(out), tt.want) {
				t.Errorf("generated source missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestGenerateParams(t *testing.T) {
	out, err := Generate(mustParse(t, `<p>{title}</p>`), GenOptions{Package: "views", Func: "Page", Params: "title string, items []string"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "func Page(title string, items []string) *node.Node {") {
		t.Errorf("unexpected signature:\n%s", out)
	}

	if _, err := Generate(mustParse(t, `<p/>`), GenOptions{Func: "Page", Params: "title string,,"}); err == nil {
		t.Error("expected an error for invalid params")
	}
	if _, err := Generate(mustParse(t, `<p/>`), GenOptions{}); err == nil {
		t.Error("expected an error for a missing function name")
	}
}

func TestGenerateErrors(t *testing.T) {
	_, err := Generate(mustParse(t, "<p>\n{a +}</p>"), GenOptions{Func: "View"})
	var re *rsxerrors.RsxError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want an RsxError", err)
	}
	if re.Code != "R104" || re.Location.Line != 2 {
		t.Errorf("err = %v at %v", re, re.Location)
	}
}

func TestGenerateErrorsUnknownQualifier(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		imports map[string]string
	}{
		{"missing import", `<ui.Card/>`, nil},
		{"nested qualifier", `<a.b.Card/>`, map[string]string{"a.b": "example.com/a/b"}},
		{"runtime qualifier", `<node.Card/>`, map[string]string{"node": "example.com/node"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(mustParse(t, tt.src), GenOptions{Func: "View", Imports: tt.imports})
			var re *rsxerrors.RsxError
			if !errors.As(err, &re) || re.Code != "R106" {
				t.Errorf("err = %v, want R106", err)
			}
		})
	}
}

// Stub packages the generated code is type-checked against. The node
// stub mirrors the signatures of pkg/node.
var stubPackages = map[string]string{
	NodeImportPath: `package node
type Node struct{}
type Attrs map[string]any
type Component interface{ Render() *Node }
func Unit() *Node
func Text(string) *Node
func From(any) *Node
func Doctype() *Node
func Element(string, Attrs, bool, *Node) *Node
func Fragment(...*Node) *Node
func Pair(*Node, *Node) *Node
func Comp(Component) *Node
func AttrsOf(...any) Attrs
`,
	"example.com/app/widgets": `package ui
import "github.com/vango-dev/rsx/pkg/node"
type Card struct {
	Title    string
	Count    int
	Children *node.Node
}
func (c *Card) Render() *node.Node { return c.Children }
`,
}

type stubImporter struct {
	fset     *token.FileSet
	packages map[string]*types.Package
}

func (im *stubImporter) Import(path string) (*types.Package, error) {
	if pkg, ok := im.packages[path]; ok {
		return pkg, nil
	}
	src, ok := stubPackages[path]
	if !ok {
		return importer.Default().Import(path)
	}
	pkg, err := im.check(path, src)
	if err != nil {
		return nil, err
	}
	im.packages[path] = pkg
	return pkg, nil
}

func (im *stubImporter) check(path string, files ...string) (*types.Package, error) {
	var parsed []*ast.File
	for i, src := range files {
		f, err := goparser.ParseFile(im.fset, fmt.Sprintf("%s/%d.go", path, i), src, 0)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, f)
	}
	conf := types.Config{Importer: im}
	return conf.Check(path, im.fset, parsed, nil)
}

func TestGeneratedCodeTypeChecks(t *testing.T) {
	src := `<main class="page">
		<HTML5Doctype/>
		<ui.Card title={title} count={len(items)}>
			<h1>{title}</h1>
			<>{items}</>
		</ui.Card>
		<Logo/>
	</main>`
	out, err := Generate(mustParse(t, src), GenOptions{
		Package: "views",
		Func:    "Page",
		Params:  "title string, items []string",
		Imports: map[string]string{"ui": "example.com/app/widgets"},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(string(out), `ui "example.com/app/widgets"`) {
		t.Errorf("missing named import for ui:\n%s", out)
	}

	logo := `package views
import "github.com/vango-dev/rsx/pkg/node"
type Logo struct{}
func (Logo) Render() *node.Node { return node.Text("logo") }
`
	im := &stubImporter{fset: token.NewFileSet(), packages: make(map[string]*types.Package)}
	if _, err := im.check("example.com/app/views", string(out), logo); err != nil {
		t.Errorf("generated code does not type-check: %v\n%s", err, out)
	}
}
