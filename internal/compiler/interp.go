package compiler

import (
	"fmt"
	"strconv"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/spf13/cast"

	"github.com/vango-dev/rsx/internal/parser"
	"github.com/vango-dev/rsx/pkg/node"
)

// Scope holds the variables visible to embedded expressions.
type Scope map[string]any

// Props are the fields passed to a custom component. The children field
// is present only when the element had children, and holds a *node.Node.
type Props map[string]any

// ChildrenProp is the name of the implicit children field.
const ChildrenProp = "children"

// Factory builds the tree of a custom component from its props.
type Factory func(Props) (*node.Node, error)

// Resolver finds the factory registered for a component name.
type Resolver interface {
	Lookup(name string) (Factory, bool)
}

// Eval produces a fresh node tree for one render.
type Eval func(Scope) (*node.Node, error)

// ValueEval produces an attribute value for one render.
type ValueEval func(Scope) (any, error)

// Interpreter lowers a template to an Eval. Expressions are compiled
// with expr once and run against the render scope.
type Interpreter struct {
	source
	resolver Resolver
	options  []expr.Option
}

// NewInterpreter creates an Interpreter for res. Custom components are
// looked up in resolver while lowering; resolver may be nil when the
// template uses none.
func NewInterpreter(res *parser.Result, resolver Resolver) *Interpreter {
	return &Interpreter{
		source:   source{filename: res.Filename, src: res.Source},
		resolver: resolver,
		options: []expr.Option{
			expr.Function("raw", rawFunc),
		},
	}
}

// Interpret analyzes res if needed and lowers it to an Eval.
func Interpret(res *parser.Result, resolver Resolver) (Eval, error) {
	Analyze(res)
	return Lower[Eval, ValueEval](NewInterpreter(res, resolver), res.Roots)
}

// rawFunc marks a string as trusted markup: raw("<br/>").
func rawFunc(params ...any) (any, error) {
	if len(params) != 1 {
		return nil, fmt.Errorf("raw expects 1 argument, got %d", len(params))
	}
	s, err := cast.ToStringE(params[0])
	if err != nil {
		return nil, err
	}
	return node.Raw(s), nil
}

func (in *Interpreter) compile(e *parser.Expr) (*vm.Program, error) {
	program, err := expr.Compile(e.Src, in.options...)
	if err != nil {
		return nil, in.diag(e.Pos, "R104", e.Src).Wrap(err)
	}
	return program, nil
}

func (in *Interpreter) Literal(lit *parser.Literal) (Eval, error) {
	text := lit.Text
	return func(Scope) (*node.Node, error) {
		return node.Text(text), nil
	}, nil
}

func (in *Interpreter) Block(block *parser.RawBlock) (Eval, error) {
	if block.Expr.Src == "" {
		return func(Scope) (*node.Node, error) { return node.Unit(), nil }, nil
	}
	run, err := in.value(&block.Expr)
	if err != nil {
		return nil, err
	}
	return func(scope Scope) (*node.Node, error) {
		v, err := run(scope)
		if err != nil {
			return nil, err
		}
		return node.From(v), nil
	}, nil
}

func (in *Interpreter) Value(attr *parser.Attribute) (ValueEval, error) {
	if !attr.Punned() {
		return in.value(attr.Value)
	}
	name := attr.Key.String()
	pos := attr.Pos
	return func(scope Scope) (any, error) {
		v, ok := scope[name]
		if !ok {
			return nil, in.diag(pos, "R110", name).Wrap(fmt.Errorf("undefined variable %q", name))
		}
		return v, nil
	}, nil
}

// value compiles an expression, or unquotes a quoted attribute value.
func (in *Interpreter) value(e *parser.Expr) (ValueEval, error) {
	if e.Quoted {
		s, err := strconv.Unquote(e.Src)
		if err != nil {
			return nil, in.diag(e.Pos, "R101", "invalid string "+e.Src).Wrap(err)
		}
		return func(Scope) (any, error) { return s, nil }, nil
	}
	if e.Src == "" {
		return nil, in.diag(e.Pos, "R104", e.Src)
	}

	program, err := in.compile(e)
	if err != nil {
		return nil, err
	}
	src, pos := e.Src, e.Pos
	return func(scope Scope) (any, error) {
		env := map[string]any(scope)
		if env == nil {
			env = map[string]any{}
		}
		v, err := expr.Run(program, env)
		if err != nil {
			return nil, in.diag(pos, "R110", src).Wrap(err)
		}
		return v, nil
	}, nil
}

func (in *Interpreter) Simple(el *parser.Element, attrs []Prop[ValueEval], content Eval) (Eval, error) {
	tag := el.Tag.Name.String()
	selfClosing := el.Tag.SelfClosing
	return func(scope Scope) (*node.Node, error) {
		var values node.Attrs
		if len(attrs) > 0 {
			values = make(node.Attrs, len(attrs))
		}
		for _, a := range attrs {
			v, err := a.Value(scope)
			if err != nil {
				return nil, err
			}
			if err := values.Set(a.Name, v); err != nil {
				return nil, in.diag(a.Attr.Pos, "R110", a.Attr.Source()).Wrap(err)
			}
		}
		c, err := content(scope)
		if err != nil {
			return nil, err
		}
		return node.Element(tag, values, selfClosing, c), nil
	}, nil
}

func (in *Interpreter) Custom(el *parser.Element, fields []Prop[ValueEval], children Eval, hasChildren bool) (Eval, error) {
	name := el.Tag.Name.String()
	var factory Factory
	if in.resolver != nil {
		factory, _ = in.resolver.Lookup(name)
	}
	if factory == nil {
		return nil, in.diag(el.Tag.Pos, "R105", name)
	}

	pos := el.Tag.Pos
	return func(scope Scope) (*node.Node, error) {
		var props Props
		if len(fields) > 0 || hasChildren {
			props = make(Props, len(fields)+1)
		}
		for _, f := range fields {
			v, err := f.Value(scope)
			if err != nil {
				return nil, err
			}
			props[f.Name] = v
		}
		if hasChildren {
			c, err := children(scope)
			if err != nil {
				return nil, err
			}
			props[ChildrenProp] = c
		}

		n, err := factory(props)
		if err != nil {
			return nil, in.diag(pos, "R111", name).Wrap(err)
		}
		return n, nil
	}, nil
}

func (in *Interpreter) Fragment(_ *parser.Element, content Eval) (Eval, error) {
	return func(scope Scope) (*node.Node, error) {
		c, err := content(scope)
		if err != nil {
			return nil, err
		}
		return node.Fragment(c), nil
	}, nil
}

func (in *Interpreter) Reduce(children []Eval) Eval {
	switch len(children) {
	case 0:
		return func(Scope) (*node.Node, error) { return node.Unit(), nil }
	case 1:
		return children[0]
	}
	return func(scope Scope) (*node.Node, error) {
		nodes := make([]*node.Node, len(children))
		for i, c := range children {
			n, err := c(scope)
			if err != nil {
				return nil, err
			}
			nodes[i] = n
		}
		return node.Reduce(nodes), nil
	}
}
