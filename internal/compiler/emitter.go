package compiler

import (
	"fmt"

	"github.com/vango-dev/rsx/internal/parser"
)

// Prop is an attribute lowered to the emitter's value form.
type Prop[V any] struct {
	Name  string
	Value V
	Attr  *parser.Attribute
}

// Emitter lowers classified elements. N is the emitter's node form and V
// its attribute value form.
type Emitter[N, V any] interface {
	// Literal lowers a text run.
	Literal(lit *parser.Literal) (N, error)

	// Block lowers an embedded expression child.
	Block(block *parser.RawBlock) (N, error)

	// Value lowers an attribute value. Punned attributes name a variable.
	Value(attr *parser.Attribute) (V, error)

	// Simple lowers a plain tag.
	Simple(el *parser.Element, attrs []Prop[V], content N) (N, error)

	// Custom lowers a component. hasChildren reports whether the element
	// had any children; when false, children must not be passed on.
	Custom(el *parser.Element, fields []Prop[V], children N, hasChildren bool) (N, error)

	// Fragment lowers an element that renders only its children.
	Fragment(el *parser.Element, content N) (N, error)

	// Reduce combines children in document order.
	Reduce(children []N) N
}

// Lower walks roots, which must have been analyzed, and lowers them with e.
// The first error stops lowering.
func Lower[N, V any](e Emitter[N, V], roots []parser.Child) (N, error) {
	children, err := lowerChildren(e, roots)
	if err != nil {
		var zero N
		return zero, err
	}
	return e.Reduce(children), nil
}

func lowerChildren[N, V any](e Emitter[N, V], children []parser.Child) ([]N, error) {
	out := make([]N, 0, len(children))
	for _, c := range children {
		n, err := lowerChild(e, c)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func lowerChild[N, V any](e Emitter[N, V], c parser.Child) (N, error) {
	switch c := c.(type) {
	case *parser.Literal:
		return e.Literal(c)
	case *parser.RawBlock:
		return e.Block(c)
	case *parser.Element:
		return lowerElement(e, c)
	default:
		var zero N
		return zero, fmt.Errorf("unknown child type %T", c)
	}
}

func lowerElement[N, V any](e Emitter[N, V], el *parser.Element) (N, error) {
	var zero N

	children, err := lowerChildren(e, el.Children)
	if err != nil {
		return zero, err
	}
	content := e.Reduce(children)

	if el.Kind == parser.Fragment {
		return e.Fragment(el, content)
	}

	attrs := el.Tag.Attributes.All()
	props := make([]Prop[V], 0, len(attrs))
	for _, a := range attrs {
		v, err := e.Value(a)
		if err != nil {
			return zero, err
		}
		props = append(props, Prop[V]{Name: a.Key.String(), Value: v, Attr: a})
	}

	switch el.Kind {
	case parser.Custom:
		return e.Custom(el, props, content, len(el.Children) > 0)
	case parser.Simple:
		return e.Simple(el, props, content)
	default:
		return zero, fmt.Errorf("element <%s> at %s was not classified", el.Tag.Name, el.Tag.Pos)
	}
}
