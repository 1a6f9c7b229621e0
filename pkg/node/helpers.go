package node

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Unit creates a node that renders nothing.
func Unit() *Node {
	return &Node{Kind: KindUnit}
}

// Text creates a text node. Its content is escaped when rendered.
func Text(content string) *Node {
	return &Node{
		Kind: KindText,
		Text: content,
	}
}

// Raw creates an unescaped markup node.
// Use with caution - can lead to XSS if content is user-provided.
func Raw(markup string) *Node {
	return &Node{
		Kind: KindRaw,
		Text: markup,
	}
}

// Doctype returns the HTML 5 doctype declaration.
func Doctype() *Node {
	return Raw("<!DOCTYPE html>")
}

// Element creates a simple element. A nil contents renders as an empty
// element; selfClosing selects <tag/> over <tag></tag>.
func Element(tag string, attrs Attrs, selfClosing bool, contents *Node) *Node {
	return &Node{
		Kind:        KindElement,
		Tag:         tag,
		Attrs:       attrs,
		SelfClosing: selfClosing,
		Content:     contents,
	}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...*Node) *Node {
	return &Node{
		Kind:     KindFragment,
		Children: children,
	}
}

// Seq renders each child in order.
func Seq(children ...*Node) *Node {
	return &Node{
		Kind:     KindSequence,
		Children: children,
	}
}

// Pair renders left, then right.
func Pair(left, right *Node) *Node {
	return &Node{
		Kind:  KindPair,
		Left:  left,
		Right: right,
	}
}

// Some wraps a present optional value.
func Some(n *Node) *Node {
	if n == nil {
		n = Unit()
	}
	return &Node{Kind: KindOptional, Content: n}
}

// None returns an absent optional value.
func None() *Node {
	return &Node{Kind: KindOptional}
}

// Ok wraps the success arm of a result.
func Ok(n *Node) *Node {
	return &Node{Kind: KindResult, Content: n}
}

// Err wraps the failure arm of a result. The failure renders like any
// other node, which lets error values act as fallback markup.
func Err(n *Node) *Node {
	return &Node{Kind: KindResult, Content: n, Failed: true}
}

// Int creates a number node from a signed integer.
func Int(v int64) *Node {
	return &Node{Kind: KindNumber, Text: strconv.FormatInt(v, 10)}
}

// Uint creates a number node from an unsigned integer.
func Uint(v uint64) *Node {
	return &Node{Kind: KindNumber, Text: strconv.FormatUint(v, 10)}
}

// Float creates a number node from a float, without exponent notation.
func Float(v float64) *Node {
	switch {
	case math.IsNaN(v):
		return &Node{Kind: KindNumber, Text: "NaN"}
	case math.IsInf(v, 1):
		return &Node{Kind: KindNumber, Text: "inf"}
	case math.IsInf(v, -1):
		return &Node{Kind: KindNumber, Text: "-inf"}
	}
	return &Node{Kind: KindNumber, Text: strconv.FormatFloat(v, 'f', -1, 64)}
}

// Float32 creates a number node from a float32 using the shortest digits
// that round trip at 32 bits, so 0.1 renders as 0.1.
func Float32(v float32) *Node {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Float(f)
	}
	return &Node{Kind: KindNumber, Text: strconv.FormatFloat(f, 'f', -1, 32)}
}

// Comp wraps a host component.
func Comp(c Component) *Node {
	if c == nil {
		return Unit()
	}
	return &Node{Kind: KindComponent, Comp: c}
}

// Reduce folds children into a single node: no children is Unit, one child
// is returned as is, and more children become left nested pairs
// ((c0, c1), c2)... Render order equals slice order in every case.
func Reduce(children []*Node) *Node {
	switch len(children) {
	case 0:
		return Unit()
	case 1:
		return children[0]
	}
	acc := Pair(children[0], children[1])
	for _, c := range children[2:] {
		acc = Pair(acc, c)
	}
	return acc
}

// From converts an arbitrary Go value into a node:
//
//   - nil becomes Unit
//   - *Node and Component pass through, nil pointers of either become Unit
//   - strings become Text, fmt.Stringer values become Text of String()
//   - integers and floats become Number
//   - bool becomes Text("true") or Text("false")
//   - error becomes Err(Text(err.Error()))
//   - nil pointers become None, other pointers Some(From(*p))
//   - slices and arrays become a Sequence of converted elements
func From(v any) *Node {
	switch t := v.(type) {
	case nil:
		return Unit()
	case *Node:
		if t == nil {
			return Unit()
		}
		return t
	case []*Node:
		return Seq(t...)
	case Component:
		if isNil(t) {
			return Unit()
		}
		return Comp(t)
	case string:
		return Text(t)
	case bool:
		return Text(strconv.FormatBool(t))
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Uint(uint64(t))
	case uint8:
		return Uint(uint64(t))
	case uint16:
		return Uint(uint64(t))
	case uint32:
		return Uint(uint64(t))
	case uint64:
		return Uint(t)
	case float32:
		return Float32(t)
	case float64:
		return Float(t)
	case error:
		return Err(Text(t.Error()))
	case fmt.Stringer:
		return Text(t.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return None()
		}
		return Some(From(rv.Elem().Interface()))
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Unit()
		}
		children := make([]*Node, rv.Len())
		for i := range children {
			children[i] = From(rv.Index(i).Interface())
		}
		return Seq(children...)
	default:
		return Text(fmt.Sprint(v))
	}
}
