// Package node provides the render tree produced by the rsx compiler.
//
// A Node is a closed sum type discriminated by Kind. Every value a template
// can produce reduces to one of the kinds below:
//
//   - Unit: renders nothing
//   - Text: escaped text
//   - Raw: verbatim markup (trusted content only)
//   - Element: a simple tag with string attributes and contents
//   - Fragment: children without a wrapper element
//   - Sequence and Pair: ordered composition
//   - Optional: Some(x) or None
//   - Result: Ok(x) or Err(x), both sides renderable
//   - Number: canonical base-10 text
//   - Component: a host value implementing Component
//
// # Building Trees
//
// Trees are usually built by the compiler, but the constructors are public
// so generated code and components can compose them directly:
//
//	Element("ul", nil, false, Reduce([]*Node{
//	    Element("li", nil, false, Text("1")),
//	    Element("li", nil, false, Text("2")),
//	}))
//
// Reduce folds a children list into the canonical left nested pairing
// ((c0, c1), c2)... so that render order always equals document order.
//
// Nodes own their children exclusively; a tree has no back references.
package node
