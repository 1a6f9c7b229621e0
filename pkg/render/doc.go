// Package render writes node trees as escaped markup.
//
// The render package is the runtime half of rsx. It walks a node.Node tree
// depth first, exactly once, and writes its textual form to an io.Writer:
//
//   - Text and attribute values are escaped (> < " & ')
//   - Raw nodes and numbers are written verbatim
//   - Fragments, sequences and pairs render their members left to right
//   - Optional and Result nodes render their payload, if any
//   - Elements render as <tag attr="v"/> or <tag attr="v">...</tag>
//
// # Basic Usage
//
// To render a tree to a string:
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(tree)
//
// To stream to a writer:
//
//	err := renderer.RenderToWriter(w, tree)
//
// The first write error aborts the traversal and is returned unchanged.
// Template content never causes a render failure; escaping is total.
//
// # Streaming
//
// Stream flushes the writer after each top-level section of the tree
// when it is an http.Flusher:
//
//	err := renderer.Stream(w, tree)
//
// # Security
//
// All text content is escaped by default. Raw markup can be inserted using
// KindRaw nodes, but should only be used with trusted content.
package render
