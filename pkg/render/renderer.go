package render

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/vango-dev/rsx/pkg/node"
)

// DefaultMaxDepth bounds tree depth so that a component rendering itself
// fails instead of exhausting the stack.
const DefaultMaxDepth = 1024

// ErrMaxDepth is returned when a tree is nested deeper than MaxDepth.
var ErrMaxDepth = errors.New("render: maximum tree depth exceeded")

// RendererConfig configures the renderer.
type RendererConfig struct {
	// MaxDepth is the deepest nesting the renderer accepts.
	// Defaults to DefaultMaxDepth if not specified.
	MaxDepth int

	// BufferSize is the size of the write buffer placed in front of the
	// destination. Zero uses the bufio default.
	BufferSize int
}

// Renderer renders node trees to markup.
//
// A Renderer holds no per-render state and may be shared between
// goroutines; each call owns its writer for the duration of the call.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.MaxDepth <= 0 {
		config.MaxDepth = DefaultMaxDepth
	}
	return &Renderer{config: config}
}

// RenderToString renders a tree to a string.
func (r *Renderer) RenderToString(n *node.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a tree to the given writer. The first write
// failure aborts the traversal; buffered output is only flushed on success.
func (r *Renderer) RenderToWriter(w io.Writer, n *node.Node) error {
	bw := r.newBuffer(w)
	if err := r.renderNode(bw, n, 0); err != nil {
		return err
	}
	return bw.Flush()
}

func (r *Renderer) newBuffer(w io.Writer) *bufio.Writer {
	if r.config.BufferSize > 0 {
		return bufio.NewWriterSize(w, r.config.BufferSize)
	}
	return bufio.NewWriter(w)
}

// renderNode dispatches rendering based on node kind.
func (r *Renderer) renderNode(w *bufio.Writer, n *node.Node, depth int) error {
	if n == nil {
		return nil
	}
	if depth > r.config.MaxDepth {
		return ErrMaxDepth
	}

	switch n.Kind {
	case node.KindUnit:
		return nil
	case node.KindText:
		return EscapeHTML(w, n.Text)
	case node.KindRaw, node.KindNumber:
		_, err := w.WriteString(n.Text)
		return err
	case node.KindElement:
		return r.renderElement(w, n, depth)
	case node.KindFragment, node.KindSequence:
		return r.renderChildren(w, n.Children, depth)
	case node.KindPair:
		return r.renderChain(w, n, depth)
	case node.KindOptional, node.KindResult:
		return r.renderNode(w, n.Content, depth+1)
	case node.KindComponent:
		if n.Comp == nil {
			return nil
		}
		return r.renderNode(w, n.Comp.Render(), depth+1)
	default:
		return fmt.Errorf("unknown node kind: %d", n.Kind)
	}
}

// renderChain renders a pair and the pairs nested in its left side as
// one flat list. Reduce nests children to the left, so the length of a
// chain grows with the number of children and must not count as depth.
func (r *Renderer) renderChain(w *bufio.Writer, n *node.Node, depth int) error {
	for _, link := range chain(n) {
		if err := r.renderNode(w, link, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// chain flattens the left spine of a pair into its links in render
// order. A node that is not a pair is its own single link.
func chain(n *node.Node) []*node.Node {
	var rights []*node.Node
	for n != nil && n.Kind == node.KindPair {
		rights = append(rights, n.Right)
		n = n.Left
	}
	links := make([]*node.Node, 0, len(rights)+1)
	links = append(links, n)
	for i := len(rights) - 1; i >= 0; i-- {
		links = append(links, rights[i])
	}
	return links
}

// renderChildren renders children strictly left to right.
func (r *Renderer) renderChildren(w *bufio.Writer, children []*node.Node, depth int) error {
	for _, child := range children {
		if err := r.renderNode(w, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// renderElement renders a simple element with its attributes and contents.
// Self-closing elements never render contents.
func (r *Renderer) renderElement(w *bufio.Writer, n *node.Node, depth int) error {
	if err := w.WriteByte('<'); err != nil {
		return err
	}
	if _, err := w.WriteString(n.Tag); err != nil {
		return err
	}
	if err := renderAttributes(w, n.Attrs); err != nil {
		return err
	}

	if n.SelfClosing {
		_, err := w.WriteString("/>")
		return err
	}

	if err := w.WriteByte('>'); err != nil {
		return err
	}
	if err := r.renderNode(w, n.Content, depth+1); err != nil {
		return err
	}
	if _, err := w.WriteString("</"); err != nil {
		return err
	}
	if _, err := w.WriteString(n.Tag); err != nil {
		return err
	}
	return w.WriteByte('>')
}

// renderAttributes writes ` key="value"` pairs. Keys are sorted so the
// order is stable between renders.
func renderAttributes(w *bufio.Writer, attrs node.Attrs) error {
	if len(attrs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := w.WriteByte(' '); err != nil {
			return err
		}
		if _, err := w.WriteString(key); err != nil {
			return err
		}
		if _, err := w.WriteString(`="`); err != nil {
			return err
		}
		if err := EscapeHTML(w, attrs[key]); err != nil {
			return err
		}
		if err := w.WriteByte('"'); err != nil {
			return err
		}
	}
	return nil
}

// RenderToString renders a tree with the default configuration.
func RenderToString(n *node.Node) (string, error) {
	return NewRenderer(RendererConfig{}).RenderToString(n)
}

// RenderToWriter renders a tree to w with the default configuration.
func RenderToWriter(w io.Writer, n *node.Node) error {
	return NewRenderer(RendererConfig{}).RenderToWriter(w, n)
}
