package render

import (
	"io"
	"net/http"

	"github.com/vango-dev/rsx/pkg/node"
)

// Stream renders a tree to w like RenderToWriter, but flushes after every
// top-level section when w is an http.Flusher, so clients receive the
// start of a long page before the rest is rendered. A section is a member
// of a root Fragment or Sequence or a link of a pair chain at the root.
func (r *Renderer) Stream(w io.Writer, n *node.Node) error {
	flusher, _ := w.(http.Flusher)
	bw := r.newBuffer(w)
	for _, section := range sections(n) {
		if err := r.renderNode(bw, section, 0); err != nil {
			return err
		}
		if err := bw.Flush(); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
	return nil
}

// sections splits the root of a tree into independently flushable parts
// without changing render order.
func sections(n *node.Node) []*node.Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case node.KindFragment, node.KindSequence:
		var out []*node.Node
		for _, c := range n.Children {
			out = append(out, chain(c)...)
		}
		return out
	default:
		return chain(n)
	}
}
