package render

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vango-dev/rsx/pkg/node"
)

func TestStream(t *testing.T) {
	w := httptest.NewRecorder()

	tree := node.Fragment(
		node.Doctype(),
		node.Element("html", nil, false, node.Element("body", nil, true, nil)),
	)
	if err := NewRenderer(RendererConfig{}).Stream(w, tree); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "<!DOCTYPE html><html><body/></html>"
	if got := w.Body.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !w.Flushed {
		t.Error("recorder should have been flushed")
	}
}

func TestStreamFlushesPerSection(t *testing.T) {
	var buf bytes.Buffer
	fw := &countingFlushWriter{Writer: &buf}

	tree := node.Reduce([]*node.Node{node.Text("a"), node.Text("b"), node.Text("c")})
	if err := NewRenderer(RendererConfig{}).Stream(fw, tree); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if buf.String() != "abc" {
		t.Errorf("got %q, want %q", buf.String(), "abc")
	}
	if fw.Flushes != 3 {
		t.Errorf("Flushes = %d, want 3", fw.Flushes)
	}
}

func TestStreamFragmentOfChain(t *testing.T) {
	var buf bytes.Buffer
	fw := &countingFlushWriter{Writer: &buf}

	tree := node.Fragment(node.Reduce([]*node.Node{node.Text("a"), node.Text("b")}), node.Text("c"))
	if err := NewRenderer(RendererConfig{}).Stream(fw, tree); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "abc" || fw.Flushes != 3 {
		t.Errorf("got %q with %d flushes, want %q with 3", buf.String(), fw.Flushes, "abc")
	}
}

func TestStreamWithoutFlusher(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRenderer(RendererConfig{}).Stream(&buf, node.Text("<x>")); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "&lt;x&gt;" {
		t.Errorf("got %q", buf.String())
	}
}

func TestStreamLongChain(t *testing.T) {
	children := make([]*node.Node, 2000)
	for i := range children {
		children[i] = node.Text("x")
	}
	var buf bytes.Buffer
	if err := NewRenderer(RendererConfig{MaxDepth: 8}).Stream(&buf, node.Reduce(children)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != strings.Repeat("x", 2000) {
		t.Errorf("got %d bytes", buf.Len())
	}
}

func TestSectionsOfLeaf(t *testing.T) {
	if got := sections(nil); got != nil {
		t.Errorf("sections(nil) = %v, want nil", got)
	}
	leaf := node.Text("x")
	if got := sections(leaf); len(got) != 1 || got[0] != leaf {
		t.Errorf("sections(leaf) = %v", got)
	}
}
