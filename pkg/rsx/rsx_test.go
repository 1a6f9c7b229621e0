package rsx

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/rsx/internal/errors"
	"github.com/vango-dev/rsx/internal/logging"
	"github.com/vango-dev/rsx/internal/metrics"
	"github.com/vango-dev/rsx/pkg/node"
)

type card struct {
	Title    string
	Count    int
	Children *node.Node `prop:"children"`
}

func (c *card) Render() *node.Node {
	return node.Element("section", node.Attrs{"data-count": strconv.Itoa(c.Count)}, false,
		node.Seq(node.Element("h2", nil, false, node.Text(c.Title)), node.From(c.Children)))
}

func testRegistry() *Registry {
	reg := NewRegistry()
	reg.Register("Card", Struct[card]("Card"))
	reg.Register("ui.Badge", Func(func(p Props) (*node.Node, error) {
		label, _ := p["label"].(string)
		return node.Element("span", node.Attrs{"class": "badge"}, false, node.Text(label)), nil
	}))
	return reg
}

func mustCompile(t *testing.T, src string, opts ...Option) *Template {
	t.Helper()
	tpl, err := Compile("test.rsx", []byte(src), opts...)
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", src, err)
	}
	return tpl
}

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		scope Scope
		want  string
	}{
		{
			name: "list of literals",
			src:  `<ul><li>{"1"}</li><li>{"2"}</li></ul>`,
			want: "<ul><li>1</li><li>2</li></ul>",
		},
		{
			name: "dashed attribute",
			src:  `<div data-test-id={"x"} />`,
			want: `<div data-test-id="x"/>`,
		},
		{
			name:  "punned attribute",
			src:   `<a href>home</a>`,
			scope: Scope{"href": "/"},
			want:  `<a href="/">home</a>`,
		},
		{
			name: "quoted attribute",
			src:  `<input type="text" />`,
			want: `<input type="text"/>`,
		},
		{
			name: "escaped expression",
			src:  `<p>{"<b>&"}</p>`,
			want: "<p>&lt;b&gt;&amp;</p>",
		},
		{
			name: "raw expression",
			src:  `<p>{raw("<b>x</b>")}</p>`,
			want: "<p><b>x</b></p>",
		},
		{
			name: "arithmetic",
			src:  `<p>{1 + 2}</p>`,
			want: "<p>3</p>",
		},
		{
			name:  "slice expands in order",
			src:   `<ul>{items}</ul>`,
			scope: Scope{"items": []string{"a", "b"}},
			want:  "<ul>ab</ul>",
		},
		{
			name: "named fragment",
			src:  `<Fragment><i>a</i><b>b</b></Fragment>`,
			want: "<i>a</i><b>b</b>",
		},
		{
			name: "doctype",
			src:  `<HTML5Doctype /><html></html>`,
			want: "<!DOCTYPE html><html></html>",
		},
		{
			name: "struct component",
			src:  `<Card title="Hi" count="3">body</Card>`,
			want: `<section data-count="3"><h2>Hi</h2>body</section>`,
		},
		{
			name: "struct component without children",
			src:  `<Card title={name} count={2} />`,
			scope: Scope{
				"name": "Solo",
			},
			want: `<section data-count="2"><h2>Solo</h2></section>`,
		},
		{
			name: "dotted component",
			src:  `<p><ui.Badge label="new" /></p>`,
			want: `<p><span class="badge">new</span></p>`,
		},
	}

	reg := testRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := mustCompile(t, tt.src, WithRegistry(reg))
			got, err := tpl.RenderToString(context.Background(), tt.scope)
			if err != nil {
				t.Fatalf("RenderToString() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("RenderToString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{"unclosed element", "<div>", "R100"},
		{"unterminated block", "<p>{a</p>", "R102"},
		{"invalid expression", "<p>{1 +}</p>", "R104"},
		{"unknown component", "<Missing />", "R105"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile("bad.rsx", []byte(tt.src))
			if err == nil {
				t.Fatal("Compile() succeeded, want error")
			}
			var list *errors.List
			if !errors.As(err, &list) {
				t.Fatalf("error %T is not an *errors.List", err)
			}
			var re *errors.RsxError
			if !errors.As(list.Err(), &re) || re.Code != tt.code {
				t.Errorf("first error = %v, want %s", list.Err(), tt.code)
			}
			if re.Location == nil || re.Location.File != "bad.rsx" {
				t.Errorf("Location = %+v", re.Location)
			}
		})
	}
}

func TestCompileWarnings(t *testing.T) {
	tpl := mustCompile(t, `<div class="a" class="b" />`)
	diags := tpl.Diagnostics()
	if len(diags) != 1 || diags[0].Code != "R002" {
		t.Fatalf("Diagnostics() = %v, want one R002", diags)
	}
	got, err := tpl.RenderToString(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != `<div class="a"/>` {
		t.Errorf("got %q, first definition should win", got)
	}
}

func TestTainted(t *testing.T) {
	src := []byte("<div>a</span>")

	if _, err := Compile("t.rsx", src); !stderrors.Is(err, ErrTainted) {
		t.Fatalf("Compile() error = %v, want ErrTainted", err)
	}

	tpl, err := Compile("t.rsx", src, AllowTainted())
	if err != nil {
		t.Fatalf("Compile(AllowTainted) error: %v", err)
	}
	if d := tpl.Diagnostics(); len(d) != 1 || d[0].Code != "R001" {
		t.Errorf("Diagnostics() = %v, want R001", d)
	}
	got, _ := tpl.RenderToString(context.Background(), nil)
	if got != "<div>a</div>" {
		t.Errorf("got %q", got)
	}
}

func TestRenderManyChildren(t *testing.T) {
	src := "<ul>" + strings.Repeat("<li/>", 2000) + "</ul>"
	tpl := mustCompile(t, src)

	got, err := tpl.RenderToString(context.Background(), nil)
	if err != nil {
		t.Fatalf("RenderToString error: %v", err)
	}
	if got != src {
		t.Errorf("got %d bytes, want %d", len(got), len(src))
	}
}

func TestStream(t *testing.T) {
	tpl := mustCompile(t, `<><h1>{title}</h1><p>{body}</p></>`)

	var buf bytes.Buffer
	if err := tpl.Stream(context.Background(), &buf, Scope{"title": "T", "body": "<b>"}); err != nil {
		t.Fatalf("Stream error: %v", err)
	}
	if want := "<h1>T</h1><p>&lt;b&gt;</p>"; buf.String() != want {
		t.Errorf("Stream = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	failing := mustCompile(t, `<><p>ok</p><a href /></>`)
	if err := failing.Stream(context.Background(), &buf, nil); err == nil {
		t.Fatal("expected an evaluation error")
	}
	if buf.Len() != 0 {
		t.Errorf("failed evaluation wrote %q", buf.String())
	}
}

func TestRenderErrors(t *testing.T) {
	reg := testRegistry()

	t.Run("undefined punned variable", func(t *testing.T) {
		tpl := mustCompile(t, `<a href />`)
		_, err := tpl.RenderToString(context.Background(), nil)
		var re *errors.RsxError
		if !errors.As(err, &re) || re.Code != "R110" {
			t.Errorf("error = %v, want R110", err)
		}
	})

	t.Run("unknown struct prop", func(t *testing.T) {
		tpl := mustCompile(t, `<Card title="x" colour="red" />`, WithRegistry(reg))
		_, err := tpl.RenderToString(context.Background(), nil)
		if err == nil {
			t.Fatal("expected an error")
		}
		msg := err.Error()
		if !strings.Contains(msg, "R111") || !strings.Contains(msg, `R112: Unknown prop "colour" for component <Card>`) {
			t.Errorf("error = %q", msg)
		}
	})

	t.Run("writer failure aborts", func(t *testing.T) {
		tpl := mustCompile(t, `<p>hello</p>`)
		boom := stderrors.New("disk full")
		err := tpl.Render(context.Background(), failingWriter{boom}, nil)
		if !stderrors.Is(err, boom) {
			t.Errorf("error = %v, want wrapped %v", err, boom)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		tpl := mustCompile(t, `<p>hello</p>`)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var buf bytes.Buffer
		if err := tpl.Render(ctx, &buf, nil); !stderrors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if buf.Len() != 0 {
			t.Errorf("wrote %q after cancellation", buf.String())
		}
	})
}

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestRegisterTemplate(t *testing.T) {
	reg := NewRegistry()
	layout := mustCompile(t,
		`<html><head><title>{title}</title></head><body>{children}</body></html>`,
		WithRegistry(reg))
	reg.RegisterTemplate("Layout", layout)

	page := mustCompile(t, `<HTML5Doctype /><Layout title={title}><h1>{heading}</h1></Layout>`, WithRegistry(reg))
	got, err := page.RenderToString(context.Background(), Scope{"title": "Home", "heading": "Welcome"})
	if err != nil {
		t.Fatal(err)
	}
	want := "<!DOCTYPE html><html><head><title>Home</title></head><body><h1>Welcome</h1></body></html>"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestConcurrentRender(t *testing.T) {
	tpl := mustCompile(t, `<p id={id}>{name}</p>`)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := strconv.Itoa(i)
			got, err := tpl.RenderToString(context.Background(), Scope{"id": id, "name": "n" + id})
			if err != nil {
				errs <- err
				return
			}
			if want := fmt.Sprintf(`<p id="%d">n%d</p>`, i, i); got != want {
				errs <- fmt.Errorf("got %q, want %q", got, want)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

type recordingTracer struct {
	noop.Tracer
	mu    sync.Mutex
	spans []string
}

func (r *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	r.mu.Lock()
	r.spans = append(r.spans, name)
	r.mu.Unlock()
	return r.Tracer.Start(ctx, name, opts...)
}

func TestObservability(t *testing.T) {
	var logs bytes.Buffer
	tracer := &recordingTracer{}
	reg := prometheus.NewRegistry()

	tpl := mustCompile(t, `<div id="a" id="b">{x}</div>`,
		WithLogger(logging.NewWithWriter(&logs, slog.LevelDebug)),
		WithTracer(tracer),
		WithMetrics(metrics.New(metrics.WithRegistry(reg))),
	)
	if _, err := tpl.RenderToString(context.Background(), Scope{"x": 1}); err != nil {
		t.Fatal(err)
	}

	if got := strings.Join(tracer.spans, ","); got != "rsx.compile,rsx.render" {
		t.Errorf("spans = %s", got)
	}
	for _, want := range []string{"level=WARN", "template=test.rsx", "code=R002", "line=1"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("logs missing %q:\n%s", want, logs.String())
		}
	}
	n, err := testutil.GatherAndCount(reg, "rsx_renders_total", "rsx_diagnostics_total", "rsx_compiles_total")
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("gathered %d series, want 3", n)
	}
}

func TestCheck(t *testing.T) {
	diags := Check("c.rsx", []byte(`<div></span><Fragment key="x">a</Fragment>`))
	if diags.HasErrors() {
		t.Fatalf("HasErrors() = true: %v", diags)
	}
	var codes []string
	for _, d := range diags.Items() {
		codes = append(codes, d.Code)
	}
	if got := strings.Join(codes, ","); got != "R001,R005" {
		t.Errorf("codes = %s, want R001,R005", got)
	}

	if !Check("c.rsx", []byte(`<p>{1 +}</p>`)).HasErrors() {
		t.Error("invalid expression should be an error")
	}
}

func TestGenerate(t *testing.T) {
	out, diags, err := Generate("title.rsx", []byte(`<h1 class="t">{title}</h1>`), GenOptions{
		Package: "views",
		Func:    "Title",
		Params:  "title string",
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if diags.Len() != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	for _, want := range []string{
		"// Code generated by rsx gen from title.rsx. DO NOT EDIT.",
		"package views",
		"func Title(title string) *node.Node {",
	} {
		if !strings.Contains(string(out), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, _, err := Generate("t.rsx", []byte("<a></b>"), GenOptions{Func: "F"}); !stderrors.Is(err, ErrTainted) {
		t.Errorf("tainted error = %v", err)
	}

	_, diags, err = Generate("bad.rsx", []byte("<p>{a +}</p>"), GenOptions{Func: "F"})
	if err == nil || !diags.HasErrors() {
		t.Errorf("Generate() = %v, %v; want R104", diags, err)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	if got := strings.Join(reg.Names(), ","); got != "Fragment,HTML5Doctype" {
		t.Errorf("Names() = %s", got)
	}
	if _, ok := reg.Lookup("Card"); ok {
		t.Error("Lookup(Card) found an unregistered component")
	}

	defer func() {
		if recover() == nil {
			t.Error("Register(nil) should panic")
		}
	}()
	reg.Register("Nil", nil)
}
