package rsx

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/rsx/internal/compiler"
	"github.com/vango-dev/rsx/internal/errors"
	"github.com/vango-dev/rsx/internal/logging"
	"github.com/vango-dev/rsx/internal/metrics"
	"github.com/vango-dev/rsx/internal/parser"
	"github.com/vango-dev/rsx/pkg/node"
	"github.com/vango-dev/rsx/pkg/render"
)

const tracerName = "github.com/vango-dev/rsx"

// ErrTainted is returned when a template has a closing tag that does not
// match its opening tag and tainted templates are not allowed.
var ErrTainted = stderrors.New("rsx: template has mismatched closing tags")

type options struct {
	registry     *Registry
	logger       *slog.Logger
	tracer       trace.Tracer
	metrics      *metrics.Metrics
	renderer     render.RendererConfig
	allowTainted bool
}

// Option configures compilation.
type Option func(*options)

// WithRegistry sets the registry custom elements resolve against.
// By default only the built-in components are available.
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithLogger sets the logger for diagnostics and render failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithTracer sets the tracer used for compile and render spans.
// Default: the global OpenTelemetry tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithMetrics records compile and render metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithRenderer configures the renderer used by Render.
func WithRenderer(config render.RendererConfig) Option {
	return func(o *options) {
		o.renderer = config
	}
}

// AllowTainted accepts templates whose closing tags do not match. The
// tree is built from the opening tags and R001 stays a warning.
func AllowTainted() Option {
	return func(o *options) {
		o.allowTainted = true
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = NewRegistry()
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	return o
}

// Template is a compiled template. It is immutable and safe for
// concurrent use: every render builds a fresh tree from its own scope.
type Template struct {
	name     string
	eval     compiler.Eval
	diags    *errors.List
	renderer *render.Renderer
	tracer   trace.Tracer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Compile parses and compiles a template. Warnings are logged and kept
// on the template. Compile errors are returned as an *errors.List that
// holds every diagnostic, warnings included.
func Compile(name string, src []byte, opts ...Option) (*Template, error) {
	return CompileContext(context.Background(), name, src, opts...)
}

// CompileContext is Compile with a parent context for tracing.
func CompileContext(ctx context.Context, name string, src []byte, opts ...Option) (*Template, error) {
	o := newOptions(opts)
	_, span := o.tracer.Start(ctx, "rsx.compile",
		trace.WithAttributes(attribute.String("rsx.template", name)))
	defer span.End()

	start := time.Now()
	eval, diags, err := compile(name, src, o)
	o.metrics.ObserveCompile(time.Since(start), diagnosticCodes(diags), err)
	logDiagnostics(o.logger, name, diags)
	span.SetAttributes(attribute.Int("rsx.diagnostics", diags.Len()))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return &Template{
		name:     name,
		eval:     eval,
		diags:    diags,
		renderer: render.NewRenderer(o.renderer),
		tracer:   o.tracer,
		metrics:  o.metrics,
		logger:   o.logger,
	}, nil
}

// Check compiles a template only to collect its diagnostics. Tainted
// templates are reported through their R001 warnings, not as failures.
func Check(name string, src []byte, opts ...Option) *errors.List {
	o := newOptions(append(opts, AllowTainted()))
	_, diags, err := compile(name, src, o)
	if err != nil && !diags.HasErrors() {
		diags.Add(errors.FromError(err, "R104"))
	}
	return diags
}

// compile always returns a non-nil diagnostics list.
func compile(name string, src []byte, o *options) (compiler.Eval, *errors.List, error) {
	res, err := parser.Parse(name, src)
	if err != nil {
		var list *errors.List
		if errors.As(err, &list) {
			return nil, list, list
		}
		return nil, &errors.List{}, err
	}

	compiler.Analyze(res)
	if res.Tainted() && !o.allowTainted {
		return nil, res.Diagnostics, fmt.Errorf("compile %s: %w", name, ErrTainted)
	}

	eval, err := compiler.Interpret(res, o.registry)
	if err != nil {
		var re *errors.RsxError
		if errors.As(err, &re) {
			res.Diagnostics.Add(re)
			return nil, res.Diagnostics, res.Diagnostics
		}
		return nil, res.Diagnostics, err
	}
	return eval, res.Diagnostics, nil
}

func diagnosticCodes(diags *errors.List) []string {
	items := diags.Items()
	out := make([]string, len(items))
	for i, d := range items {
		out[i] = d.Code
	}
	return out
}

func logDiagnostics(logger *slog.Logger, name string, diags *errors.List) {
	for _, d := range diags.Items() {
		attrs := []any{"template", name, "code", d.Code}
		if d.Location != nil {
			attrs = append(attrs, "line", d.Location.Line, "column", d.Location.Column)
		}
		if d.IsWarning() {
			logger.Warn(d.Message, attrs...)
		} else {
			logger.Error(d.Message, attrs...)
		}
	}
}

// Name returns the name the template was compiled under.
func (t *Template) Name() string { return t.name }

// Diagnostics returns the warnings reported while compiling.
func (t *Template) Diagnostics() []*errors.RsxError {
	return t.diags.Items()
}

// Build evaluates the template against scope and returns the tree.
func (t *Template) Build(scope Scope) (*node.Node, error) {
	return t.eval(scope)
}

// Render evaluates the template against scope and writes the markup to
// w. The first write failure aborts rendering.
func (t *Template) Render(ctx context.Context, w io.Writer, scope Scope) error {
	return t.observe(ctx, func(ctx context.Context) error {
		return t.render(ctx, w, scope, t.renderer.RenderToWriter)
	})
}

// Stream is like Render but flushes w after each top-level section when w
// is an http.Flusher. Nothing is written when evaluation fails.
func (t *Template) Stream(ctx context.Context, w io.Writer, scope Scope) error {
	return t.observe(ctx, func(ctx context.Context) error {
		return t.render(ctx, w, scope, t.renderer.Stream)
	})
}

func (t *Template) observe(ctx context.Context, fn func(context.Context) error) error {
	ctx, span := t.tracer.Start(ctx, "rsx.render",
		trace.WithAttributes(attribute.String("rsx.template", t.name)))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	t.metrics.ObserveRender(t.name, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.logger.Error("render failed", "template", t.name, "error", err)
	}
	return err
}

func (t *Template) render(ctx context.Context, w io.Writer, scope Scope, write func(io.Writer, *node.Node) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := t.eval(scope)
	if err != nil {
		return err
	}
	if err := write(w, n); err != nil {
		return fmt.Errorf("render %s: %w", t.name, err)
	}
	return nil
}

// RenderToString renders the template to a string.
func (t *Template) RenderToString(ctx context.Context, scope Scope) (string, error) {
	var buf bytes.Buffer
	if err := t.Render(ctx, &buf, scope); err != nil {
		return "", err
	}
	return buf.String(), nil
}
