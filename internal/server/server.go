package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/rsx/internal/cache"
	"github.com/vango-dev/rsx/internal/errors"
	"github.com/vango-dev/rsx/internal/logging"
	"github.com/vango-dev/rsx/internal/metrics"
	"github.com/vango-dev/rsx/pkg/node"
	"github.com/vango-dev/rsx/pkg/render"
	"github.com/vango-dev/rsx/pkg/rsx"
)

// errNotFound is returned when a named template has no file.
var errNotFound = stderrors.New("template not found")

// Server previews templates over HTTP and WebSocket.
type Server struct {
	config         *Config
	registry       *rsx.Registry
	cache          cache.Cache
	metrics        *metrics.Metrics
	metricsHandler http.Handler
	logger         *slog.Logger
	upgrader       websocket.Upgrader
	router         chi.Router
	httpServer     *http.Server

	mu        sync.Mutex
	templates map[string]compiled
}

// compiled is a template together with the hash of the source it was
// compiled from, so edits on disk are picked up.
type compiled struct {
	sum [sha256.Size]byte
	tpl *rsx.Template
}

// Option configures a Server.
type Option func(*Server)

// WithRegistry sets the components templates may use.
func WithRegistry(r *rsx.Registry) Option {
	return func(s *Server) {
		s.registry = r
	}
}

// WithCache sets the rendered output cache. Nil disables caching.
func WithCache(c cache.Cache) Option {
	return func(s *Server) {
		s.cache = c
	}
}

// WithMetrics records metrics and serves them with handler. A nil
// handler serves the default Prometheus registry.
func WithMetrics(m *metrics.Metrics, handler http.Handler) Option {
	return func(s *Server) {
		s.metrics = m
		s.metricsHandler = handler
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// New creates a server. Unset config fields take their defaults.
func New(config *Config, opts ...Option) *Server {
	config = config.withDefaults()
	s := &Server{
		config:    config,
		logger:    logging.NewNop(),
		templates: make(map[string]compiled),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = rsx.NewRegistry()
	}
	if s.metrics != nil && s.metricsHandler == nil {
		s.metricsHandler = promhttp.Handler()
	}
	s.logger = s.logger.With("component", "server")
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/render/*", s.handleRenderGet)
	r.Post("/render", s.handleRenderPost)
	r.Get("/ws", s.handleWebSocket)
	r.Delete("/cache", s.handlePurge)

	if s.metricsHandler != nil && s.config.MetricsPath != "-" {
		r.Handle(s.config.MetricsPath, s.metricsHandler)
	}
	return r
}

// Handler returns the server's routes for mounting in another router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown stops the HTTP server and closes the cache.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn("cache close failed", "error", err)
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// templatePath maps a template name onto a file below the templates
// directory. Names cannot escape it.
func (s *Server) templatePath(name string) (string, error) {
	clean := path.Clean("/" + strings.TrimSuffix(name, ".rsx"))
	if clean == "/" {
		return "", fmt.Errorf("%w: empty name", errNotFound)
	}
	return filepath.Join(s.config.TemplatesDir, filepath.FromSlash(clean[1:])+".rsx"), nil
}

// template returns the compiled template for name, recompiling it when
// the file changed since the last request.
func (s *Server) template(name string) (*rsx.Template, []byte, error) {
	file, err := s.templatePath(name)
	if err != nil {
		return nil, nil, err
	}
	src, err := os.ReadFile(file)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", errNotFound, name)
		}
		return nil, nil, err
	}
	sum := sha256.Sum256(src)

	s.mu.Lock()
	c, ok := s.templates[name]
	s.mu.Unlock()
	if ok && c.sum == sum {
		return c.tpl, src, nil
	}

	opts := []rsx.Option{
		rsx.WithRegistry(s.registry),
		rsx.WithLogger(s.logger),
		rsx.WithMetrics(s.metrics),
	}
	if s.config.AllowTainted {
		opts = append(opts, rsx.AllowTainted())
	}
	tpl, err := rsx.Compile(name, src, opts...)
	if err != nil {
		return nil, src, err
	}

	s.mu.Lock()
	s.templates[name] = compiled{sum: sum, tpl: tpl}
	s.mu.Unlock()
	return tpl, src, nil
}

// Render renders the named template with scope, consulting the cache
// first.
func (s *Server) Render(ctx context.Context, name string, scope rsx.Scope) ([]byte, error) {
	tpl, src, err := s.template(name)
	if err != nil {
		return nil, err
	}

	var key string
	if s.cache != nil {
		key, err = cache.Key(append([]byte(name+"\x00"), src...), scope)
		if err != nil {
			return nil, err
		}
		if out, ok, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Warn("cache lookup failed", "template", name, "error", err)
		} else {
			s.metrics.RecordCache(ok)
			if ok {
				return out, nil
			}
		}
	}

	var buf bytes.Buffer
	if s.config.Doctype {
		if err := render.RenderToWriter(&buf, node.Doctype()); err != nil {
			return nil, err
		}
	}
	if err := tpl.Render(ctx, &buf, scope); err != nil {
		return nil, err
	}
	out := buf.Bytes()

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out); err != nil {
			s.logger.Warn("cache store failed", "template", name, "error", err)
		}
	}
	return out, nil
}

// response is the JSON shape of errors and live render replies.
type response struct {
	HTML        string            `json:"html,omitempty"`
	Diagnostics []json.RawMessage `json:"diagnostics,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// request is the JSON body of POST /render and of WebSocket messages.
type request struct {
	Template string    `json:"template"`
	Scope    rsx.Scope `json:"scope"`
}

// errorResponse maps a render failure onto a status and a body.
func errorResponse(err error) (int, response) {
	var list *errors.List
	if errors.As(err, &list) {
		resp := response{Error: "compile failed"}
		for _, d := range list.Items() {
			resp.Diagnostics = append(resp.Diagnostics, json.RawMessage(d.FormatJSON()))
		}
		return http.StatusUnprocessableEntity, resp
	}
	if stderrors.Is(err, rsx.ErrTainted) {
		return http.StatusUnprocessableEntity, response{Error: err.Error()}
	}
	if stderrors.Is(err, errNotFound) {
		return http.StatusNotFound, response{Error: err.Error()}
	}
	var re *errors.RsxError
	if errors.As(err, &re) {
		return http.StatusInternalServerError, response{
			Error:       err.Error(),
			Diagnostics: []json.RawMessage{json.RawMessage(re.FormatJSON())},
		}
	}
	return http.StatusInternalServerError, response{Error: err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTML(w http.ResponseWriter, out []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(out)
}

func (s *Server) renderHTTP(w http.ResponseWriter, r *http.Request, name string, scope rsx.Scope) {
	if s.cache == nil {
		s.streamHTTP(w, r, name, scope)
		return
	}
	out, err := s.Render(r.Context(), name, scope)
	if err != nil {
		status, resp := errorResponse(err)
		writeJSON(w, status, resp)
		return
	}
	writeHTML(w, out)
}

// streamHTTP renders without a cache, flushing the response as sections
// of the page complete. Errors before the first byte still get a JSON
// reply; later ones can only end the response early.
func (s *Server) streamHTTP(w http.ResponseWriter, r *http.Request, name string, scope rsx.Scope) {
	tpl, _, err := s.template(name)
	if err != nil {
		status, resp := errorResponse(err)
		writeJSON(w, status, resp)
		return
	}
	hw := &htmlWriter{ResponseWriter: w, doctype: s.config.Doctype}
	if err := tpl.Stream(r.Context(), hw, scope); err != nil {
		if !hw.started {
			status, resp := errorResponse(err)
			writeJSON(w, status, resp)
			return
		}
		s.logger.Warn("render aborted mid-response", "template", name, "error", err)
		return
	}
	if !hw.started {
		_ = hw.start()
	}
}

// htmlWriter defers the HTML headers and the doctype until the first
// byte of markup, so a render that fails early can still answer in JSON.
type htmlWriter struct {
	http.ResponseWriter
	doctype bool
	started bool
}

func (w *htmlWriter) start() error {
	w.started = true
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if w.doctype {
		return render.RenderToWriter(w.ResponseWriter, node.Doctype())
	}
	return nil
}

func (w *htmlWriter) Write(p []byte) (int, error) {
	if !w.started {
		if err := w.start(); err != nil {
			return 0, err
		}
	}
	return w.ResponseWriter.Write(p)
}

func (w *htmlWriter) Flush() {
	if !w.started {
		return
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// handleRenderGet renders the template named by the path with the query
// parameters as scope. Repeated parameters become lists.
func (s *Server) handleRenderGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	scope := rsx.Scope{}
	for k, v := range r.URL.Query() {
		if len(v) == 1 {
			scope[k] = v[0]
		} else {
			scope[k] = v
		}
	}
	s.renderHTTP(w, r, name, scope)
}

func (s *Server) handleRenderPost(w http.ResponseWriter, r *http.Request) {
	var req request
	body := http.MaxBytesReader(w, r.Body, s.config.MaxMessageSize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.Template == "" {
		writeJSON(w, http.StatusBadRequest, response{Error: "missing template"})
		return
	}
	s.renderHTTP(w, r, req.Template, req.Scope)
}

// Reset drops every compiled template and purges the cache. Call it after
// the components in the registry change, since compiled templates keep
// the components they were compiled against.
func (s *Server) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.templates = make(map[string]compiled)
	s.mu.Unlock()
	if s.cache == nil {
		return nil
	}
	return s.cache.Purge(ctx)
}

func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	if s.cache != nil {
		if err := s.cache.Purge(r.Context()); err != nil {
			writeJSON(w, http.StatusInternalServerError, response{Error: err.Error()})
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleWebSocket answers every text message holding a request with the
// rendered HTML or the diagnostics.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.config.MaxMessageSize)

	s.metrics.RecordConnect()
	defer s.metrics.RecordDisconnect()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		var req request
		var resp response
		switch err := json.Unmarshal(msg, &req); {
		case err != nil:
			resp.Error = "invalid message: " + err.Error()
		case req.Template == "":
			resp.Error = "missing template"
		default:
			out, err := s.Render(r.Context(), req.Template, req.Scope)
			if err != nil {
				_, resp = errorResponse(err)
			} else {
				resp.HTML = string(out)
			}
		}

		if err := conn.WriteJSON(resp); err != nil {
			s.logger.Error("write error", "error", err)
			return
		}
	}
}
