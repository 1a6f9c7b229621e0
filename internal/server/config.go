package server

import (
	"net/http"
	"net/url"
	"time"
)

// Config configures the preview server.
type Config struct {
	// Address is the host:port to listen on.
	Address string

	// TemplatesDir is the directory templates are read from.
	TemplatesDir string

	// MetricsPath is where Prometheus metrics are served. Empty means
	// /metrics and "-" disables the endpoint.
	MetricsPath string

	// Doctype prepends <!DOCTYPE html> to rendered pages.
	Doctype bool

	// AllowTainted renders templates with mismatched closing tags.
	AllowTainted bool

	// MaxMessageSize bounds WebSocket messages and POST bodies.
	MaxMessageSize int64

	// CheckOrigin validates the Origin header of WebSocket upgrades.
	CheckOrigin func(*http.Request) bool

	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:           "localhost:3000",
		TemplatesDir:      "templates",
		MetricsPath:       "/metrics",
		MaxMessageSize:    1 << 20,
		CheckOrigin:       SameOriginCheck,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

// withDefaults fills in unset fields.
func (c *Config) withDefaults() *Config {
	d := DefaultConfig()
	if c == nil {
		return d
	}
	out := *c
	if out.Address == "" {
		out.Address = d.Address
	}
	if out.TemplatesDir == "" {
		out.TemplatesDir = d.TemplatesDir
	}
	if out.MetricsPath == "" {
		out.MetricsPath = d.MetricsPath
	}
	if out.MaxMessageSize == 0 {
		out.MaxMessageSize = d.MaxMessageSize
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = d.CheckOrigin
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.IdleTimeout == 0 {
		out.IdleTimeout = d.IdleTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	return &out
}

// SameOriginCheck accepts WebSocket upgrades without an Origin header or
// whose Origin host matches the request host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}
