package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/rsx/internal/cache"
	"github.com/vango-dev/rsx/internal/config"
	"github.com/vango-dev/rsx/internal/errors"
	"github.com/vango-dev/rsx/internal/metrics"
	"github.com/vango-dev/rsx/internal/server"
	"github.com/vango-dev/rsx/internal/watch"
	"github.com/vango-dev/rsx/pkg/rsx"
)

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview templates over HTTP and WebSocket",
		Long: `Start a preview server for the templates directory.

Endpoints:
  GET    /render/{name}   Render a template, query parameters form the scope
  POST   /render          Render {"template": ..., "scope": {...}}
  GET    /ws              Render requests over a WebSocket
  DELETE /cache           Drop cached output
  GET    /metrics         Prometheus metrics
  GET    /healthz         Liveness

Templates are recompiled when their file changes, and component templates
are reloaded when they change. Rendered output is
cached in Redis when serve.redis is set, in memory otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Serve.Address
			}

			reg, err := a.registry()
			if err != nil {
				return err
			}

			c, err := a.cache()
			if err != nil {
				return err
			}
			if c != nil {
				defer c.Close()
			}

			srv := server.New(&server.Config{
				Address:      addr,
				TemplatesDir: a.cfg.TemplatesPath(),
				MetricsPath:  a.cfg.Serve.MetricsPath,
				Doctype:      a.cfg.Render.Doctype,
				AllowTainted: a.cfg.Render.AllowTainted,
			},
				server.WithRegistry(reg),
				server.WithCache(c),
				server.WithMetrics(metrics.Default(), nil),
				server.WithLogger(a.logger),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			printBanner(cmd.ErrOrStderr())
			success(cmd.ErrOrStderr(), "Serving %s on http://%s", a.cfg.TemplatesPath(), addr)
			info(cmd.ErrOrStderr(), "Press Ctrl+C to stop")

			w := watch.New(watch.Config{Paths: []string{a.cfg.TemplatesPath()}, Ext: config.TemplateExt})
			go w.Run(ctx, func(changed []string) {
				a.reloadComponents(ctx, srv, reg, changed)
			})

			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config)")

	return cmd
}

// reloadComponents recompiles the component templates into a fresh
// registry when one of them changed and copies them into reg, so no
// component keeps a stale dependency. Pages are recompiled by the server
// on their own.
func (a *app) reloadComponents(ctx context.Context, srv *server.Server, reg *rsx.Registry, changed []string) {
	dir := a.cfg.TemplatesPath()
	var names []string
	for _, file := range changed {
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			continue
		}
		if name, ok := componentName(rel); ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return
	}

	fresh, err := a.registry()
	if err != nil {
		a.logger.Error("reloading components failed", "components", names, "error", err)
		return
	}
	for _, name := range fresh.Names() {
		f, _ := fresh.Lookup(name)
		reg.Register(name, f)
	}
	if err := srv.Reset(ctx); err != nil {
		a.logger.Warn("purging cache failed", "error", err)
	}
	a.logger.Info("reloaded components", "components", names)
}

// cache builds the render cache from the serve settings. A zero TTL
// disables caching and returns nil.
func (a *app) cache() (cache.Cache, error) {
	ttl, err := a.cfg.CacheTTL()
	if err != nil {
		return nil, err
	}
	if ttl == 0 {
		return nil, nil
	}
	if a.cfg.Serve.Redis == "" {
		return cache.NewMemory(ttl), nil
	}

	r, err := cache.NewRedis(a.cfg.Serve.Redis, cache.WithTTL(ttl))
	if err != nil {
		return nil, errors.New("R122").WithDetail("serve.redis: " + err.Error())
	}
	if err := r.Ping(context.Background()); err != nil {
		r.Close()
		return nil, errors.New("R122").WithDetail("serve.redis is unreachable: " + err.Error())
	}
	return r, nil
}
