package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/vango-dev/rsx/internal/config"
	"github.com/vango-dev/rsx/internal/errors"
	"github.com/vango-dev/rsx/pkg/render"
	"github.com/vango-dev/rsx/pkg/rsx"
)

// compileOptions returns the options every command compiles with.
func (a *app) compileOptions(reg *rsx.Registry) []rsx.Option {
	opts := []rsx.Option{rsx.WithRegistry(reg)}
	if a.cfg.Render.AllowTainted {
		opts = append(opts, rsx.AllowTainted())
	}
	if a.cfg.Render.MaxDepth > 0 {
		opts = append(opts, rsx.WithRenderer(render.RendererConfig{MaxDepth: a.cfg.Render.MaxDepth}))
	}
	return opts
}

// registry returns a registry holding the built-in components and every
// component template under the templates directory.
func (a *app) registry() (*rsx.Registry, error) {
	reg := rsx.NewRegistry()
	if err := loadComponents(a.cfg.TemplatesPath(), reg, a.compileOptions(reg)...); err != nil {
		return nil, err
	}
	return reg, nil
}

// componentName maps a template path relative to the templates directory
// to the tag it is used as. Only files whose base name is capitalized are
// components: ui/Badge.rsx becomes ui.Badge, page.rsx is not a component.
func componentName(rel string) (string, bool) {
	rel = filepath.ToSlash(strings.TrimSuffix(rel, config.TemplateExt))
	parts := strings.Split(rel, "/")
	base := parts[len(parts)-1]
	if base == "" || !unicode.IsUpper([]rune(base)[0]) {
		return "", false
	}
	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, ". ") {
			return "", false
		}
	}
	return strings.Join(parts, "."), true
}

// loadComponents compiles the component templates under dir and registers
// them with reg. Components may use each other: a template whose only
// failures are unknown components is retried after the others.
func loadComponents(dir string, reg *rsx.Registry, opts ...rsx.Option) error {
	pending := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != config.TemplateExt {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if name, ok := componentName(rel); ok {
			pending[name] = path
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	for len(pending) > 0 {
		names := make([]string, 0, len(pending))
		for name := range pending {
			names = append(names, name)
		}
		sort.Strings(names)

		var lastErr error
		for _, name := range names {
			src, err := os.ReadFile(pending[name])
			if err != nil {
				return err
			}
			tpl, err := rsx.Compile(pending[name], src, opts...)
			if err != nil {
				if !onlyUnknownComponents(err) {
					return err
				}
				lastErr = err
				continue
			}
			reg.RegisterTemplate(name, tpl)
			delete(pending, name)
		}
		if len(pending) == len(names) {
			return lastErr
		}
	}
	return nil
}

func onlyUnknownComponents(err error) bool {
	var list *errors.List
	if !errors.As(err, &list) {
		return false
	}
	found := false
	for _, item := range list.Items() {
		if item.IsWarning() {
			continue
		}
		if item.Code != "R105" {
			return false
		}
		found = true
	}
	return found
}

// templateFiles expands the command line paths into template files.
// Directories are walked for .rsx files.
func templateFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.New("R140").WithDetail(p + " does not exist.").Wrap(err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == config.TemplateExt {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
