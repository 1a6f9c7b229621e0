package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/vango-dev/rsx/internal/config"
	"github.com/vango-dev/rsx/internal/errors"
	"github.com/vango-dev/rsx/internal/watch"
	"github.com/vango-dev/rsx/pkg/rsx"
)

type genOptions struct {
	pkg     string
	params  string
	outDir  string
	watch   bool
	imports map[string]string
}

func genCmd(a *app) *cobra.Command {
	var opts genOptions

	cmd := &cobra.Command{
		Use:   "gen PATH...",
		Short: "Generate Go code from templates",
		Long: `Generate a Go function for each template that builds the same tree
with the node package. page.rsx becomes page_rsx.go declaring Page.

Expressions and punned attributes refer to the function parameters given
with --params. Custom elements become composite literals of Go types:
<Card title={t}/> is &Card{Title: t}, and <ui.Card/> needs the package
imported as ui to be named with --import. With --watch, templates are
regenerated as they change.

Examples:
  rsx gen templates
  rsx gen card.rsx --package views --params "title string, items []string"
  rsx gen page.rsx --import ui=example.com/app/ui
  rsx gen templates --watch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.pkg == "" {
				opts.pkg = a.cfg.Gen.Package
			}
			files, err := templateFiles(args)
			if err != nil {
				return err
			}

			for _, file := range files {
				if err := a.generate(cmd, file, opts); err != nil {
					if !opts.watch {
						return err
					}
					printError(err)
				}
			}
			if !opts.watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			info(cmd.ErrOrStderr(), "Watching for changes, press Ctrl+C to stop")
			w := watch.New(watch.Config{Paths: args, Ext: config.TemplateExt})
			err = w.Run(ctx, func(changed []string) {
				for _, file := range changed {
					if _, err := os.Stat(file); err != nil {
						continue
					}
					if err := a.generate(cmd, file, opts); err != nil {
						printError(err)
					}
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.pkg, "package", "p", "", "Package name of generated files (default from config)")
	cmd.Flags().StringVar(&opts.params, "params", "", "Parameter list of generated functions")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "Directory for generated files (default: next to each template)")
	cmd.Flags().StringToStringVar(&opts.imports, "import", nil, "Import paths of component packages as qualifier=path")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Regenerate templates when they change")

	return cmd
}

// generate writes the Go file for one template.
func (a *app) generate(cmd *cobra.Command, file string, opts genOptions) error {
	src, err := os.ReadFile(file)
	if err != nil {
		return errors.New("R140").WithDetail(file + " could not be read.").Wrap(err)
	}

	base := strings.TrimSuffix(filepath.Base(file), config.TemplateExt)
	out, diags, err := rsx.Generate(file, src, rsx.GenOptions{
		Package: opts.pkg,
		Func:    exportedName(base),
		Params:  opts.params,
		Imports: opts.imports,
	})
	var list *errors.List
	if err == nil || !errors.As(err, &list) {
		for _, d := range diags.Items() {
			errors.Fprint(cmd.ErrOrStderr(), d)
		}
	}
	if err != nil {
		return err
	}

	dir := filepath.Dir(file)
	if opts.outDir != "" {
		dir = opts.outDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	target := filepath.Join(dir, goFileName(base))
	if err := os.WriteFile(target, out, 0o644); err != nil {
		return err
	}
	a.logger.Debug("generated", "template", file, "file", target)
	success(cmd.ErrOrStderr(), "Generated %s", target)
	return nil
}

// exportedName turns a file base name such as blog-post into BlogPost.
func exportedName(base string) string {
	var b strings.Builder
	upper := true
	for _, r := range base {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if b.Len() == 0 && unicode.IsDigit(r) {
			b.WriteByte('T')
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "Template"
	}
	return b.String()
}

// goFileName turns a file base name into the generated file name.
func goFileName(base string) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return '_'
	}, base)
	return name + "_rsx.go"
}
