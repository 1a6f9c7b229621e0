package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/rsx/internal/errors"
	"github.com/vango-dev/rsx/internal/metrics"
	"github.com/vango-dev/rsx/internal/publish"
	"github.com/vango-dev/rsx/pkg/node"
	"github.com/vango-dev/rsx/pkg/render"
	"github.com/vango-dev/rsx/pkg/rsx"
)

func renderCmd(a *app) *cobra.Command {
	var (
		dataFile string
		set      map[string]string
		out      string
		doctype  bool
	)

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a template to HTML",
		Long: `Render a template with data and write the HTML to stdout, a file,
or an S3 object.

The scope comes from a JSON or YAML object given with --data. Values
passed with --set are added as strings and override the file.

Examples:
  rsx render templates/page.rsx --data page.yaml
  rsx render page.rsx --set title=Hello --out dist/index.html
  rsx render page.rsx --data page.json --out s3://site/index.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			src, err := os.ReadFile(file)
			if err != nil {
				return errors.New("R140").WithDetail(file + " could not be read.").Wrap(err)
			}

			scope, err := loadScope(dataFile)
			if err != nil {
				return err
			}
			for k, v := range set {
				scope[k] = v
			}

			reg, err := a.registry()
			if err != nil {
				return err
			}
			tpl, err := rsx.Compile(file, src, a.compileOptions(reg)...)
			if err != nil {
				return err
			}
			for _, d := range tpl.Diagnostics() {
				errors.Fprint(cmd.ErrOrStderr(), d)
			}

			var buf bytes.Buffer
			if doctype || a.cfg.Render.Doctype {
				if err := render.RenderToWriter(&buf, node.Doctype()); err != nil {
					return err
				}
			}
			if err := tpl.Render(cmd.Context(), &buf, scope); err != nil {
				return err
			}
			a.logger.Debug("rendered template", "template", file, "bytes", buf.Len())

			return a.write(cmd, out, buf.Bytes())
		},
	}

	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "JSON or YAML file holding the scope")
	cmd.Flags().StringToStringVar(&set, "set", nil, "Scope values as key=value")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file or s3://bucket/key (default: stdout)")
	cmd.Flags().BoolVar(&doctype, "doctype", false, "Prepend <!DOCTYPE html>")

	return cmd
}

// loadScope reads a scope object from a JSON or YAML file. An empty path
// gives an empty scope.
func loadScope(path string) (rsx.Scope, error) {
	scope := rsx.Scope{}
	if path == "" {
		return scope, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("R141").WithDetail(path + " could not be read.").Wrap(err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &scope)
	default:
		err = json.Unmarshal(data, &scope)
	}
	if err != nil {
		return nil, errors.New("R141").
			WithDetail(fmt.Sprintf("%s is not a JSON or YAML object.", path)).
			WithExample("title: Hello\nitems: [a, b]").
			Wrap(err)
	}
	if scope == nil {
		scope = rsx.Scope{}
	}
	return scope, nil
}

// write sends rendered output to stdout, a file or S3.
func (a *app) write(cmd *cobra.Command, out string, body []byte) error {
	switch {
	case out == "" || out == "-":
		_, err := cmd.OutOrStdout().Write(body)
		return err

	case publish.IsS3URL(out):
		bucket, key, err := publish.ParseS3URL(out)
		if err != nil {
			return errors.New("R142").WithDetail(err.Error())
		}
		p := publish.New(publish.NewS3Client(a.cfg.Publish), bucket, "",
			publish.WithMetrics(metrics.Default()),
			publish.WithLogger(a.logger),
		)
		u, err := p.Publish(cmd.Context(), key, body)
		if err != nil {
			return err
		}
		success(cmd.ErrOrStderr(), "Published %s", u)
		return nil

	default:
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return errors.New("R142").WithDetail("Creating the directory for " + out + " failed.").Wrap(err)
		}
		if err := os.WriteFile(out, body, 0o644); err != nil {
			return errors.New("R142").WithDetail("Writing " + out + " failed.").Wrap(err)
		}
		success(cmd.ErrOrStderr(), "Wrote %s", out)
		return nil
	}
}
