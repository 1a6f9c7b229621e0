package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/rsx/internal/config"
	"github.com/vango-dev/rsx/internal/errors"
	"github.com/vango-dev/rsx/internal/logging"
	"github.com/vango-dev/rsx/internal/server"
	"github.com/vango-dev/rsx/pkg/rsx"
)

// project writes an rsx.yaml and the given files under a temp dir and
// returns the config path.
func project(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files["rsx.yaml"] = "paths:\n  templates: templates\nlog:\n  level: error\n"
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return filepath.Join(dir, "rsx.yaml")
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRenderCommand(t *testing.T) {
	cfg := project(t, map[string]string{
		"templates/Layout.rsx":   `<main><ui.Title text={heading} />{children}</main>`,
		"templates/ui/Title.rsx": `<h1>{text}</h1>`,
		"templates/page.rsx":     `<Layout heading={title}><p>{body}</p></Layout>`,
		"data.yaml":              "title: Hello\nbody: <world>\n",
		"data.json":              `{"title": "Json", "body": "x"}`,
	})
	dir := filepath.Dir(cfg)
	page := filepath.Join(dir, "templates", "page.rsx")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"yaml data", []string{"--data", filepath.Join(dir, "data.yaml")}, "<main><h1>Hello</h1><p>&lt;world&gt;</p></main>"},
		{"json data", []string{"--data", filepath.Join(dir, "data.json")}, "<main><h1>Json</h1><p>x</p></main>"},
		{"set overrides", []string{"--data", filepath.Join(dir, "data.json"), "--set", "title=Set"}, "<main><h1>Set</h1><p>x</p></main>"},
		{"doctype", []string{"--set", "title=T,body=B", "--doctype"}, "<!DOCTYPE html><main><h1>T</h1><p>B</p></main>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", cfg, "render", page}, tt.args...)
			out, _, err := run(t, args...)
			if err != nil {
				t.Fatalf("render error: %v", err)
			}
			if out != tt.want {
				t.Errorf("render = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestRenderToFile(t *testing.T) {
	cfg := project(t, map[string]string{"templates/page.rsx": `<p>{"hi"}</p>`})
	dir := filepath.Dir(cfg)
	target := filepath.Join(dir, "dist", "nested", "index.html")

	_, stderr, err := run(t, "--config", cfg, "render", filepath.Join(dir, "templates", "page.rsx"), "--out", target)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "<p>hi</p>" {
		t.Errorf("file = %q", got)
	}
	if !strings.Contains(stderr, "Wrote") {
		t.Errorf("stderr = %q, want a success message", stderr)
	}
}

func TestRenderErrors(t *testing.T) {
	cfg := project(t, map[string]string{
		"templates/page.rsx":  `<p>{title}</p>`,
		"templates/bad.rsx":   `<p>{1 +}</p>`,
		"templates/loose.rsx": `<p></div>`,
		"bad.json":            `[1, 2`,
	})
	dir := filepath.Dir(cfg)
	tpl := func(name string) string { return filepath.Join(dir, "templates", name) }

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"missing file", []string{"render", tpl("nope.rsx")}, "R140"},
		{"bad data", []string{"render", tpl("page.rsx"), "--data", filepath.Join(dir, "bad.json")}, "R141"},
		{"missing data", []string{"render", tpl("page.rsx"), "--data", filepath.Join(dir, "none.json")}, "R141"},
		{"bad expression", []string{"render", tpl("bad.rsx")}, "R104"},
		{"bad s3 url", []string{"render", tpl("page.rsx"), "--out", "s3://bucket"}, "R142"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, append([]string{"--config", cfg}, tt.args...)...)
			if err == nil || !strings.Contains(err.Error(), tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}

	_, _, err := run(t, "--config", cfg, "render", tpl("loose.rsx"))
	if !errors.Is(err, rsx.ErrTainted) {
		t.Errorf("tainted render error = %v, want ErrTainted", err)
	}
}

func TestCheckCommand(t *testing.T) {
	cfg := project(t, map[string]string{
		"templates/Box.rsx":  `<div>{children}</div>`,
		"templates/ok.rsx":   `<Box><p>{"x"}</p></Box>`,
		"templates/warn.rsx": `<p></div>`,
		"broken/unknown.rsx": `<Missing />`,
	})
	dir := filepath.Dir(cfg)

	out, _, err := run(t, "--config", cfg, "check", "--format", "compact", filepath.Join(dir, "templates"))
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if !strings.Contains(out, "R001") {
		t.Errorf("compact output = %q, want R001", out)
	}

	out, _, err = run(t, "--config", cfg, "check", "--format", "json", filepath.Join(dir, "broken"))
	if err == nil {
		t.Fatal("check should fail on an unknown component")
	}
	var diag map[string]any
	if jerr := json.Unmarshal([]byte(strings.TrimSpace(out)), &diag); jerr != nil {
		t.Fatalf("json output %q: %v", out, jerr)
	}
	if diag["code"] != "R105" {
		t.Errorf("code = %v, want R105", diag["code"])
	}

	if _, _, err := run(t, "--config", cfg, "check", "--format", "xml", dir); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestGenCommand(t *testing.T) {
	cfg := project(t, map[string]string{"templates/blog-post.rsx": `<h1>{title}</h1>`})
	dir := filepath.Dir(cfg)
	outDir := filepath.Join(dir, "gen")

	_, _, err := run(t, "--config", cfg, "gen", filepath.Join(dir, "templates"),
		"--package", "pages", "--params", "title string", "--out", outDir)
	if err != nil {
		t.Fatalf("gen error: %v", err)
	}
	src, err := os.ReadFile(filepath.Join(outDir, "blog_post_rsx.go"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"package pages", "func BlogPost(title string)"} {
		if !strings.Contains(string(src), want) {
			t.Errorf("generated file lacks %q:\n%s", want, src)
		}
	}
}

func TestGenCommandImports(t *testing.T) {
	cfg := project(t, map[string]string{"views/card.rsx": `<ui.Card title={title} />`})
	file := filepath.Join(filepath.Dir(cfg), "views", "card.rsx")

	_, _, err := run(t, "--config", cfg, "gen", file, "--params", "title string")
	if err == nil || !strings.Contains(err.Error(), "R106") {
		t.Fatalf("gen without --import error = %v, want R106", err)
	}

	_, _, err = run(t, "--config", cfg, "gen", file, "--params", "title string", "--import", "ui=example.com/app/ui")
	if err != nil {
		t.Fatalf("gen error: %v", err)
	}
	src, err := os.ReadFile(filepath.Join(filepath.Dir(file), "card_rsx.go"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"example.com/app/ui"`, `node.Comp(&ui.Card{Title: title})`} {
		if !strings.Contains(string(src), want) {
			t.Errorf("generated file lacks %q:\n%s", want, src)
		}
	}
}

func TestNames(t *testing.T) {
	exported := []struct{ in, want string }{
		{"page", "Page"},
		{"blog-post", "BlogPost"},
		{"my_card v2", "MyCardV2"},
		{"404", "T404"},
		{"--", "Template"},
	}
	for _, tt := range exported {
		if got := exportedName(tt.in); got != tt.want {
			t.Errorf("exportedName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := goFileName("Blog-Post"); got != "blog_post_rsx.go" {
		t.Errorf("goFileName = %q", got)
	}

	components := []struct {
		rel  string
		want string
		ok   bool
	}{
		{"Card.rsx", "Card", true},
		{filepath.Join("ui", "Badge.rsx"), "ui.Badge", true},
		{"page.rsx", "", false},
		{filepath.Join("Ui", "badge.rsx"), "", false},
		{"My.Card.rsx", "", false},
	}
	for _, tt := range components {
		got, ok := componentName(tt.rel)
		if got != tt.want || ok != tt.ok {
			t.Errorf("componentName(%q) = %q, %v, want %q, %v", tt.rel, got, ok, tt.want, tt.ok)
		}
	}
}

func TestComponentCycle(t *testing.T) {
	cfg := project(t, map[string]string{
		"templates/A.rsx":    `<B />`,
		"templates/B.rsx":    `<A />`,
		"templates/page.rsx": `<p />`,
	})
	_, _, err := run(t, "--config", cfg, "render", filepath.Join(filepath.Dir(cfg), "templates", "page.rsx"))
	var list *errors.List
	if !errors.As(err, &list) {
		t.Fatalf("error = %v, want a diagnostic list", err)
	}
}

func TestReloadComponents(t *testing.T) {
	cfgPath := project(t, map[string]string{
		"templates/ui/Title.rsx": `<h1>{text}</h1>`,
		"templates/Layout.rsx":   `<main><ui.Title text={heading} /></main>`,
		"templates/page.rsx":     `<Layout heading={title} />`,
	})
	cfg, err := config.LoadFile(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	a := &app{cfg: cfg, logger: logging.NewNop()}
	reg, err := a.registry()
	if err != nil {
		t.Fatal(err)
	}
	srv := server.New(&server.Config{TemplatesDir: cfg.TemplatesPath()}, server.WithRegistry(reg))
	ctx := context.Background()

	render := func() string {
		t.Helper()
		out, err := srv.Render(ctx, "page", rsx.Scope{"title": "Hi"})
		if err != nil {
			t.Fatalf("Render error: %v", err)
		}
		return string(out)
	}
	if got := render(); got != "<main><h1>Hi</h1></main>" {
		t.Fatalf("render = %q", got)
	}

	title := filepath.Join(cfg.TemplatesPath(), "ui", "Title.rsx")
	if err := os.WriteFile(title, []byte(`<h2>{text}</h2>`), 0o644); err != nil {
		t.Fatal(err)
	}
	a.reloadComponents(ctx, srv, reg, []string{filepath.Join(cfg.TemplatesPath(), "page.rsx")})
	if got := render(); got != "<main><h1>Hi</h1></main>" {
		t.Errorf("page edits must not reload components, render = %q", got)
	}

	a.reloadComponents(ctx, srv, reg, []string{title})
	if got := render(); got != "<main><h2>Hi</h2></main>" {
		t.Errorf("render after reload = %q", got)
	}
}

func TestExplainCommand(t *testing.T) {
	out, _, err := run(t, "explain", "r105")
	if err != nil {
		t.Fatalf("explain error: %v", err)
	}
	if !strings.Contains(out, "R105") || !strings.Contains(out, "Unknown component") {
		t.Errorf("explain output = %q", out)
	}

	out, _, err = run(t, "explain")
	if err != nil {
		t.Fatalf("explain list error: %v", err)
	}
	for _, code := range errors.GetAllCodes() {
		if !strings.Contains(out, code) {
			t.Errorf("code table lacks %s", code)
		}
	}

	if _, _, err := run(t, "explain", "R999"); err == nil {
		t.Error("unknown code should fail")
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version = %q, want %q", out, version)
	}
}

func TestConfigErrors(t *testing.T) {
	if _, _, err := run(t, "--config", filepath.Join(t.TempDir(), "rsx.yaml"), "version"); err == nil {
		t.Error("missing explicit config should fail")
	}
	cfg := project(t, map[string]string{})
	if _, _, err := run(t, "--config", cfg, "--log-level", "loud", "version"); err == nil {
		t.Error("bad log level should fail")
	}
}
