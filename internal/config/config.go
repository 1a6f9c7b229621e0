package config

import (
	"encoding/json"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/rsx/internal/errors"
	"github.com/vango-dev/rsx/internal/logging"
)

const (
	// JSONFileName is the name of the JSON configuration file.
	JSONFileName = "rsx.json"

	// YAMLFileName is the name of the YAML configuration file.
	YAMLFileName = "rsx.yaml"

	// TemplateExt is the extension of template files.
	TemplateExt = ".rsx"

	// DefaultTemplates is the default template directory.
	DefaultTemplates = "templates"

	// DefaultOutput is the default output directory for rendered pages.
	DefaultOutput = "dist"

	// DefaultPackage is the default package of generated Go files.
	DefaultPackage = "views"

	// DefaultAddress is the default preview server address.
	DefaultAddress = "localhost:3000"

	// DefaultMetricsPath is the default path of the metrics endpoint.
	DefaultMetricsPath = "/metrics"

	// DefaultCacheTTL is how long rendered output stays cached.
	DefaultCacheTTL = "5m"

	// DefaultRegion is the default S3 region.
	DefaultRegion = "us-east-1"
)

// Config represents the complete rsx.json or rsx.yaml configuration.
type Config struct {
	// Paths contains template and output locations.
	Paths PathsConfig `json:"paths,omitempty" yaml:"paths,omitempty"`

	// Render contains rendering settings.
	Render RenderConfig `json:"render,omitempty" yaml:"render,omitempty"`

	// Gen contains Go code generation settings.
	Gen GenConfig `json:"gen,omitempty" yaml:"gen,omitempty"`

	// Serve contains preview server settings.
	Serve ServeConfig `json:"serve,omitempty" yaml:"serve,omitempty"`

	// Publish contains S3 upload settings.
	Publish PublishConfig `json:"publish,omitempty" yaml:"publish,omitempty"`

	// Log contains logging settings.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// PathsConfig contains path configuration.
type PathsConfig struct {
	// Templates is the directory holding .rsx files.
	Templates string `json:"templates,omitempty" yaml:"templates,omitempty"`

	// Output is the directory rendered pages are written to.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// RenderConfig contains rendering settings.
type RenderConfig struct {
	// Doctype prepends <!DOCTYPE html> to rendered pages.
	Doctype bool `json:"doctype,omitempty" yaml:"doctype,omitempty"`

	// AllowTainted renders templates with mismatched closing tags.
	AllowTainted bool `json:"allowTainted,omitempty" yaml:"allowTainted,omitempty"`

	// MaxDepth bounds the nesting of rendered trees. Zero uses the
	// renderer default.
	MaxDepth int `json:"maxDepth,omitempty" yaml:"maxDepth,omitempty"`
}

// GenConfig contains code generation settings.
type GenConfig struct {
	// Package is the package clause of generated files.
	Package string `json:"package,omitempty" yaml:"package,omitempty"`
}

// ServeConfig contains preview server settings.
type ServeConfig struct {
	// Address is the host:port to listen on.
	Address string `json:"address,omitempty" yaml:"address,omitempty"`

	// MetricsPath is the path of the Prometheus endpoint. "-" disables it.
	MetricsPath string `json:"metricsPath,omitempty" yaml:"metricsPath,omitempty"`

	// Redis is a redis:// URL for the rendered output cache. Empty keeps
	// the cache in memory.
	Redis string `json:"redis,omitempty" yaml:"redis,omitempty"`

	// CacheTTL is how long rendered output stays cached, e.g. "5m".
	// "0" disables caching.
	CacheTTL string `json:"cacheTTL,omitempty" yaml:"cacheTTL,omitempty"`
}

// PublishConfig contains S3 upload settings.
type PublishConfig struct {
	// Bucket is the default destination bucket.
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`

	// Prefix is prepended to every object key.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Region is the AWS region.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, for MinIO or LocalStack.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// PathStyle forces path-style addressing.
	PathStyle bool `json:"pathStyle,omitempty" yaml:"pathStyle,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory. It looks for
// rsx.json first, then rsx.yaml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{JSONFileName, YAMLFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("R120").
		WithDetail("No " + JSONFileName + " or " + YAMLFileName + " found in " + dir)
}

// LoadFile reads configuration from the specified file path. Files ending
// in .yaml or .yml are read as YAML, everything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("R120").
				WithDetail("No config file at " + path).
				WithSuggestion("Create " + JSONFileName + " or pass --config")
		}
		return nil, errors.New("R121").Wrap(err)
	}

	cfg := &Config{}
	if isYAML(path) {
		err = decodeYAML(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("R121").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// decodeYAML reads YAML into a generic map and maps it onto cfg using the
// json field names, so both formats share one schema.
func decodeYAML(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML or JSON
// depending on the extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("R121").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("R121").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Paths.Templates == "" {
		c.Paths.Templates = DefaultTemplates
	}
	if c.Paths.Output == "" {
		c.Paths.Output = DefaultOutput
	}
	if c.Gen.Package == "" {
		c.Gen.Package = DefaultPackage
	}
	if c.Serve.Address == "" {
		c.Serve.Address = DefaultAddress
	}
	if c.Serve.MetricsPath == "" {
		c.Serve.MetricsPath = DefaultMetricsPath
	}
	if c.Serve.CacheTTL == "" {
		c.Serve.CacheTTL = DefaultCacheTTL
	}
	if c.Publish.Region == "" {
		c.Publish.Region = DefaultRegion
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Render.MaxDepth < 0 {
		return errors.New("R122").
			WithDetail("render.maxDepth must not be negative")
	}
	if !token.IsIdentifier(c.Gen.Package) {
		return errors.New("R122").
			WithDetail("gen.package " + `"` + c.Gen.Package + `"` + " is not a Go identifier")
	}
	if c.Serve.MetricsPath != "-" && !strings.HasPrefix(c.Serve.MetricsPath, "/") {
		return errors.New("R122").
			WithDetail("serve.metricsPath must start with /").
			WithSuggestion(`Use "-" to disable the metrics endpoint`)
	}
	if _, err := c.CacheTTL(); err != nil {
		return errors.New("R122").
			WithDetail("serve.cacheTTL: " + err.Error()).
			WithExample(`"cacheTTL": "30s"`)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errors.New("R122").
			WithDetail("log.level: " + err.Error())
	}
	return nil
}

// CacheTTL returns the parsed cache lifetime. Zero disables caching.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Serve.CacheTTL == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Serve.CacheTTL)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.Newf(errors.CategoryConfig, "negative duration %s", c.Serve.CacheTTL)
	}
	return d, nil
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// TemplatesPath returns the absolute path to the template directory.
func (c *Config) TemplatesPath() string {
	return c.resolve(c.Paths.Templates)
}

// OutputPath returns the absolute path to the output directory.
func (c *Config) OutputPath() string {
	return c.resolve(c.Paths.Output)
}

// TemplateFile returns the path of the named template, adding the .rsx
// extension when it is missing.
func (c *Config) TemplateFile(name string) string {
	if filepath.Ext(name) != TemplateExt {
		name += TemplateExt
	}
	return filepath.Join(c.TemplatesPath(), filepath.FromSlash(name))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range []string{JSONFileName, YAMLFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing rsx.json or rsx.yaml, or an error if
// not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("R120").
				WithDetail("No " + JSONFileName + " or " + YAMLFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working
// directory or its nearest parent that has one.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
