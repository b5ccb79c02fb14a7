package svg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	svgmin "github.com/tdewolff/minify/v2/svg"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/iconforge/model"
)

// ConfigFile is the per-directory optimizer configuration file name.
const ConfigFile = "optimize.yaml"

const (
	mediaType = "image/svg+xml"

	// EngineMinify runs markup through tdewolff/minify before the plugins.
	EngineMinify = "minify"
	// EngineNone skips the engine; only the tree plugins run.
	EngineNone = "none"
)

// Optimizer transforms raw SVG markup. Implementations are selected per
// icon type and treated as a black box by the rest of the pipeline.
type Optimizer interface {
	Optimize(markup []byte) ([]byte, error)
}

// OptimizerFunc adapts a function to the Optimizer interface.
type OptimizerFunc func(markup []byte) ([]byte, error)

// Optimize calls f(markup).
func (f OptimizerFunc) Optimize(markup []byte) ([]byte, error) {
	return f(markup)
}

// OptimizeConfig is the content of a directory's optimize.yaml.
type OptimizeConfig struct {
	// Engine is "minify" or "none". Colorable icons default to minify,
	// color-preserving icons to none.
	Engine string `yaml:"engine"`
	// Precision is the number of significant digits kept in numbers; 0
	// keeps all of them.
	Precision int `yaml:"precision"`
	// StripColors removes authored colors. Defaults to true for colorable
	// icons and false for color-preserving ones.
	StripColors *bool `yaml:"strip_colors,omitempty"`
	// ValidatePaths rejects malformed path data (default true).
	ValidatePaths *bool `yaml:"validate_paths,omitempty"`
	// RemoveAttributes lists attributes dropped from every element.
	RemoveAttributes []string `yaml:"remove_attributes,omitempty"`
}

// DefaultOptimizeConfig returns the policy for an icon type. Numbers keep
// every significant digit. Color-preserving icons skip the engine so their
// geometry and colors pass through unchanged.
func DefaultOptimizeConfig(t model.IconType) OptimizeConfig {
	strip := t == model.Colorable
	validate := true
	engine := EngineMinify
	if t == model.ColorPreserving {
		engine = EngineNone
	}
	return OptimizeConfig{
		Engine:           engine,
		Precision:        0,
		StripColors:      &strip,
		ValidatePaths:    &validate,
		RemoveAttributes: []string{"data-name"},
	}
}

// LoadOptimizeConfig reads dir/optimize.yaml over the type defaults. A
// missing file yields the defaults.
func LoadOptimizeConfig(dir string, t model.IconType) (OptimizeConfig, error) {
	cfg := DefaultOptimizeConfig(t)

	path := filepath.Join(dir, ConfigFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read optimizer config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse optimizer config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid optimizer config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the engine name and precision.
func (c OptimizeConfig) Validate() error {
	switch c.Engine {
	case EngineMinify, EngineNone, "":
	default:
		return fmt.Errorf("unknown engine %q", c.Engine)
	}
	if c.Precision < 0 {
		return fmt.Errorf("precision must not be negative")
	}
	return nil
}

// NewOptimizer builds the optimizer described by cfg.
func NewOptimizer(cfg OptimizeConfig) (Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{}
	if cfg.Engine != EngineNone {
		p.Engine = NewMinifyEngine(cfg.Precision)
	}
	if cfg.ValidatePaths == nil || *cfg.ValidatePaths {
		p.Plugins = append(p.Plugins, ValidatePaths())
	}
	if len(cfg.RemoveAttributes) > 0 {
		p.Plugins = append(p.Plugins, RemoveAttributes(cfg.RemoveAttributes...))
	}
	if cfg.StripColors != nil && *cfg.StripColors {
		p.Plugins = append(p.Plugins, StripColors())
	}
	return p, nil
}

// Pipeline runs an optional engine followed by tree plugins.
type Pipeline struct {
	Engine  Optimizer
	Plugins []Plugin
}

// Optimize implements Optimizer.
func (p *Pipeline) Optimize(markup []byte) ([]byte, error) {
	out := markup
	if p.Engine != nil {
		var err error
		if out, err = p.Engine.Optimize(out); err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
	}

	root, err := parseRoot(out)
	if err != nil {
		return nil, err
	}
	for _, plugin := range p.Plugins {
		if err := plugin.Apply(root); err != nil {
			return nil, fmt.Errorf("%s: %w", plugin.Name, err)
		}
	}
	return render(root)
}

// MinifyEngine minifies markup with tdewolff/minify.
type MinifyEngine struct {
	m *minify.M
}

// NewMinifyEngine returns an engine keeping precision significant digits
// (0 keeps all).
func NewMinifyEngine(precision int) *MinifyEngine {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add(mediaType, &svgmin.Minifier{Precision: precision})
	return &MinifyEngine{m: m}
}

// Optimize implements Optimizer.
func (e *MinifyEngine) Optimize(markup []byte) ([]byte, error) {
	return e.m.Bytes(mediaType, markup)
}
