// Package generator turns the icon directories into generated components,
// an index module and the manifest record. Full builds regenerate
// everything; incremental runs apply a list of added and deleted icons to
// the existing manifest and converge to the same output.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/c360studio/iconforge/component"
	"github.com/c360studio/iconforge/config"
	"github.com/c360studio/iconforge/export"
	"github.com/c360studio/iconforge/identity"
	"github.com/c360studio/iconforge/metrics"
	"github.com/c360studio/iconforge/model"
	"github.com/c360studio/iconforge/storage"
	"github.com/c360studio/iconforge/svg"
)

// Generator runs builds against one configuration. Builds are serialized.
type Generator struct {
	cfg        *config.Config
	deriver    *identity.Deriver
	store      *storage.Store
	transforms *TransformCache
	metrics    *metrics.Recorder
	logger     *slog.Logger

	mu sync.Mutex
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(g *Generator) {
		g.metrics = r
	}
}

// WithTransformCache enables memoized SVG transforms.
func WithTransformCache(c *TransformCache) Option {
	return func(g *Generator) {
		g.transforms = c
	}
}

// New creates a generator for cfg.
func New(cfg *config.Config, opts ...Option) (*Generator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	g := &Generator{
		cfg:     cfg,
		deriver: identity.NewDeriver(cfg.Naming.ComponentPrefix, cfg.Naming.TagPrefix),
		store:   storage.NewStore(cfg.Resolve(cfg.Output.Manifest)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Config returns the generator's configuration.
func (g *Generator) Config() *config.Config {
	return g.cfg
}

// Manifest returns the stored manifest record.
func (g *Generator) Manifest() (*export.Manifest, error) {
	return g.store.Load()
}

func (g *Generator) componentsDir() string {
	return g.cfg.Resolve(g.cfg.Output.ComponentsDir)
}

func (g *Generator) indexPath() string {
	return g.cfg.Resolve(g.cfg.Output.Index)
}

// generate runs the single-file pipeline and writes the component.
func (g *Generator) generate(configs *ConfigCache, f iconFile) (export.Entry, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return export.Entry{}, fmt.Errorf("read %s: %w", f.Source, err)
	}

	id, err := g.deriver.Derive(f.Path)
	if err != nil {
		return export.Entry{}, fmt.Errorf("%s: %w", f.Source, err)
	}

	opt, fingerprint, err := configs.Optimizer(g.cfg.TypeDir(f.Type), f.Type)
	if err != nil {
		return export.Entry{}, fmt.Errorf("%s: %w", f.Source, err)
	}

	key := g.transforms.Key(raw, f.Type, fingerprint)
	res, ok := g.transforms.Get(key)
	if !ok {
		if res, err = svg.Transform(f.Source, raw, f.Type, opt); err != nil {
			return export.Entry{}, err
		}
		g.transforms.Add(key, res)
	}

	content, err := component.Synthesize(component.Input{
		Identity:   id,
		Type:       f.Type,
		Markup:     res.Markup,
		Dimensions: res.Dimensions,
		Source:     f.Source,
	})
	if err != nil {
		return export.Entry{}, err
	}

	out := filepath.Join(g.componentsDir(), component.FileName(id))
	if err := storage.WriteFileAtomic(out, content, 0644); err != nil {
		return export.Entry{}, fmt.Errorf("write component for %s: %w", f.Source, err)
	}
	g.metrics.IconGenerated(f.Type)

	return export.Entry{
		ComponentID: id.ComponentID,
		Name:        id.SafeBaseName,
		TagName:     id.TagName,
		Type:        f.Type,
		Source:      f.Source,
	}, nil
}

// commit writes the manifest record and regenerates the index from it.
func (g *Generator) commit(m *export.Manifest) error {
	if err := g.store.Save(m); err != nil {
		return err
	}

	prefix, err := export.ImportPrefix(g.indexPath(), g.componentsDir())
	if err != nil {
		return err
	}
	if err := storage.WriteFileAtomic(g.indexPath(), export.RenderIndex(m, prefix), 0644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	g.metrics.SetManifestIcons(m.Len())
	return nil
}

// recordError counts err under its kind.
func (g *Generator) recordError(err error) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return
	case errors.Is(err, identity.ErrNaming):
		g.metrics.GenerationError(metrics.KindNaming)
	case errors.Is(err, svg.ErrOptimization):
		g.metrics.GenerationError(metrics.KindOptimization)
	case errors.Is(err, ErrDuplicate):
		g.metrics.GenerationError(metrics.KindDuplicate)
	default:
		g.metrics.GenerationError(metrics.KindIO)
	}
}

// typeOf classifies an icon path relative to the icons root by its first
// segment.
func (g *Generator) typeOf(rel string) model.IconType {
	first, _, _ := strings.Cut(rel, "/")
	if first == g.cfg.Icons.ColorPreservingDir {
		return model.ColorPreserving
	}
	return model.Colorable
}
