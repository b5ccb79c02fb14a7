package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/iconforge/component"
	"github.com/c360studio/iconforge/export"
	"github.com/c360studio/iconforge/identity"
	"github.com/c360studio/iconforge/metrics"
	"github.com/c360studio/iconforge/storage"
)

// Incremental applies deletions, then additions, to the current manifest.
// Paths are relative to the icons root, e.g. "colors/flag.svg"; an icon is
// color-preserving when its first segment is the color-preserving
// directory. Paths outside the include/exclude patterns and additions whose
// source is missing are logged and skipped. Duplicate names fail the run
// before anything is written, as in a full build.
func (g *Generator) Incremental(ctx context.Context, adds, deletes []string) (*export.Manifest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()
	logger := g.logger.With("run_id", uuid.NewString(), "mode", metrics.ModeIncremental)
	logger.Info("Starting incremental build", "adds", len(adds), "deletes", len(deletes))

	m, err := g.incremental(ctx, logger, adds, deletes)
	if err != nil {
		g.recordError(err)
		logger.Error("Incremental build failed", "error", err)
		return nil, err
	}

	elapsed := time.Since(start)
	g.metrics.ObserveBuild(metrics.ModeIncremental, elapsed)
	logger.Info("Incremental build complete", "icons", m.Len(), "duration", elapsed)
	return m, nil
}

func (g *Generator) incremental(ctx context.Context, logger *slog.Logger, adds, deletes []string) (*export.Manifest, error) {
	if _, err := g.CheckDuplicates(); err != nil {
		return nil, err
	}

	m, err := g.loadManifest(ctx, logger)
	if err != nil {
		return nil, err
	}

	outDir := g.componentsDir()
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create component directory: %w", err)
	}

	for _, p := range deletes {
		if !g.selected(p) {
			logger.Warn("Ignoring deletion outside the icon patterns", "path", p)
			continue
		}
		name, err := identity.SafeBaseName(p)
		if err != nil {
			return nil, fmt.Errorf("delete %s: %w", p, err)
		}
		file := filepath.Join(outDir, name+component.Extension)
		if err := os.Remove(file); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("delete component %s: %w", name, err)
			}
			logger.Warn("Generated component already absent", "name", name, "path", file)
		}
		m.Remove(name)
		logger.Debug("Removed component", "name", name)
	}

	configs := NewConfigCache()
	iconsRoot := g.cfg.Resolve(g.cfg.Icons.Root)
	for _, p := range adds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rel := cleanRel(p)
		if !g.selected(rel) {
			logger.Warn("Skipping icon outside the icon patterns", "path", p)
			continue
		}
		f := iconFile{
			Type:   g.typeOf(rel),
			Path:   filepath.Join(iconsRoot, filepath.FromSlash(rel)),
			Source: rel,
		}
		if _, err := os.Stat(f.Path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Warn("Skipping icon", "error", &MissingFileError{Path: p})
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}

		entry, err := g.generate(configs, f)
		if err != nil {
			return nil, err
		}
		if prev, ok := m.Get(entry.Name); ok && prev.Source != "" && prev.Source != entry.Source {
			logger.Warn("Component replaced by another source",
				"name", entry.Name, "previous", prev.Source, "source", entry.Source)
		}
		m.Upsert(entry)
		logger.Debug("Generated component", "name", entry.Name, "source", entry.Source)
	}

	if err := g.commit(m); err != nil {
		return nil, err
	}
	return m, nil
}

func cleanRel(p string) string {
	return strings.TrimPrefix(path.Clean(filepath.ToSlash(p)), "./")
}

// selected reports whether a path relative to the icons root is an icon a
// full build would pick up: the part below its type directory must match
// the include patterns and none of the exclude patterns.
func (g *Generator) selected(p string) bool {
	rel := cleanRel(p)
	first, rest, found := strings.Cut(rel, "/")
	if found && (first == g.cfg.Icons.ColorableDir || first == g.cfg.Icons.ColorPreservingDir) {
		rel = rest
	}
	return g.Matches(rel)
}

// loadManifest reads the manifest record, falling back to recovering the
// entries from a previously generated index.
func (g *Generator) loadManifest(ctx context.Context, logger *slog.Logger) (*export.Manifest, error) {
	m, err := g.store.Load()
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	indexPath := g.indexPath()
	content, err := os.ReadFile(indexPath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Info("No manifest or index found, starting empty")
		return export.NewManifest(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	prefix, err := export.ImportPrefix(indexPath, g.componentsDir())
	if err != nil {
		return nil, err
	}
	entries, err := export.ParseIndex(ctx, content, prefix)
	if err != nil {
		return nil, fmt.Errorf("recover manifest from %s: %w", indexPath, err)
	}
	logger.Info("Recovered manifest from index", "path", indexPath, "icons", len(entries))
	return export.NewManifest(entries...), nil
}
