package generator

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/iconforge/export"
	"github.com/c360studio/iconforge/metrics"
	"github.com/c360studio/iconforge/model"
)

// FullBuild regenerates every component from the icon directories. The
// component directory is recreated, so output for removed icons
// disappears. The manifest record and index are written only after every
// icon succeeded.
func (g *Generator) FullBuild(ctx context.Context) (*export.Manifest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()
	logger := g.logger.With("run_id", uuid.NewString(), "mode", metrics.ModeFull)
	logger.Info("Starting full build", "icons_root", g.cfg.Resolve(g.cfg.Icons.Root))

	m, err := g.fullBuild(ctx)
	if err != nil {
		g.recordError(err)
		logger.Error("Full build failed", "error", err)
		return nil, err
	}

	elapsed := time.Since(start)
	g.metrics.ObserveBuild(metrics.ModeFull, elapsed)
	counts := m.CountByType()
	logger.Info("Full build complete",
		"icons", m.Len(),
		"colorable", counts[model.Colorable],
		"color_preserving", counts[model.ColorPreserving],
		"duration", elapsed)
	return m, nil
}

func (g *Generator) fullBuild(ctx context.Context) (*export.Manifest, error) {
	if _, err := g.CheckDuplicates(); err != nil {
		return nil, err
	}

	outDir := g.componentsDir()
	if err := os.RemoveAll(outDir); err != nil {
		return nil, fmt.Errorf("clear component directory: %w", err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create component directory: %w", err)
	}

	configs := NewConfigCache()
	m := export.NewManifest()
	for _, t := range model.AllTypes {
		files, err := g.scan(t, true)
		if err != nil {
			return nil, err
		}
		g.logger.Debug("Scanned icon directory", "type", t, "files", len(files))

		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			entry, err := g.generate(configs, f)
			if err != nil {
				return nil, err
			}
			if err := m.Add(entry); err != nil {
				return nil, err
			}
			g.logger.Debug("Generated component", "name", entry.Name, "source", entry.Source)
		}
	}

	if err := g.commit(m); err != nil {
		return nil, err
	}
	return m, nil
}
