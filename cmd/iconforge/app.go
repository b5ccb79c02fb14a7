package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/c360studio/iconforge/bundle"
	"github.com/c360studio/iconforge/config"
	"github.com/c360studio/iconforge/devserver"
	"github.com/c360studio/iconforge/export"
	"github.com/c360studio/iconforge/generator"
	"github.com/c360studio/iconforge/metrics"
	"github.com/c360studio/iconforge/model"
	"github.com/c360studio/iconforge/preview"
	"github.com/c360studio/iconforge/storage"
	"github.com/c360studio/iconforge/tools/git"
	"github.com/c360studio/iconforge/watcher"
)

// App is the main application that wires together all components.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	commit bool

	metrics     *metrics.Recorder
	generator   *generator.Generator
	gitExecutor *git.Executor
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, logger *slog.Logger, commit bool) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cache, err := generator.NewTransformCache(generator.DefaultTransformCacheSize)
	if err != nil {
		return nil, err
	}
	rec := metrics.New()

	gen, err := generator.New(cfg,
		generator.WithLogger(logger),
		generator.WithMetrics(rec),
		generator.WithTransformCache(cache),
	)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:         cfg,
		logger:      logger,
		commit:      commit || cfg.Git.AutoCommit,
		metrics:     rec,
		generator:   gen,
		gitExecutor: git.NewExecutor(cfg.Repo.Path, logger),
	}, nil
}

// Build runs a full build.
func (a *App) Build(ctx context.Context) (*export.Manifest, error) {
	m, err := a.generator.FullBuild(ctx)
	if err != nil {
		return nil, err
	}
	a.commitOutput(ctx)
	return m, nil
}

// Incremental applies additions and deletions.
func (a *App) Incremental(ctx context.Context, adds, deletes []string) (*export.Manifest, error) {
	m, err := a.generator.Incremental(ctx, adds, deletes)
	if err != nil {
		return nil, err
	}
	a.commitOutput(ctx)
	return m, nil
}

// Check runs the duplicate guard.
func (a *App) Check() (*generator.DuplicateReport, error) {
	return a.generator.CheckDuplicates()
}

// Clean removes generated output. It reports whether a manifest record
// existed.
func (a *App) Clean() (bool, error) {
	return a.generator.Clean()
}

// Bundle builds the configured distributions from the current index.
func (a *App) Bundle(ctx context.Context, formats []string) ([]bundle.Output, error) {
	if len(formats) == 0 {
		formats = a.cfg.Dist.Formats
	}
	parsed, err := export.ParseFormats(formats)
	if err != nil {
		return nil, err
	}
	return bundle.Bundle(ctx, bundle.Options{
		IndexPath:  a.cfg.Resolve(a.cfg.Output.Index),
		OutDir:     a.cfg.Resolve(a.cfg.Dist.Dir),
		Formats:    parsed,
		GlobalName: a.cfg.Dist.GlobalName,
		External:   a.cfg.Dist.External,
		Logger:     a.logger,
	})
}

// Preview writes the static preview page for the stored manifest.
func (a *App) Preview(out string) (string, error) {
	m, err := a.generator.Manifest()
	if errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("no manifest at %s; run a build first", a.cfg.Output.Manifest)
	}
	if err != nil {
		return "", err
	}

	if out == "" {
		out = a.cfg.Preview.Path
	}
	out = a.cfg.Resolve(out)

	opts := preview.Options{Title: a.cfg.Preview.Title}
	if info, ok := export.GetFormatInfo(export.FormatBrowser); ok {
		bundlePath := filepath.Join(a.cfg.Resolve(a.cfg.Dist.Dir), info.FileName)
		if rel, err := filepath.Rel(filepath.Dir(out), bundlePath); err == nil {
			opts.BundleURL = filepath.ToSlash(rel)
		}
	}
	if err := preview.Write(out, m, opts); err != nil {
		return "", err
	}
	a.logger.Info("Wrote preview", "path", out, "icons", m.Len())
	return out, nil
}

// Watch builds once, then applies changes until ctx is cancelled. onBatch
// is called after every incremental build.
func (a *App) Watch(ctx context.Context, onBatch func(watcher.Batch)) error {
	if _, err := a.Build(ctx); err != nil {
		return err
	}
	return a.watchLoop(ctx, onBatch)
}

func (a *App) watchLoop(ctx context.Context, onBatch func(watcher.Batch)) error {
	w, err := watcher.New(watcher.Config{
		IconsRoot: a.cfg.Resolve(a.cfg.Icons.Root),
		Dirs: []string{
			a.cfg.TypeDirName(model.Colorable),
			a.cfg.TypeDirName(model.ColorPreserving),
		},
		Match:         a.generator.Matches,
		DebounceDelay: a.cfg.Server.Debounce,
		Logger:        a.logger,
	}, a.generator)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-w.Results():
			if !ok {
				return nil
			}
			if batch.Error == nil {
				a.commitOutput(ctx)
			}
			if onBatch != nil {
				onBatch(batch)
			}
		}
	}
}

// Serve builds, then runs the dev server alongside the watch loop. Every
// successful rebuild refreshes the browser bundle and reloads connected
// pages.
func (a *App) Serve(ctx context.Context) error {
	if _, err := a.Build(ctx); err != nil {
		return err
	}

	info, _ := export.GetFormatInfo(export.FormatBrowser)
	srv := devserver.New(devserver.Config{
		Addr:       a.cfg.Server.Addr,
		DistDir:    a.cfg.Resolve(a.cfg.Dist.Dir),
		BundleFile: info.FileName,
		Title:      a.cfg.Preview.Title,
		Metrics:    a.metrics,
		Logger:     a.logger,
	}, a.generator)

	rebundle := func(ctx context.Context) {
		if _, err := a.Bundle(ctx, []string{string(export.FormatBrowser)}); err != nil {
			a.logger.Warn("Browser bundle failed", "error", err)
		}
	}
	rebundle(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		return a.watchLoop(gctx, func(batch watcher.Batch) {
			if batch.Error != nil {
				srv.ReportError(batch.Error)
				return
			}
			rebundle(gctx)
			srv.Reload(batch.Manifest.Len())
		})
	})
	return g.Wait()
}

// commitOutput commits generated files when commits are enabled. Failures
// are logged; generation already succeeded.
func (a *App) commitOutput(ctx context.Context) {
	if !a.commit {
		return
	}
	_, err := a.gitExecutor.CommitPaths(ctx, a.cfg.Git.Message,
		a.cfg.Resolve(a.cfg.Output.ComponentsDir),
		a.cfg.Resolve(a.cfg.Output.Index),
		a.cfg.Resolve(a.cfg.Output.Manifest),
	)
	if err != nil {
		a.logger.Warn("Failed to commit generated output", "error", err)
	}
}
