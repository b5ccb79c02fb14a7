// Package bundle builds distributable JavaScript from the generated index
// with esbuild.
package bundle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/c360studio/iconforge/export"
)

// ErrBuild is matched by errors reporting esbuild diagnostics.
var ErrBuild = errors.New("bundle failed")

// Options configures a bundle run.
type Options struct {
	// IndexPath is the generated index module, the entry point.
	IndexPath string
	// OutDir receives one file per format.
	OutDir  string
	Formats []export.Format
	// GlobalName is the window global of the browser bundle.
	GlobalName string
	// External lists imports left unbundled in formats that allow it.
	External []string
	Logger   *slog.Logger
}

// Output describes one written bundle.
type Output struct {
	Format export.Format
	Path   string
	Size   int
}

// Bundle builds every requested format. Formats are built in order and
// the first failure stops the run.
func Bundle(ctx context.Context, opts Options) ([]Output, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.IndexPath == "" || opts.OutDir == "" {
		return nil, fmt.Errorf("index path and output directory are required")
	}
	if _, err := os.Stat(opts.IndexPath); err != nil {
		return nil, fmt.Errorf("bundle entry point: %w", err)
	}

	var outputs []Output
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return outputs, err
		}
		info, ok := export.GetFormatInfo(format)
		if !ok {
			return outputs, fmt.Errorf("unknown format %q", format)
		}

		out, err := build(opts, info)
		if err != nil {
			return outputs, err
		}
		logger.Info("Wrote bundle", "format", format, "path", out.Path, "bytes", out.Size)
		outputs = append(outputs, out)
	}
	return outputs, nil
}

func build(opts Options, info export.FormatInfo) (Output, error) {
	outfile := filepath.Join(opts.OutDir, info.FileName)
	if abs, err := filepath.Abs(outfile); err == nil {
		outfile = abs
	}

	buildOpts := api.BuildOptions{
		EntryPoints:       []string{opts.IndexPath},
		Outfile:           outfile,
		Bundle:            true,
		Write:             true,
		Target:            api.ES2020,
		LogLevel:          api.LogLevelSilent,
		MinifyWhitespace:  info.Minify,
		MinifyIdentifiers: info.Minify,
		MinifySyntax:      info.Minify,
		Loader:            map[string]api.Loader{".ts": api.LoaderTS},
		Banner:            map[string]string{"js": "/* Generated by iconforge. */"},
	}
	if info.External {
		buildOpts.External = opts.External
	}

	switch info.Name {
	case export.FormatESM:
		buildOpts.Format = api.FormatESModule
		buildOpts.Platform = api.PlatformNeutral
	case export.FormatCJS:
		buildOpts.Format = api.FormatCommonJS
		buildOpts.Platform = api.PlatformNode
	case export.FormatBrowser:
		buildOpts.Format = api.FormatIIFE
		buildOpts.Platform = api.PlatformBrowser
		buildOpts.GlobalName = opts.GlobalName
	}

	result := api.Build(buildOpts)
	if len(result.Errors) > 0 {
		return Output{}, fmt.Errorf("%w: %s: %s", ErrBuild, info.Name, formatMessages(result.Errors))
	}

	size := 0
	for _, f := range result.OutputFiles {
		if f.Path == outfile {
			size = len(f.Contents)
		}
	}
	return Output{Format: info.Name, Path: outfile, Size: size}, nil
}

// formatMessages joins esbuild diagnostics into one line each.
func formatMessages(msgs []api.Message) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if loc := m.Location; loc != nil {
			lines = append(lines, fmt.Sprintf("%s:%d:%d: %s", loc.File, loc.Line, loc.Column, m.Text))
			continue
		}
		lines = append(lines, m.Text)
	}
	return strings.Join(lines, "; ")
}
