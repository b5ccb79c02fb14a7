// Package main provides the iconforge binary entry point.
// Iconforge turns directories of SVG icons into self-registering web
// components, an index module and bundled distributions.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/iconforge/config"
	"github.com/c360studio/iconforge/export"
	"github.com/c360studio/iconforge/generator"
	"github.com/c360studio/iconforge/model"
	"github.com/c360studio/iconforge/watcher"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "iconforge"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	commit     bool
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Generate web components from SVG icons",
		Long: `Iconforge generates one self-registering custom element per SVG icon.

Icons under the colorable directory (default "nocolors") have their colors
stripped and follow the surrounding text color. Icons under the
color-preserving directory (default "colors") keep their artwork.

Running iconforge without a command performs a full build.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts, buildOptions{})
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML, default: iconforge.yaml searched upward)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.commit, "commit", false, "Commit generated output with git")

	cmd.AddCommand(
		initCmd(opts),
		buildCmd(opts),
		checkCmd(opts),
		cleanCmd(opts),
		watchCmd(opts),
		serveCmd(opts),
		bundleCmd(opts),
		previewCmd(opts),
		versionCmd(),
	)
	return cmd
}

func initCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a project config, icon directories and the user config",
		Long: `Init writes iconforge.yaml with the default settings into dir (default:
the current directory) and creates the icon type directories. Existing
files are kept. The user config under ~/.config/iconforge is created when missing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			created, err := initProject(dir)
			if err != nil {
				return err
			}
			if err := config.NewLoader(logger).EnsureUserConfig(); err != nil {
				return fmt.Errorf("create user config: %w", err)
			}

			verb := "Created"
			if !created {
				verb = "Kept existing"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, filepath.Join(dir, config.ProjectConfigFile))
			return nil
		},
	}
}

// initProject writes the default project config unless one exists and
// creates the icon type directories. It reports whether the config was
// written.
func initProject(dir string) (bool, error) {
	cfg := config.DefaultConfig()
	for _, t := range model.AllTypes {
		typeDir := filepath.Join(dir, cfg.Icons.Root, cfg.TypeDirName(t))
		if err := os.MkdirAll(typeDir, 0755); err != nil {
			return false, fmt.Errorf("create icon directory: %w", err)
		}
	}

	path := filepath.Join(dir, config.ProjectConfigFile)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := cfg.SaveToFile(path); err != nil {
		return false, err
	}
	return true, nil
}

func cleanCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove generated components, index and manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(opts)
			if err != nil {
				return err
			}
			existed, err := app.Clean()
			if err != nil {
				return err
			}
			if existed {
				fmt.Fprintln(cmd.OutOrStdout(), "Removed generated output")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No manifest found; removed leftover output")
			}
			return nil
		},
	}
}

type buildOptions struct {
	incremental bool
	adds        []string
	deletes     []string
}

func buildCmd(opts *globalOptions) *cobra.Command {
	var b buildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate components, index and manifest",
		Long: `Build regenerates every component from the icon directories.

With --incremental, only the listed icons are processed against the
existing manifest. Paths are relative to the icons root, for example
"colors/flag.svg". Deletions are applied before additions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts, b)
		},
	}

	cmd.Flags().BoolVar(&b.incremental, "incremental", false, "Apply only the listed additions and deletions")
	cmd.Flags().StringSliceVar(&b.adds, "add", nil, "Icons added or changed (comma-separated, incremental only)")
	cmd.Flags().StringSliceVar(&b.deletes, "delete", nil, "Icons deleted (comma-separated, incremental only)")
	return cmd
}

func runBuild(cmd *cobra.Command, opts *globalOptions, b buildOptions) error {
	if !b.incremental && (len(b.adds) > 0 || len(b.deletes) > 0) {
		return fmt.Errorf("--add and --delete require --incremental")
	}

	app, err := setup(opts)
	if err != nil {
		return err
	}

	var m *export.Manifest
	if b.incremental {
		m, err = app.Incremental(cmd.Context(), b.adds, b.deletes)
	} else {
		m, err = app.Build(cmd.Context())
	}
	if err != nil {
		return err
	}

	counts := m.CountByType()
	fmt.Fprintf(cmd.OutOrStdout(), "Generated %d icons (%d colorable, %d color-preserving)\n",
		m.Len(), counts[model.Colorable], counts[model.ColorPreserving])
	return nil
}

func checkCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Fail when icon names collide",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(opts)
			if err != nil {
				return err
			}

			report, err := app.Check()
			if report != nil {
				printReport(cmd.OutOrStdout(), report)
			}
			return err
		},
	}
}

func printReport(w io.Writer, report *generator.DuplicateReport) {
	if report.Empty() {
		fmt.Fprintln(w, "No duplicate icon names")
		return
	}
	for _, name := range report.SameFilename {
		fmt.Fprintf(w, "duplicate file: %s\n", name)
	}
	names := make([]string, 0, len(report.Collisions))
	for name := range report.Collisions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "name collision: %s <- %s\n", name, strings.Join(report.Collisions[name], ", "))
	}
}

func watchCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Build, then rebuild incrementally as icons change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return app.Watch(cmd.Context(), func(batch watcher.Batch) {
				if batch.Error != nil {
					fmt.Fprintf(out, "Build failed: %v\n", batch.Error)
					return
				}
				fmt.Fprintf(out, "Rebuilt: %d added, %d deleted, %d icons\n",
					len(batch.Adds), len(batch.Deletes), batch.Manifest.Len())
			})
		},
	}
}

func serveCmd(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live-reloading preview while watching icons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(opts)
			if err != nil {
				return err
			}
			if addr != "" {
				app.cfg.Server.Addr = addr
			}
			return app.Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func bundleCmd(opts *globalOptions) *cobra.Command {
	var formats []string

	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Bundle the generated index into distributable JavaScript",
		Long: fmt.Sprintf(`Bundle builds the generated index with esbuild.

Formats: %s.`, strings.Join(export.FormatNames(), ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(opts)
			if err != nil {
				return err
			}
			outputs, err := app.Bundle(cmd.Context(), formats)
			if err != nil {
				return err
			}
			for _, o := range outputs {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s (%d bytes)\n", o.Format, o.Path, o.Size)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&formats, "formats", nil, "Formats to build (default: dist.formats)")
	return cmd
}

func previewCmd(opts *globalOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Write a static HTML gallery of the generated icons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(opts)
			if err != nil {
				return err
			}
			path, err := app.Preview(out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: preview.path)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

// setup configures logging, loads configuration and wires the app.
func setup(opts *globalOptions) (*App, error) {
	level, err := parseLevel(opts.logLevel)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	loader := config.NewLoader(logger)
	if opts.configPath != "" {
		loader.WithFile(opts.configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Debug("Configuration loaded", "repo_path", cfg.Repo.Path)

	return NewApp(cfg, logger, opts.commit)
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
