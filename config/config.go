// Package config provides configuration loading and management for iconforge.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/iconforge/export"
	"github.com/c360studio/iconforge/model"
)

// Config represents the complete iconforge configuration
type Config struct {
	Repo    RepoConfig    `yaml:"repo"`
	Icons   IconsConfig   `yaml:"icons"`
	Output  OutputConfig  `yaml:"output"`
	Naming  NamingConfig  `yaml:"naming"`
	Dist    DistConfig    `yaml:"dist"`
	Preview PreviewConfig `yaml:"preview"`
	Server  ServerConfig  `yaml:"server"`
	Git     GitConfig     `yaml:"git"`
}

// RepoConfig configures the project root that relative paths resolve against
type RepoConfig struct {
	// Path is the project root (auto-detected if empty)
	Path string `yaml:"path"`
}

// IconsConfig configures the icon source directories
type IconsConfig struct {
	// Root contains one directory per icon type
	Root string `yaml:"root"`
	// ColorableDir holds icons whose colors are stripped (default: nocolors)
	ColorableDir string `yaml:"colorable_dir"`
	// ColorPreservingDir holds icons whose colors are kept (default: colors)
	ColorPreservingDir string `yaml:"color_preserving_dir"`
	// Include lists doublestar patterns matched inside each type directory
	Include []string `yaml:"include"`
	// Exclude lists doublestar patterns removed from the include set
	Exclude []string `yaml:"exclude"`
}

// OutputConfig configures the generated source tree
type OutputConfig struct {
	// ComponentsDir receives one generated file per icon
	ComponentsDir string `yaml:"components_dir"`
	// Index is the generated module re-exporting every component
	Index string `yaml:"index"`
	// Manifest is the structured record of generated icons
	Manifest string `yaml:"manifest"`
}

// NamingConfig configures identifier prefixes
type NamingConfig struct {
	// ComponentPrefix is prepended to PascalCase class names (default: QxIcon)
	ComponentPrefix string `yaml:"component_prefix"`
	// TagPrefix is prepended to kebab-case tag names (default: qx-icon)
	TagPrefix string `yaml:"tag_prefix"`
}

// DistConfig configures bundled distributions
type DistConfig struct {
	// Dir receives the bundles
	Dir string `yaml:"dir"`
	// Formats lists the distribution formats to build
	Formats []string `yaml:"formats"`
	// GlobalName is the window global of the browser bundle
	GlobalName string `yaml:"global_name"`
	// External lists imports left unbundled in esm/cjs output
	External []string `yaml:"external"`
}

// PreviewConfig configures the static preview page
type PreviewConfig struct {
	// Path is the generated HTML file
	Path string `yaml:"path"`
	// Title is the page title
	Title string `yaml:"title"`
}

// ServerConfig configures the dev server and watch loop
type ServerConfig struct {
	// Addr is the listen address
	Addr string `yaml:"addr"`
	// Debounce is how long the watcher waits for more changes
	Debounce time.Duration `yaml:"debounce"`
}

// GitConfig configures commit automation
type GitConfig struct {
	// AutoCommit commits regenerated output after each run
	AutoCommit bool `yaml:"auto_commit"`
	// Message is the commit message (conventional commit format)
	Message string `yaml:"message"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Repo: RepoConfig{
			Path: "", // Auto-detect
		},
		Icons: IconsConfig{
			Root:               "icons",
			ColorableDir:       model.DefaultDirs[model.Colorable],
			ColorPreservingDir: model.DefaultDirs[model.ColorPreserving],
			Include:            []string{"*.svg"},
		},
		Output: OutputConfig{
			ComponentsDir: "src/icons",
			Index:         "src/index.ts",
			Manifest:      "src/icons.manifest.yaml",
		},
		Naming: NamingConfig{
			ComponentPrefix: "QxIcon",
			TagPrefix:       "qx-icon",
		},
		Dist: DistConfig{
			Dir:        "dist",
			Formats:    []string{string(export.FormatESM), string(export.FormatCJS), string(export.FormatBrowser)},
			GlobalName: "QxIcons",
			External:   []string{"lit", "lit/*"},
		},
		Preview: PreviewConfig{
			Path:  "preview/index.html",
			Title: "Icon preview",
		},
		Server: ServerConfig{
			Addr:     "127.0.0.1:5173",
			Debounce: 150 * time.Millisecond,
		},
		Git: GitConfig{
			AutoCommit: false,
			Message:    "chore(icons): regenerate icon components",
		},
	}
}

var (
	componentPrefixPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
	tagPrefixPattern       = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)
	globalNamePattern      = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Icons.Root == "" {
		return fmt.Errorf("icons.root is required")
	}
	if c.Icons.ColorableDir == "" || c.Icons.ColorPreservingDir == "" {
		return fmt.Errorf("icons.colorable_dir and icons.color_preserving_dir are required")
	}
	if c.Icons.ColorableDir == c.Icons.ColorPreservingDir {
		return fmt.Errorf("icons.colorable_dir and icons.color_preserving_dir must differ")
	}
	if len(c.Icons.Include) == 0 {
		return fmt.Errorf("icons.include must list at least one pattern")
	}
	if c.Output.ComponentsDir == "" || c.Output.Index == "" || c.Output.Manifest == "" {
		return fmt.Errorf("output.components_dir, output.index and output.manifest are required")
	}
	if !componentPrefixPattern.MatchString(c.Naming.ComponentPrefix) {
		return fmt.Errorf("naming.component_prefix must be an identifier, got %q", c.Naming.ComponentPrefix)
	}
	// Custom element names must contain a hyphen; the prefix plus "-name"
	// always does, but the prefix itself must be lowercase kebab.
	if !tagPrefixPattern.MatchString(c.Naming.TagPrefix) {
		return fmt.Errorf("naming.tag_prefix must be lowercase kebab-case, got %q", c.Naming.TagPrefix)
	}
	if _, err := export.ParseFormats(c.Dist.Formats); err != nil {
		return fmt.Errorf("dist.formats: %w", err)
	}
	if c.Dist.GlobalName != "" && !globalNamePattern.MatchString(c.Dist.GlobalName) {
		return fmt.Errorf("dist.global_name must be an identifier, got %q", c.Dist.GlobalName)
	}
	if c.Server.Debounce < 0 {
		return fmt.Errorf("server.debounce must not be negative")
	}
	return nil
}

// TypeDirName returns the directory name of an icon type.
func (c *Config) TypeDirName(t model.IconType) string {
	if t == model.ColorPreserving {
		return c.Icons.ColorPreservingDir
	}
	return c.Icons.ColorableDir
}

// TypeDir returns the resolved source directory of an icon type.
func (c *Config) TypeDir(t model.IconType) string {
	return c.Resolve(filepath.Join(c.Icons.Root, c.TypeDirName(t)))
}

// Resolve makes a configured path absolute against the repo root.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Repo.Path, p)
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Repo
	if other.Repo.Path != "" {
		c.Repo.Path = other.Repo.Path
	}

	// Icons
	if other.Icons.Root != "" {
		c.Icons.Root = other.Icons.Root
	}
	if other.Icons.ColorableDir != "" {
		c.Icons.ColorableDir = other.Icons.ColorableDir
	}
	if other.Icons.ColorPreservingDir != "" {
		c.Icons.ColorPreservingDir = other.Icons.ColorPreservingDir
	}
	if len(other.Icons.Include) > 0 {
		c.Icons.Include = other.Icons.Include
	}
	if len(other.Icons.Exclude) > 0 {
		c.Icons.Exclude = other.Icons.Exclude
	}

	// Output
	if other.Output.ComponentsDir != "" {
		c.Output.ComponentsDir = other.Output.ComponentsDir
	}
	if other.Output.Index != "" {
		c.Output.Index = other.Output.Index
	}
	if other.Output.Manifest != "" {
		c.Output.Manifest = other.Output.Manifest
	}

	// Naming
	if other.Naming.ComponentPrefix != "" {
		c.Naming.ComponentPrefix = other.Naming.ComponentPrefix
	}
	if other.Naming.TagPrefix != "" {
		c.Naming.TagPrefix = other.Naming.TagPrefix
	}

	// Dist
	if other.Dist.Dir != "" {
		c.Dist.Dir = other.Dist.Dir
	}
	if len(other.Dist.Formats) > 0 {
		c.Dist.Formats = other.Dist.Formats
	}
	if other.Dist.GlobalName != "" {
		c.Dist.GlobalName = other.Dist.GlobalName
	}
	if len(other.Dist.External) > 0 {
		c.Dist.External = other.Dist.External
	}

	// Preview
	if other.Preview.Path != "" {
		c.Preview.Path = other.Preview.Path
	}
	if other.Preview.Title != "" {
		c.Preview.Title = other.Preview.Title
	}

	// Server
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.Debounce != 0 {
		c.Server.Debounce = other.Server.Debounce
	}

	// Git
	if other.Git.AutoCommit {
		c.Git.AutoCommit = true
	}
	if other.Git.Message != "" {
		c.Git.Message = other.Git.Message
	}
}
