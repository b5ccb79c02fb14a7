package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "iconforge.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/iconforge"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
	// EnvFile is loaded from the repo root before environment overrides apply
	EnvFile = ".env"
	// EnvPrefix prefixes every environment override
	EnvPrefix = "ICONFORGE_"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger   *slog.Logger
	workDir  string
	homeDir  string
	explicit string
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// WithWorkDir sets the directory the project config search starts from.
func (l *Loader) WithWorkDir(dir string) *Loader {
	l.workDir = dir
	return l
}

// WithHomeDir overrides the home directory used for the user config.
func (l *Loader) WithHomeDir(dir string) *Loader {
	l.homeDir = dir
	return l
}

// WithFile forces a config file, replacing the project config search.
func (l *Loader) WithFile(path string) *Loader {
	l.explicit = path
	return l
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/iconforge/config.yaml)
// 3. Project config (iconforge.yaml in current or parent directories, or --config)
// 4. .env in the repo root, then ICONFORGE_* environment variables
func (l *Loader) Load() (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// Load user config
	userConfigPath := l.userConfigPath()
	if userConfigPath != "" {
		if userConfig, err := LoadFromFile(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(userConfig)
		} else if !errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	// Load project config
	projectConfigPath := l.explicit
	if projectConfigPath == "" {
		projectConfigPath = l.findProjectConfig()
	}
	if projectConfigPath != "" {
		projectConfig, err := LoadFromFile(projectConfigPath)
		if err != nil {
			if l.explicit != "" {
				return nil, err
			}
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		} else {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
			if config.Repo.Path == "" {
				config.Repo.Path = filepath.Dir(projectConfigPath)
			} else if !filepath.IsAbs(config.Repo.Path) {
				config.Repo.Path = filepath.Join(filepath.Dir(projectConfigPath), config.Repo.Path)
			}
		}
	} else {
		l.logger.Debug("No project config found")
	}

	// Auto-detect repo path if not set
	if config.Repo.Path == "" {
		if gitRoot := l.detectGitRoot(); gitRoot != "" {
			config.Repo.Path = gitRoot
			l.logger.Debug("Auto-detected git root", slog.String("path", gitRoot))
		} else {
			// Fall back to current directory
			config.Repo.Path = l.cwd()
			l.logger.Debug("Using current directory as repo root", slog.String("path", config.Repo.Path))
		}
	}

	envPath := filepath.Join(config.Repo.Path, EnvFile)
	if err := godotenv.Load(envPath); err == nil {
		l.logger.Debug("Loaded env file", slog.String("path", envPath))
	} else if !errors.Is(err, os.ErrNotExist) {
		l.logger.Warn("Failed to load env file", slog.String("path", envPath), slog.String("error", err.Error()))
	}
	if err := applyEnv(config, os.Getenv); err != nil {
		return nil, err
	}

	// Validate final config
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnv overlays ICONFORGE_* variables onto the config.
func applyEnv(c *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(EnvPrefix + key)); v != "" {
			*dst = v
		}
	}
	str("ICONS_ROOT", &c.Icons.Root)
	str("COMPONENTS_DIR", &c.Output.ComponentsDir)
	str("INDEX", &c.Output.Index)
	str("MANIFEST", &c.Output.Manifest)
	str("COMPONENT_PREFIX", &c.Naming.ComponentPrefix)
	str("TAG_PREFIX", &c.Naming.TagPrefix)
	str("DIST_DIR", &c.Dist.Dir)
	str("SERVER_ADDR", &c.Server.Addr)

	if v := strings.TrimSpace(getenv(EnvPrefix + "DIST_FORMATS")); v != "" {
		c.Dist.Formats = strings.Split(v, ",")
	}
	if v := strings.TrimSpace(getenv(EnvPrefix + "DEBOUNCE")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sDEBOUNCE: %w", EnvPrefix, err)
		}
		c.Server.Debounce = d
	}
	if v := strings.TrimSpace(getenv(EnvPrefix + "GIT_AUTO_COMMIT")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sGIT_AUTO_COMMIT: %w", EnvPrefix, err)
		}
		c.Git.AutoCommit = b
	}
	return nil
}

// EnsureUserConfig creates the user config file with defaults if it doesn't exist
func (l *Loader) EnsureUserConfig() error {
	userConfigPath := l.userConfigPath()
	if userConfigPath == "" {
		return fmt.Errorf("cannot determine home directory")
	}

	// Check if it already exists
	if _, err := os.Stat(userConfigPath); err == nil {
		return nil // Already exists
	}

	// Create default config
	config := DefaultConfig()
	if err := config.SaveToFile(userConfigPath); err != nil {
		return err
	}

	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home := l.homeDir
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

func (l *Loader) cwd() string {
	if l.workDir != "" {
		return l.workDir
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return cwd
}

// findProjectConfig searches for iconforge.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	dir := l.cwd()
	if dir == "" {
		return ""
	}

	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return ""
}

// detectGitRoot finds the git repository root from the working directory
func (l *Loader) detectGitRoot() string {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = l.cwd()
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}
