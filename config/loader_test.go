package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoaderLayers(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	sub := filepath.Join(project, "packages", "ui")

	writeFile(t, filepath.Join(home, UserConfigDir, UserConfigFile), `
naming:
  component_prefix: User
server:
  addr: ":9000"
`)
	writeFile(t, filepath.Join(project, ProjectConfigFile), `
naming:
  component_prefix: Acme
icons:
  root: assets
`)
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader(nil).WithHomeDir(home).WithWorkDir(sub).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Naming.ComponentPrefix != "Acme" {
		t.Errorf("project config should win over user config, got %s", cfg.Naming.ComponentPrefix)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("user config should apply when project is silent, got %s", cfg.Server.Addr)
	}
	if cfg.Icons.Root != "assets" {
		t.Errorf("expected icons root assets, got %s", cfg.Icons.Root)
	}
	if cfg.Repo.Path != project {
		t.Errorf("repo path should be the project config directory, got %s", cfg.Repo.Path)
	}
}

func TestLoaderExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "naming:\n  tag_prefix: acme-glyph\n")

	cfg, err := NewLoader(nil).WithHomeDir(t.TempDir()).WithFile(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Naming.TagPrefix != "acme-glyph" {
		t.Errorf("expected tag prefix acme-glyph, got %s", cfg.Naming.TagPrefix)
	}

	_, err = NewLoader(nil).WithHomeDir(t.TempDir()).WithFile(filepath.Join(dir, "missing.yaml")).Load()
	if err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoaderEnvOverrides(t *testing.T) {
	project := t.TempDir()
	writeFile(t, filepath.Join(project, ProjectConfigFile), "naming:\n  component_prefix: Acme\n")

	t.Setenv(EnvPrefix+"COMPONENT_PREFIX", "FromEnv")
	t.Setenv(EnvPrefix+"DEBOUNCE", "2s")

	cfg, err := NewLoader(nil).WithHomeDir(t.TempDir()).WithWorkDir(project).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Naming.ComponentPrefix != "FromEnv" {
		t.Errorf("env should override project config, got %s", cfg.Naming.ComponentPrefix)
	}
	if cfg.Server.Debounce != 2*time.Second {
		t.Errorf("expected 2s debounce, got %v", cfg.Server.Debounce)
	}
}

func TestLoaderDotEnv(t *testing.T) {
	project := t.TempDir()
	writeFile(t, filepath.Join(project, ProjectConfigFile), "icons:\n  root: icons\n")
	writeFile(t, filepath.Join(project, EnvFile), EnvPrefix+"TAG_PREFIX=dotenv-icon\n")

	key := EnvPrefix + "TAG_PREFIX"
	if _, set := os.LookupEnv(key); set {
		t.Skipf("%s already set in environment", key)
	}
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	cfg, err := NewLoader(nil).WithHomeDir(t.TempDir()).WithWorkDir(project).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Naming.TagPrefix != "dotenv-icon" {
		t.Errorf("expected tag prefix from .env, got %s", cfg.Naming.TagPrefix)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad debounce", map[string]string{EnvPrefix + "DEBOUNCE": "soon"}},
		{"bad bool", map[string]string{EnvPrefix + "GIT_AUTO_COMMIT": "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := applyEnv(DefaultConfig(), func(k string) string { return tt.env[k] })
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	l := NewLoader(nil).WithHomeDir(home)

	if err := l.EnsureUserConfig(); err != nil {
		t.Fatalf("EnsureUserConfig failed: %v", err)
	}
	path := filepath.Join(home, UserConfigDir, UserConfigFile)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected user config at %s: %v", path, err)
	}
	// Second call leaves the file alone.
	if err := l.EnsureUserConfig(); err != nil {
		t.Fatalf("second EnsureUserConfig failed: %v", err)
	}
}
