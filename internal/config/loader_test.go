package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFrom_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Server.Port)
	}
	if cfg.Cache.ViewTTL != 5*time.Minute {
		t.Fatalf("expected default view TTL, got %v", cfg.Cache.ViewTTL)
	}
}

func TestLoadFrom_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "siteforge.yaml")
	content := `server:
  port: "9090"
catalog:
  path: /etc/siteforge/catalog.yaml
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected yaml port, got %q", cfg.Server.Port)
	}
	if cfg.Catalog.Path != "/etc/siteforge/catalog.yaml" {
		t.Fatalf("expected catalog path, got %q", cfg.Catalog.Path)
	}
	// Untouched values keep defaults.
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Fatalf("expected default NATS url, got %q", cfg.NATS.URL)
	}
}

func TestLoadFrom_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "siteforge.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SITEFORGE_PORT", "7070")
	t.Setenv("SITEFORGE_CACHE_VIEW_TTL", "30s")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("expected env port, got %q", cfg.Server.Port)
	}
	if cfg.Cache.ViewTTL != 30*time.Second {
		t.Fatalf("expected env TTL, got %v", cfg.Cache.ViewTTL)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "siteforge.yaml")
	if err := os.WriteFile(path, []byte("server: [broken"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	cfg := Defaults()
	cfg.Postgres.DSN = ""
	if err := validate(&cfg); err == nil {
		t.Fatal("expected error for missing DSN")
	}

	cfg = Defaults()
	cfg.Cache.MaxSizeMB = 0
	if err := validate(&cfg); err == nil {
		t.Fatal("expected error for zero cache size")
	}
}
