package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Catalog.BaseURL != "https://world.openfoodfacts.org" {
		t.Errorf("unexpected base URL %q", cfg.Catalog.BaseURL)
	}
	if cfg.Catalog.PageSize != 24 {
		t.Errorf("page size = %d, want 24", cfg.Catalog.PageSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults failed validation: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Catalog.PageSize = 50
	cfg.Server.ListenAddr = ":9999"
	cfg.Logging.DebugMode = true
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Catalog.PageSize != 50 {
		t.Errorf("page size = %d, want 50", loaded.Catalog.PageSize)
	}
	if loaded.Server.ListenAddr != ":9999" {
		t.Errorf("listen addr = %q, want :9999", loaded.Server.ListenAddr)
	}
	if !loaded.Logging.DebugMode {
		t.Errorf("debug mode not preserved")
	}
}

func TestEnvOverrides(t *testing.T) {
	os.Setenv("FOODEXPLORER_CATALOG_URL", "http://localhost:8080")
	os.Setenv("FOODEXPLORER_DEBUG", "1")
	defer os.Unsetenv("FOODEXPLORER_CATALOG_URL")
	defer os.Unsetenv("FOODEXPLORER_DEBUG")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Catalog.BaseURL != "http://localhost:8080" {
		t.Errorf("env override ignored, base URL = %q", cfg.Catalog.BaseURL)
	}
	if !cfg.Logging.DebugMode || cfg.Logging.Level != "debug" {
		t.Errorf("debug env override ignored")
	}
}

func TestGetCatalogTimeout(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.GetCatalogTimeout(); got != 30*time.Second {
		t.Errorf("default timeout = %v", got)
	}
	cfg.Catalog.Timeout = "5s"
	if got := cfg.GetCatalogTimeout(); got != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", got)
	}
	cfg.Catalog.Timeout = "bogus"
	if got := cfg.GetCatalogTimeout(); got != 30*time.Second {
		t.Errorf("bad duration should fall back to 30s, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Catalog.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error for empty base URL")
	}

	cfg = DefaultConfig()
	cfg.Catalog.PageSize = 0
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected error for zero page size")
	}
}
