package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if !cfg.App.IsDev() {
		t.Fatalf("expected dev env by default, got %q", cfg.App.Env)
	}
	if cfg.State.Backend != StateBackendFile {
		t.Fatalf("expected file backend by default, got %q", cfg.State.Backend)
	}
	if cfg.Catalog.Timeout != 15*time.Second {
		t.Fatalf("unexpected catalog timeout %v", cfg.Catalog.Timeout)
	}
	if cfg.Catalog.MaxParallelResolves != 4 {
		t.Fatalf("unexpected max parallel resolves %d", cfg.Catalog.MaxParallelResolves)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GINZAPET_APP_ENV", "prod")
	t.Setenv("GINZAPET_CATALOG_BASE_URL", "https://api.ginzapet.example")
	t.Setenv("GINZAPET_STATE_BACKEND", "redis")
	t.Setenv("GINZAPET_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.App.IsProd() {
		t.Fatalf("expected prod env, got %q", cfg.App.Env)
	}
	if cfg.Catalog.BaseURL != "https://api.ginzapet.example" {
		t.Fatalf("unexpected base url %q", cfg.Catalog.BaseURL)
	}
	if cfg.State.Backend != StateBackendRedis {
		t.Fatalf("unexpected state backend %q", cfg.State.Backend)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("GINZAPET_STATE_BACKEND", "punchcards")
	if _, err := Load(); err == nil {
		t.Fatal("expected unknown backend to return an error")
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
}
