package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "https://api.packfinderz.dev" {
		t.Fatalf("unexpected base URL: %q", cfg.API.BaseURL)
	}
	if cfg.API.RequestTimeout != 8*time.Second {
		t.Fatalf("expected default 8s timeout, got %v", cfg.API.RequestTimeout)
	}
	if cfg.Retry.MaxGetRetries != 2 {
		t.Fatalf("expected default GET retry ceiling 2, got %d", cfg.Retry.MaxGetRetries)
	}
	if cfg.Retry.SubmitAttempts != 2 {
		t.Fatalf("expected default submit budget 2, got %d", cfg.Retry.SubmitAttempts)
	}
	if cfg.Store.Path != "packfinderz-client.db" {
		t.Fatalf("unexpected store path %q", cfg.Store.Path)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAPIBaseURL); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAPIBaseURL, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvAPITimeout, "3s")
	t.Setenv("PACKFINDERZ_CLIENT_MAX_GET_RETRIES", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.API.RequestTimeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %v", cfg.API.RequestTimeout)
	}
	if cfg.Retry.MaxGetRetries != 5 {
		t.Fatalf("expected retry ceiling 5, got %d", cfg.Retry.MaxGetRetries)
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

func setMinimalEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvAPIBaseURL, "https://api.packfinderz.dev")
}
