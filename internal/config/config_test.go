package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"assetgate/internal/config"
)

func clearCatalogEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ID", "ICONIK_APP_ID",
		"AUTH_TOKEN", "ICONIK_AUTH_TOKEN",
		"STORAGE_ID", "ICONIK_STORAGE_ID",
		"ICONIK_BASE_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultConfig(t *testing.T) {
	clearCatalogEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, path, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatalf("expected no config file to exist, got exists=true at %s", path)
	}
	expectedPath := filepath.Join(tempHome, ".config", "assetgate", "config.toml")
	if path != expectedPath {
		t.Fatalf("expected path %q, got %q", expectedPath, path)
	}
	if cfg.Iconik.BaseURL != "https://app.iconik.io" {
		t.Fatalf("unexpected base url: %q", cfg.Iconik.BaseURL)
	}
	if cfg.RequestTimeout() != 60*time.Second {
		t.Fatalf("expected 60s timeout, got %s", cfg.RequestTimeout())
	}
	if cfg.Iconik.MaxRetries != 3 {
		t.Fatalf("expected 3 retries, got %d", cfg.Iconik.MaxRetries)
	}
	if cfg.BatchDelay() != 500*time.Millisecond {
		t.Fatalf("expected 500ms batch delay, got %s", cfg.BatchDelay())
	}
	if len(cfg.Batch.Extensions) != 12 || cfg.Batch.Extensions[0] != ".mp4" {
		t.Fatalf("unexpected default extensions: %v", cfg.Batch.Extensions)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if err := cfg.RequireRemote(); err == nil {
		t.Fatal("expected RequireRemote to fail without credentials")
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearCatalogEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "assetgate.toml")
	content := `
[iconik]
base_url = "https://example.test/"
app_id = "app"
auth_token = "token"
timeout_seconds = 5

[storage]
storage_id = "storage-1"
mount_mapping = "/Volumes/media:/mnt/media"

[batch]
extensions = ["MP4", "mov", ".mp4"]
delay_ms = 0

[batch.collections]
"~/projects/alpha" = "col-alpha"

[logging]
format = "JSON"
level = "DEBUG"
dir = "~/logs"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, resolvedPath, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true for custom config")
	}
	if resolvedPath != configPath {
		t.Fatalf("expected resolved path %q, got %q", configPath, resolvedPath)
	}
	if cfg.Iconik.BaseURL != "https://example.test" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Iconik.BaseURL)
	}
	if cfg.RequestTimeout() != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %s", cfg.RequestTimeout())
	}
	if got := strings.Join(cfg.Batch.Extensions, ","); got != ".mp4,.mov" {
		t.Fatalf("expected normalized extensions, got %q", got)
	}
	alpha := filepath.Join(tempHome, "projects", "alpha")
	if cfg.Batch.Collections[alpha] != "col-alpha" {
		t.Fatalf("expected collection mapping for %q, got %v", alpha, cfg.Batch.Collections)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
	if cfg.Logging.Dir != filepath.Join(tempHome, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Logging.Dir)
	}
	if err := cfg.RequireRemote(); err != nil {
		t.Fatalf("RequireRemote returned error: %v", err)
	}
}

func TestEnvironmentFallbacks(t *testing.T) {
	clearCatalogEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("ICONIK_APP_ID", "env-app")
	t.Setenv("AUTH_TOKEN", "env-token")
	t.Setenv("ICONIK_STORAGE_ID", "env-storage")
	t.Setenv("ICONIK_BASE_URL", "https://env.example.test")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Iconik.AppID != "env-app" || cfg.Iconik.AuthToken != "env-token" {
		t.Fatalf("expected credentials from environment, got %+v", cfg.Iconik)
	}
	if cfg.Storage.StorageID != "env-storage" {
		t.Fatalf("expected storage from environment, got %q", cfg.Storage.StorageID)
	}
	if cfg.Iconik.BaseURL != "https://env.example.test" {
		t.Fatalf("expected base url from environment, got %q", cfg.Iconik.BaseURL)
	}
}

func TestConfigValuesWinOverEnvironment(t *testing.T) {
	clearCatalogEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ICONIK_APP_ID", "env-app")

	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[iconik]\napp_id = \"file-app\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Iconik.AppID != "file-app" {
		t.Fatalf("expected config value to win, got %q", cfg.Iconik.AppID)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"relative base url", func(c *config.Config) { c.Iconik.BaseURL = "app.iconik.io" }, "base_url"},
		{"zero timeout", func(c *config.Config) { c.Iconik.TimeoutSeconds = 0 }, "timeout_seconds"},
		{"negative retries", func(c *config.Config) { c.Iconik.MaxRetries = -1 }, "max_retries"},
		{"mapping without colon", func(c *config.Config) { c.Storage.MountMapping = "/local" }, "mount_mapping"},
		{"mapping with empty side", func(c *config.Config) { c.Storage.MountMapping = "/local:" }, "mount_mapping"},
		{"negative delay", func(c *config.Config) { c.Batch.DelayMS = -5 }, "delay_ms"},
		{"no extensions", func(c *config.Config) { c.Batch.Extensions = nil }, "extensions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error mentioning %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error to mention %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("ASSETGATE_TEST_VALUE", "")
	os.Unsetenv("ASSETGATE_TEST_VALUE")

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("ASSETGATE_TEST_VALUE=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := config.LoadEnvFile(envPath); err != nil {
		t.Fatalf("LoadEnvFile returned error: %v", err)
	}
	if got := os.Getenv("ASSETGATE_TEST_VALUE"); got != "from-dotenv" {
		t.Fatalf("expected value from .env, got %q", got)
	}
	if err := config.LoadEnvFile(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("expected missing env file to be ignored, got %v", err)
	}
}

func TestCreateSampleLoads(t *testing.T) {
	clearCatalogEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Storage.StorageID != "your_storage_id_here" {
		t.Fatalf("unexpected sample storage id: %q", cfg.Storage.StorageID)
	}
}
