package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Iconik contains connection settings for the remote asset catalog.
type Iconik struct {
	BaseURL        string `toml:"base_url"`
	AppID          string `toml:"app_id"`
	AuthToken      string `toml:"auth_token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxRetries     int    `toml:"max_retries"`
	RetryBackoffMS int    `toml:"retry_backoff_ms"`
}

// Storage selects the storage the recipe ingests into and how local paths map
// onto it.
type Storage struct {
	StorageID     string `toml:"storage_id"`
	MountMapping  string `toml:"mount_mapping"`
	DefaultViewID string `toml:"default_view_id"`
}

// Batch contains settings for directory ingestion runs.
type Batch struct {
	Extensions  []string          `toml:"extensions"`
	DelayMS     int               `toml:"delay_ms"`
	MetricsAddr string            `toml:"metrics_addr"`
	Collections map[string]string `toml:"collections"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for assetgate.
//
// Configuration sections by subsystem:
//   - Iconik: API base URL, credentials, per-request timeout and retries
//   - Storage: target storage, mount mapping, default metadata view
//   - Batch: directory ingestion extensions, pacing, metrics, collection map
//   - Logging: log format, level, and optional log directory
type Config struct {
	Iconik  Iconik  `toml:"iconik"`
	Storage Storage `toml:"storage"`
	Batch   Batch   `toml:"batch"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. Missing files are
// not an error: defaults and environment fallbacks still apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// LoadEnvFile reads KEY=value pairs from a dotenv file into the process
// environment without overriding variables that are already set. A missing
// file is ignored.
func LoadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// resolveConfigPath picks the file Load reads. An explicit path is used as
// given; otherwise the user config wins over ./assetgate.toml. The bool
// reports whether the chosen file exists.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		exists, err := isFile(expanded)
		if err != nil {
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, exists, nil
	}

	userPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, projectPath} {
		if ok, _ := isFile(candidate); ok {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	}
	return !info.IsDir(), nil
}

// RequestTimeout returns the per-request timeout forwarded to the HTTP transport.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Iconik.TimeoutSeconds) * time.Second
}

// RetryBackoff returns the initial backoff between retried requests.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.Iconik.RetryBackoffMS) * time.Millisecond
}

// BatchDelay returns the fixed pause inserted between files in batch runs.
func (c *Config) BatchDelay() time.Duration {
	return time.Duration(c.Batch.DelayMS) * time.Millisecond
}

// expandPath resolves a leading "~" and returns an absolute, cleaned path.
func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, strings.TrimPrefix(value, "~"))
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return abs, nil
}

// ExpandPath applies the same "~" and absolute path rules as Load.
func ExpandPath(value string) (string, error) {
	return expandPath(value)
}

// CreateSample writes the embedded sample configuration to path with
// owner-only permissions, since it holds credentials once edited.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
