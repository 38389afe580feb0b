package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeIconik()
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	if err := c.normalizeBatch(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return nil
}

// lookupFirstEnv returns the first non-empty value among keys.
func lookupFirstEnv(keys ...string) (string, bool) {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}

func (c *Config) normalizeIconik() {
	c.Iconik.AppID = strings.TrimSpace(c.Iconik.AppID)
	if c.Iconik.AppID == "" {
		if value, ok := lookupFirstEnv("APP_ID", "ICONIK_APP_ID"); ok {
			c.Iconik.AppID = value
		}
	}
	c.Iconik.AuthToken = strings.TrimSpace(c.Iconik.AuthToken)
	if c.Iconik.AuthToken == "" {
		if value, ok := lookupFirstEnv("AUTH_TOKEN", "ICONIK_AUTH_TOKEN"); ok {
			c.Iconik.AuthToken = value
		}
	}
	c.Iconik.BaseURL = strings.TrimSpace(c.Iconik.BaseURL)
	if value, ok := lookupFirstEnv("ICONIK_BASE_URL"); ok && (c.Iconik.BaseURL == "" || c.Iconik.BaseURL == defaultBaseURL) {
		c.Iconik.BaseURL = value
	}
	if c.Iconik.BaseURL == "" {
		c.Iconik.BaseURL = defaultBaseURL
	}
	c.Iconik.BaseURL = strings.TrimRight(c.Iconik.BaseURL, "/")
	if c.Iconik.TimeoutSeconds == 0 {
		c.Iconik.TimeoutSeconds = defaultTimeoutSeconds
	}
}

func (c *Config) normalizeStorage() error {
	c.Storage.StorageID = strings.TrimSpace(c.Storage.StorageID)
	if c.Storage.StorageID == "" {
		if value, ok := lookupFirstEnv("STORAGE_ID", "ICONIK_STORAGE_ID"); ok {
			c.Storage.StorageID = value
		}
	}
	c.Storage.MountMapping = strings.TrimSpace(c.Storage.MountMapping)
	c.Storage.DefaultViewID = strings.TrimSpace(c.Storage.DefaultViewID)
	return nil
}

func (c *Config) normalizeBatch() error {
	if len(c.Batch.Extensions) == 0 {
		c.Batch.Extensions = append([]string(nil), defaultBatchExtensions...)
	}
	c.Batch.Extensions = NormalizeExtensions(c.Batch.Extensions)
	c.Batch.MetricsAddr = strings.TrimSpace(c.Batch.MetricsAddr)
	if len(c.Batch.Collections) > 0 {
		normalized := make(map[string]string, len(c.Batch.Collections))
		for dir, collectionID := range c.Batch.Collections {
			expanded, err := expandPath(strings.TrimSpace(dir))
			if err != nil {
				return fmt.Errorf("batch.collections: %w", err)
			}
			collectionID = strings.TrimSpace(collectionID)
			if expanded == "" || collectionID == "" {
				continue
			}
			normalized[filepath.Clean(expanded)] = collectionID
		}
		c.Batch.Collections = normalized
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.Dir, err = expandPath(strings.TrimSpace(c.Logging.Dir)); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	return nil
}

// NormalizeExtensions lowercases extensions, adds a leading dot, and drops
// blanks and duplicates while preserving order.
func NormalizeExtensions(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, exists := seen[ext]; exists {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}
