package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is structurally usable. Credentials are
// checked separately by RequireRemote because CLI flags may still supply them.
func (c *Config) Validate() error {
	if err := c.validateIconik(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	return nil
}

// RequireRemote reports missing credentials needed to talk to the catalog.
func (c *Config) RequireRemote() error {
	if c.Iconik.AppID == "" {
		return errors.New("iconik.app_id is required. Pass --app-id, set ICONIK_APP_ID, or edit the config file")
	}
	if c.Iconik.AuthToken == "" {
		return errors.New("iconik.auth_token is required. Pass --auth-token, set ICONIK_AUTH_TOKEN, or edit the config file")
	}
	if c.Storage.StorageID == "" {
		return errors.New("storage.storage_id is required. Pass --storage-id, set ICONIK_STORAGE_ID, or edit the config file")
	}
	return nil
}

func (c *Config) validateIconik() error {
	parsed, err := url.Parse(c.Iconik.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("iconik.base_url %q must be an absolute URL", c.Iconik.BaseURL)
	}
	if c.Iconik.TimeoutSeconds <= 0 {
		return errors.New("iconik.timeout_seconds must be positive")
	}
	if c.Iconik.MaxRetries < 0 {
		return errors.New("iconik.max_retries must be >= 0")
	}
	if c.Iconik.RetryBackoffMS < 0 {
		return errors.New("iconik.retry_backoff_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.MountMapping == "" {
		return nil
	}
	parts := strings.Split(c.Storage.MountMapping, ":")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return fmt.Errorf("storage.mount_mapping %q must use the form local_path:remote_path", c.Storage.MountMapping)
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.DelayMS < 0 {
		return errors.New("batch.delay_ms must be >= 0")
	}
	if len(c.Batch.Extensions) == 0 {
		return errors.New("batch.extensions must include at least one extension")
	}
	return nil
}
