package testsupport

import (
	"path/filepath"
	"testing"

	"assetgate/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config with test credentials and a per-test log
// directory. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Iconik.AppID = "test-app"
	cfgVal.Iconik.AuthToken = "test-token"
	cfgVal.Iconik.MaxRetries = 0
	cfgVal.Iconik.RetryBackoffMS = 0
	cfgVal.Storage.StorageID = "storage-test"
	cfgVal.Batch.DelayMS = 0
	cfgVal.Logging.Dir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBaseURL points the catalog client at a test server.
func WithBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Iconik.BaseURL = url
	}
}

// WithStorageID overrides the target storage.
func WithStorageID(id string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.StorageID = id
	}
}

// WithMountMapping sets a local:remote path mapping.
func WithMountMapping(mapping string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.MountMapping = mapping
	}
}

// WithRetries enables retries with the given attempt count and a zero backoff.
func WithRetries(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Iconik.MaxRetries = n
	}
}

// WithCollection maps a directory to a collection for batch runs.
func WithCollection(dir, collectionID string) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Batch.Collections == nil {
			b.cfg.Batch.Collections = map[string]string{}
		}
		b.cfg.Batch.Collections[filepath.Clean(dir)] = collectionID
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Logging.Dir)
}
