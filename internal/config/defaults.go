package config

const (
	defaultConfigPath     = "~/.config/assetgate/config.toml"
	projectConfigName     = "assetgate.toml"
	defaultBaseURL        = "https://app.iconik.io"
	defaultTimeoutSeconds = 60
	defaultMaxRetries     = 3
	defaultRetryBackoffMS = 500
	defaultBatchDelayMS   = 500
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

var defaultBatchExtensions = []string{
	".mp4", ".mov", ".mxf", ".avi",
	".jpg", ".jpeg", ".png", ".tif", ".tiff",
	".doc", ".docx", ".pdf",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	extensions := make([]string, len(defaultBatchExtensions))
	copy(extensions, defaultBatchExtensions)
	return Config{
		Iconik: Iconik{
			BaseURL:        defaultBaseURL,
			TimeoutSeconds: defaultTimeoutSeconds,
			MaxRetries:     defaultMaxRetries,
			RetryBackoffMS: defaultRetryBackoffMS,
		},
		Batch: Batch{
			Extensions: extensions,
			DelayMS:    defaultBatchDelayMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
