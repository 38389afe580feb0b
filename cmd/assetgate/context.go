package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"assetgate/internal/config"
	"assetgate/internal/iconik"
	"assetgate/internal/logging"
	"assetgate/internal/recipe"
	"assetgate/internal/services"
)

type globalFlags struct {
	config       string
	envFile      string
	debug        bool
	quiet        bool
	appID        string
	authToken    string
	baseURL      string
	storageID    string
	mountMapping string
	timeout      int
}

type commandContext struct {
	flags *globalFlags

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the dotenv file and configuration once, then applies
// flag overrides on top.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if err := config.LoadEnvFile(c.flags.envFile); err != nil {
			c.configErr = err
			return
		}
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		c.applyOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) applyOverrides(cfg *config.Config) {
	f := c.flags
	if v := strings.TrimSpace(f.appID); v != "" {
		cfg.Iconik.AppID = v
	}
	if v := strings.TrimSpace(f.authToken); v != "" {
		cfg.Iconik.AuthToken = v
	}
	if v := strings.TrimSpace(f.baseURL); v != "" {
		cfg.Iconik.BaseURL = v
	}
	if v := strings.TrimSpace(f.storageID); v != "" {
		cfg.Storage.StorageID = v
	}
	if v := strings.TrimSpace(f.mountMapping); v != "" {
		cfg.Storage.MountMapping = v
	}
	if f.timeout > 0 {
		cfg.Iconik.TimeoutSeconds = f.timeout
	}
	if f.debug {
		cfg.Logging.Level = "debug"
	}
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// runContext stamps a fresh correlation id and the quiet scope on the
// command's context.
func (c *commandContext) runContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = services.WithRequestID(ctx, uuid.NewString())
	if c.flags.quiet {
		ctx = logging.WithQuiet(ctx)
	}
	return ctx
}

// newRecipe builds the catalog client and recipe from the effective config.
func (c *commandContext) newRecipe() (*recipe.Recipe, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.RequireRemote(); err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	client := iconik.NewClient(iconik.Config{
		BaseURL:      cfg.Iconik.BaseURL,
		AppID:        cfg.Iconik.AppID,
		AuthToken:    cfg.Iconik.AuthToken,
		Timeout:      cfg.RequestTimeout(),
		MaxRetries:   cfg.Iconik.MaxRetries,
		RetryBackoff: cfg.RetryBackoff(),
	}, iconik.WithLogger(logger))

	r, err := recipe.New(client, recipe.Options{
		StorageID:     cfg.Storage.StorageID,
		DefaultViewID: cfg.Storage.DefaultViewID,
		MountMapping:  cfg.Storage.MountMapping,
		Logger:        logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return r, logger, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
