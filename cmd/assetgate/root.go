package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var flags globalFlags

	ctx := newCommandContext(&flags)

	rootCmd := &cobra.Command{
		Use:           "assetgate",
		Short:         "Ingest local media into an iconik storage",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	pf.StringVar(&flags.envFile, "env-file", ".env", "Dotenv file with credentials")
	pf.BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	pf.BoolVarP(&flags.quiet, "quiet", "q", false, "Only log warnings and errors")
	pf.StringVar(&flags.appID, "app-id", "", "Catalog application id (env ICONIK_APP_ID)")
	pf.StringVar(&flags.authToken, "auth-token", "", "Catalog auth token (env ICONIK_AUTH_TOKEN)")
	pf.StringVar(&flags.baseURL, "base-url", "", "Catalog base URL")
	pf.StringVar(&flags.storageID, "storage-id", "", "Target storage id (env ICONIK_STORAGE_ID)")
	pf.StringVar(&flags.mountMapping, "mount-mapping", "", "Local to storage path mapping, local:remote")
	pf.IntVar(&flags.timeout, "timeout", 0, "Per-request timeout in seconds")

	rootCmd.AddCommand(newCreateCommand(ctx))
	rootCmd.AddCommand(newBatchCommand(ctx))
	rootCmd.AddCommand(newSettingsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
