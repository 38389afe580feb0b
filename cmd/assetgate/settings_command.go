package main

import (
	"strings"

	"github.com/spf13/cobra"

	"assetgate/internal/iconik"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the storage settings ingestion will follow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := ctx.newRecipe()
			if err != nil {
				return err
			}
			settings, err := r.Settings(ctx.runContext(cmd))
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, settings)
			}
			writeFields(cmd.OutOrStdout(), settingsFields(r.StorageID(), settings))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the settings as JSON")
	return cmd
}

func settingsFields(storageID string, s iconik.StorageSettings) [][2]string {
	return [][2]string{
		{"Storage", storageID},
		{"Mount point", s.EffectiveMountPoint()},
		{"Scan include", listLabel(s.ScanInclude)},
		{"Scan ignore", listLabel(s.ScanIgnore)},
		{"Transcode include", listLabel(s.TranscodeInclude)},
		{"Transcode ignore", listLabel(s.TranscodeIgnore)},
		{"Aggregate identical files", yesNo(bool(s.AggregateIdenticalFiles))},
		{"Aggregate only on same storage", yesNo(bool(s.AggregateOnlyOnSameStorage))},
		{"Sidecar metadata required", yesNo(bool(s.SidecarMetadataRequired))},
		{"Filename is external id", yesNo(bool(s.FilenameIsExternalID))},
		{"Title includes extension", yesNo(s.TitleWithExtension())},
		{"Local proxy creation", yesNo(bool(s.LocalProxyCreation))},
		{"ACL template", dash(s.ACLTemplateID)},
		{"Access group", dash(s.AccessGroupID)},
		{"Metadata view", dash(s.MetadataViewID)},
	}
}

func listLabel(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
