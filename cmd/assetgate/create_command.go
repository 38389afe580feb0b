package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"assetgate/internal/fileinfo"
	"assetgate/internal/logging"
	"assetgate/internal/recipe"
	"assetgate/internal/services"
)

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var (
		externalID    string
		viewID        string
		metadataFile  string
		collectionIDs []string
		allowMissing  bool
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:   "create <file>",
		Short: "Create or reconcile the catalog asset for one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, logger, err := ctx.newRecipe()
			if err != nil {
				return err
			}
			runCtx := ctx.runContext(cmd)

			req := recipe.Request{
				FilePath:      args[0],
				ExternalID:    strings.TrimSpace(externalID),
				ViewID:        strings.TrimSpace(viewID),
				CollectionIDs: collectionIDs,
				AllowMissing:  allowMissing,
			}
			if path := strings.TrimSpace(metadataFile); path != "" {
				metadata, ok, err := fileinfo.LoadMetadataFile(path)
				if err != nil {
					return services.Wrap(services.ErrValidation, "cli", "metadata file", path, err)
				}
				if !ok {
					logging.WarnWithContext(runCtx, logger, "metadata file not found", "metadata_file_missing",
						logging.String("path", path),
						logging.String(logging.FieldImpact, "asset created without caller metadata"),
					)
				}
				req.Metadata = metadata
			}

			result, err := r.CreateAsset(runCtx, req)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			writeFields(cmd.OutOrStdout(), resultFields(result))
			return nil
		},
	}

	cmd.Flags().StringVar(&externalID, "external-id", "", "External id to use instead of the derived one")
	cmd.Flags().StringVar(&viewID, "view-id", "", "Metadata view used to shape metadata")
	cmd.Flags().StringVar(&metadataFile, "metadata-file", "", "JSON file with metadata to apply")
	cmd.Flags().StringArrayVar(&collectionIDs, "collection-id", nil, "Collection to add the asset to (repeatable)")
	cmd.Flags().BoolVar(&allowMissing, "allow-missing", false, "Register a file that is not present on local disk")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	return cmd
}

func resultFields(result recipe.Result) [][2]string {
	fields := [][2]string{
		{"Title", result.Title},
		{"External ID", result.ExternalID},
		{"Storage", result.StorageID},
		{"Directory", result.DirectoryPath},
		{"Size", strconv.FormatInt(result.Size, 10)},
		{"MIME type", result.MimeType},
		{"Asset", existedLabel(result.AssetID, result.AssetExisted)},
		{"Format", existedLabel(result.FormatID, result.FormatExisted)},
		{"File set", existedLabel(result.FileSetID, result.FileSetExisted)},
		{"File", existedLabel(result.FileID, result.FileExisted)},
	}
	if result.MetadataViewID != "" {
		fields = append(fields, [2]string{"Metadata view", result.MetadataViewID})
	}
	if result.MetadataApplied != nil {
		fields = append(fields, [2]string{"Metadata applied", yesNo(*result.MetadataApplied)})
	}
	if len(result.AddedCollections) > 0 {
		fields = append(fields, [2]string{"Collections", strings.Join(result.AddedCollections, ", ")})
	}
	if result.TranscodingSkipped {
		fields = append(fields, [2]string{"Transcoding", "skipped by storage rules"})
	} else {
		fields = append(fields,
			[2]string{"Mediainfo", jobLabel(result.MediainfoJob)},
			[2]string{"Proxy", jobLabel(result.ProxyJob)},
		)
	}
	history := "not recorded"
	if result.HistoryCreated {
		history = historyLabel(result.HistoryOperationType)
	}
	fields = append(fields, [2]string{"History", history})
	return fields
}

func existedLabel(id string, existed bool) string {
	if id == "" {
		return "-"
	}
	if existed {
		return id + " (existing)"
	}
	return id + " (created)"
}

func jobLabel(outcome recipe.JobOutcome) string {
	if outcome == recipe.JobNotAttempted {
		return "not attempted"
	}
	return string(outcome)
}

// historyLabel turns an operation type such as ADD_FORMAT into "Add Format".
func historyLabel(op string) string {
	if op == "" {
		return "-"
	}
	words := strings.ReplaceAll(strings.ToLower(op), "_", " ")
	return cases.Title(language.Und).String(words)
}
