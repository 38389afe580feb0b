package recipe

import (
	"context"

	"assetgate/internal/fileinfo"
	"assetgate/internal/iconik"
	"assetgate/internal/logging"
	"assetgate/internal/metrics"
	"assetgate/internal/services"
)

const storageMethodFile = "FILE"

// reconcileHierarchy makes sure the ORIGINAL format, its file set, and the
// file record exist under the asset. Any creation failure aborts the run.
func (r *Recipe) reconcileHierarchy(ctx context.Context, info fileinfo.Info, result *Result) error {
	ctx = services.WithStep(ctx, stepHierarchy)

	// Only a reused asset can be in the trash.
	skipLookups := result.AssetExisted && r.assetDeleted(ctx, result.AssetID)
	if skipLookups {
		logging.WarnWithContext(ctx, logging.WithContext(ctx, r.logger), "asset is deleted, skipping lookups", "asset_deleted",
			logging.String(logging.FieldImpact, "format, file set, and file are created fresh"),
		)
	}

	formatID, existed, err := r.ensureFormat(ctx, result.AssetID, skipLookups)
	if err != nil {
		return err
	}
	result.FormatID, result.FormatExisted = formatID, existed

	fileSetID, existed, err := r.ensureFileSet(ctx, result.AssetID, formatID, info, skipLookups)
	if err != nil {
		return err
	}
	result.FileSetID, result.FileSetExisted = fileSetID, existed

	fileID, existed, err := r.ensureFile(ctx, result.AssetID, formatID, fileSetID, info, skipLookups)
	if err != nil {
		return err
	}
	result.FileID, result.FileExisted = fileID, existed
	return nil
}

func (r *Recipe) ensureFormat(ctx context.Context, assetID string, skipLookups bool) (string, bool, error) {
	logger := logging.WithContext(ctx, r.logger)
	if !skipLookups {
		formats, err := r.catalog.ListFormats(ctx, assetID)
		if err != nil {
			return "", false, services.Wrap(services.ErrRemote, stepHierarchy, "list formats", assetID, err)
		}
		for _, format := range formats {
			if format.Name != iconik.FormatOriginal || format.Status != iconik.StatusActive {
				continue
			}
			if r.inTrash(ctx, iconik.DeleteQueueFormats, format.ID) {
				logger.DebugContext(ctx, "skipping deleted format", logging.String("format_id", format.ID))
				continue
			}
			logger.DebugContext(ctx, "reusing format", logging.String("format_id", format.ID))
			metrics.ObserveResource(metrics.ResourceFormat, true)
			return format.ID, true, nil
		}
	}

	format, err := r.catalog.CreateFormat(ctx, assetID, iconik.FormatCreate{
		Name:           iconik.FormatOriginal,
		StorageMethods: []string{storageMethodFile},
		IsOnline:       true,
	})
	if err != nil {
		return "", false, services.Wrap(services.ErrCreationFailed, stepHierarchy, "create format", iconik.FormatOriginal, err)
	}
	logger.InfoContext(ctx, "created format", logging.String("format_id", format.ID))
	metrics.ObserveResource(metrics.ResourceFormat, false)
	return format.ID, false, nil
}

func (r *Recipe) ensureFileSet(ctx context.Context, assetID, formatID string, info fileinfo.Info, skipLookups bool) (string, bool, error) {
	logger := logging.WithContext(ctx, r.logger)
	if !skipLookups {
		sets, err := r.catalog.ListFileSets(ctx, assetID)
		if err != nil {
			return "", false, services.Wrap(services.ErrRemote, stepHierarchy, "list file sets", assetID, err)
		}
		for _, set := range sets {
			if set.BaseDir != info.DirectoryPath || set.StorageID != r.storageID ||
				set.FormatID != formatID || set.Status != iconik.StatusActive {
				continue
			}
			if r.inTrash(ctx, iconik.DeleteQueueFileSets, set.ID) {
				logger.DebugContext(ctx, "skipping deleted file set", logging.String("file_set_id", set.ID))
				continue
			}
			logger.DebugContext(ctx, "reusing file set", logging.String("file_set_id", set.ID))
			metrics.ObserveResource(metrics.ResourceFileSet, true)
			return set.ID, true, nil
		}
	}

	set, err := r.catalog.CreateFileSet(ctx, assetID, iconik.FileSetCreate{
		Name:         info.Name,
		FormatID:     formatID,
		StorageID:    r.storageID,
		BaseDir:      info.DirectoryPath,
		ComponentIDs: []string{},
	})
	if err != nil {
		return "", false, services.Wrap(services.ErrCreationFailed, stepHierarchy, "create file set", info.DirectoryPath, err)
	}
	logger.InfoContext(ctx, "created file set",
		logging.String("file_set_id", set.ID),
		logging.String("base_dir", info.DirectoryPath),
	)
	metrics.ObserveResource(metrics.ResourceFileSet, false)
	return set.ID, false, nil
}

func (r *Recipe) ensureFile(ctx context.Context, assetID, formatID, fileSetID string, info fileinfo.Info, skipLookups bool) (string, bool, error) {
	logger := logging.WithContext(ctx, r.logger)
	if !skipLookups {
		files, err := r.catalog.ListFiles(ctx, assetID)
		if err != nil {
			return "", false, services.Wrap(services.ErrRemote, stepHierarchy, "list files", assetID, err)
		}
		for _, file := range files {
			if file.FileSetID != fileSetID || file.FormatID != formatID || file.Name != info.Name {
				continue
			}
			if file.Status == iconik.StatusDeleted {
				logger.DebugContext(ctx, "skipping deleted file", logging.String("file_id", file.ID))
				continue
			}
			logger.DebugContext(ctx, "reusing file", logging.String("file_id", file.ID))
			metrics.ObserveResource(metrics.ResourceFile, true)
			return file.ID, true, nil
		}
	}

	file, err := r.catalog.CreateFile(ctx, assetID, iconik.FileCreate{
		Name:          info.Name,
		OriginalName:  info.Name,
		DirectoryPath: info.DirectoryPath,
		FileSetID:     fileSetID,
		FormatID:      formatID,
		StorageID:     r.storageID,
		Size:          info.Size,
		Type:          storageMethodFile,
		Status:        iconik.StatusOpen,
		Checksum:      info.Checksum,
	})
	if err != nil {
		return "", false, services.Wrap(services.ErrCreationFailed, stepHierarchy, "create file", info.Name, err)
	}
	logger.InfoContext(ctx, "created file", logging.String("file_id", file.ID))
	metrics.ObserveResource(metrics.ResourceFile, false)

	if err := r.catalog.UpdateFileStatus(ctx, assetID, file.ID, iconik.StatusClosed); err != nil {
		logging.WarnWithContext(ctx, logger, "failed to close file", "file_close_failed",
			logging.String("file_id", file.ID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "file record left OPEN"),
		)
	}
	return file.ID, false, nil
}
