package recipe

import (
	"context"

	"assetgate/internal/fileinfo"
	"assetgate/internal/iconik"
	"assetgate/internal/logging"
	"assetgate/internal/metrics"
	"assetgate/internal/services"
)

// resolveExternalID derives the idempotency key for a file: the bare file
// name when the storage says so, otherwise the absolute local path.
func resolveExternalID(settings iconik.StorageSettings, info fileinfo.Info) string {
	if settings.FilenameIsExternalID {
		return info.Name
	}
	return info.Path
}

// resolveAsset finds a live asset for the file or creates one.
func (r *Recipe) resolveAsset(ctx context.Context, settings iconik.StorageSettings, info fileinfo.Info, externalID string) (string, bool, error) {
	ctx = services.WithStep(ctx, stepIdentity)
	logger := logging.WithContext(ctx, r.logger)

	if settings.AggregateIdenticalFiles && info.Checksum != "" {
		if assetID, ok := r.findByChecksum(ctx, settings, info.Checksum); ok {
			logger.InfoContext(ctx, "found existing asset by checksum",
				logging.String(logging.FieldAssetID, assetID),
				logging.String("checksum", info.Checksum),
			)
			metrics.ObserveResource(metrics.ResourceAsset, true)
			return assetID, true, nil
		}
	}

	assetID, err := r.findByExternalID(ctx, externalID)
	if err != nil {
		return "", false, err
	}
	if assetID != "" {
		logger.InfoContext(ctx, "found existing asset by external id",
			logging.String(logging.FieldAssetID, assetID),
			logging.String("external_id", externalID),
		)
		metrics.ObserveResource(metrics.ResourceAsset, true)
		return assetID, true, nil
	}

	asset, err := r.catalog.CreateAsset(ctx, iconik.AssetCreate{
		Title:      info.Title,
		ExternalID: externalID,
		Type:       "ASSET",
	}, settings.ApplyDefaultACLs())
	if err != nil {
		return "", false, services.Wrap(services.ErrCreationFailed, stepIdentity, "create asset", info.Title, err)
	}
	logger.InfoContext(ctx, "created asset",
		logging.String(logging.FieldAssetID, asset.ID),
		logging.String("external_id", externalID),
	)
	metrics.ObserveResource(metrics.ResourceAsset, false)

	r.applyACLs(services.WithAssetID(ctx, asset.ID), settings, asset.ID)
	return asset.ID, false, nil
}

// findByChecksum returns the first live asset holding a file with checksum.
// Lookup failures are logged and treated as no match.
func (r *Recipe) findByChecksum(ctx context.Context, settings iconik.StorageSettings, checksum string) (string, bool) {
	files, err := r.catalog.FindFilesByChecksum(ctx, checksum)
	if err != nil {
		metrics.ObserveStepFailure(stepIdentity)
		logging.WarnWithContext(ctx, logging.WithContext(ctx, r.logger), "checksum lookup failed", "duplicate_lookup_failed",
			logging.String("checksum", checksum),
			logging.Error(err),
			logging.String(logging.FieldImpact, "falling back to external id lookup"),
		)
		return "", false
	}
	for _, file := range files {
		if settings.AggregateOnlyOnSameStorage && file.StorageID != r.storageID {
			continue
		}
		if file.AssetID == "" {
			continue
		}
		if r.assetDeleted(ctx, file.AssetID) {
			r.logger.DebugContext(ctx, "skipping deleted asset", logging.String(logging.FieldAssetID, file.AssetID))
			continue
		}
		return file.AssetID, true
	}
	return "", false
}

// findByExternalID returns the first asset carrying externalID. A soft-deleted
// first match counts as not found.
func (r *Recipe) findByExternalID(ctx context.Context, externalID string) (string, error) {
	assets, err := r.catalog.FindAssetsByExternalID(ctx, externalID)
	if err != nil {
		return "", services.Wrap(services.ErrRemote, stepIdentity, "find asset", externalID, err)
	}
	if len(assets) == 0 {
		return "", nil
	}
	asset := assets[0]
	if asset.IsDeleted() || r.assetDeleted(ctx, asset.ID) {
		r.logger.DebugContext(ctx, "asset with external id is deleted",
			logging.String(logging.FieldAssetID, asset.ID),
			logging.String("external_id", externalID),
		)
		return "", nil
	}
	return asset.ID, nil
}

// assetDeleted reports whether the asset sits in the trash. Lookup failures
// are logged and treated as live.
func (r *Recipe) assetDeleted(ctx context.Context, assetID string) bool {
	asset, err := r.catalog.GetAsset(ctx, assetID)
	if err != nil {
		logging.WarnWithContext(ctx, logging.WithContext(ctx, r.logger), "asset status lookup failed", "status_lookup_failed",
			logging.String(logging.FieldAssetID, assetID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "asset assumed live"),
		)
		return false
	}
	return asset.IsDeleted()
}

// inTrash reports whether a format or file set is soft-deleted. Lookup
// failures are logged and treated as live.
func (r *Recipe) inTrash(ctx context.Context, queue iconik.DeleteQueue, id string) bool {
	deleted, err := r.catalog.InDeleteQueue(ctx, queue, id)
	if err != nil {
		logging.WarnWithContext(ctx, logging.WithContext(ctx, r.logger), "delete queue lookup failed", "status_lookup_failed",
			logging.String("queue", string(queue)),
			logging.String("object_id", id),
			logging.Error(err),
			logging.String(logging.FieldImpact, "object assumed live"),
		)
		return false
	}
	return deleted
}
