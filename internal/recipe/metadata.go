package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"assetgate/internal/iconik"
	"assetgate/internal/logging"
	"assetgate/internal/metrics"
	"assetgate/internal/services"
)

// resolveViewID picks the metadata view: explicit request, recipe default,
// then the storage setting.
func (r *Recipe) resolveViewID(explicit string, settings iconik.StorageSettings) string {
	for _, candidate := range []string{explicit, r.defaultViewID, settings.MetadataViewID} {
		if v := strings.TrimSpace(candidate); v != "" {
			return v
		}
	}
	return ""
}

// applyMetadata writes sidecar and caller metadata unless the asset already
// carries values for the view. It never overwrites. Both sources are shaped
// into field values first; caller fields win over sidecar fields.
func (r *Recipe) applyMetadata(ctx context.Context, assetID, viewID string, sidecar, caller map[string]any) bool {
	ctx = services.WithStep(ctx, stepMetadata)
	logger := logging.WithContext(ctx, r.logger)

	exists, err := r.catalog.HasMetadata(ctx, assetID, viewID)
	if err != nil {
		logging.WarnWithContext(ctx, logger, "metadata lookup failed", "metadata_lookup_failed",
			logging.String("view_id", viewID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "asset assumed to have no metadata"),
		)
	}
	if exists {
		logger.InfoContext(ctx, "metadata already present, skipping", logging.String("view_id", viewID))
		return false
	}

	values, err := r.shapeMetadata(ctx, viewID, sidecar, caller)
	if err != nil {
		metrics.ObserveStepFailure(stepMetadata)
		logging.WarnWithContext(ctx, logger, "failed to prepare metadata", "metadata_failed",
			logging.String("view_id", viewID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "metadata not applied"),
		)
		return false
	}
	if len(values) == 0 {
		logger.InfoContext(ctx, "no metadata fields match the view, skipping", logging.String("view_id", viewID))
		return false
	}
	if err := r.catalog.PutMetadata(ctx, assetID, viewID, values); err != nil {
		metrics.ObserveStepFailure(stepMetadata)
		logging.WarnWithContext(ctx, logger, "failed to apply metadata", "metadata_failed",
			logging.String("view_id", viewID),
			logging.Error(err),
			logging.String(logging.FieldImpact, "metadata not applied"),
		)
		return false
	}
	logger.InfoContext(ctx, "applied metadata",
		logging.String("view_id", viewID),
		logging.Int("fields", len(values)),
	)
	return true
}

// shapeMetadata converts each source into catalog field values and merges
// them per field, later sources winning. Within a source, raw keys are
// formatted against the view (or wrapped when there is none) and a
// "metadata_values" entry is taken as already shaped.
func (r *Recipe) shapeMetadata(ctx context.Context, viewID string, sources ...map[string]any) (iconik.MetadataValues, error) {
	merged := iconik.MetadataValues{}
	var view *iconik.MetadataView
	for _, source := range sources {
		raw := make(map[string]any, len(source))
		for key, value := range source {
			if key != metadataValuesKey {
				raw[key] = value
			}
		}
		if len(raw) > 0 {
			if viewID == "" {
				maps.Copy(merged, iconik.WrapValues(raw))
			} else {
				if view == nil {
					v, err := r.catalog.GetView(ctx, viewID)
					if err != nil {
						return nil, err
					}
					view = &v
				}
				maps.Copy(merged, iconik.FormatValues(*view, raw))
			}
		}
		if shaped, ok := source[metadataValuesKey]; ok {
			values, err := decodeMetadataValues(shaped)
			if err != nil {
				return nil, err
			}
			maps.Copy(merged, values)
		}
	}
	return merged, nil
}

const metadataValuesKey = "metadata_values"

func decodeMetadataValues(raw any) (iconik.MetadataValues, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var values iconik.MetadataValues
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", metadataValuesKey, err)
	}
	return values, nil
}
