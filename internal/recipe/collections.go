package recipe

import (
	"context"
	"strings"

	"assetgate/internal/iconik"
	"assetgate/internal/logging"
	"assetgate/internal/metrics"
	"assetgate/internal/services"
)

// addToCollections adds the asset to each live collection and returns the ids
// that succeeded.
func (r *Recipe) addToCollections(ctx context.Context, assetID string, collectionIDs []string) []string {
	ctx = services.WithStep(ctx, stepCollections)
	logger := logging.WithContext(ctx, r.logger)

	added := make([]string, 0, len(collectionIDs))
	for _, id := range collectionIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if collection, err := r.catalog.GetCollection(ctx, id); err == nil && collection.Status == iconik.StatusDeleted {
			logger.InfoContext(ctx, "collection is deleted, skipping", logging.String("collection_id", id))
			continue
		}
		if err := r.catalog.AddToCollection(ctx, id, assetID); err != nil {
			metrics.ObserveStepFailure(stepCollections)
			logging.WarnWithContext(ctx, logger, "failed to add asset to collection", "collection_failed",
				logging.String("collection_id", id),
				logging.Error(err),
				logging.String(logging.FieldImpact, "asset missing from collection"),
			)
			continue
		}
		logger.InfoContext(ctx, "added asset to collection", logging.String("collection_id", id))
		added = append(added, id)
	}
	return added
}
