package recipe

import (
	"context"

	"assetgate/internal/iconik"
	"assetgate/internal/logging"
	"assetgate/internal/metrics"
	"assetgate/internal/services"
)

// historyFor picks the record describing the freshest change of the run.
func historyFor(result Result) iconik.HistoryCreate {
	switch {
	case !result.AssetExisted:
		return iconik.HistoryCreate{OperationType: iconik.OperationVersionCreate, OperationDescription: "Initial asset creation"}
	case !result.FormatExisted:
		return iconik.HistoryCreate{OperationType: iconik.OperationAddFormat, OperationDescription: "Add format " + iconik.FormatOriginal}
	case !result.FileSetExisted:
		return iconik.HistoryCreate{OperationType: iconik.OperationModifyFileSet, OperationDescription: "File set added to asset"}
	case !result.FileExisted:
		return iconik.HistoryCreate{OperationType: iconik.OperationModifyFileSet, OperationDescription: "File added to asset"}
	default:
		return iconik.HistoryCreate{OperationType: iconik.OperationCustom, OperationDescription: "Asset synchronized with external system via the API"}
	}
}

func (r *Recipe) recordHistory(ctx context.Context, result *Result) {
	ctx = services.WithStep(ctx, stepHistory)
	logger := logging.WithContext(ctx, r.logger)

	entry := historyFor(*result)
	if err := r.catalog.CreateHistory(ctx, result.AssetID, entry); err != nil {
		metrics.ObserveStepFailure(stepHistory)
		logging.WarnWithContext(ctx, logger, "failed to record history", "history_failed",
			logging.String("operation_type", entry.OperationType),
			logging.Error(err),
			logging.String(logging.FieldImpact, "asset audit trail incomplete"),
		)
		result.HistoryCreated = false
		return
	}
	result.HistoryCreated = true
	result.HistoryOperationType = entry.OperationType
	logger.DebugContext(ctx, "recorded history", logging.String("operation_type", entry.OperationType))
}
