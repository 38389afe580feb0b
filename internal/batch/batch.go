package batch

import (
	"context"
	"log/slog"
	"time"

	"assetgate/internal/iconik"
	"assetgate/internal/logging"
	"assetgate/internal/metrics"
	"assetgate/internal/recipe"
	"assetgate/internal/services"
)

// Ingester creates or reconciles one asset.
type Ingester interface {
	CreateAsset(ctx context.Context, req recipe.Request) (recipe.Result, error)
}

// Options configures a batch run.
type Options struct {
	Extensions []string
	// Delay is the pause between consecutive files.
	Delay time.Duration
	// Collections maps absolute directories to collection ids.
	Collections map[string]string
	Logger      *slog.Logger
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path    string           `json:"path"`
	Outcome services.Outcome `json:"outcome"`
	Result  recipe.Result    `json:"result"`
	Error   string           `json:"error,omitempty"`
}

// Summary tallies a batch run.
type Summary struct {
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Rejected  int          `json:"rejected"`
	Files     []FileResult `json:"files"`
}

// Total returns the number of files processed.
func (s Summary) Total() int { return s.Succeeded + s.Failed + s.Rejected }

func (s *Summary) add(fr FileResult) {
	switch fr.Outcome {
	case services.OutcomeSucceeded:
		s.Succeeded++
	case services.OutcomeRejected:
		s.Rejected++
	default:
		s.Failed++
	}
	s.Files = append(s.Files, fr)
}

// Run ingests every matching file under root sequentially. Per-file failures
// are tallied; only discovery errors and cancellation end the run early.
func Run(ctx context.Context, ing Ingester, root string, opts Options) (Summary, error) {
	logger := logging.NewComponentLogger(opts.Logger, "batch")

	files, err := Discover(root, opts.Extensions)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrValidation, "batch", "discover", root, err)
	}
	logger.InfoContext(ctx, "batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.String("root", root),
		logging.Int("files", len(files)),
	)

	var summary Summary
	for i, path := range files {
		if i > 0 && opts.Delay > 0 {
			if err := iconik.SleepWithContext(ctx, opts.Delay); err != nil {
				return summary, err
			}
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		fileCtx := services.WithFilePath(ctx, path)
		fileLogger := logging.WithContext(fileCtx, logger)
		fileLogger.InfoContext(fileCtx, "processing file",
			logging.Int("index", i+1),
			logging.Int("total", len(files)),
		)

		req := recipe.Request{FilePath: path, Metadata: DefaultMetadata(path)}
		if id, ok := CollectionFor(path, opts.Collections); ok {
			req.CollectionIDs = []string{id}
		}

		result, err := ing.CreateAsset(fileCtx, req)
		fr := FileResult{Path: path, Outcome: services.Classify(err), Result: result}
		if err != nil {
			fr.Error = err.Error()
			attrs := []logging.Attr{
				logging.String("outcome", string(fr.Outcome)),
				logging.Error(err),
			}
			if fr.Outcome == services.OutcomeRejected {
				logging.WarnWithContext(fileCtx, fileLogger, "file rejected", "batch_file_rejected",
					append(attrs, logging.String(logging.FieldImpact, "file skipped"))...)
			} else {
				logging.ErrorWithContext(fileCtx, fileLogger, "file failed", "batch_file_failed",
					append(attrs, logging.String(logging.FieldErrorHint, "re-run the batch to resume this file"))...)
			}
		} else {
			fileLogger.InfoContext(fileCtx, "file ingested",
				logging.String(logging.FieldAssetID, result.AssetID),
				logging.Bool("asset_existed", result.AssetExisted),
			)
		}
		metrics.ObserveFile(fr.Outcome)
		summary.add(fr)
	}

	logger.InfoContext(ctx, "batch finished",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("rejected", summary.Rejected),
	)
	return summary, nil
}
