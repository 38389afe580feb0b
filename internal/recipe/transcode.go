package recipe

import (
	"context"
	"slices"

	"assetgate/internal/fileinfo"
	"assetgate/internal/iconik"
	"assetgate/internal/logging"
	"assetgate/internal/metrics"
	"assetgate/internal/patterns"
	"assetgate/internal/services"
)

const (
	jobMediainfo = "mediainfo"
	jobProxy     = "proxy"
)

// transcodeState is what the catalog already holds for the file.
type transcodeState struct {
	mediainfo      bool
	proxies        bool
	keyframes      bool
	systemMetadata bool
}

// triggerTranscoding enqueues mediainfo extraction and proxy generation when
// the catalog lacks them. Trigger failures are recorded, never returned.
func (r *Recipe) triggerTranscoding(ctx context.Context, settings iconik.StorageSettings, info fileinfo.Info, result *Result) {
	ctx = services.WithStep(ctx, stepTranscode)
	logger := logging.WithContext(ctx, r.logger)

	include := r.compilePatterns(ctx, "transcode_include", settings.TranscodeInclude)
	ignore := r.compilePatterns(ctx, "transcode_ignore", settings.TranscodeIgnore)
	if decision, pattern := patterns.Evaluate(include, ignore, info.Name); decision != patterns.Accepted {
		logger.InfoContext(ctx, "skipping transcoding",
			logging.String("decision", decision.String()),
			logging.String("pattern", pattern),
		)
		result.TranscodingSkipped = true
		return
	}

	state := r.transcodeState(ctx, result.AssetID, result.FormatID)
	logger.DebugContext(ctx, "transcode state",
		logging.Bool("mediainfo", state.mediainfo),
		logging.Bool("proxies", state.proxies),
		logging.Bool("keyframes", state.keyframes),
		logging.Bool("system_metadata_history", state.systemMetadata),
	)

	if !state.mediainfo && !state.systemMetadata {
		result.MediainfoJob = r.trigger(ctx, jobMediainfo, func() error {
			return r.catalog.TriggerMediainfo(ctx, result.AssetID, result.FileID)
		})
	} else {
		logger.InfoContext(ctx, "mediainfo already extracted, skipping")
		result.MediainfoJob = JobSkipped
	}
	metrics.ObserveJob(jobMediainfo, string(result.MediainfoJob))

	switch {
	case result.MediainfoJob == JobTriggered || (state.proxies && state.keyframes):
		logger.InfoContext(ctx, "proxy generation not needed, skipping")
		result.ProxyJob = JobSkipped
	case bool(settings.LocalProxyCreation):
		logger.InfoContext(ctx, "local proxy creation is enabled but not implemented")
	default:
		result.ProxyJob = r.trigger(ctx, jobProxy, func() error {
			return r.catalog.TriggerKeyframes(ctx, result.AssetID, result.FileID)
		})
	}
	metrics.ObserveJob(jobProxy, string(result.ProxyJob))
}

func (r *Recipe) trigger(ctx context.Context, job string, fn func() error) JobOutcome {
	if err := fn(); err != nil {
		logging.WarnWithContext(ctx, logging.WithContext(ctx, r.logger), "failed to trigger job", "job_trigger_failed",
			logging.String("job", job),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "re-run ingestion to retry the job"),
			logging.String(logging.FieldImpact, "asset missing "+job+" output"),
		)
		return JobFailed
	}
	logging.WithContext(ctx, r.logger).InfoContext(ctx, "triggered job", logging.String("job", job))
	return JobTriggered
}

// transcodeState queries existing job output. Failed lookups count as absent.
func (r *Recipe) transcodeState(ctx context.Context, assetID, formatID string) transcodeState {
	var state transcodeState
	if components, err := r.catalog.ListComponents(ctx, assetID, formatID); err != nil {
		r.lookupFailed(ctx, "components", err)
	} else {
		state.mediainfo = len(components) > 0
	}
	if proxies, err := r.catalog.ListProxies(ctx, assetID); err != nil {
		r.lookupFailed(ctx, "proxies", err)
	} else {
		state.proxies = len(proxies) > 0
	}
	if keyframes, err := r.catalog.ListKeyframes(ctx, assetID); err != nil {
		r.lookupFailed(ctx, "keyframes", err)
	} else {
		state.keyframes = len(keyframes) > 0
	}
	if history, err := r.catalog.ListHistory(ctx, assetID); err != nil {
		r.lookupFailed(ctx, "history", err)
	} else {
		state.systemMetadata = slices.ContainsFunc(history, iconik.HistoryEntry.IsSystemMetadataWrite)
	}
	return state
}

func (r *Recipe) lookupFailed(ctx context.Context, what string, err error) {
	logging.WarnWithContext(ctx, logging.WithContext(ctx, r.logger), "transcode state lookup failed", "status_lookup_failed",
		logging.String("lookup", what),
		logging.Error(err),
		logging.String(logging.FieldImpact, what+" assumed absent"),
	)
}
