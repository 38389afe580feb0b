package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"assetgate/internal/services"
)

// Resource kinds reconciled by the recipe.
const (
	ResourceAsset   = "asset"
	ResourceFormat  = "format"
	ResourceFileSet = "file_set"
	ResourceFile    = "file"
)

var (
	resourcesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetgate_resources_total",
			Help: "Catalog resources resolved by the recipe, by kind and whether they were created or reused",
		},
		[]string{"resource", "action"},
	)

	stepFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetgate_step_failures_total",
			Help: "Best-effort recipe steps that failed without aborting ingestion",
		},
		[]string{"step"},
	)

	jobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetgate_jobs_total",
			Help: "Transcode job decisions, by job and outcome",
		},
		[]string{"job", "outcome"},
	)

	filesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetgate_files_total",
			Help: "Files processed by batch runs, by outcome",
		},
		[]string{"outcome"},
	)
)

// ObserveResource records whether a resource was reused or freshly created.
func ObserveResource(resource string, existed bool) {
	action := "created"
	if existed {
		action = "reused"
	}
	resourcesTotal.WithLabelValues(resource, action).Inc()
}

// ObserveStepFailure counts a best-effort step that failed.
func ObserveStepFailure(step string) {
	stepFailuresTotal.WithLabelValues(step).Inc()
}

// ObserveJob records a transcode job decision. Empty outcomes are ignored.
func ObserveJob(job, outcome string) {
	if outcome == "" {
		return
	}
	jobsTotal.WithLabelValues(job, outcome).Inc()
}

// ObserveFile counts one batch file outcome.
func ObserveFile(outcome services.Outcome) {
	filesTotal.WithLabelValues(string(outcome)).Inc()
}
