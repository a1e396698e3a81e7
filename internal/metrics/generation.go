package metrics

import (
	"time"

	"github.com/fpang/portrait-retouch/internal/portrait"
)

// Generation metric names.
const (
	MetricGenerationLatency    = "GenerationLatencyMs"
	MetricVariationsSucceeded  = "VariationsSucceeded"
	MetricVariationsFailed     = "VariationsFailed"
	MetricStepAttempts         = "StepAttempts"
	MetricValidationRejections = "ValidationRejections"
	MetricAnalysisDegraded     = "AnalysisDegraded"
)

// RecordGeneration adds the per-request metrics for res to r.
func RecordGeneration(r *Recorder, res *portrait.GenerationResult) *Recorder {
	succeeded, failed, attempts, rejections := 0, 0, 0, 0
	for _, v := range res.Variations {
		if v.Success {
			succeeded++
		} else {
			failed++
		}
		attempts += v.Attempts
	}
	for _, run := range res.Runs {
		if run == nil {
			continue
		}
		for _, s := range run.Steps {
			// Steps keep only their last verdict, so this counts steps that
			// ended rejected.
			if s.Validation != nil && !s.Validation.CanProceed {
				rejections++
			}
		}
	}

	degraded := 0
	if res.Analysis != nil && res.Analysis.Degraded {
		degraded = 1
	}

	return r.
		Duration(MetricGenerationLatency, time.Duration(res.TotalTimeMs)*time.Millisecond).
		Count(MetricVariationsSucceeded, succeeded).
		Count(MetricVariationsFailed, failed).
		Count(MetricStepAttempts, attempts).
		Count(MetricValidationRejections, rejections).
		Count(MetricAnalysisDegraded, degraded).
		Property("variations", len(res.Variations))
}
