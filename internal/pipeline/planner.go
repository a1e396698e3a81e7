package pipeline

import (
	"github.com/rs/zerolog/log"

	"github.com/fpang/portrait-retouch/internal/portrait"
)

// PassthroughPlanner returns the plan unchanged.
type PassthroughPlanner struct{}

// Plan implements Planner.
func (PassthroughPlanner) Plan(_ *portrait.AnalysisResult, plan portrait.OrderedFixPlan) portrait.OrderedFixPlan {
	return plan
}

// SeverityPlanner drops fixes for issues the analysis reports absent, or
// present below MinSeverity. A degraded analysis marks every issue present,
// so it never drops anything.
type SeverityPlanner struct {
	MinSeverity int
}

// Plan implements Planner.
func (p SeverityPlanner) Plan(analysis *portrait.AnalysisResult, plan portrait.OrderedFixPlan) portrait.OrderedFixPlan {
	if analysis == nil {
		return plan
	}
	out := plan.Filter(func(f portrait.PlannedFix) bool {
		det := analysis.Issue(f.Issue)
		return det.Present && det.Severity >= p.MinSeverity
	})
	if out.Len() != plan.Len() {
		log.Info().
			Int("requested", plan.Len()).
			Int("kept", out.Len()).
			Msg("Skipping fixes for issues not found in the photo")
	}
	return out
}
