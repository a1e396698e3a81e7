// Package pipeline runs a generation request: one analysis of the source
// portrait, then K independent variation pipelines, each applying the
// planned fixes one at a time with validation and bounded retries.
//
// Every external call goes through the interfaces below. Implementations
// report failure as values (an *portrait.EditError, a rejected
// StepValidation, a degraded AnalysisResult); nothing in this package
// propagates a collaborator failure past the slot it happened in.
package pipeline

import (
	"context"

	"github.com/fpang/portrait-retouch/internal/portrait"
)

// Analyzer inspects the source image. It must always return a result,
// substituting portrait.FallbackAnalysis on failure.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, mime string) *portrait.AnalysisResult
}

// EditApplier applies one fix with one model call. A non-nil error is an
// *portrait.EditError.
type EditApplier interface {
	Apply(ctx context.Context, req portrait.EditRequest) (*portrait.EditResult, error)
}

// StepValidator judges one edit. It must fail closed.
type StepValidator interface {
	ValidateStep(ctx context.Context, req portrait.ValidationRequest) portrait.StepValidation
}

// VariationUploader persists the final image of a successful slot and
// returns a URL the caller can fetch it from.
type VariationUploader interface {
	UploadVariation(ctx context.Context, image []byte, mime string, slot int) (string, error)
}

// Planner may narrow the fix plan once the analysis is known. It runs once
// per request, before fan-out, so every slot sees the same plan.
type Planner interface {
	Plan(analysis *portrait.AnalysisResult, plan portrait.OrderedFixPlan) portrait.OrderedFixPlan
}
