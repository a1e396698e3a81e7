package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/portrait-retouch/internal/assets"
	"github.com/fpang/portrait-retouch/internal/portrait"
)

// EditApplier applies one issue fix with one model call. It does not retry;
// the pipeline owns the retry policy.
type EditApplier struct {
	model     ImageModel
	modelName string
	timeout   time.Duration
}

// NewEditApplier creates an EditApplier. timeout bounds each call.
func NewEditApplier(model ImageModel, modelName string, timeout time.Duration) *EditApplier {
	return &EditApplier{model: model, modelName: modelName, timeout: timeout}
}

// BuildEditPrompt renders the instruction for one attempt. The attempt
// number and prior feedback let retries ask for a different result.
func BuildEditPrompt(req portrait.EditRequest) string {
	det := req.Analysis.Issue(req.Fix.Issue)
	data := assets.EditPromptData{
		IssueLabel:      req.Fix.Issue.Label(),
		Instruction:     req.Fix.Prompt(),
		AnalysisContext: req.Analysis.Describe(),
		ProfileLabel:    req.Profile.Label,
		ProfileHint:     req.Profile.Hint,
		Intensity:       req.Profile.Intensity,
		Attempt:         req.Attempt,
		PriorFeedback:   req.PriorFeedback,
	}
	if det.Present {
		data.IssueDescription = det.Description
		data.Severity = det.Severity
	}
	return assets.RenderEditPrompt(data)
}

// Apply returns the edited image, or an *portrait.EditError.
func (e *EditApplier) Apply(ctx context.Context, req portrait.EditRequest) (*portrait.EditResult, error) {
	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	res, err := e.model.EditImage(callCtx, e.modelName, InlineImage{Data: req.Image, MIME: req.MIME}, BuildEditPrompt(req), assets.EditSystemPrompt)
	if err != nil {
		editErr := portrait.ClassifyEditError(callCtx, req.Fix.Issue, req.Attempt, err)
		log.Warn().Err(err).
			Str("issue", string(req.Fix.Issue)).
			Int("attempt", req.Attempt).
			Str("kind", string(editErr.Kind)).
			Dur("duration", time.Since(start)).
			Msg("Edit attempt failed")
		return nil, editErr
	}

	log.Debug().
		Str("issue", string(req.Fix.Issue)).
		Int("attempt", req.Attempt).
		Int("output_bytes", len(res.ImageData)).
		Dur("duration", time.Since(start)).
		Msg("Edit attempt returned image")
	return &portrait.EditResult{Image: res.ImageData, MIME: res.ImageMIMEType, Notes: res.Text}, nil
}
