package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/portrait-retouch/internal/assets"
	"github.com/fpang/portrait-retouch/internal/jsonutil"
	"github.com/fpang/portrait-retouch/internal/portrait"
)

// validationResponse uses pointers so a field the model left out is
// distinguishable from an explicit false or zero.
type validationResponse struct {
	IdentityPreserved *bool  `json:"identityPreserved"`
	EditApplied       *bool  `json:"editApplied"`
	Naturalness       *score `json:"naturalness"`
	HasArtifacts      *bool  `json:"hasArtifacts"`
	Feedback          string `json:"feedback"`
}

func (r validationResponse) missing() []string {
	var m []string
	if r.IdentityPreserved == nil {
		m = append(m, "identityPreserved")
	}
	if r.EditApplied == nil {
		m = append(m, "editApplied")
	}
	if r.Naturalness == nil {
		m = append(m, "naturalness")
	}
	if r.HasArtifacts == nil {
		m = append(m, "hasArtifacts")
	}
	return m
}

// StepValidator judges one before/after pair. It fails closed: a verdict
// it could not obtain is a rejection.
type StepValidator struct {
	model          ImageModel
	modelName      string
	timeout        time.Duration
	minNaturalness int
}

// NewStepValidator creates a StepValidator.
func NewStepValidator(model ImageModel, modelName string, timeout time.Duration, minNaturalness int) *StepValidator {
	return &StepValidator{model: model, modelName: modelName, timeout: timeout, minNaturalness: minNaturalness}
}

// ValidateStep returns the verdict for req. It never returns a proceeding
// verdict unless the model explicitly reported every check.
func (v *StepValidator) ValidateStep(ctx context.Context, req portrait.ValidationRequest) portrait.StepValidation {
	start := time.Now()
	if len(req.After) == 0 {
		return portrait.RejectedValidation("no edited image to validate")
	}

	callCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	var images []InlineImage
	data := assets.ValidationPromptData{
		IssueLabel:  req.Fix.Issue.Label(),
		Instruction: req.Fix.Prompt(),
	}
	if ref := req.Reference; ref != nil && len(ref.Image) > 0 {
		images = append(images, InlineImage{Data: ref.Image, MIME: ref.MIME})
		data.HasReference = true
		data.ReferenceNotes = ref.Notes
	}
	images = append(images,
		InlineImage{Data: req.Before, MIME: req.BeforeMIME},
		InlineImage{Data: req.After, MIME: req.AfterMIME},
	)

	text, err := v.model.InspectImages(callCtx, v.modelName, images, assets.RenderValidationPrompt(data), assets.ValidationSystemPrompt)
	if err != nil {
		log.Warn().Err(err).Str("issue", string(req.Fix.Issue)).Dur("duration", time.Since(start)).
			Msg("Step validation call failed, rejecting edit")
		return portrait.RejectedValidation(fmt.Sprintf("validation unavailable: %v", err))
	}

	resp, err := jsonutil.ParseObject[validationResponse](text)
	if err != nil {
		log.Warn().Err(err).Str("response", jsonutil.Preview(text, 300)).
			Msg("Failed to parse step validation, rejecting edit")
		return portrait.RejectedValidation("validation response unreadable")
	}
	if missing := resp.missing(); len(missing) > 0 {
		log.Warn().Strs("missing", missing).Msg("Step validation incomplete, rejecting edit")
		return portrait.RejectedValidation("validation response missing " + strings.Join(missing, ", "))
	}

	verdict := portrait.StepValidation{
		IdentityPreserved: *resp.IdentityPreserved,
		EditApplied:       *resp.EditApplied,
		Naturalness:       resp.Naturalness.int(),
		HasArtifacts:      *resp.HasArtifacts,
		Feedback:          strings.TrimSpace(resp.Feedback),
	}
	verdict.Decide(v.minNaturalness)
	if verdict.CanProceed {
		// Accepted edits carry no feedback.
		verdict.Feedback = ""
	}

	log.Info().
		Str("issue", string(req.Fix.Issue)).
		Bool("identity_preserved", verdict.IdentityPreserved).
		Bool("edit_applied", verdict.EditApplied).
		Int("naturalness", verdict.Naturalness).
		Bool("has_artifacts", verdict.HasArtifacts).
		Bool("can_proceed", verdict.CanProceed).
		Dur("duration", time.Since(start)).
		Msg("Step validation complete")
	return verdict
}
