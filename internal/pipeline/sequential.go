package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fpang/portrait-retouch/internal/portrait"
)

// SequentialPipeline drives one variation through the plan. Step i+1 starts
// only after step i was validated; a step that exhausts its retries fails
// the whole variation and no later step runs.
type SequentialPipeline struct {
	Slot       int
	Profile    portrait.VariationProfile
	Plan       portrait.OrderedFixPlan
	Analysis   *portrait.AnalysisResult
	MaxRetries int

	Editor    EditApplier
	Validator StepValidator

	// Reference returns the identity anchor for validation. It may be nil.
	Reference func() *portrait.Reference

	observer stepObserver
	now      func() time.Time
}

func (p *SequentialPipeline) clock() time.Time {
	if p.now != nil {
		return p.now()
	}
	return time.Now()
}

// Run executes the plan against image. The returned run is owned by the
// caller and is not touched again by the pipeline.
func (p *SequentialPipeline) Run(ctx context.Context, image []byte, mime string) *portrait.PipelineRun {
	logger := log.With().Int("slot", p.Slot).Str("profile", p.Profile.Name).Logger()
	run := &portrait.PipelineRun{ID: p.Slot, Profile: p.Profile, Steps: make([]portrait.SequentialStep, 0, p.Plan.Len())}

	current, currentMIME := image, mime
	for _, fix := range p.Plan.Fixes() {
		step, out, outMIME := p.runStep(ctx, logger, fix, current, currentMIME)
		run.Steps = append(run.Steps, step)
		if !step.Success {
			run.Error = fmt.Sprintf("%s fix failed after %d attempts: %s", fix.Issue.Label(), step.Attempts, step.Error)
			logger.Warn().Str("issue", string(fix.Issue)).Int("attempts", step.Attempts).Msg("Variation failed")
			p.notifyFinished(false)
			return run
		}
		current, currentMIME = out, outMIME
	}

	run.Success = true
	run.FinalImage = current
	run.FinalMIME = currentMIME
	logger.Info().Int("steps", len(run.Steps)).Int("attempts", run.TotalAttempts()).Msg("Variation complete")
	p.notifyFinished(true)
	return run
}

func (p *SequentialPipeline) runStep(ctx context.Context, logger zerolog.Logger, fix portrait.PlannedFix, image []byte, mime string) (portrait.SequentialStep, []byte, string) {
	start := p.clock()
	step := portrait.SequentialStep{Issue: fix.Issue, Template: fix.Template}
	stepLog := logger.With().Str("issue", string(fix.Issue)).Logger()

	maxRetries := max(1, p.MaxRetries)
	var out []byte
	var outMIME string
	feedback := ""
	for step.Attempts < maxRetries {
		step.Attempts++
		if p.observer != nil {
			p.observer.StepGenerating(p.Slot, fix.Issue, step.Attempts)
		}

		res, err := p.Editor.Apply(ctx, portrait.EditRequest{
			Image:         image,
			MIME:          mime,
			Fix:           fix,
			Analysis:      p.Analysis,
			Profile:       p.Profile,
			Attempt:       step.Attempts,
			PriorFeedback: feedback,
		})
		if err == nil && (res == nil || len(res.Image) == 0) {
			err = portrait.ClassifyEditError(ctx, fix.Issue, step.Attempts, portrait.ErrNoImage)
		}
		if err != nil {
			step.Error = err.Error()
			stepLog.Debug().Err(err).Int("attempt", step.Attempts).Msg("Edit attempt produced no image")
			var ee *portrait.EditError
			if errors.As(err, &ee) && !ee.Retryable() {
				break
			}
			continue
		}

		if p.observer != nil {
			p.observer.StepValidating(p.Slot, fix.Issue, step.Attempts)
		}
		var ref *portrait.Reference
		if p.Reference != nil {
			ref = p.Reference()
		}
		verdict := p.Validator.ValidateStep(ctx, portrait.ValidationRequest{
			Before:     image,
			BeforeMIME: mime,
			After:      res.Image,
			AfterMIME:  res.MIME,
			Fix:        fix,
			Reference:  ref,
		})
		step.Validation = &verdict

		if verdict.CanProceed {
			step.Success = true
			step.Error = ""
			out, outMIME = res.Image, res.MIME
			break
		}
		feedback = verdict.Feedback
		step.Error = "validation rejected: " + verdict.Feedback
		stepLog.Debug().Int("attempt", step.Attempts).Str("feedback", verdict.Feedback).Msg("Edit rejected by validator")

		if ctx.Err() != nil {
			break
		}
	}

	step.DurationMs = p.clock().Sub(start).Milliseconds()
	if p.observer != nil {
		p.observer.StepFinished(p.Slot, fix.Issue, step.Success, time.Duration(step.DurationMs)*time.Millisecond)
	}
	return step, out, outMIME
}

func (p *SequentialPipeline) notifyFinished(success bool) {
	if p.observer != nil {
		p.observer.PipelineFinished(p.Slot, success)
	}
}
