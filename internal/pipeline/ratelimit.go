package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/fpang/portrait-retouch/internal/portrait"
)

// NewLimiter returns a limiter for requestsPerMinute model calls shared by
// every slot, or nil when requestsPerMinute is zero (unlimited).
func NewLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	burst := max(1, requestsPerMinute/10)
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), burst)
}

// RateLimitedAnalyzer waits for the limiter before analyzing.
type RateLimitedAnalyzer struct {
	Next    Analyzer
	Limiter *rate.Limiter
}

// Analyze implements Analyzer.
func (r RateLimitedAnalyzer) Analyze(ctx context.Context, image []byte, mime string) *portrait.AnalysisResult {
	if err := r.Limiter.Wait(ctx); err != nil {
		log.Warn().Err(err).Msg("Rate limit wait aborted before analysis")
		return portrait.FallbackAnalysis("rate limit wait aborted")
	}
	return r.Next.Analyze(ctx, image, mime)
}

// RateLimitedEditor waits for the limiter before each edit. A failed wait
// is an edit failure for that attempt.
type RateLimitedEditor struct {
	Next    EditApplier
	Limiter *rate.Limiter
}

// Apply implements EditApplier.
func (r RateLimitedEditor) Apply(ctx context.Context, req portrait.EditRequest) (*portrait.EditResult, error) {
	if err := r.Limiter.Wait(ctx); err != nil {
		return nil, portrait.ClassifyEditError(ctx, req.Fix.Issue, req.Attempt, err)
	}
	return r.Next.Apply(ctx, req)
}

// RateLimitedValidator waits for the limiter before each validation. A
// failed wait rejects the edit.
type RateLimitedValidator struct {
	Next    StepValidator
	Limiter *rate.Limiter
}

// ValidateStep implements StepValidator.
func (r RateLimitedValidator) ValidateStep(ctx context.Context, req portrait.ValidationRequest) portrait.StepValidation {
	if err := r.Limiter.Wait(ctx); err != nil {
		return portrait.RejectedValidation("validation skipped: " + err.Error())
	}
	return r.Next.ValidateStep(ctx, req)
}

// WithRateLimit wraps the three model-backed collaborators with one shared
// limiter. A nil limiter returns them unchanged.
func WithRateLimit(limiter *rate.Limiter, a Analyzer, e EditApplier, v StepValidator) (Analyzer, EditApplier, StepValidator) {
	if limiter == nil {
		return a, e, v
	}
	return RateLimitedAnalyzer{Next: a, Limiter: limiter},
		RateLimitedEditor{Next: e, Limiter: limiter},
		RateLimitedValidator{Next: v, Limiter: limiter}
}
