package pipeline

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/time/rate"

	"github.com/fpang/portrait-retouch/internal/portrait"
)

func TestNewLimiter(t *testing.T) {
	if NewLimiter(0) != nil {
		t.Error("rpm 0 should be unlimited")
	}
	if l := NewLimiter(5); l.Burst() != 1 {
		t.Errorf("Burst() = %d, want 1", l.Burst())
	}
	if l := NewLimiter(120); l.Burst() != 12 {
		t.Errorf("Burst() = %d, want 12", l.Burst())
	}
}

func TestWithRateLimit_NilLimiterUnchanged(t *testing.T) {
	a, e, v := WithRateLimit(nil, &countingAnalyzer{}, appendEditor(), passValidator())
	if _, ok := a.(*countingAnalyzer); !ok {
		t.Errorf("analyzer wrapped: %T", a)
	}
	if _, ok := e.(editorFunc); !ok {
		t.Errorf("editor wrapped: %T", e)
	}
	if _, ok := v.(validatorFunc); !ok {
		t.Errorf("validator wrapped: %T", v)
	}
}

func TestRateLimited_CanceledWait(t *testing.T) {
	// Zero burst means Wait can never succeed.
	limiter := rate.NewLimiter(rate.Every(1), 0)
	a, e, v := WithRateLimit(limiter, &countingAnalyzer{result: cleanAnalysis()}, appendEditor(), passValidator())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := a.Analyze(ctx, []byte("x"), "image/jpeg"); !got.Degraded {
		t.Errorf("analysis = %+v, want fallback", got)
	}

	_, err := e.Apply(ctx, portrait.EditRequest{Fix: portrait.PlannedFix{Issue: portrait.IssueAngle}, Attempt: 2})
	var editErr *portrait.EditError
	if !errors.As(err, &editErr) || editErr.Kind != portrait.KindCanceled || editErr.Attempt != 2 {
		t.Errorf("Apply() error = %v", err)
	}

	if got := v.ValidateStep(ctx, portrait.ValidationRequest{}); got.CanProceed {
		t.Error("validation should reject when the wait fails")
	}
}

func TestRateLimited_PassesThrough(t *testing.T) {
	limiter := rate.NewLimiter(rate.Inf, 1)
	_, e, v := WithRateLimit(limiter, &countingAnalyzer{}, appendEditor(), passValidator())
	res, err := e.Apply(context.Background(), portrait.EditRequest{Image: []byte("a"), Fix: portrait.PlannedFix{Issue: portrait.IssueAngle}})
	if err != nil || string(res.Image) != "a|angle" {
		t.Errorf("Apply() = %v, %v", res, err)
	}
	if !v.ValidateStep(context.Background(), portrait.ValidationRequest{}).CanProceed {
		t.Error("validation should pass through")
	}
}
