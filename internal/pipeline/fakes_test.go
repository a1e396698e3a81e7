package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fpang/portrait-retouch/internal/portrait"
)

type analyzerFunc func(ctx context.Context, image []byte, mime string) *portrait.AnalysisResult

func (f analyzerFunc) Analyze(ctx context.Context, image []byte, mime string) *portrait.AnalysisResult {
	return f(ctx, image, mime)
}

type editorFunc func(ctx context.Context, req portrait.EditRequest) (*portrait.EditResult, error)

func (f editorFunc) Apply(ctx context.Context, req portrait.EditRequest) (*portrait.EditResult, error) {
	return f(ctx, req)
}

type validatorFunc func(ctx context.Context, req portrait.ValidationRequest) portrait.StepValidation

func (f validatorFunc) ValidateStep(ctx context.Context, req portrait.ValidationRequest) portrait.StepValidation {
	return f(ctx, req)
}

// appendEditor returns the input image with "|issue" appended, so the
// carried image records every fix applied to it.
func appendEditor() editorFunc {
	return func(_ context.Context, req portrait.EditRequest) (*portrait.EditResult, error) {
		return &portrait.EditResult{Image: []byte(string(req.Image) + "|" + string(req.Fix.Issue)), MIME: "image/png"}, nil
	}
}

func failingEditor(kind portrait.EditErrorKind) editorFunc {
	return func(_ context.Context, req portrait.EditRequest) (*portrait.EditResult, error) {
		return nil, &portrait.EditError{Kind: kind, Issue: req.Fix.Issue, Attempt: req.Attempt, Err: errors.New("scripted")}
	}
}

func passValidator() validatorFunc {
	return func(context.Context, portrait.ValidationRequest) portrait.StepValidation {
		v := portrait.StepValidation{IdentityPreserved: true, EditApplied: true, Naturalness: 90}
		v.Decide(portrait.DefaultMinNaturalness)
		return v
	}
}

func rejectValidator() validatorFunc {
	return func(context.Context, portrait.ValidationRequest) portrait.StepValidation {
		return portrait.RejectedValidation("identity drifted")
	}
}

// memUploader records uploads and can fail selected slots.
type memUploader struct {
	mu       sync.Mutex
	uploads  map[int][]byte
	failSlot map[int]bool
}

func newMemUploader(failSlots ...int) *memUploader {
	u := &memUploader{uploads: make(map[int][]byte), failSlot: make(map[int]bool)}
	for _, s := range failSlots {
		u.failSlot[s] = true
	}
	return u
}

func (u *memUploader) UploadVariation(_ context.Context, image []byte, _ string, slot int) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failSlot[slot] {
		return "", errors.New("bucket unavailable")
	}
	u.uploads[slot] = image
	return fmt.Sprintf("https://cdn.test/variation-%d", slot), nil
}

// countingAnalyzer counts calls and returns a fixed analysis.
type countingAnalyzer struct {
	calls  atomic.Int32
	result *portrait.AnalysisResult
}

func (a *countingAnalyzer) Analyze(context.Context, []byte, string) *portrait.AnalysisResult {
	a.calls.Add(1)
	return a.result
}

func cleanAnalysis() *portrait.AnalysisResult {
	a := &portrait.AnalysisResult{OverallQuality: 80, Summary: "Clear portrait"}
	return a.Normalize()
}

func slotProfiles(slot int) portrait.VariationProfile {
	return portrait.VariationProfile{Name: fmt.Sprintf("slot-%d", slot), Label: fmt.Sprintf("Style %d", slot)}
}

func slotOf(profile portrait.VariationProfile) int {
	var n int
	fmt.Sscanf(strings.TrimPrefix(profile.Name, "slot-"), "%d", &n)
	return n
}

func enabled(issues ...portrait.IssueType) []portrait.FixSelection {
	out := make([]portrait.FixSelection, len(issues))
	for i, it := range issues {
		out[i] = portrait.FixSelection{Issue: it, Enabled: true}
	}
	return out
}
