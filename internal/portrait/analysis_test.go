package portrait

import (
	"strings"
	"testing"
)

func TestFallbackAnalysis(t *testing.T) {
	a := FallbackAnalysis("timeout")
	if !a.Degraded || a.OverallQuality != FallbackQuality {
		t.Errorf("analysis = %+v", a)
	}
	if !strings.Contains(a.Summary, "timeout") {
		t.Errorf("Summary = %q", a.Summary)
	}
	for _, it := range CanonicalOrder {
		det := a.Issue(it)
		if !det.Present || det.Severity != FallbackSeverity {
			t.Errorf("Issue(%s) = %+v", it, det)
		}
	}
}

func TestNormalize(t *testing.T) {
	a := (&AnalysisResult{
		OverallQuality: 140,
		Face:           FaceAnalysis{GazeConfidence: 2},
		Issues: map[IssueType]IssueDetection{
			IssueLighting: {Present: true, Severity: 9},
			IssueAngle:    {Present: true, Severity: 0},
			"smile":       {Present: true, Severity: 3},
		},
	}).Normalize()

	if a.OverallQuality != 100 || a.Face.GazeConfidence != 1 {
		t.Errorf("scores not clamped: %+v", a)
	}
	if a.Issues[IssueLighting].Severity != MaxSeverity || a.Issues[IssueAngle].Severity != MinSeverity {
		t.Errorf("severities not clamped: %+v", a.Issues)
	}
	if det, ok := a.Issues[IssueEyeContact]; !ok || det.Present {
		t.Errorf("missing issue not filled as absent: %+v", det)
	}
	if _, ok := a.Issues["smile"]; ok {
		t.Error("unknown issue not removed")
	}
	if len(a.Issues) != len(CanonicalOrder) {
		t.Errorf("len(Issues) = %d", len(a.Issues))
	}
}

func TestIssue_NilSafe(t *testing.T) {
	var a *AnalysisResult
	if det := a.Issue(IssuePosture); det.Present {
		t.Errorf("nil analysis Issue() = %+v", det)
	}
}

func TestDescribe(t *testing.T) {
	a := (&AnalysisResult{
		Face:   FaceAnalysis{Detected: true, GazeDirection: "left"},
		Issues: map[IssueType]IssueDetection{IssueLighting: {Present: true, Severity: 4, Description: "harsh overhead light"}},
	}).Normalize()
	got := a.Describe()
	for _, want := range []string{"gaze: left", "Issue lighting: severity 4/5 - harsh overhead light", "camera angle unknown"} {
		if !strings.Contains(got, want) {
			t.Errorf("Describe() missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Issue posture") {
		t.Errorf("Describe() lists an absent issue:\n%s", got)
	}
}

func TestParseIssueType(t *testing.T) {
	tests := map[string]IssueType{
		"eyeContact":  IssueEyeContact,
		"eye-contact": IssueEyeContact,
		"EYE_CONTACT": IssueEyeContact,
		"lighting":    IssueLighting,
	}
	for in, want := range tests {
		got, err := ParseIssueType(in)
		if err != nil || got != want {
			t.Errorf("ParseIssueType(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseIssueType("smile"); err == nil {
		t.Error("ParseIssueType(smile) expected error")
	}
}
