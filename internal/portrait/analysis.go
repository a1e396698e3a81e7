package portrait

import (
	"fmt"
	"strings"
)

// Fallback analysis constants. When the analyzer fails the request still
// proceeds: every issue is treated as present at mid severity.
const (
	FallbackQuality  = 60
	FallbackSeverity = 3
)

// Severity bounds for IssueDetection.
const (
	MinSeverity = 1
	MaxSeverity = 5
)

// FallbackAnalysis returns the conservative analysis used when the source
// image could not be inspected. reason is kept in the summary for debugging.
func FallbackAnalysis(reason string) *AnalysisResult {
	issues := make(map[IssueType]IssueDetection, len(CanonicalOrder))
	for _, t := range CanonicalOrder {
		issues[t] = IssueDetection{
			Present:     true,
			Severity:    FallbackSeverity,
			Description: fmt.Sprintf("Automatic analysis unavailable; assuming %s needs correction", t.Label()),
		}
	}

	summary := "Automatic analysis unavailable; applying requested fixes with default settings"
	if reason != "" {
		summary += " (" + reason + ")"
	}

	return &AnalysisResult{
		Face:           FaceAnalysis{Detected: true, GazeDirection: "unknown"},
		Pose:           PoseAnalysis{Posture: "unknown"},
		Lighting:       LightingAnalysis{Quality: "unknown"},
		Composition:    CompositionAnalysis{CameraAngle: "unknown"},
		Issues:         issues,
		OverallQuality: FallbackQuality,
		Summary:        summary,
		Degraded:       true,
	}
}

// Normalize clamps scores into range and fills in any issue the model omitted
// as not present. It mutates a and returns it for chaining; callers must only
// normalize before the result is shared.
func (a *AnalysisResult) Normalize() *AnalysisResult {
	if a.Issues == nil {
		a.Issues = make(map[IssueType]IssueDetection, len(CanonicalOrder))
	}
	for _, t := range CanonicalOrder {
		det, ok := a.Issues[t]
		if !ok {
			det = IssueDetection{Present: false, Severity: MinSeverity}
		}
		det.Severity = clamp(det.Severity, MinSeverity, MaxSeverity)
		a.Issues[t] = det
	}
	for k := range a.Issues {
		if !k.Valid() {
			delete(a.Issues, k)
		}
	}
	a.OverallQuality = clamp(a.OverallQuality, 0, 100)
	a.Face.GazeConfidence = clampFloat(a.Face.GazeConfidence, 0, 1)
	return a
}

// Issue returns the detection for t, or a not-present detection.
func (a *AnalysisResult) Issue(t IssueType) IssueDetection {
	if a == nil || a.Issues == nil {
		return IssueDetection{Severity: MinSeverity}
	}
	if det, ok := a.Issues[t]; ok {
		return det
	}
	return IssueDetection{Severity: MinSeverity}
}

// Describe renders a compact text description used as context in edit and
// validation prompts.
func (a *AnalysisResult) Describe() string {
	if a == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Face detected: %t; gaze: %s (confidence %.2f)\n", a.Face.Detected, orUnknown(a.Face.GazeDirection), a.Face.GazeConfidence)
	fmt.Fprintf(&b, "Pose: %s; head tilt %.0f degrees; shoulders %s\n", orUnknown(a.Pose.Posture), a.Pose.HeadTilt, orUnknown(a.Pose.ShoulderLine))
	fmt.Fprintf(&b, "Lighting: %s from %s, %s color temperature, %s shadows\n",
		orUnknown(a.Lighting.Quality), orUnknown(a.Lighting.Direction), orUnknown(a.Lighting.ColorTemperature), orUnknown(a.Lighting.ShadowIntensity))
	fmt.Fprintf(&b, "Composition: subject %s, headroom %s, camera angle %s\n",
		orUnknown(a.Composition.SubjectPosition), orUnknown(a.Composition.Headroom), orUnknown(a.Composition.CameraAngle))
	for _, t := range CanonicalOrder {
		det := a.Issue(t)
		if det.Present {
			fmt.Fprintf(&b, "Issue %s: severity %d/5 - %s\n", t.Label(), det.Severity, det.Description)
		}
	}
	return strings.TrimSpace(b.String())
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
