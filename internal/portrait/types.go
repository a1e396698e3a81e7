// Package portrait defines the domain model for portrait retouching: the four
// fixable issue types, the analysis snapshot of a source photo, per-step
// validation verdicts, and the records produced by each variation pipeline.
//
// Types in this package are plain values. They carry JSON tags because the
// Lambda and the job store serialize them, but the package owns no wire format.
package portrait

import (
	"fmt"
	"strings"
	"time"
)

// IssueType identifies one of the four fixable visual problems.
type IssueType string

// Issue type constants.
const (
	IssueEyeContact IssueType = "eyeContact"
	IssuePosture    IssueType = "posture"
	IssueAngle      IssueType = "angle"
	IssueLighting   IssueType = "lighting"
)

// CanonicalOrder is the fixed processing order shared by every variation.
// Each edit consumes the validated output of the previous one, so the order
// must never depend on how the caller listed its selections.
var CanonicalOrder = []IssueType{IssueEyeContact, IssuePosture, IssueAngle, IssueLighting}

var issueLabels = map[IssueType]string{
	IssueEyeContact: "eye contact",
	IssuePosture:    "posture",
	IssueAngle:      "camera angle",
	IssueLighting:   "lighting",
}

// Valid reports whether t is one of the four known issue types.
func (t IssueType) Valid() bool {
	_, ok := issueLabels[t]
	return ok
}

// Rank returns the position of t in CanonicalOrder, or -1 if unknown.
func (t IssueType) Rank() int {
	for i, it := range CanonicalOrder {
		if it == t {
			return i
		}
	}
	return -1
}

// Label returns a human-readable name ("eye contact", "camera angle").
func (t IssueType) Label() string {
	if l, ok := issueLabels[t]; ok {
		return l
	}
	return string(t)
}

// ParseIssueType accepts the canonical camelCase form as well as the
// kebab-case and snake_case spellings used by the CLI and older clients.
func ParseIssueType(s string) (IssueType, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	for _, t := range CanonicalOrder {
		if strings.ToLower(string(t)) == norm {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown issue type %q", s)
}

// --- Analysis ---

// FaceAnalysis describes face detection and gaze.
type FaceAnalysis struct {
	Detected       bool    `json:"detected"`
	GazeDirection  string  `json:"gazeDirection"`
	GazeConfidence float64 `json:"gazeConfidence"`
}

// PoseAnalysis describes head and body posture.
type PoseAnalysis struct {
	HeadTilt     float64 `json:"headTilt"` // degrees, positive = clockwise
	ShoulderLine string  `json:"shoulderLine"`
	Posture      string  `json:"posture"` // "upright", "slouched", "leaning", ...
}

// LightingAnalysis describes the light on the subject.
type LightingAnalysis struct {
	Direction        string `json:"direction"`
	Quality          string `json:"quality"`
	ColorTemperature string `json:"colorTemperature"`
	ShadowIntensity  string `json:"shadowIntensity"`
}

// CompositionAnalysis describes framing.
type CompositionAnalysis struct {
	SubjectPosition string `json:"subjectPosition"`
	Headroom        string `json:"headroom"`
	CameraAngle     string `json:"cameraAngle"`
}

// IssueDetection is the analyzer's finding for one issue type.
type IssueDetection struct {
	Present     bool   `json:"present"`
	Severity    int    `json:"severity"` // 1-5
	Description string `json:"description"`
}

// AnalysisResult is the immutable snapshot of the source image. It is
// computed once per generation request and shared read-only by every
// variation pipeline.
type AnalysisResult struct {
	Face           FaceAnalysis                 `json:"face"`
	Pose           PoseAnalysis                 `json:"pose"`
	Lighting       LightingAnalysis             `json:"lighting"`
	Composition    CompositionAnalysis          `json:"composition"`
	Issues         map[IssueType]IssueDetection `json:"issues"`
	OverallQuality int                          `json:"overallQuality"` // 0-100
	Summary        string                       `json:"summary"`

	// Degraded is set when the analyzer could not inspect the image and the
	// conservative fallback was substituted.
	Degraded bool `json:"degraded,omitempty"`
}

// --- Templates and selections ---

// FixTemplate is a named edit recipe for one issue type.
type FixTemplate struct {
	ID             string    `json:"id" yaml:"id"`
	Issue          IssueType `json:"editType" yaml:"editType"`
	Label          string    `json:"label" yaml:"label"`
	Description    string    `json:"description" yaml:"description"`
	PromptModifier string    `json:"promptModifier" yaml:"promptModifier"`
	IsDefault      bool      `json:"isDefault" yaml:"isDefault"`
}

// FixSelection is one requested edit as supplied by the caller.
type FixSelection struct {
	Issue        IssueType   `json:"editType"`
	Enabled      bool        `json:"enabled"`
	Template     FixTemplate `json:"template"`
	CustomPrompt string      `json:"customPrompt,omitempty"`
}

// --- Per-step records ---

// StepValidation is the verdict for one applied edit. CanProceed is the only
// field the pipeline gates on.
type StepValidation struct {
	IdentityPreserved bool   `json:"identityPreserved"`
	EditApplied       bool   `json:"editApplied"`
	Naturalness       int    `json:"naturalness"` // 0-100
	HasArtifacts      bool   `json:"hasArtifacts"`
	CanProceed        bool   `json:"canProceed"`
	Feedback          string `json:"feedback,omitempty"`
}

// SequentialStep records the processing of one issue within one pipeline.
// Steps are appended once and never edited afterwards.
type SequentialStep struct {
	Issue      IssueType       `json:"editType"`
	Template   FixTemplate     `json:"template"`
	Attempts   int             `json:"attempts"`
	Success    bool            `json:"success"`
	Validation *StepValidation `json:"validation,omitempty"`
	Error      string          `json:"error,omitempty"`
	DurationMs int64           `json:"durationMs"`
}

// PipelineRun is the terminal state of one variation. It is owned by the
// goroutine executing it and becomes read-only once returned.
type PipelineRun struct {
	ID         int              `json:"id"`
	Profile    VariationProfile `json:"profile"`
	Steps      []SequentialStep `json:"steps"`
	FinalImage []byte           `json:"finalImageBase64,omitempty"`
	FinalMIME  string           `json:"finalMime,omitempty"`
	Success    bool             `json:"success"`
	Error      string           `json:"error,omitempty"`
}

// TotalAttempts sums the attempts of every recorded step.
func (r *PipelineRun) TotalAttempts() int {
	n := 0
	for _, s := range r.Steps {
		n += s.Attempts
	}
	return n
}

// --- Public output ---

// VariationResult is the public result for one slot.
type VariationResult struct {
	Index      int              `json:"index"`
	StyleLabel string           `json:"style"`
	Success    bool             `json:"success"`
	ImageURL   string           `json:"imageUrl"`
	Attempts   int              `json:"attempts"`
	Fallback   bool             `json:"fallback"`
	Error      string           `json:"error,omitempty"`
	Steps      []SequentialStep `json:"steps,omitempty"`
}

// GenerationResult is returned to the caller once every slot has finished.
type GenerationResult struct {
	Success     bool              `json:"success"`
	Variations  []VariationResult `json:"variations"`
	Analysis    *AnalysisResult   `json:"analysis"`
	TotalTimeMs int64             `json:"totalTimeMs"`

	// Runs holds the raw terminal state of each slot, indexed by slot.
	Runs []*PipelineRun `json:"-"`
}

// --- Progress ---

// Stage is the coarse phase reported in progress snapshots.
type Stage string

// Stage constants.
const (
	StagePending    Stage = "pending"
	StageAnalyzing  Stage = "analyzing"
	StagePlanning   Stage = "planning"
	StageGenerating Stage = "generating"
	StageValidating Stage = "validating"
	StageComplete   Stage = "complete"
	StageFailed     Stage = "failed"
)

// Terminal reports whether s ends a request.
func (s Stage) Terminal() bool {
	return s == StageComplete || s == StageFailed
}

// PipelineProgress is a point-in-time snapshot. Each snapshot replaces the
// previous one; consumers must not treat it as a delta.
type PipelineProgress struct {
	Stage                     Stage     `json:"stage"`
	StageProgress             int       `json:"stageProgress"` // 0-100
	CurrentVariation          int       `json:"currentVariation"`
	TotalVariations           int       `json:"totalVariations"`
	Message                   string    `json:"message"`
	EstimatedSecondsRemaining int       `json:"estimatedTimeRemaining"`
	StartedAt                 time.Time `json:"startedAt"`
}
