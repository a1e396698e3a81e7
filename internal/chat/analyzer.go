package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/portrait-retouch/internal/assets"
	"github.com/fpang/portrait-retouch/internal/imageutil"
	"github.com/fpang/portrait-retouch/internal/jsonutil"
	"github.com/fpang/portrait-retouch/internal/portrait"
)

// analysisResponse mirrors portrait.AnalysisResult but keeps issue keys as
// raw strings so spelling variants from the model can be normalized.
type analysisResponse struct {
	Face           portrait.FaceAnalysis        `json:"face"`
	Pose           portrait.PoseAnalysis        `json:"pose"`
	Lighting       portrait.LightingAnalysis    `json:"lighting"`
	Composition    portrait.CompositionAnalysis `json:"composition"`
	Issues         map[string]issueResponse     `json:"issues"`
	OverallQuality score                        `json:"overallQuality"`
	Summary        string                       `json:"summary"`
}

type issueResponse struct {
	Present     bool   `json:"present"`
	Severity    score  `json:"severity"`
	Description string `json:"description"`
}

// ImageAnalyzer inspects the source portrait once per request.
type ImageAnalyzer struct {
	model     ImageModel
	modelName string
	timeout   time.Duration
}

// NewImageAnalyzer creates an analyzer. timeout bounds the single model call.
func NewImageAnalyzer(model ImageModel, modelName string, timeout time.Duration) *ImageAnalyzer {
	return &ImageAnalyzer{model: model, modelName: modelName, timeout: timeout}
}

// Analyze never fails: any call, timeout or parse error yields
// portrait.FallbackAnalysis so the request can still proceed.
func (a *ImageAnalyzer) Analyze(ctx context.Context, image []byte, mime string) *portrait.AnalysisResult {
	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := assets.RenderAnalysisPrompt(assets.AnalysisPromptData{
		CameraContext: imageutil.CameraContext(image),
	})
	text, err := a.model.InspectImages(callCtx, a.modelName, []InlineImage{{Data: image, MIME: mime}}, prompt, assets.AnalysisSystemPrompt)
	if err != nil {
		log.Warn().Err(err).Str("model", a.modelName).Dur("duration", time.Since(start)).
			Msg("Portrait analysis failed, using fallback analysis")
		return portrait.FallbackAnalysis("analysis call failed")
	}

	resp, err := jsonutil.ParseObject[analysisResponse](text)
	if err != nil {
		log.Warn().Err(err).Str("response", jsonutil.Preview(text, 300)).
			Msg("Failed to parse portrait analysis, using fallback analysis")
		return portrait.FallbackAnalysis("analysis response unreadable")
	}

	result := &portrait.AnalysisResult{
		Face:           resp.Face,
		Pose:           resp.Pose,
		Lighting:       resp.Lighting,
		Composition:    resp.Composition,
		Issues:         make(map[portrait.IssueType]portrait.IssueDetection, len(resp.Issues)),
		OverallQuality: resp.OverallQuality.int(),
		Summary:        resp.Summary,
	}
	for key, det := range resp.Issues {
		it, err := portrait.ParseIssueType(key)
		if err != nil {
			log.Debug().Str("issue", key).Msg("Ignoring unknown issue in analysis")
			continue
		}
		result.Issues[it] = portrait.IssueDetection{
			Present:     det.Present,
			Severity:    det.Severity.int(),
			Description: det.Description,
		}
	}
	result.Normalize()

	present := 0
	for _, det := range result.Issues {
		if det.Present {
			present++
		}
	}
	log.Info().
		Int("overall_quality", result.OverallQuality).
		Int("issues_present", present).
		Bool("face_detected", result.Face.Detected).
		Dur("duration", time.Since(start)).
		Msg("Portrait analysis complete")
	return result
}
