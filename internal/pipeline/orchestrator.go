package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/portrait-retouch/internal/portrait"
)

// Options configures an Orchestrator.
type Options struct {
	MaxRetriesPerStep int
	FallbackImageURL  string

	// Catalogue resolves template IDs and defaults. Nil uses the embedded
	// catalogue.
	Catalogue *portrait.Catalogue
	// Planner narrows the plan once the analysis is known. Nil keeps the
	// plan as requested.
	Planner Planner
	// Profiles assigns a variation profile per slot. Nil uses
	// portrait.ProfileForSlot.
	Profiles func(slot int) portrait.VariationProfile

	now func() time.Time
}

// Request is one generation request.
type Request struct {
	Image      []byte
	MIME       string
	Selections []portrait.FixSelection
	// Analysis, when set, is used instead of calling the analyzer.
	Analysis   *portrait.AnalysisResult
	Variations int
}

// Orchestrator analyzes once and fans out one SequentialPipeline per slot.
type Orchestrator struct {
	analyzer  Analyzer
	editor    EditApplier
	validator StepValidator
	uploader  VariationUploader
	opts      Options
}

// New creates an Orchestrator.
func New(analyzer Analyzer, editor EditApplier, validator StepValidator, uploader VariationUploader, opts Options) *Orchestrator {
	if opts.MaxRetriesPerStep < 1 {
		opts.MaxRetriesPerStep = 1
	}
	if opts.Catalogue == nil {
		opts.Catalogue = portrait.DefaultCatalogue()
	}
	if opts.Planner == nil {
		opts.Planner = PassthroughPlanner{}
	}
	if opts.Profiles == nil {
		opts.Profiles = portrait.ProfileForSlot
	}
	if opts.now == nil {
		opts.now = time.Now
	}
	return &Orchestrator{analyzer: analyzer, editor: editor, validator: validator, uploader: uploader, opts: opts}
}

// Generate runs the request to completion and returns exactly
// req.Variations results. The error is non-nil only for an invalid request;
// model and upload failures are reported per slot. progress may be nil;
// otherwise it receives snapshots and is closed when Generate returns.
func (o *Orchestrator) Generate(ctx context.Context, req Request, progress chan<- portrait.PipelineProgress) (*portrait.GenerationResult, error) {
	if progress != nil {
		defer close(progress)
	}
	start := o.opts.now()

	if len(req.Image) == 0 {
		return nil, errors.New("source image is empty")
	}
	if req.Variations < 1 || req.Variations > portrait.MaxVariations {
		return nil, fmt.Errorf("variations must be between 1 and %d, got %d", portrait.MaxVariations, req.Variations)
	}
	plan, err := portrait.NewPlan(req.Selections, o.opts.Catalogue)
	if err != nil {
		return nil, fmt.Errorf("invalid fix selections: %w", err)
	}

	tracker := NewTracker(progress, req.Variations, o.opts.now)
	logger := log.With().Int("variations", req.Variations).Logger()

	// Analysis: exactly once per request.
	tracker.Stage(portrait.StageAnalyzing, 0, "Analyzing portrait")
	analysis := req.Analysis
	if analysis == nil {
		analysis = o.analyzer.Analyze(ctx, req.Image, req.MIME)
	}
	if analysis == nil {
		analysis = portrait.FallbackAnalysis("analyzer returned nothing")
	}
	tracker.Stage(portrait.StageAnalyzing, 1, "Analysis complete")

	// Planning: one plan shared read-only by every slot.
	tracker.Stage(portrait.StagePlanning, 0, fmt.Sprintf("Planning %d fixes", plan.Len()))
	plan = o.opts.Planner.Plan(analysis, plan)
	tracker.SetPlan(plan.Len())
	tracker.Stage(portrait.StagePlanning, 1, fmt.Sprintf("Generating %d variations with %d fixes each", req.Variations, plan.Len()))
	logger.Info().
		Strs("issues", issueStrings(plan.Issues())).
		Bool("analysis_degraded", analysis.Degraded).
		Msg("Starting variation pipelines")

	reference := NewReferenceMemo().Source(req.Image, req.MIME, analysis)

	runs := make([]*portrait.PipelineRun, req.Variations)
	variations := make([]portrait.VariationResult, req.Variations)
	var wg sync.WaitGroup
	for slot := 0; slot < req.Variations; slot++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			p := &SequentialPipeline{
				Slot:       slot,
				Profile:    o.opts.Profiles(slot),
				Plan:       plan,
				Analysis:   analysis,
				MaxRetries: o.opts.MaxRetriesPerStep,
				Editor:     o.editor,
				Validator:  o.validator,
				Reference:  reference,
				observer:   tracker,
				now:        o.opts.now,
			}
			run := p.Run(ctx, req.Image, req.MIME)
			runs[slot] = run
			variations[slot] = o.publish(ctx, run)
		}(slot)
	}
	wg.Wait()

	result := &portrait.GenerationResult{
		Variations: variations,
		Analysis:   analysis,
		Runs:       runs,
	}
	succeeded := 0
	for _, v := range variations {
		if v.Success {
			succeeded++
		}
	}
	result.Success = succeeded > 0
	result.TotalTimeMs = o.opts.now().Sub(start).Milliseconds()

	logger.Info().
		Int("succeeded", succeeded).
		Int64("total_ms", result.TotalTimeMs).
		Msg("Generation complete")

	if result.Success {
		tracker.Finish(ctx, portrait.StageComplete, fmt.Sprintf("Generated %d of %d variations", succeeded, req.Variations))
	} else {
		tracker.Finish(ctx, portrait.StageFailed, "No variation could be generated")
	}
	return result, nil
}

// publish converts a finished run into its public result, uploading the
// final image of a successful run. A failed upload turns the slot into a
// fallback.
func (o *Orchestrator) publish(ctx context.Context, run *portrait.PipelineRun) portrait.VariationResult {
	v := portrait.VariationResult{
		Index:      run.ID,
		StyleLabel: run.Profile.Label,
		Attempts:   run.TotalAttempts(),
		Steps:      run.Steps,
	}
	if !run.Success {
		v.ImageURL = o.opts.FallbackImageURL
		v.Fallback = true
		v.Error = run.Error
		return v
	}

	url, err := o.uploader.UploadVariation(ctx, run.FinalImage, run.FinalMIME, run.ID)
	if err != nil {
		log.Error().Err(err).Int("slot", run.ID).Msg("Failed to upload variation, using fallback")
		v.ImageURL = o.opts.FallbackImageURL
		v.Fallback = true
		v.Error = fmt.Sprintf("upload failed: %v", err)
		return v
	}
	v.Success = true
	v.ImageURL = url
	return v
}

func issueStrings(issues []portrait.IssueType) []string {
	out := make([]string, len(issues))
	for i, it := range issues {
		out[i] = string(it)
	}
	return out
}
