package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/fpang/portrait-retouch/internal/chat"
	"github.com/fpang/portrait-retouch/internal/config"
	"github.com/fpang/portrait-retouch/internal/imageutil"
	"github.com/fpang/portrait-retouch/internal/jobs"
	"github.com/fpang/portrait-retouch/internal/jobutil"
	"github.com/fpang/portrait-retouch/internal/metrics"
	"github.com/fpang/portrait-retouch/internal/pipeline"
	"github.com/fpang/portrait-retouch/internal/portrait"
	"github.com/fpang/portrait-retouch/internal/s3util"
	"github.com/fpang/portrait-retouch/internal/store"
)

// collaborators builds the model-backed analyzer, editor and validator for
// one invocation.
type collaborators func(ctx context.Context) (pipeline.Analyzer, pipeline.EditApplier, pipeline.StepValidator, error)

// handler holds everything an invocation needs. It is built once at cold
// start and shared by warm invocations.
type handler struct {
	cfg        *config.Pipeline
	objects    s3util.ObjectGetter
	putter     s3util.ObjectPutter
	presigner  s3util.GetPresigner
	bucket     string
	jobs       store.JobStore
	models     collaborators
	metricsOut io.Writer
}

// geminiCollaborators creates the Gemini client per invocation and wraps the
// three collaborators in the shared rate limiter.
func geminiCollaborators(cfg *config.Pipeline, apiKey string, limiter *rate.Limiter) collaborators {
	return func(ctx context.Context) (pipeline.Analyzer, pipeline.EditApplier, pipeline.StepValidator, error) {
		genaiClient, err := chat.NewGeminiClient(ctx, apiKey)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("Gemini client failed: %w", err)
		}
		model := chat.NewGeminiImageClient(genaiClient)
		a, e, v := pipeline.WithRateLimit(limiter,
			chat.NewImageAnalyzer(model, cfg.AnalysisModel, cfg.AnalysisTimeout.Duration),
			chat.NewEditApplier(model, cfg.EditModel, cfg.GenerationTimeout.Duration),
			chat.NewStepValidator(model, cfg.ValidationModel, cfg.ValidationTimeout.Duration, cfg.MinNaturalness),
		)
		return a, e, v, nil
	}
}

func (h *handler) planner() pipeline.Planner {
	if h.cfg.SkipAbsentIssues {
		return pipeline.SeverityPlanner{MinSeverity: portrait.MinSeverity}
	}
	return nil
}

func (h *handler) handle(ctx context.Context, event GenerateEvent) (GenerateResponse, error) {
	handlerStart := time.Now()
	if coldStart {
		coldStart = false
		log.Info().Str("function", functionName).Msg("Cold start, first invocation")
	}

	jobID := jobs.NewID(jobs.GenerationPrefix)
	if event.JobID != "" {
		jobID = jobs.Normalize(event.JobID, jobs.GenerationPrefix)
	}
	logger := log.With().
		Str("sessionId", event.SessionID).
		Str("jobId", jobID).
		Str("key", event.Key).
		Logger()

	if event.SessionID == "" || event.Key == "" {
		return GenerateResponse{JobID: jobID, Status: store.StatusFailed, Error: "sessionId and key are required"},
			fmt.Errorf("sessionId and key are required")
	}
	variations := event.Variations
	if variations == 0 {
		variations = h.cfg.Variations
	}
	if variations < 1 || variations > config.MaxVariations {
		err := fmt.Errorf("variations must be between 1 and %d, got %d", config.MaxVariations, variations)
		return GenerateResponse{JobID: jobID, Status: store.StatusFailed, Error: err.Error()}, err
	}
	bucket := h.bucket
	if event.Bucket != "" {
		bucket = event.Bucket
	}

	job := &store.GenerationJob{
		ID:         jobID,
		SessionID:  event.SessionID,
		Status:     store.StatusPending,
		SourceKey:  event.Key,
		Variations: variations,
		Selections: event.Selections,
	}
	if err := h.jobs.PutJob(ctx, job); err != nil {
		logger.Warn().Err(err).Msg("Failed to persist new job")
	}
	logger.Info().Int("variations", variations).Int("selections", len(event.Selections)).Msg("Starting portrait generation")

	fail := func(reason string, err error) (GenerateResponse, error) {
		msg := jobutil.SetJobError(ctx, logger, reason, err, func(ctx context.Context, reason string) error {
			return h.jobs.FailJob(ctx, job, reason)
		})
		return GenerateResponse{JobID: jobID, Status: store.StatusFailed, Error: msg}, err
	}

	image, err := s3util.DownloadBytes(ctx, h.objects, bucket, event.Key)
	if err != nil {
		return fail("download failed", err)
	}
	mime := imageutil.DetectMIME(image)
	if !imageutil.SupportedMIMETypes[mime] {
		return fail("unsupported image type", fmt.Errorf("%s is not a supported image format", mime))
	}

	analyzer, editor, validator, err := h.models(ctx)
	if err != nil {
		return fail("model setup failed", err)
	}
	uploader := &s3util.VariationUploader{
		Client:    h.putter,
		Presigner: h.presigner,
		Bucket:    bucket,
		SessionID: event.SessionID,
		JobID:     jobID,
	}
	orch := pipeline.New(analyzer, editor, validator, uploader, pipeline.Options{
		MaxRetriesPerStep: h.cfg.MaxRetriesPerStep,
		FallbackImageURL:  h.cfg.FallbackImageURL,
		Planner:           h.planner(),
	})

	progress := make(chan portrait.PipelineProgress, h.cfg.ProgressBuffer)
	drained := make(chan portrait.PipelineProgress, 1)
	go func() {
		var last portrait.PipelineProgress
		for p := range progress {
			last = p
			// Best effort: a slow write only means intermediate snapshots
			// are dropped upstream.
			if err := h.jobs.UpdateProgress(ctx, event.SessionID, jobID, p); err != nil {
				logger.Debug().Err(err).Str("stage", string(p.Stage)).Msg("Progress not persisted")
			}
		}
		drained <- last
	}()

	res, err := orch.Generate(ctx, pipeline.Request{
		Image:      image,
		MIME:       mime,
		Selections: event.Selections,
		Analysis:   event.Analysis,
		Variations: variations,
	}, progress)
	last := <-drained
	if err != nil {
		return fail("invalid request", err)
	}

	if last.Stage != "" {
		job.Progress = &last
	}
	if err := h.jobs.CompleteJob(ctx, job, res); err != nil {
		logger.Warn().Err(err).Msg("Failed to persist job result")
	}

	metrics.RecordGeneration(metrics.NewWithWriter(metrics.Namespace, h.metricsOut), res).
		Property("jobId", jobID).
		Flush()

	logger.Info().
		Bool("success", res.Success).
		Int64("totalTimeMs", res.TotalTimeMs).
		Dur("duration", time.Since(handlerStart)).
		Msg("Portrait generation complete")

	return GenerateResponse{JobID: jobID, Status: job.Status, Result: res}, nil
}
