package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/fpang/portrait-retouch/internal/chat"
	"github.com/fpang/portrait-retouch/internal/cli"
	"github.com/fpang/portrait-retouch/internal/config"
	"github.com/fpang/portrait-retouch/internal/pipeline"
	"github.com/fpang/portrait-retouch/internal/portrait"
)

// CLI flags
var (
	imageFlag      string
	fixFlags       []string
	promptFlags    []string
	variationsFlag int
	outFlag        string
	skipAbsentFlag bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate retouched variations of a portrait",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&imageFlag, "image", "i", "", "Portrait image (JPEG, PNG or WebP)")
	generateCmd.Flags().StringArrayVar(&fixFlags, "fix", nil, "Issue to fix, optionally with a template: eye-contact, posture, angle, lighting[:templateID]")
	generateCmd.Flags().StringArrayVar(&promptFlags, "prompt", nil, "Custom instruction for an issue: issue=text")
	generateCmd.Flags().IntVarP(&variationsFlag, "variations", "n", 0, fmt.Sprintf("Number of variations, 1-%d (default from config)", config.MaxVariations))
	generateCmd.Flags().StringVarP(&outFlag, "out", "o", "portrait-out", "Directory for the generated variations")
	generateCmd.Flags().BoolVar(&skipAbsentFlag, "skip-absent", false, "Skip fixes the analysis did not detect")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	path := imageFlag
	if path == "" {
		path = cli.PromptForImage()
	}
	path, image, mime, err := cli.ReadImage(path)
	if err != nil {
		return err
	}

	selections, err := cli.ParseSelections(portrait.DefaultCatalogue(), fixFlags, promptFlags)
	if err != nil {
		return err
	}
	if len(selections) == 0 {
		log.Warn().Msg("No --fix or --prompt given; variations will be copies of the original (see 'portrait-cli templates')")
	}

	variations := cfg.Variations
	if variationsFlag != 0 {
		variations = variationsFlag
	}
	if variations < 1 || variations > config.MaxVariations {
		return fmt.Errorf("variations must be between 1 and %d, got %d", config.MaxVariations, variations)
	}

	log.Info().
		Str("image", path).
		Str("mime", mime).
		Int("variations", variations).
		Int("selections", len(selections)).
		Str("out", outFlag).
		Msg("Starting portrait generation")

	_, client := cli.InitGeminiClient(cfg.AnalysisModel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	model := chat.NewGeminiImageClient(client)
	analyzer, editor, validator := pipeline.WithRateLimit(pipeline.NewLimiter(cfg.RequestsPerMinute),
		chat.NewImageAnalyzer(model, cfg.AnalysisModel, cfg.AnalysisTimeout.Duration),
		chat.NewEditApplier(model, cfg.EditModel, cfg.GenerationTimeout.Duration),
		chat.NewStepValidator(model, cfg.ValidationModel, cfg.ValidationTimeout.Duration, cfg.MinNaturalness),
	)

	opts := pipeline.Options{
		MaxRetriesPerStep: cfg.MaxRetriesPerStep,
		FallbackImageURL:  cfg.FallbackImageURL,
	}
	if skipAbsentFlag || cfg.SkipAbsentIssues {
		opts.Planner = pipeline.SeverityPlanner{MinSeverity: portrait.MinSeverity}
	}
	orch := pipeline.New(analyzer, editor, validator, fileUploader{dir: outFlag}, opts)

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("[pending] Starting"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
	progress := make(chan portrait.PipelineProgress, cfg.ProgressBuffer)
	done := make(chan struct{})
	go func() {
		renderProgress(bar, progress)
		close(done)
	}()

	res, err := orch.Generate(ctx, pipeline.Request{
		Image:      image,
		MIME:       mime,
		Selections: selections,
		Variations: variations,
	}, progress)
	<-done
	_ = bar.Finish()
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	resultPath := filepath.Join(outFlag, "result.json")
	if err := os.MkdirAll(outFlag, 0o755); err == nil {
		if err := os.WriteFile(resultPath, out, 0o644); err != nil {
			log.Warn().Err(err).Str("path", resultPath).Msg("Failed to write result file")
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	printSummary(res)
	if !res.Success {
		return fmt.Errorf("no variation succeeded")
	}
	return nil
}

// progressSink is the part of *progressbar.ProgressBar the drain uses.
type progressSink interface {
	Set(num int) error
	Describe(description string)
}

// renderProgress draws snapshots until the channel closes. Snapshots may
// arrive out of order across slots, so the bar only moves forward.
func renderProgress(bar progressSink, progress <-chan portrait.PipelineProgress) {
	highest := 0
	for p := range progress {
		if p.StageProgress > highest {
			highest = p.StageProgress
		}
		_ = bar.Set(highest)
		bar.Describe(cli.DescribeProgress(p))
	}
}

func printSummary(res *portrait.GenerationResult) {
	fmt.Fprintln(os.Stderr)
	for _, v := range res.Variations {
		status := "ok"
		if !v.Success {
			status = "failed: " + v.Error
		}
		fmt.Fprintf(os.Stderr, "  %d. %-12s %s (%d attempts) %s\n", v.Index+1, v.StyleLabel, status, v.Attempts, v.ImageURL)
	}
	fmt.Fprintf(os.Stderr, "Total time: %s\n", cli.FormatDurationShort(msDuration(res.TotalTimeMs)))
}
