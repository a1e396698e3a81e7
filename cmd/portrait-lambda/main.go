// Package main provides the Lambda entry point for portrait retouching.
//
// One invocation runs one generation request end to end: it downloads the
// original from S3, analyzes it once, runs K variation pipelines
// concurrently, uploads each finished variation with a thumbnail, and
// records progress and the final result in DynamoDB for the client to poll.
//
// Container: Light (no ffmpeg)
// Memory: 2 GB
// Timeout: 15 minutes
package main

import (
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/fpang/portrait-retouch/internal/config"
	"github.com/fpang/portrait-retouch/internal/lambdaboot"
	"github.com/fpang/portrait-retouch/internal/logging"
	"github.com/fpang/portrait-retouch/internal/pipeline"
)

const functionName = "portrait-lambda"

// EnvConfigFile optionally names a TOML file bundled with the function.
const EnvConfigFile = "PORTRAIT_CONFIG_FILE"

// commitHash is set at build time with -ldflags "-X main.commitHash=...".
var commitHash = "dev"

var coldStart = true

// bootstrap performs the cold-start setup. It runs from main rather than
// init so the handler can be tested without AWS credentials.
func bootstrap() *handler {
	initStart := time.Now()
	logging.InitJSON(os.Stdout)

	cfg, err := config.Load(os.Getenv(EnvConfigFile))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load pipeline configuration")
	}

	aws := lambdaboot.InitAWS()
	s3s := lambdaboot.InitS3(aws.Config, lambdaboot.EnvBucket)
	jobStore := lambdaboot.InitDynamo(aws.Config, lambdaboot.EnvTable)
	lambdaboot.LoadGeminiKey(aws.SSM)

	h := &handler{
		cfg:        cfg,
		objects:    s3s.Client,
		putter:     s3s.Client,
		presigner:  s3s.Presigner,
		bucket:     s3s.Bucket,
		jobs:       jobStore,
		models:     geminiCollaborators(cfg, os.Getenv(lambdaboot.EnvGeminiKey), pipeline.NewLimiter(cfg.RequestsPerMinute)),
		metricsOut: os.Stdout,
	}

	lambdaboot.StartupLog(functionName, initStart).
		CommitHash(commitHash).
		S3Bucket("mediaBucket", s3s.Bucket).
		DynamoTable("jobs", jobStore.TableName()).
		SSMParam("geminiApiKey", lambdaboot.GeminiKeyParam()).
		Model("edit", cfg.EditModel).
		Model("analysis", cfg.AnalysisModel).
		Model("validation", cfg.ValidationModel).
		Feature("skipAbsentIssues", cfg.SkipAbsentIssues).
		Feature("rateLimited", cfg.RequestsPerMinute > 0).
		Config("variations", strconv.Itoa(cfg.Variations)).
		Config("maxRetriesPerStep", strconv.Itoa(cfg.MaxRetriesPerStep)).
		Config("minNaturalness", strconv.Itoa(cfg.MinNaturalness)).
		Log()
	return h
}

func main() {
	lambda.Start(bootstrap().handle)
}
