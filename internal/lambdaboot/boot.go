// Package lambdaboot provides the Lambda cold-start bootstrap: AWS config,
// S3, DynamoDB, the Gemini key from SSM, and startup logging. Each Lambda's
// init() is a short composition of these helpers.
package lambdaboot

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/portrait-retouch/internal/logging"
	"github.com/fpang/portrait-retouch/internal/store"
)

// Environment variables read at cold start.
const (
	EnvGeminiKey      = "GEMINI_API_KEY"
	EnvGeminiKeyParam = "SSM_API_KEY_PARAM"
	EnvBucket         = "MEDIA_BUCKET_NAME"
	EnvTable          = "DYNAMO_TABLE_NAME"

	DefaultGeminiKeyParam = "/portrait-retouch/prod/gemini-api-key"
)

// AWSClients holds the core AWS SDK clients used across Lambdas.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
}

// S3Clients holds S3 client, presigner, and bucket name.
type S3Clients struct {
	Client    *s3.Client
	Presigner *s3.PresignClient
	Bucket    string
}

// ParameterGetter is the subset of *ssm.Client used to read secrets.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// InitAWS loads the default AWS config and returns it along with common clients.
func InitAWS() AWSClients {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
	}
}

// InitS3 creates an S3 client, presigner, and reads the bucket name from the
// given environment variable. Fatals if the env var is empty.
func InitS3(cfg aws.Config, bucketEnvVar string) S3Clients {
	client := s3.NewFromConfig(cfg)
	bucket := os.Getenv(bucketEnvVar)
	if bucket == "" {
		log.Fatal().Str("envVar", bucketEnvVar).Msg("Bucket environment variable is required")
	}
	return S3Clients{
		Client:    client,
		Presigner: s3.NewPresignClient(client),
		Bucket:    bucket,
	}
}

// InitDynamo creates the DynamoDB job store from the given config and table
// name environment variable. Fatals if the env var is empty.
func InitDynamo(cfg aws.Config, tableEnvVar string) *store.DynamoStore {
	tableName := os.Getenv(tableEnvVar)
	if tableName == "" {
		log.Fatal().Str("envVar", tableEnvVar).Msg("DynamoDB table environment variable is required")
	}
	return store.NewDynamoStore(dynamodb.NewFromConfig(cfg), tableName)
}

// GeminiKeyParam returns the SSM parameter path holding the Gemini key.
func GeminiKeyParam() string {
	return logging.EnvOrDefault(EnvGeminiKeyParam, DefaultGeminiKeyParam)
}

// FetchGeminiKey returns the Gemini API key, preferring GEMINI_API_KEY and
// falling back to the SSM parameter.
func FetchGeminiKey(ctx context.Context, client ParameterGetter) (string, error) {
	if key := os.Getenv(EnvGeminiKey); key != "" {
		return key, nil
	}
	paramName := GeminiKeyParam()
	ssmStart := time.Now()
	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &paramName,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", err
	}
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(ssmStart)).Msg("Gemini API key loaded from SSM")
	return aws.ToString(result.Parameter.Value), nil
}

// LoadGeminiKey fetches the Gemini API key and exports it as
// GEMINI_API_KEY. Fatals on error.
func LoadGeminiKey(client ParameterGetter) {
	key, err := FetchGeminiKey(context.Background(), client)
	if err != nil {
		log.Fatal().Err(err).Str("param", GeminiKeyParam()).Msg("Failed to read API key from SSM")
	}
	os.Setenv(EnvGeminiKey, key)
}

// StartupLog is a convenience wrapper for the startup logger.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}
