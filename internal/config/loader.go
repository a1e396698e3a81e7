package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Environment variable names.
const (
	EnvVariations        = "PORTRAIT_VARIATIONS"
	EnvMaxRetries        = "PORTRAIT_MAX_RETRIES"
	EnvMinNaturalness    = "PORTRAIT_MIN_NATURALNESS"
	EnvAnalysisTimeout   = "PORTRAIT_ANALYSIS_TIMEOUT"
	EnvGenerationTimeout = "PORTRAIT_GENERATION_TIMEOUT"
	EnvValidationTimeout = "PORTRAIT_VALIDATION_TIMEOUT"
	EnvProgressBuffer    = "PORTRAIT_PROGRESS_BUFFER"
	EnvRequestsPerMinute = "PORTRAIT_REQUESTS_PER_MINUTE"
	EnvFallbackImageURL  = "PORTRAIT_FALLBACK_IMAGE_URL"
	EnvEditModel         = "PORTRAIT_EDIT_MODEL"
	EnvAnalysisModel     = "PORTRAIT_ANALYSIS_MODEL"
	EnvValidationModel   = "PORTRAIT_VALIDATION_MODEL"
	EnvSkipAbsentIssues  = "PORTRAIT_SKIP_ABSENT_ISSUES"
)

// Load builds the configuration from defaults, the TOML file at path (skipped
// when path is empty), and the environment, then validates it.
func Load(path string) (*Pipeline, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (p *Pipeline) applyEnv() error {
	var errs []error
	setInt := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = n
		}
	}
	setDuration := func(name string, dst *Duration) {
		if v := os.Getenv(name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			dst.Duration = d
		}
	}
	setString := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	setInt(EnvVariations, &p.Variations)
	setInt(EnvMaxRetries, &p.MaxRetriesPerStep)
	setInt(EnvMinNaturalness, &p.MinNaturalness)
	setDuration(EnvAnalysisTimeout, &p.AnalysisTimeout)
	setDuration(EnvGenerationTimeout, &p.GenerationTimeout)
	setDuration(EnvValidationTimeout, &p.ValidationTimeout)
	setInt(EnvProgressBuffer, &p.ProgressBuffer)
	setInt(EnvRequestsPerMinute, &p.RequestsPerMinute)
	setString(EnvFallbackImageURL, &p.FallbackImageURL)
	setString(EnvEditModel, &p.EditModel)
	setString(EnvAnalysisModel, &p.AnalysisModel)
	setString(EnvValidationModel, &p.ValidationModel)
	if v := os.Getenv(EnvSkipAbsentIssues); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvSkipAbsentIssues, err))
		} else {
			p.SkipAbsentIssues = b
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %w", errors.Join(errs...))
	}
	return nil
}
