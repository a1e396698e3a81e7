// Package config holds the pipeline settings shared by the Lambda and the
// CLI. Settings come from built-in defaults, an optional TOML file, and
// PORTRAIT_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fpang/portrait-retouch/internal/chat"
	"github.com/fpang/portrait-retouch/internal/portrait"
)

// Defaults.
const (
	DefaultVariations        = 3
	DefaultMaxRetriesPerStep = 3
	DefaultMinNaturalness    = 70
	DefaultAnalysisTimeout   = 45 * time.Second
	DefaultGenerationTimeout = 120 * time.Second
	DefaultValidationTimeout = 45 * time.Second
	DefaultProgressBuffer    = 64
	DefaultFallbackImageURL  = "/static/variation-unavailable.png"

	MaxVariations        = portrait.MaxVariations
	MaxRetriesPerStepCap = 10
)

// Duration is a time.Duration that reads "45s"-style strings from TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Pipeline is the retry, timeout and fan-out policy for generation requests.
type Pipeline struct {
	Variations        int `toml:"variations"`
	MaxRetriesPerStep int `toml:"max_retries_per_step"`
	MinNaturalness    int `toml:"min_naturalness"`

	AnalysisTimeout   Duration `toml:"analysis_timeout"`
	GenerationTimeout Duration `toml:"generation_timeout"`
	ValidationTimeout Duration `toml:"validation_timeout"`

	ProgressBuffer    int `toml:"progress_buffer"`
	RequestsPerMinute int `toml:"requests_per_minute"` // 0 = unlimited

	FallbackImageURL string `toml:"fallback_image_url"`

	EditModel       string `toml:"edit_model"`
	AnalysisModel   string `toml:"analysis_model"`
	ValidationModel string `toml:"validation_model"`

	SkipAbsentIssues bool `toml:"skip_absent_issues"`
}

// Default returns the built-in configuration.
func Default() *Pipeline {
	return &Pipeline{
		Variations:        DefaultVariations,
		MaxRetriesPerStep: DefaultMaxRetriesPerStep,
		MinNaturalness:    DefaultMinNaturalness,
		AnalysisTimeout:   Duration{DefaultAnalysisTimeout},
		GenerationTimeout: Duration{DefaultGenerationTimeout},
		ValidationTimeout: Duration{DefaultValidationTimeout},
		ProgressBuffer:    DefaultProgressBuffer,
		FallbackImageURL:  DefaultFallbackImageURL,
		EditModel:         chat.ModelGemini3ProImage,
		AnalysisModel:     chat.ModelGemini3FlashPreview,
		ValidationModel:   chat.ModelGemini3FlashPreview,
	}
}

// Validate checks every field range and returns all problems at once.
func (p *Pipeline) Validate() error {
	var errs []error
	if p.Variations < 1 || p.Variations > MaxVariations {
		errs = append(errs, fmt.Errorf("variations must be between 1 and %d, got %d", MaxVariations, p.Variations))
	}
	if p.MaxRetriesPerStep < 1 || p.MaxRetriesPerStep > MaxRetriesPerStepCap {
		errs = append(errs, fmt.Errorf("max_retries_per_step must be between 1 and %d, got %d", MaxRetriesPerStepCap, p.MaxRetriesPerStep))
	}
	if p.MinNaturalness < 0 || p.MinNaturalness > 100 {
		errs = append(errs, fmt.Errorf("min_naturalness must be between 0 and 100, got %d", p.MinNaturalness))
	}
	for _, t := range []struct {
		name string
		d    Duration
	}{
		{"analysis_timeout", p.AnalysisTimeout},
		{"generation_timeout", p.GenerationTimeout},
		{"validation_timeout", p.ValidationTimeout},
	} {
		if t.d.Duration <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", t.name, t.d.Duration))
		}
	}
	if p.ProgressBuffer < 1 {
		errs = append(errs, fmt.Errorf("progress_buffer must be at least 1, got %d", p.ProgressBuffer))
	}
	if p.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("requests_per_minute must not be negative, got %d", p.RequestsPerMinute))
	}
	if p.FallbackImageURL == "" {
		errs = append(errs, errors.New("fallback_image_url is required"))
	}
	if p.EditModel == "" || p.AnalysisModel == "" || p.ValidationModel == "" {
		errs = append(errs, errors.New("edit_model, analysis_model and validation_model are required"))
	}
	return errors.Join(errs...)
}
