package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// ValidationError represents a specific type of API key validation failure.
type ValidationError struct {
	Type    ValidationErrorType
	Message string
	Err     error
}

// ValidationErrorType categorizes validation failures.
type ValidationErrorType int

const (
	ErrTypeInvalidKey ValidationErrorType = iota
	ErrTypeNetworkError
	ErrTypeQuotaExceeded
	ErrTypeUnknown
)

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Generator is the subset of *genai.Models used for the key check.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ValidateAPIKey verifies the key with a minimal request to model. It returns
// nil if the key works, or a *ValidationError describing the failure.
func ValidateAPIKey(ctx context.Context, models Generator, model string) error {
	log.Debug().Str("model", model).Msg("Validating API key with Gemini API")

	start := time.Now()
	resp, err := models.GenerateContent(ctx, model, genai.Text("hi"), nil)
	elapsed := time.Since(start)
	if err != nil {
		return classifyError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		log.Warn().Msg("API key validation returned empty response")
		return &ValidationError{Type: ErrTypeUnknown, Message: "API returned empty response"}
	}

	log.Info().Dur("duration", elapsed).Msg("API key validated successfully")
	return nil
}

// errorPatterns maps lowercase message fragments to failure types, checked
// in order.
var errorPatterns = []struct {
	typ       ValidationErrorType
	message   string
	fragments []string
}{
	{ErrTypeInvalidKey, "API key is invalid or has been revoked", []string{"api key not valid", "invalid api key", "api_key_invalid", "permission denied"}},
	{ErrTypeQuotaExceeded, "API quota exceeded or rate limited", []string{"quota", "resource exhausted", "rate limit"}},
	{ErrTypeNetworkError, "Network error - check your internet connection", []string{"connection", "network", "timeout", "dial", "no such host", "unreachable"}},
}

// classifyError analyzes an error and returns a ValidationError with the appropriate type.
func classifyError(err error) *ValidationError {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return classifyAPIError(apiErr)
	}

	lower := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		for _, f := range p.fragments {
			if strings.Contains(lower, f) {
				log.Error().Err(err).Msg(p.message)
				return &ValidationError{Type: p.typ, Message: p.message, Err: err}
			}
		}
	}
	log.Error().Err(err).Msg("Unknown error during API validation")
	return &ValidationError{Type: ErrTypeUnknown, Message: "Failed to validate API key", Err: err}
}

// classifyAPIError categorizes a Gemini API error by HTTP status.
func classifyAPIError(err *genai.APIError) *ValidationError {
	log.Error().Int("code", err.Code).Str("message", err.Message).Msg("Gemini API error during validation")
	switch err.Code {
	case 400, 401, 403:
		return &ValidationError{Type: ErrTypeInvalidKey, Message: "API key is invalid, expired, or lacks permissions", Err: err}
	case 429:
		return &ValidationError{Type: ErrTypeQuotaExceeded, Message: "API rate limit exceeded - try again later", Err: err}
	case 500, 502, 503, 504:
		return &ValidationError{Type: ErrTypeNetworkError, Message: "Gemini API server error - try again later", Err: err}
	default:
		return &ValidationError{Type: ErrTypeUnknown, Message: err.Message, Err: err}
	}
}
