package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/fpang/portrait-retouch/internal/auth"
	"github.com/fpang/portrait-retouch/internal/imageutil"
	"github.com/fpang/portrait-retouch/internal/s3util"
)

// ReadImage checks that path is a regular file of a supported image format
// within the source size limit and returns its absolute path, contents and
// MIME type.
func ReadImage(path string) (string, []byte, string, error) {
	if path == "" {
		return "", nil, "", errors.New("image path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, "", fmt.Errorf("image not found: %s", path)
		}
		return "", nil, "", fmt.Errorf("failed to access image: %w", err)
	}
	if info.IsDir() {
		return "", nil, "", fmt.Errorf("path is a directory: %s", path)
	}
	if info.Size() > s3util.MaxSourceBytes {
		return "", nil, "", fmt.Errorf("image is %d bytes, limit is %d", info.Size(), s3util.MaxSourceBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	mime := imageutil.DetectMIME(data)
	if !imageutil.SupportedMIMETypes[mime] {
		return "", nil, "", fmt.Errorf("%s is not a supported image format (%s)", path, mime)
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path, data, mime, nil
}

// HandleValidationError processes auth errors and exits with appropriate messaging.
func HandleValidationError(err error) {
	if errors.Is(err, auth.ErrNoAPIKey) {
		log.Fatal().Msg("No API key configured. Set GEMINI_API_KEY (a .env file works) or store it in ~/.portrait-retouch/credentials.gpg")
	}
	var validationErr *auth.ValidationError
	if errors.As(err, &validationErr) {
		switch validationErr.Type {
		case auth.ErrTypeInvalidKey:
			log.Fatal().Err(err).Msg("Invalid API key. Please check your API key and try again")
		case auth.ErrTypeNetworkError:
			log.Fatal().Err(err).Msg("Network error. Please check your internet connection")
		case auth.ErrTypeQuotaExceeded:
			log.Fatal().Err(err).Msg("API quota exceeded. Please try again later or check your usage limits")
		default:
			log.Fatal().Err(err).Msg("API key validation failed")
		}
	} else {
		log.Fatal().Err(err).Msg("unexpected error during API key validation")
	}
	os.Exit(1)
}
