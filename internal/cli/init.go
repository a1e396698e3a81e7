package cli

import (
	"context"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/portrait-retouch/internal/auth"
	"github.com/fpang/portrait-retouch/internal/chat"
)

// InitGeminiClient creates a Gemini client and checks the key against
// validationModel. Returns the context and client ready for use, or exits
// fatally on failure.
func InitGeminiClient(validationModel string) (context.Context, *genai.Client) {
	apiKey, err := auth.GetAPIKey()
	if err != nil {
		HandleValidationError(err)
	}

	ctx := context.Background()
	client, err := chat.NewGeminiClient(ctx, apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Gemini client")
	}

	log.Info().Msg("connection successful - Gemini client initialized")

	if err := auth.ValidateAPIKey(ctx, client.Models, validationModel); err != nil {
		HandleValidationError(err)
	}

	log.Info().Msg("API key validation complete - ready for operations")

	return ctx, client
}
