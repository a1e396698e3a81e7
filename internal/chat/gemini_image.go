package chat

// gemini_image.go wraps the genai SDK for the two call shapes the pipeline
// needs: image-in/image-out edits and image-in/JSON-out inspection.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/portrait-retouch/internal/jsonutil"
	"github.com/fpang/portrait-retouch/internal/portrait"
)

// InlineImage is one image sent inline with a request.
type InlineImage struct {
	Data []byte
	MIME string
}

// ImageResult holds the result of an image edit call.
type ImageResult struct {
	ImageData     []byte
	ImageMIMEType string
	// Text is any text the model returned alongside the image.
	Text string
}

// ImageModel is the model surface used by the analyzer, editor and
// validator.
type ImageModel interface {
	EditImage(ctx context.Context, model string, image InlineImage, instruction, systemInstruction string) (*ImageResult, error)
	InspectImages(ctx context.Context, model string, images []InlineImage, prompt, systemInstruction string) (string, error)
}

// contentGenerator is satisfied by *genai.Models.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiImageClient calls Gemini through the genai SDK.
type GeminiImageClient struct {
	models contentGenerator
}

var _ ImageModel = (*GeminiImageClient)(nil)

// NewGeminiClient creates a genai client for the Gemini Developer API.
func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// NewGeminiImageClient wraps an SDK client.
func NewGeminiImageClient(client *genai.Client) *GeminiImageClient {
	return &GeminiImageClient{models: client.Models}
}

func systemContent(s string) *genai.Content {
	if s == "" {
		return nil
	}
	return &genai.Content{Parts: []*genai.Part{{Text: s}}}
}

func imagePart(img InlineImage) *genai.Part {
	return &genai.Part{InlineData: &genai.Blob{Data: img.Data, MIMEType: img.MIME}}
}

// EditImage sends one image with an instruction and returns the edited
// image. A response without an image part is an error wrapping
// portrait.ErrNoImage.
func (c *GeminiImageClient) EditImage(ctx context.Context, model string, image InlineImage, instruction, systemInstruction string) (*ImageResult, error) {
	start := time.Now()
	log.Debug().
		Str("model", model).
		Int("image_bytes", len(image.Data)).
		Str("image_mime", image.MIME).
		Msg("Sending image to Gemini for editing")

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{imagePart(image), {Text: instruction}},
	}}
	config := &genai.GenerateContentConfig{
		SystemInstruction:  systemContent(systemInstruction),
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	resp, err := c.models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	result := &ImageResult{}
	var text strings.Builder
	if resp != nil {
		for _, cand := range resp.Candidates {
			if cand == nil || cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part == nil || part.Thought {
					continue
				}
				if part.InlineData != nil && len(part.InlineData.Data) > 0 {
					result.ImageData = part.InlineData.Data
					result.ImageMIMEType = part.InlineData.MIMEType
				}
				text.WriteString(part.Text)
			}
		}
	}
	result.Text = text.String()

	if len(result.ImageData) == 0 {
		return nil, fmt.Errorf("%w (text: %s)", portrait.ErrNoImage, jsonutil.Preview(result.Text, 200))
	}
	if result.ImageMIMEType == "" {
		result.ImageMIMEType = "image/png"
	}

	log.Debug().
		Str("model", model).
		Int("output_bytes", len(result.ImageData)).
		Str("output_mime", result.ImageMIMEType).
		Dur("duration", time.Since(start)).
		Msg("Gemini image editing complete")
	return result, nil
}

// InspectImages sends images plus a prompt and returns the model's JSON text.
func (c *GeminiImageClient) InspectImages(ctx context.Context, model string, images []InlineImage, prompt, systemInstruction string) (string, error) {
	start := time.Now()
	parts := make([]*genai.Part, 0, len(images)+1)
	total := 0
	for _, img := range images {
		parts = append(parts, imagePart(img))
		total += len(img.Data)
	}
	parts = append(parts, &genai.Part{Text: prompt})

	log.Debug().
		Str("model", model).
		Int("images", len(images)).
		Int("image_bytes", total).
		Msg("Sending images to Gemini for inspection")

	config := &genai.GenerateContentConfig{
		SystemInstruction: systemContent(systemInstruction),
		ResponseMIMEType:  "application/json",
	}
	resp, err := c.models.GenerateContent(ctx, model, []*genai.Content{{Role: "user", Parts: parts}}, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return "", errors.New("received empty response from Gemini API")
	}

	text := resp.Text()
	log.Debug().
		Str("model", model).
		Int("response_length", len(text)).
		Dur("duration", time.Since(start)).
		Msg("Gemini inspection complete")
	return text, nil
}
