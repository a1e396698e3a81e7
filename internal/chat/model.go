package chat

// Gemini Model IDs
//
// | Model Name               | API Model ID               | Role here                      |
// |--------------------------|----------------------------|--------------------------------|
// | Gemini 3 Pro Image       | gemini-3-pro-image-preview | Single-issue portrait edits    |
// | Gemini 3 Flash (Preview) | gemini-3-flash-preview     | Analysis and step validation   |
// | Gemini 3.1 Pro (Preview) | gemini-3.1-pro-preview     | Stricter validation (optional) |
// | Gemini 2.5 Flash         | gemini-2.5-flash           | Stable fallback for analysis   |
const (
	// ModelGemini3ProImage edits images and returns IMAGE parts.
	ModelGemini3ProImage = "gemini-3-pro-image-preview"

	// ModelGemini3FlashPreview is best for speed + intelligence.
	ModelGemini3FlashPreview = "gemini-3-flash-preview"

	// ModelGemini31ProPreview is best for complex reasoning.
	ModelGemini31ProPreview = "gemini-3.1-pro-preview"

	// ModelGemini25Flash is stable, balanced performance.
	ModelGemini25Flash = "gemini-2.5-flash"
)
