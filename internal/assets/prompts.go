// Package assets provides embedded static assets for the application.
//
// Prompt templates are stored as text files under prompts/ and embedded at
// compile time. The fix-template catalogue lives next to them as YAML.
package assets

import (
	"bytes"
	_ "embed"
	"text/template"
)

// FixTemplatesYAML is the default fix-template catalogue.
//
//go:embed fix-templates.yaml
var FixTemplatesYAML []byte

// --- Static prompts (no dynamic data) ---

// AnalysisSystemPrompt frames the one-time portrait analysis call.
//
//go:embed prompts/analysis-system.txt
var AnalysisSystemPrompt string

// EditSystemPrompt carries the identity-preservation rules for every edit.
//
//go:embed prompts/edit-system.txt
var EditSystemPrompt string

// ValidationSystemPrompt frames the before/after quality gate.
//
//go:embed prompts/validation-system.txt
var ValidationSystemPrompt string

// --- Templated prompts ---

//go:embed prompts/analysis.txt
var analysisTemplate string

//go:embed prompts/edit.txt
var editTemplate string

//go:embed prompts/validation.txt
var validationTemplate string

var (
	analysisPromptTmpl   = template.Must(template.New("analysis").Parse(analysisTemplate))
	editPromptTmpl       = template.Must(template.New("edit").Parse(editTemplate))
	validationPromptTmpl = template.Must(template.New("validation").Parse(validationTemplate))
)

// AnalysisPromptData holds the dynamic data for the analysis prompt.
type AnalysisPromptData struct {
	// CameraContext is the formatted EXIF summary. Empty if unavailable.
	CameraContext string
}

// EditPromptData holds the dynamic data for one edit attempt.
type EditPromptData struct {
	IssueLabel       string
	Instruction      string
	IssueDescription string
	Severity         int
	AnalysisContext  string
	ProfileLabel     string
	ProfileHint      string
	Intensity        string
	Attempt          int
	PriorFeedback    string
}

// ValidationPromptData holds the dynamic data for one step validation.
type ValidationPromptData struct {
	IssueLabel     string
	Instruction    string
	HasReference   bool
	ReferenceNotes string
}

// RenderAnalysisPrompt renders the analysis prompt.
func RenderAnalysisPrompt(data AnalysisPromptData) string {
	return renderTemplate(analysisPromptTmpl, data)
}

// RenderEditPrompt renders the prompt for one edit attempt.
func RenderEditPrompt(data EditPromptData) string {
	return renderTemplate(editPromptTmpl, data)
}

// RenderValidationPrompt renders the before/after validation prompt.
func RenderValidationPrompt(data ValidationPromptData) string {
	return renderTemplate(validationPromptTmpl, data)
}

// renderTemplate executes a pre-parsed template. Execution errors are not
// expected with these templates; whatever was rendered is returned.
func renderTemplate(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}
