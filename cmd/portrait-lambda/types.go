package main

import "github.com/fpang/portrait-retouch/internal/portrait"

// GenerateEvent is the input payload from the API or an async invocation.
// Key names the uploaded original inside the media bucket.
type GenerateEvent struct {
	SessionID  string                   `json:"sessionId"`
	JobID      string                   `json:"jobId,omitempty"`
	Key        string                   `json:"key"`
	Bucket     string                   `json:"bucket,omitempty"`
	Selections []portrait.FixSelection  `json:"selections"`
	Variations int                      `json:"variations,omitempty"`
	Analysis   *portrait.AnalysisResult `json:"analysis,omitempty"` // skips the analyzer when set
}

// GenerateResponse is returned to the invoker. Clients that invoked
// asynchronously poll the job store instead.
type GenerateResponse struct {
	JobID  string                     `json:"jobId"`
	Status string                     `json:"status"`
	Result *portrait.GenerationResult `json:"result,omitempty"`
	Error  string                     `json:"error,omitempty"`
}
