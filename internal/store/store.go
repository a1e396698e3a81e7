// Package store persists generation jobs so a client can poll progress and
// fetch results after the Lambda that ran the job has returned.
//
// The package uses a single-table DynamoDB design where every record for a
// session shares the partition key SESSION#{sessionId}. Generation jobs use
// the sort key GENERATION#{jobId}. A TTL attribute (expiresAt) auto-deletes
// records after JobTTL, matching the S3 lifecycle of the images they refer to.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/fpang/portrait-retouch/internal/portrait"
)

// JobTTL is the time-to-live for job records.
const JobTTL = 24 * time.Hour

// Job status values.
const (
	StatusPending  = "pending"
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// ErrJobClosed is returned by UpdateProgress when the job does not exist or
// has already reached a terminal status.
var ErrJobClosed = errors.New("job missing or already finished")

// JobStore defines the persistence interface for generation jobs. Get
// methods return (nil, nil) when the record does not exist. Put methods
// perform full-item replacement.
type JobStore interface {
	// PutJob creates or replaces a job record.
	PutJob(ctx context.Context, job *GenerationJob) error

	// GetJob retrieves a job. Returns nil, nil if not found.
	GetJob(ctx context.Context, sessionID, jobID string) (*GenerationJob, error)

	// UpdateProgress replaces the progress snapshot of a running job without
	// touching other fields.
	UpdateProgress(ctx context.Context, sessionID, jobID string, p portrait.PipelineProgress) error

	// CompleteJob records the final result and marks the job complete or
	// failed depending on res.Success.
	CompleteJob(ctx context.Context, job *GenerationJob, res *portrait.GenerationResult) error

	// FailJob marks a job failed before any result was produced.
	FailJob(ctx context.Context, job *GenerationJob, reason string) error
}

// GenerationJob is one portrait generation request (SK = GENERATION#{jobId}).
// ID and SessionID are derived from the keys on read.
type GenerationJob struct {
	ID          string                     `json:"id" dynamodbav:"-"`
	SessionID   string                     `json:"-" dynamodbav:"-"`
	Status      string                     `json:"status" dynamodbav:"status"`
	SourceKey   string                     `json:"sourceKey" dynamodbav:"sourceKey"`
	Variations  int                        `json:"variations" dynamodbav:"variations"`
	Selections  []portrait.FixSelection    `json:"selections,omitempty" dynamodbav:"selections,omitempty"`
	Progress    *portrait.PipelineProgress `json:"progress,omitempty" dynamodbav:"progress,omitempty"`
	Results     []portrait.VariationResult `json:"results,omitempty" dynamodbav:"results,omitempty"`
	Analysis    *portrait.AnalysisResult   `json:"analysis,omitempty" dynamodbav:"analysis,omitempty"`
	TotalTimeMs int64                      `json:"totalTimeMs,omitempty" dynamodbav:"totalTimeMs,omitempty"`
	Error       string                     `json:"error,omitempty" dynamodbav:"error,omitempty"`
	CreatedAt   int64                      `json:"createdAt" dynamodbav:"createdAt"`
}

// Terminal reports whether the job has finished.
func (j *GenerationJob) Terminal() bool {
	return j.Status == StatusComplete || j.Status == StatusFailed
}
