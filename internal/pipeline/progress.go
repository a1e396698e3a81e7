package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/portrait-retouch/internal/portrait"
)

// stageRange is the StageProgress span a stage occupies.
type stageRange struct{ lo, hi int }

var stageRanges = map[portrait.Stage]stageRange{
	portrait.StagePending:    {0, 0},
	portrait.StageAnalyzing:  {5, 25},
	portrait.StagePlanning:   {25, 40},
	portrait.StageGenerating: {40, 85},
	portrait.StageValidating: {85, 95},
	portrait.StageComplete:   {100, 100},
	portrait.StageFailed:     {100, 100},
}

// StagePercent maps a stage and a 0..1 fraction to StageProgress.
func StagePercent(stage portrait.Stage, fraction float64) int {
	r := stageRanges[stage]
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return r.lo + int(float64(r.hi-r.lo)*fraction)
}

// DefaultStepEstimate is assumed for one edit plus validation until a real
// step duration has been observed.
const DefaultStepEstimate = 25 * time.Second

// stepObserver receives step transitions from the pipelines.
type stepObserver interface {
	StepGenerating(slot int, issue portrait.IssueType, attempt int)
	StepValidating(slot int, issue portrait.IssueType, attempt int)
	StepFinished(slot int, issue portrait.IssueType, success bool, d time.Duration)
	PipelineFinished(slot int, success bool)
}

// Tracker turns step transitions from K concurrent pipelines into progress
// snapshots on a bounded channel. Intermediate snapshots are dropped when
// the channel is full; the terminal snapshot is always sent.
type Tracker struct {
	mu  sync.Mutex
	out chan<- portrait.PipelineProgress

	startedAt time.Time
	total     int
	stepsPer  int
	done      []int // completed steps per slot
	finished  []bool

	stepTime  time.Duration
	stepCount int
	dropped   int
	closed    bool
}

// NewTracker creates a Tracker for total slots. out may be nil.
func NewTracker(out chan<- portrait.PipelineProgress, total int, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		out:       out,
		startedAt: now(),
		total:     total,
		done:      make([]int, total),
		finished:  make([]bool, total),
	}
}

// SetPlan records how many steps each pipeline will run.
func (t *Tracker) SetPlan(steps int) {
	t.mu.Lock()
	t.stepsPer = steps
	t.mu.Unlock()
}

// Stage emits a request-level snapshot (analyzing, planning).
func (t *Tracker) Stage(stage portrait.Stage, fraction float64, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emitLocked(stage, StagePercent(stage, fraction), 0, msg)
}

func (t *Tracker) StepGenerating(slot int, issue portrait.IssueType, attempt int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	msg := fmt.Sprintf("Variation %d: applying %s fix", slot+1, issue.Label())
	if attempt > 1 {
		msg += fmt.Sprintf(" (attempt %d)", attempt)
	}
	t.emitLocked(portrait.StageGenerating, StagePercent(portrait.StageGenerating, t.fractionLocked()), slot+1, msg)
}

func (t *Tracker) StepValidating(slot int, issue portrait.IssueType, attempt int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	msg := fmt.Sprintf("Variation %d: checking %s fix", slot+1, issue.Label())
	t.emitLocked(portrait.StageValidating, StagePercent(portrait.StageValidating, t.fractionLocked()), slot+1, msg)
}

func (t *Tracker) StepFinished(slot int, issue portrait.IssueType, success bool, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stepTime += d
	t.stepCount++
	if success && slot >= 0 && slot < t.total {
		t.done[slot]++
	}
}

func (t *Tracker) PipelineFinished(slot int, success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if slot < 0 || slot >= t.total {
		return
	}
	t.finished[slot] = true
	msg := fmt.Sprintf("Variation %d finished", slot+1)
	if !success {
		msg = fmt.Sprintf("Variation %d could not be completed", slot+1)
	}
	t.emitLocked(portrait.StageGenerating, StagePercent(portrait.StageGenerating, t.fractionLocked()), slot+1, msg)
}

// fractionLocked is the share of all step units across all slots that are
// settled. A finished slot counts as fully settled even if it failed early.
func (t *Tracker) fractionLocked() float64 {
	if t.total == 0 {
		return 1
	}
	per := max(1, t.stepsPer)
	settled := 0
	for i := 0; i < t.total; i++ {
		if t.finished[i] {
			settled += per
		} else {
			settled += min(t.done[i], per)
		}
	}
	return float64(settled) / float64(t.total*per)
}

// remainingLocked estimates the time left from the slowest unfinished slot
// and the mean observed step time.
func (t *Tracker) remainingLocked() time.Duration {
	mean := DefaultStepEstimate
	if t.stepCount > 0 {
		mean = t.stepTime / time.Duration(t.stepCount)
	}
	worst := 0
	for i := 0; i < t.total; i++ {
		if t.finished[i] {
			continue
		}
		if left := t.stepsPer - t.done[i]; left > worst {
			worst = left
		}
	}
	return time.Duration(worst) * mean
}

func (t *Tracker) snapshotLocked(stage portrait.Stage, pct, current int, msg string) portrait.PipelineProgress {
	return portrait.PipelineProgress{
		Stage:                     stage,
		StageProgress:             pct,
		CurrentVariation:          current,
		TotalVariations:           t.total,
		Message:                   msg,
		EstimatedSecondsRemaining: int(t.remainingLocked().Round(time.Second) / time.Second),
		StartedAt:                 t.startedAt,
	}
}

func (t *Tracker) emitLocked(stage portrait.Stage, pct, current int, msg string) {
	if t.out == nil || t.closed {
		return
	}
	select {
	case t.out <- t.snapshotLocked(stage, pct, current, msg):
	default:
		t.dropped++
	}
}

// Finish sends the terminal snapshot, blocking until the consumer takes it
// or ctx ends. No snapshot is sent after Finish.
func (t *Tracker) Finish(ctx context.Context, stage portrait.Stage, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.out == nil || t.closed {
		return
	}
	t.closed = true
	if t.dropped > 0 {
		log.Debug().Int("dropped", t.dropped).Msg("Progress snapshots dropped by full channel")
	}
	p := t.snapshotLocked(stage, StagePercent(stage, 1), 0, msg)
	p.EstimatedSecondsRemaining = 0
	select {
	case t.out <- p:
		return
	default:
	}
	select {
	case t.out <- p:
	case <-ctx.Done():
		log.Warn().Err(ctx.Err()).Msg("Final progress snapshot not delivered")
	}
}
