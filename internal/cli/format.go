package cli

import (
	"fmt"
	"time"

	"github.com/fpang/portrait-retouch/internal/portrait"
)

// FormatDurationShort formats a duration in a short format (M:SS or H:MM:SS).
func FormatDurationShort(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// DescribeProgress renders a snapshot as a one-line progress bar label.
func DescribeProgress(p portrait.PipelineProgress) string {
	s := fmt.Sprintf("[%s] %s", p.Stage, p.Message)
	if p.EstimatedSecondsRemaining > 0 && !p.Stage.Terminal() {
		s += fmt.Sprintf(" (~%s left)", FormatDurationShort(time.Duration(p.EstimatedSecondsRemaining)*time.Second))
	}
	return s
}
