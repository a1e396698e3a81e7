package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/fpang/portrait-retouch/internal/portrait"
)

func TestFormatDurationShort(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{45 * time.Second, "0:45"},
		{90 * time.Second, "1:30"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		if got := FormatDurationShort(tt.in); got != tt.want {
			t.Errorf("FormatDurationShort(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDescribeProgress(t *testing.T) {
	running := DescribeProgress(portrait.PipelineProgress{
		Stage:                     portrait.StageGenerating,
		Message:                   "Variation 2 of 3",
		EstimatedSecondsRemaining: 75,
	})
	if !strings.Contains(running, "[generating]") || !strings.Contains(running, "1:15 left") {
		t.Errorf("DescribeProgress(generating) = %q", running)
	}

	done := DescribeProgress(portrait.PipelineProgress{
		Stage:                     portrait.StageComplete,
		Message:                   "Done",
		EstimatedSecondsRemaining: 5,
	})
	if strings.Contains(done, "left") {
		t.Errorf("terminal snapshot should not show an estimate: %q", done)
	}
}
