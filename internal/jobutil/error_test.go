package jobutil

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetJobError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		writeErr error
		want     string
		wantLog  string
	}{
		{"with cause", errors.New("no such key"), nil, "download failed: no such key", "Job failed"},
		{"without cause", nil, nil, "download failed", "Job failed"},
		{"write fails", errors.New("boom"), errors.New("throttled"), "download failed: boom", "Failed to persist job error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)
			var persisted string
			write := func(_ context.Context, reason string) error {
				persisted = reason
				return tt.writeErr
			}

			got := SetJobError(context.Background(), logger, "download failed", tt.err, write)
			if got != tt.want {
				t.Errorf("SetJobError() = %q, want %q", got, tt.want)
			}
			if persisted != "download failed" {
				t.Errorf("persisted reason = %q", persisted)
			}
			if !strings.Contains(buf.String(), tt.wantLog) {
				t.Errorf("log output missing %q: %s", tt.wantLog, buf.String())
			}
		})
	}
}
