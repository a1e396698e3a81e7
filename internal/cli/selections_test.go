package cli

import (
	"strings"
	"testing"

	"github.com/fpang/portrait-retouch/internal/portrait"
)

func TestParseSelections(t *testing.T) {
	cat := portrait.DefaultCatalogue()

	tests := []struct {
		name      string
		fixes     []string
		prompts   []string
		wantIDs   []string // template ID per selection, in order
		wantErr   string
		checkLast func(t *testing.T, sel portrait.FixSelection)
	}{
		{
			name:    "defaults in canonical order",
			fixes:   []string{"lighting", "eye-contact"},
			wantIDs: []string{"eye-contact-camera", "lighting-soft-studio"},
		},
		{
			name:    "explicit template",
			fixes:   []string{"lighting:lighting-golden-hour"},
			wantIDs: []string{"lighting-golden-hour"},
		},
		{
			name:    "snake case issue",
			fixes:   []string{"eye_contact"},
			wantIDs: []string{"eye-contact-camera"},
		},
		{
			name:    "prompt enables issue",
			prompts: []string{"posture=stand tall"},
			wantIDs: []string{"posture-upright"},
			checkLast: func(t *testing.T, sel portrait.FixSelection) {
				if sel.CustomPrompt != "stand tall" {
					t.Errorf("CustomPrompt = %q", sel.CustomPrompt)
				}
			},
		},
		{
			name:    "prompt keeps chosen template",
			fixes:   []string{"angle:angle-slightly-above"},
			prompts: []string{"angle = lower the camera"},
			wantIDs: []string{"angle-slightly-above"},
			checkLast: func(t *testing.T, sel portrait.FixSelection) {
				if sel.CustomPrompt != "lower the camera" {
					t.Errorf("CustomPrompt = %q", sel.CustomPrompt)
				}
			},
		},
		{
			name:    "duplicate fix",
			fixes:   []string{"angle", "angle"},
			wantIDs: []string{"angle-eye-level"},
		},
		{name: "unknown issue", fixes: []string{"smile"}, wantErr: "unknown issue type"},
		{name: "unknown template", fixes: []string{"angle:nope"}, wantErr: "unknown template"},
		{name: "template for other issue", fixes: []string{"angle:lighting-golden-hour"}, wantErr: "is for lighting"},
		{name: "prompt without text", prompts: []string{"angle="}, wantErr: "expected issue=text"},
		{name: "prompt without separator", prompts: []string{"angle"}, wantErr: "expected issue=text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelections(cat, tt.fixes, tt.prompts)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d selections, want %d", len(got), len(tt.wantIDs))
			}
			for i, sel := range got {
				if sel.Template.ID != tt.wantIDs[i] {
					t.Errorf("selection %d template = %s, want %s", i, sel.Template.ID, tt.wantIDs[i])
				}
				if !sel.Enabled {
					t.Errorf("selection %d not enabled", i)
				}
				if sel.Issue != sel.Template.Issue {
					t.Errorf("selection %d issue %s does not match template %s", i, sel.Issue, sel.Template.Issue)
				}
			}
			if tt.checkLast != nil {
				tt.checkLast(t, got[len(got)-1])
			}
		})
	}
}

func TestParseSelectionsEmpty(t *testing.T) {
	got, err := ParseSelections(portrait.DefaultCatalogue(), nil, nil)
	if err != nil || len(got) != 0 {
		t.Errorf("ParseSelections(nil, nil) = %v, %v", got, err)
	}
}
