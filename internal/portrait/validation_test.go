package portrait

import (
	"strings"
	"testing"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		v        StepValidation
		want     bool
		feedback string
	}{
		{"all good", StepValidation{IdentityPreserved: true, EditApplied: true, Naturalness: 85}, true, ""},
		{"at threshold", StepValidation{IdentityPreserved: true, EditApplied: true, Naturalness: 70}, true, ""},
		{"identity lost", StepValidation{EditApplied: true, Naturalness: 95}, false, "same individual"},
		{"not applied", StepValidation{IdentityPreserved: true, Naturalness: 95}, false, "not visible"},
		{"unnatural", StepValidation{IdentityPreserved: true, EditApplied: true, Naturalness: 69}, false, "69 < 70"},
		{"artifacts", StepValidation{IdentityPreserved: true, EditApplied: true, Naturalness: 90, HasArtifacts: true}, false, "artifacts"},
		{"model feedback kept", StepValidation{IdentityPreserved: true, Naturalness: 90, Feedback: "smile vanished"}, false, "smile vanished"},
		{"model cannot force proceed", StepValidation{CanProceed: true, Naturalness: 90}, false, "same individual"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.v
			v.Decide(DefaultMinNaturalness)
			if v.CanProceed != tt.want {
				t.Errorf("CanProceed = %v, want %v", v.CanProceed, tt.want)
			}
			if tt.feedback != "" && !strings.Contains(v.Feedback, tt.feedback) {
				t.Errorf("Feedback = %q, want containing %q", v.Feedback, tt.feedback)
			}
		})
	}
}

func TestRejectedValidation(t *testing.T) {
	v := RejectedValidation("timed out")
	if v.CanProceed || v.IdentityPreserved || v.EditApplied || v.Naturalness != 0 || v.Feedback != "timed out" {
		t.Errorf("RejectedValidation() = %+v", v)
	}
}

func TestProfileForSlot(t *testing.T) {
	n := len(DefaultProfiles)
	if got := ProfileForSlot(0); got.Name != "natural" || got.Label != "Natural" {
		t.Errorf("slot 0 = %+v", got)
	}
	cycled := ProfileForSlot(n + 1)
	if cycled.Name != DefaultProfiles[1].Name || cycled.Label != DefaultProfiles[1].Label+" 2" {
		t.Errorf("slot %d = %+v", n+1, cycled)
	}
	if !strings.Contains(cycled.Hint, "alternate take #2") {
		t.Errorf("cycled hint = %q", cycled.Hint)
	}
	if DefaultProfiles[1].Label != "Balanced" {
		t.Error("ProfileForSlot mutated DefaultProfiles")
	}
}
