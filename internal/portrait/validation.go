package portrait

import "fmt"

// DefaultMinNaturalness is the naturalness score an edit must reach to pass.
const DefaultMinNaturalness = 70

// Decide sets CanProceed from the individual checks. An edit may proceed only
// when identity is preserved, the edit is visibly applied, naturalness meets
// minNaturalness, and no artifacts were found.
func (v *StepValidation) Decide(minNaturalness int) *StepValidation {
	v.Naturalness = clamp(v.Naturalness, 0, 100)
	v.CanProceed = v.IdentityPreserved &&
		v.EditApplied &&
		v.Naturalness >= minNaturalness &&
		!v.HasArtifacts

	if !v.CanProceed && v.Feedback == "" {
		v.Feedback = v.rejectionReason(minNaturalness)
	}
	return v
}

func (v *StepValidation) rejectionReason(minNaturalness int) string {
	switch {
	case !v.IdentityPreserved:
		return "the person no longer looks like the same individual"
	case !v.EditApplied:
		return "the requested change is not visible"
	case v.Naturalness < minNaturalness:
		return fmt.Sprintf("result looks unnatural (naturalness %d < %d)", v.Naturalness, minNaturalness)
	case v.HasArtifacts:
		return "visible artifacts in the edited image"
	}
	return ""
}

// RejectedValidation is the fail-closed verdict returned whenever a step
// could not actually be checked.
func RejectedValidation(reason string) StepValidation {
	return StepValidation{
		IdentityPreserved: false,
		EditApplied:       false,
		Naturalness:       0,
		HasArtifacts:      false,
		CanProceed:        false,
		Feedback:          reason,
	}
}
