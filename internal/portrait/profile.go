package portrait

import "fmt"

// MaxVariations bounds the fan-out of one generation request.
const MaxVariations = 8

// VariationProfile gives one slot its own stylistic direction so the K
// variations differ from each other even though they apply the same fixes.
type VariationProfile struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Intensity string `json:"intensity"`
	Hint      string `json:"hint"`
}

// DefaultProfiles are assigned to slots in order.
var DefaultProfiles = []VariationProfile{
	{
		Name:      "natural",
		Label:     "Natural",
		Intensity: "subtle",
		Hint:      "Keep every correction minimal. The result should look like an untouched photo taken at a better moment.",
	},
	{
		Name:      "balanced",
		Label:     "Balanced",
		Intensity: "moderate",
		Hint:      "Apply each correction clearly but conservatively, as a careful retoucher would.",
	},
	{
		Name:      "polished",
		Label:     "Polished",
		Intensity: "confident",
		Hint:      "Aim for a professional headshot finish with clean, flattering results.",
	},
	{
		Name:      "editorial",
		Label:     "Editorial",
		Intensity: "pronounced",
		Hint:      "Aim for a magazine-style portrait with deliberate, expressive corrections while staying realistic.",
	},
}

// ProfileForSlot returns the profile for slot. When there are more slots than
// profiles the list is cycled and the hint asks for a different take.
func ProfileForSlot(slot int) VariationProfile {
	if slot < 0 {
		slot = 0
	}
	n := len(DefaultProfiles)
	p := DefaultProfiles[slot%n]
	if cycle := slot / n; cycle > 0 {
		p.Label = fmt.Sprintf("%s %d", p.Label, cycle+1)
		p.Hint += fmt.Sprintf(" This is alternate take #%d: choose a noticeably different but equally valid interpretation.", cycle+1)
	}
	return p
}
