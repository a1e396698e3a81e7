package portrait

import (
	"fmt"
	"sort"
)

// PlannedFix is one resolved entry of an OrderedFixPlan.
type PlannedFix struct {
	Issue        IssueType
	Template     FixTemplate
	CustomPrompt string
}

// Prompt returns the template modifier with the caller's custom prompt
// appended, if any.
func (f PlannedFix) Prompt() string {
	if f.CustomPrompt == "" {
		return f.Template.PromptModifier
	}
	if f.Template.PromptModifier == "" {
		return f.CustomPrompt
	}
	return f.Template.PromptModifier + "\nAdditional instructions: " + f.CustomPrompt
}

// OrderedFixPlan is the enabled fixes in canonical order. It is built once
// per request by NewPlan and shared read-only by every pipeline.
type OrderedFixPlan struct {
	fixes []PlannedFix
}

// NeutralSelections is the synthetic selection list used when the caller
// supplies none: every issue listed, none enabled.
func NeutralSelections(c *Catalogue) []FixSelection {
	out := make([]FixSelection, 0, len(CanonicalOrder))
	for _, it := range CanonicalOrder {
		sel := FixSelection{Issue: it}
		if t, ok := c.Default(it); ok {
			sel.Template = t
		}
		out = append(out, sel)
	}
	return out
}

// NewPlan normalizes selections into canonical order. Disabled entries are
// dropped and the first enabled selection for an issue wins. A selection
// without a template gets the catalogue default; one that names only a
// template ID is resolved through the catalogue.
func NewPlan(selections []FixSelection, c *Catalogue) (OrderedFixPlan, error) {
	if c == nil {
		c = DefaultCatalogue()
	}
	if len(selections) == 0 {
		selections = NeutralSelections(c)
	}

	seen := make(map[IssueType]bool, len(CanonicalOrder))
	var fixes []PlannedFix
	for i, sel := range selections {
		if !sel.Issue.Valid() {
			return OrderedFixPlan{}, fmt.Errorf("selection %d: unknown editType %q", i, sel.Issue)
		}
		if !sel.Enabled || seen[sel.Issue] {
			continue
		}
		tmpl, err := resolveTemplate(sel, c)
		if err != nil {
			return OrderedFixPlan{}, fmt.Errorf("selection %d: %w", i, err)
		}
		seen[sel.Issue] = true
		fixes = append(fixes, PlannedFix{Issue: sel.Issue, Template: tmpl, CustomPrompt: sel.CustomPrompt})
	}

	sort.SliceStable(fixes, func(a, b int) bool {
		return fixes[a].Issue.Rank() < fixes[b].Issue.Rank()
	})
	return OrderedFixPlan{fixes: fixes}, nil
}

func resolveTemplate(sel FixSelection, c *Catalogue) (FixTemplate, error) {
	t := sel.Template
	switch {
	case t.ID == "" && t.PromptModifier == "":
		def, ok := c.Default(sel.Issue)
		if !ok {
			return FixTemplate{}, fmt.Errorf("no default template for %s", sel.Issue)
		}
		return def, nil
	case t.PromptModifier == "":
		found, ok := c.Lookup(t.ID)
		if !ok {
			return FixTemplate{}, fmt.Errorf("unknown template %q", t.ID)
		}
		t = found
	}
	if t.Issue == "" {
		t.Issue = sel.Issue
	}
	if t.Issue != sel.Issue {
		return FixTemplate{}, fmt.Errorf("template %q is for %s, not %s", t.ID, t.Issue, sel.Issue)
	}
	return t, nil
}

// Len returns the number of planned fixes.
func (p OrderedFixPlan) Len() int { return len(p.fixes) }

// Fixes returns a copy of the planned fixes in canonical order.
func (p OrderedFixPlan) Fixes() []PlannedFix {
	out := make([]PlannedFix, len(p.fixes))
	copy(out, p.fixes)
	return out
}

// Issues returns the planned issue types in order.
func (p OrderedFixPlan) Issues() []IssueType {
	out := make([]IssueType, len(p.fixes))
	for i, f := range p.fixes {
		out[i] = f.Issue
	}
	return out
}

// Filter returns a plan holding only the fixes keep accepts. Order is
// preserved.
func (p OrderedFixPlan) Filter(keep func(PlannedFix) bool) OrderedFixPlan {
	var out []PlannedFix
	for _, f := range p.fixes {
		if keep(f) {
			out = append(out, f)
		}
	}
	return OrderedFixPlan{fixes: out}
}
