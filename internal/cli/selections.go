package cli

import (
	"fmt"
	"strings"

	"github.com/fpang/portrait-retouch/internal/portrait"
)

// ParseSelections turns --fix and --prompt flag values into fix selections.
//
// A --fix value is "issue" or "issue:templateID"; without a template ID the
// issue's default template is used. A --prompt value is "issue=text" and
// attaches a custom instruction, enabling the issue if no --fix named it.
// Selections come back in canonical order.
func ParseSelections(cat *portrait.Catalogue, fixes, prompts []string) ([]portrait.FixSelection, error) {
	byIssue := make(map[portrait.IssueType]*portrait.FixSelection)

	selectDefault := func(issue portrait.IssueType) (*portrait.FixSelection, error) {
		if sel, ok := byIssue[issue]; ok {
			return sel, nil
		}
		tmpl, ok := cat.Default(issue)
		if !ok {
			return nil, fmt.Errorf("no default template for %s", issue)
		}
		sel := &portrait.FixSelection{Issue: issue, Enabled: true, Template: tmpl}
		byIssue[issue] = sel
		return sel, nil
	}

	for _, f := range fixes {
		name, templateID, hasTemplate := strings.Cut(strings.TrimSpace(f), ":")
		issue, err := portrait.ParseIssueType(name)
		if err != nil {
			return nil, fmt.Errorf("--fix %q: %w", f, err)
		}
		sel, err := selectDefault(issue)
		if err != nil {
			return nil, err
		}
		if !hasTemplate {
			continue
		}
		tmpl, ok := cat.Lookup(strings.TrimSpace(templateID))
		if !ok {
			return nil, fmt.Errorf("--fix %q: unknown template %q", f, templateID)
		}
		if tmpl.Issue != issue {
			return nil, fmt.Errorf("--fix %q: template %s is for %s", f, tmpl.ID, tmpl.Issue)
		}
		sel.Template = tmpl
	}

	for _, p := range prompts {
		name, text, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("--prompt %q: expected issue=text", p)
		}
		issue, err := portrait.ParseIssueType(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("--prompt %q: %w", p, err)
		}
		sel, err := selectDefault(issue)
		if err != nil {
			return nil, err
		}
		sel.CustomPrompt = strings.TrimSpace(text)
	}

	var out []portrait.FixSelection
	for _, issue := range portrait.CanonicalOrder {
		if sel, ok := byIssue[issue]; ok {
			out = append(out, *sel)
		}
	}
	return out, nil
}
