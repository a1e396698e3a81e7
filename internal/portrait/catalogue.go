package portrait

import (
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/fpang/portrait-retouch/internal/assets"
)

// Catalogue is the static set of fix templates, indexed by ID and issue type.
// It is immutable after LoadTemplates returns.
type Catalogue struct {
	byID     map[string]FixTemplate
	byIssue  map[IssueType][]FixTemplate
	defaults map[IssueType]FixTemplate
}

type templateFile struct {
	Templates []FixTemplate `yaml:"templates"`
}

// LoadTemplates parses a YAML template catalogue. Every template needs a
// unique ID and a known issue type, and each issue type needs exactly one
// default template.
func LoadTemplates(data []byte) (*Catalogue, error) {
	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fix templates: %w", err)
	}
	if len(f.Templates) == 0 {
		return nil, errors.New("fix template catalogue is empty")
	}

	c := &Catalogue{
		byID:     make(map[string]FixTemplate, len(f.Templates)),
		byIssue:  make(map[IssueType][]FixTemplate),
		defaults: make(map[IssueType]FixTemplate),
	}
	for i, t := range f.Templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template %d: missing id", i)
		}
		if !t.Issue.Valid() {
			return nil, fmt.Errorf("template %q: unknown editType %q", t.ID, t.Issue)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("template %q: duplicate id", t.ID)
		}
		if t.IsDefault {
			if prev, ok := c.defaults[t.Issue]; ok {
				return nil, fmt.Errorf("template %q: %s already has default %q", t.ID, t.Issue, prev.ID)
			}
			c.defaults[t.Issue] = t
		}
		c.byID[t.ID] = t
		c.byIssue[t.Issue] = append(c.byIssue[t.Issue], t)
	}
	for _, it := range CanonicalOrder {
		if _, ok := c.defaults[it]; !ok {
			return nil, fmt.Errorf("no default template for %s", it)
		}
	}
	return c, nil
}

var (
	defaultCatalogue     *Catalogue
	defaultCatalogueOnce sync.Once
)

// DefaultCatalogue returns the catalogue embedded in the binary. It panics if
// the embedded file is invalid, which is a build defect.
func DefaultCatalogue() *Catalogue {
	defaultCatalogueOnce.Do(func() {
		c, err := LoadTemplates(assets.FixTemplatesYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded fix templates: %v", err))
		}
		defaultCatalogue = c
	})
	return defaultCatalogue
}

// Lookup returns the template with the given ID.
func (c *Catalogue) Lookup(id string) (FixTemplate, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// Default returns the default template for issue.
func (c *Catalogue) Default(issue IssueType) (FixTemplate, bool) {
	t, ok := c.defaults[issue]
	return t, ok
}

// ForIssue returns every template for issue in catalogue order.
func (c *Catalogue) ForIssue(issue IssueType) []FixTemplate {
	out := make([]FixTemplate, len(c.byIssue[issue]))
	copy(out, c.byIssue[issue])
	return out
}

// All returns every template grouped in canonical issue order.
func (c *Catalogue) All() []FixTemplate {
	var out []FixTemplate
	for _, it := range CanonicalOrder {
		out = append(out, c.byIssue[it]...)
	}
	return out
}
