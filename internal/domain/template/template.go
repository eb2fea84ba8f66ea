// Package template defines the task template catalog: the seeded rule set
// that maps product categories to stakeholder work items.
package template

// Stakeholder is the role responsible for executing a generated task.
type Stakeholder string

const (
	StakeholderPM         Stakeholder = "PM"
	StakeholderInstaller  Stakeholder = "INSTALLER"
	StakeholderProgrammer Stakeholder = "PROGRAMMER"
	StakeholderQC         Stakeholder = "QC"
)

// Priority is the default urgency a template assigns to generated tasks.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// TaskTemplate is a single immutable generation rule. Templates with an
// empty ProductCategory are system templates: they produce exactly one task
// per project regardless of BOQ contents.
type TaskTemplate struct {
	ID                 string      `json:"id" yaml:"id"`
	ProductCategory    string      `json:"product_category,omitempty" yaml:"product_category,omitempty"`
	ProductSubCategory string      `json:"product_sub_category,omitempty" yaml:"product_sub_category,omitempty"`
	Stakeholder        Stakeholder `json:"stakeholder" yaml:"stakeholder"`
	Title              string      `json:"title" yaml:"title"`
	Description        string      `json:"description,omitempty" yaml:"description,omitempty"`
	IsBlocking         bool        `json:"is_blocking,omitempty" yaml:"is_blocking,omitempty"`
	Priority           Priority    `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// IsSystem reports whether the template is BOQ-independent.
func (t TaskTemplate) IsSystem() bool {
	return t.ProductCategory == ""
}

// Catalog is an ordered, immutable set of templates. Order matters: system
// task IDs are positional and generation output must be deterministic.
type Catalog struct {
	templates []TaskTemplate
}

// NewCatalog builds a catalog preserving the given template order.
func NewCatalog(templates []TaskTemplate) *Catalog {
	cp := make([]TaskTemplate, len(templates))
	copy(cp, templates)
	return &Catalog{templates: cp}
}

// All returns every template in catalog order.
func (c *Catalog) All() []TaskTemplate {
	out := make([]TaskTemplate, len(c.templates))
	copy(out, c.templates)
	return out
}

// SystemTemplates returns the BOQ-independent subset in catalog order.
func (c *Catalog) SystemTemplates() []TaskTemplate {
	var out []TaskTemplate
	for _, t := range c.templates {
		if t.IsSystem() {
			out = append(out, t)
		}
	}
	return out
}

// MatchCategory returns every template whose ProductCategory equals the given
// BOQ category, in catalog order. ProductSubCategory is modeled for a future
// BOQ schema and intentionally not consulted here.
func (c *Catalog) MatchCategory(category string) []TaskTemplate {
	var out []TaskTemplate
	for _, t := range c.templates {
		if !t.IsSystem() && t.ProductCategory == category {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of templates in the catalog.
func (c *Catalog) Len() int {
	return len(c.templates)
}
