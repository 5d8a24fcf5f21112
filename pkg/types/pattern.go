package types

// PropSpec describes a single component prop exposed by a pattern
type PropSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// PatternMetadata holds the structured, scoreable portion of a pattern.
// All list fields are always non-nil after Normalize so downstream
// weighting and matching logic never branches on absence.
type PatternMetadata struct {
	Props         []PropSpec `json:"props"`
	Variants      []string   `json:"variants"`
	Sizes         []string   `json:"sizes"`
	A11y          []string   `json:"a11y"`
	Dependencies  []string   `json:"dependencies"`
	UsageExamples []string   `json:"usage_examples"`
}

// Pattern represents a reusable component template in the catalog
type Pattern struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Framework   string          `json:"framework,omitempty"`
	Library     string          `json:"library,omitempty"`
	Code        string          `json:"code"`
	Metadata    PatternMetadata `json:"metadata"`
}

// Normalize replaces nil metadata lists with empty slices
func (p *Pattern) Normalize() {
	if p.Metadata.Props == nil {
		p.Metadata.Props = []PropSpec{}
	}
	if p.Metadata.Variants == nil {
		p.Metadata.Variants = []string{}
	}
	if p.Metadata.Sizes == nil {
		p.Metadata.Sizes = []string{}
	}
	if p.Metadata.A11y == nil {
		p.Metadata.A11y = []string{}
	}
	if p.Metadata.Dependencies == nil {
		p.Metadata.Dependencies = []string{}
	}
	if p.Metadata.UsageExamples == nil {
		p.Metadata.UsageExamples = []string{}
	}
}

// Validate checks the pattern record for catalog-authoring defects
func (p *Pattern) Validate() error {
	if p.ID == "" {
		return ErrMissingPatternID
	}
	if p.Name == "" {
		return ErrMissingPatternName
	}
	for _, prop := range p.Metadata.Props {
		if prop.Name == "" {
			return ErrInvalidPropSpec
		}
	}
	return nil
}

// PropNames returns the names of all props declared in the metadata
func (p *Pattern) PropNames() []string {
	names := make([]string, len(p.Metadata.Props))
	for i, prop := range p.Metadata.Props {
		names[i] = prop.Name
	}
	return names
}
