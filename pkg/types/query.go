package types

import "strings"

// RequirementQuery is the structured ask produced by upstream
// requirement analysis. Every field is optional individually, but at
// least one must be populated or retrieval is rejected.
type RequirementQuery struct {
	ComponentType string   `json:"component_type,omitempty"`
	Props         []string `json:"props,omitempty"`
	Variants      []string `json:"variants,omitempty"`
	Events        []string `json:"events,omitempty"`
	States        []string `json:"states,omitempty"`
	A11y          []string `json:"a11y,omitempty"`
}

// Validate rejects queries that would degenerate to an unranked corpus dump
func (q *RequirementQuery) Validate() error {
	if strings.TrimSpace(q.ComponentType) != "" {
		return nil
	}
	for _, list := range [][]string{q.Props, q.Variants, q.Events, q.States, q.A11y} {
		for _, item := range list {
			if strings.TrimSpace(item) != "" {
				return nil
			}
		}
	}
	return ErrEmptyQuery
}

// RequestedFeatures returns the total number of features the query asks
// for across the highlight-eligible lists (props, variants, a11y)
func (q *RequirementQuery) RequestedFeatures() int {
	return len(q.Props) + len(q.Variants) + len(q.A11y)
}

// CacheKey returns a stable string representation used for query caching.
// Field order is fixed so identical queries always produce identical keys.
func (q *RequirementQuery) CacheKey() string {
	var b strings.Builder
	b.WriteString(q.ComponentType)
	for _, list := range [][]string{q.Props, q.Variants, q.Events, q.States, q.A11y} {
		b.WriteString("|")
		b.WriteString(strings.Join(list, ","))
	}
	return b.String()
}
