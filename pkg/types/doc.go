// Package types provides shared type definitions for the PatternView retrieval engine.
//
// This package defines the domain types exchanged between the catalog,
// retrievers, fusion, and explainer components: patterns, requirement
// queries, and retrieval results.
//
// # Core Types
//
// Pattern represents a reusable component template loaded from the catalog:
//
//	pattern := types.Pattern{
//	    ID:       "shadcn-button",
//	    Name:     "Button",
//	    Category: "form",
//	    Metadata: types.PatternMetadata{
//	        Props:    []types.PropSpec{{Name: "variant", Type: "string"}},
//	        Variants: []string{"primary", "secondary"},
//	        A11y:     []string{"aria-label"},
//	    },
//	}
//
// RequirementQuery is the structured ask produced by upstream requirement
// analysis:
//
//	query := types.RequirementQuery{
//	    ComponentType: "Button",
//	    Props:         []string{"variant", "size"},
//	    Variants:      []string{"primary", "ghost"},
//	}
//
// # Validation
//
// Domain types implement validation methods to ensure data integrity:
//
//	if err := query.Validate(); err != nil {
//	    // empty query: rejected, never retrieved against
//	}
//
// Pattern.Normalize replaces nil metadata lists with empty slices so
// scoring code never needs null checks.
//
// # Retrieval Results
//
// RetrievalResult carries per-retriever score provenance alongside the
// fused score, a confidence value in [0, 1], and match highlights. A
// ResultSet wraps the ordered results with retrieval metadata and a
// Degraded flag indicating lexical-only fallback.
package types
