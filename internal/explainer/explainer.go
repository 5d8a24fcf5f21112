// Package explainer derives the auditable portion of a retrieval result:
// match highlights, a confidence scalar, and a human-readable rationale.
// Everything here is a pure function of the fused scoring record, the
// requirement query, and the candidate pattern's metadata.
package explainer

import (
	"fmt"
	"strings"

	"github.com/dshills/patternview/internal/fusion"
	"github.com/dshills/patternview/pkg/types"
)

// Default confidence sub-weights. Empirically tuned on a held-out query
// set; a tunable policy, not a structural invariant.
const (
	DefaultScoreWeight    = 0.5
	DefaultCoverageWeight = 0.3
	DefaultGapWeight      = 0.2
)

// Weights blends the three confidence sub-scores: the fused final score,
// the fraction of requested features matched, and the score gap to the
// next-ranked result.
type Weights struct {
	Score    float64 `yaml:"score" json:"score"`
	Coverage float64 `yaml:"coverage" json:"coverage"`
	Gap      float64 `yaml:"gap" json:"gap"`
}

// DefaultWeights returns the standard 0.5/0.3/0.2 blend
func DefaultWeights() Weights {
	return Weights{
		Score:    DefaultScoreWeight,
		Coverage: DefaultCoverageWeight,
		Gap:      DefaultGapWeight,
	}
}

// Highlights computes the case-insensitive intersection between the
// query's requested props/variants/a11y and the pattern's metadata.
// Returned slices preserve the query's casing and ordering.
func Highlights(q types.RequirementQuery, p *types.Pattern) types.MatchHighlights {
	return types.MatchHighlights{
		MatchedProps:    intersect(q.Props, p.PropNames()),
		MatchedVariants: intersect(q.Variants, p.Metadata.Variants),
		MatchedA11y:     intersect(q.A11y, p.Metadata.A11y),
	}
}

// Explain annotates one fused result. next is the immediately
// lower-ranked fused result, or nil for the last result; a larger gap to
// it increases confidence that the choice is unambiguous.
func Explain(f fusion.Fused, next *fusion.Fused, q types.RequirementQuery, p *types.Pattern, w Weights) (confidence float64, explanation string, highlights types.MatchHighlights) {
	highlights = Highlights(q, p)

	coverage := 0.0
	if requested := q.RequestedFeatures(); requested > 0 {
		coverage = float64(highlights.Count()) / float64(requested)
	}

	gap := 0.0
	if next != nil {
		gap = clamp01(f.FinalScore - next.FinalScore)
	}

	confidence = clamp01(w.Score*clamp01(f.FinalScore) + w.Coverage*coverage + w.Gap*gap)
	explanation = buildExplanation(f, q, highlights)
	return confidence, explanation, highlights
}

// buildExplanation renders a templated sentence citing highlight counts
// and the dominant contributing retriever
func buildExplanation(f fusion.Fused, q types.RequirementQuery, h types.MatchHighlights) string {
	var matched []string
	if len(q.Props) > 0 {
		matched = append(matched, fmt.Sprintf("%d of %d requested props", len(h.MatchedProps), len(q.Props)))
	}
	if len(q.Variants) > 0 {
		matched = append(matched, fmt.Sprintf("%d of %d variants", len(h.MatchedVariants), len(q.Variants)))
	}
	if len(q.A11y) > 0 {
		matched = append(matched, fmt.Sprintf("%d of %d accessibility features", len(h.MatchedA11y), len(q.A11y)))
	}

	dominant := "keyword relevance"
	if f.NormSemantic > f.NormLexical {
		dominant = "semantic similarity"
	}

	if len(matched) == 0 {
		return fmt.Sprintf("Ranked #%d primarily by %s.", f.FinalRank, dominant)
	}
	return fmt.Sprintf("Matched %s; ranked #%d primarily by %s.",
		strings.Join(matched, ", "), f.FinalRank, dominant)
}

// intersect returns the requested items present in available,
// case-insensitively, preserving requested order without duplicates
func intersect(requested, available []string) []string {
	availableSet := make(map[string]bool, len(available))
	for _, item := range available {
		availableSet[strings.ToLower(strings.TrimSpace(item))] = true
	}

	matched := []string{}
	seen := make(map[string]bool, len(requested))
	for _, item := range requested {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" || seen[key] {
			continue
		}
		if availableSet[key] {
			matched = append(matched, item)
			seen[key] = true
		}
	}
	return matched
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
