// Package querybuilder renders a structured requirement query into the
// two retrieval-query forms: a weighted keyword string for the lexical
// index and a natural-language sentence for the embedding model.
package querybuilder

import (
	"strings"

	"github.com/dshills/patternview/internal/lexical"
	"github.com/dshills/patternview/pkg/types"
)

// Build is a pure function from a requirement query to the lexical and
// semantic query strings.
//
// The lexical query repeats each field's tokens with the same per-field
// weights the index applies at build time, keeping term-frequency
// statistics consistent between query and corpus representation. The
// semantic query is phrased as a sentence because embedding models
// trained on natural text score sentence-like queries against
// sentence-like pattern descriptions more reliably than keyword lists.
func Build(q types.RequirementQuery, weights lexical.FieldWeights) (lexicalQuery, semanticQuery string) {
	return buildLexical(q, weights), buildSemantic(q)
}

func buildLexical(q types.RequirementQuery, weights lexical.FieldWeights) string {
	var parts []string

	appendWeighted := func(text string, weight float64) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		for i := 0; i < lexical.Repetitions(weight); i++ {
			parts = append(parts, text)
		}
	}

	appendWeighted(q.ComponentType, weights.Category)
	appendWeighted(strings.Join(q.Props, " "), weights.PropsVariants)
	appendWeighted(strings.Join(q.Variants, " "), weights.PropsVariants)
	appendWeighted(strings.Join(q.Events, " "), weights.Description)
	appendWeighted(strings.Join(q.States, " "), weights.Description)
	appendWeighted(strings.Join(q.A11y, " "), weights.PropsVariants)

	return strings.Join(parts, " ")
}

func buildSemantic(q types.RequirementQuery) string {
	var clauses []string

	subject := strings.TrimSpace(q.ComponentType)
	if subject == "" {
		subject = "UI"
	}
	clauses = append(clauses, subject+" component")

	if len(q.Props) > 0 {
		clauses = append(clauses, "with "+joinList(q.Props)+" props")
	}
	if len(q.Variants) > 0 {
		clauses = append(clauses, "supporting variants "+joinList(q.Variants))
	}
	if len(q.Events) > 0 {
		clauses = append(clauses, "handling "+joinList(q.Events)+" events")
	}
	if len(q.States) > 0 {
		clauses = append(clauses, "with "+joinList(q.States)+" states")
	}
	if len(q.A11y) > 0 {
		clauses = append(clauses, "requiring accessibility features "+joinList(q.A11y))
	}

	return strings.Join(clauses, ", ") + "."
}

// joinList renders a list as comma-separated prose, skipping blanks
func joinList(items []string) string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			kept = append(kept, item)
		}
	}
	return strings.Join(kept, ", ")
}
