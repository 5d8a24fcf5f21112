// Package fusion merges the lexical and semantic rankings into one. The
// two raw score scales are incomparable (unbounded BM25 vs cosine in
// [-1,1]), so each is min-max normalized to [0,1] across its own result
// set before the weighted linear combination.
package fusion

import (
	"sort"

	"github.com/dshills/patternview/internal/lexical"
	"github.com/dshills/patternview/internal/semantic"
)

// Default fusion weights. Semantic dominates because structured
// requirement queries are closer to natural-language descriptions than
// to raw keyword search.
const (
	DefaultLexicalWeight  = 0.3
	DefaultSemanticWeight = 0.7
)

// Weights is the lexical/semantic blend ratio
type Weights struct {
	Lexical  float64 `yaml:"lexical" json:"lexical"`
	Semantic float64 `yaml:"semantic" json:"semantic"`
}

// DefaultWeights returns the standard 0.3/0.7 blend
func DefaultWeights() Weights {
	return Weights{Lexical: DefaultLexicalWeight, Semantic: DefaultSemanticWeight}
}

// Fused is one pattern's combined scoring record. Raw scores and ranks
// are preserved for explainability; a rank of 0 means the pattern was
// absent from that retriever's result set.
type Fused struct {
	PatternID string

	LexicalScore float64
	LexicalRank  int

	SemanticScore float64
	SemanticRank  int

	NormLexical  float64
	NormSemantic float64

	FinalScore float64
	FinalRank  int
}

// Fuse combines the two rankings. Patterns present in only one result
// set are kept with score 0 for the other, so a pattern one method found
// can still surface. Ordering is final score descending, ties broken by
// higher semantic score, then pattern ID ascending.
//
// When the semantic set is empty (the degraded path), the fused ranking
// is exactly the lexical ranking scaled to [0,1] and degraded is true.
// That includes tie order: equal lexical scores keep the lexical
// ranking's own order instead of the ID tie-break.
func Fuse(lexicalResults []lexical.Result, semanticResults []semantic.Result, weights Weights) (fused []Fused, degraded bool) {
	degraded = len(semanticResults) == 0

	byID := make(map[string]*Fused, len(lexicalResults)+len(semanticResults))
	order := make([]string, 0, len(lexicalResults)+len(semanticResults))

	get := func(id string) *Fused {
		if f, ok := byID[id]; ok {
			return f
		}
		f := &Fused{PatternID: id}
		byID[id] = f
		order = append(order, id)
		return f
	}

	lexicalScores := make([]float64, len(lexicalResults))
	for rank, r := range lexicalResults {
		f := get(r.PatternID)
		f.LexicalScore = r.Score
		f.LexicalRank = rank + 1
		lexicalScores[rank] = r.Score
	}

	semanticScores := make([]float64, len(semanticResults))
	for rank, r := range semanticResults {
		f := get(r.PatternID)
		f.SemanticScore = r.Score
		f.SemanticRank = rank + 1
		semanticScores[rank] = r.Score
	}

	normalizeLexical := minMaxScaler(lexicalScores)
	normalizeSemantic := minMaxScaler(semanticScores)

	fused = make([]Fused, 0, len(order))
	for _, id := range order {
		f := byID[id]
		if f.LexicalRank > 0 {
			f.NormLexical = normalizeLexical(f.LexicalScore)
		}
		if f.SemanticRank > 0 {
			f.NormSemantic = normalizeSemantic(f.SemanticScore)
		}

		if degraded {
			f.FinalScore = f.NormLexical
		} else {
			f.FinalScore = weights.Lexical*f.NormLexical + weights.Semantic*f.NormSemantic
		}
		fused = append(fused, *f)
	}

	if degraded {
		// The lexical input arrives ranked with its own tie order; a
		// stable sort on the scaled score leaves that order intact
		sort.SliceStable(fused, func(a, b int) bool {
			return fused[a].FinalScore > fused[b].FinalScore
		})
	} else {
		sort.Slice(fused, func(a, b int) bool {
			if fused[a].FinalScore != fused[b].FinalScore {
				return fused[a].FinalScore > fused[b].FinalScore
			}
			if fused[a].SemanticScore != fused[b].SemanticScore {
				return fused[a].SemanticScore > fused[b].SemanticScore
			}
			return fused[a].PatternID < fused[b].PatternID
		})
	}

	for i := range fused {
		fused[i].FinalRank = i + 1
	}

	return fused, degraded
}

// minMaxScaler returns a function mapping raw scores into [0,1] across
// the observed set. When all scores are equal every score maps to 1.0 so
// a uniformly-scoring retriever does not zero out the other signal. An
// empty set maps everything to 0.
func minMaxScaler(scores []float64) func(float64) float64 {
	if len(scores) == 0 {
		return func(float64) float64 { return 0 }
	}

	minScore, maxScore := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < minScore {
			minScore = s
		}
		if s > maxScore {
			maxScore = s
		}
	}

	if maxScore == minScore {
		return func(float64) float64 { return 1.0 }
	}

	spread := maxScore - minScore
	return func(s float64) float64 {
		return (s - minScore) / spread
	}
}
