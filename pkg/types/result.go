package types

// MatchHighlights lists the subset of requested features the candidate
// pattern actually provides
type MatchHighlights struct {
	MatchedProps    []string `json:"matched_props"`
	MatchedVariants []string `json:"matched_variants"`
	MatchedA11y     []string `json:"matched_a11y"`
}

// Count returns the total number of matched features
func (h MatchHighlights) Count() int {
	return len(h.MatchedProps) + len(h.MatchedVariants) + len(h.MatchedA11y)
}

// RetrievalResult is one scored candidate. It references the pattern by
// ID only; the catalog owns the full record.
type RetrievalResult struct {
	PatternID string `json:"pattern_id"`

	// Raw, pre-normalization scores. A rank of 0 means the pattern was
	// absent from that retriever's result set.
	LexicalScore  float64 `json:"lexical_score"`
	LexicalRank   int     `json:"lexical_rank"`
	SemanticScore float64 `json:"semantic_score"`
	SemanticRank  int     `json:"semantic_rank"`

	FinalScore float64 `json:"final_score"`
	FinalRank  int     `json:"final_rank"`

	Confidence      float64         `json:"confidence"`
	Explanation     string          `json:"explanation"`
	MatchHighlights MatchHighlights `json:"match_highlights"`
}

// Validate checks internal consistency of a retrieval result
func (r *RetrievalResult) Validate() error {
	if r.PatternID == "" {
		return ErrMissingPatternID
	}
	if r.FinalRank < 1 {
		return ErrInvalidRank
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return ErrInvalidConfidence
	}
	return nil
}

// FusionWeights records the lexical/semantic blend used for a result set
type FusionWeights struct {
	Lexical  float64 `json:"lexical"`
	Semantic float64 `json:"semantic"`
}

// RetrievalMetadata describes how a result set was produced
type RetrievalMetadata struct {
	LatencyMS        int64         `json:"latency_ms"`
	MethodsUsed      []string      `json:"methods_used"`
	Weights          FusionWeights `json:"weights"`
	PatternsSearched int           `json:"total_patterns_searched"`
	Query            string        `json:"query"`
	CacheHit         bool          `json:"cache_hit,omitempty"`
}

// ResultSet is the ordered, explained output of one retrieval call.
// Degraded is true when the semantic branch failed or timed out and the
// ranking fell back to lexical-only.
type ResultSet struct {
	Results  []RetrievalResult `json:"results"`
	Degraded bool              `json:"degraded"`
	Metadata RetrievalMetadata `json:"retrieval_metadata"`
}
