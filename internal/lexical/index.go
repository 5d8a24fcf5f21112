package lexical

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/dshills/patternview/pkg/types"
)

// Default BM25 parameters
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75

	// idfEpsilon floors the IDF of terms appearing in every document so
	// they still contribute a small amount to ranking
	idfEpsilon = 0.25
)

// tokenPattern splits text into alphanumeric runs
var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// FieldWeights controls how many times each pattern field's tokens are
// repeated in the composite searchable document. Repetition biases the
// term-frequency component of BM25 toward semantically primary fields
// without a ranking function that natively supports per-field weights.
type FieldWeights struct {
	Name          float64 `yaml:"name" json:"name"`
	Category      float64 `yaml:"category" json:"category"`
	PropsVariants float64 `yaml:"props_variants" json:"props_variants"`
	Description   float64 `yaml:"description" json:"description"`
}

// DefaultFieldWeights returns the standard field weighting:
// name x3, category x2, props+variants x1.5, description x1
func DefaultFieldWeights() FieldWeights {
	return FieldWeights{
		Name:          3,
		Category:      2,
		PropsVariants: 1.5,
		Description:   1,
	}
}

// Repetitions converts a fractional field weight into a whole repetition
// count: round to nearest integer, minimum 1
func Repetitions(weight float64) int {
	n := int(math.Round(weight))
	if n < 1 {
		n = 1
	}
	return n
}

// Params configures index construction
type Params struct {
	K1           float64
	B            float64
	FieldWeights FieldWeights
}

// DefaultParams returns the standard BM25 configuration
func DefaultParams() Params {
	return Params{
		K1:           DefaultK1,
		B:            DefaultB,
		FieldWeights: DefaultFieldWeights(),
	}
}

// Result is a single lexical hit with its raw BM25 score
type Result struct {
	PatternID string
	Score     float64
}

// Index is a BM25 index over the pattern corpus. It is built once at
// construction and immutable thereafter, so concurrent searches need no
// locking.
type Index struct {
	ids []string

	// termFrequencies[i][term] is the term frequency in the composite
	// document for pattern i (corpus insertion order)
	termFrequencies []map[string]int
	documentLengths []int
	averageLength   float64
	idf             map[string]float64

	k1 float64
	b  float64
}

// NewIndex builds a BM25 index from the corpus. Patterns keep their
// insertion order, which is the deterministic tie-break for equal scores.
func NewIndex(patterns []types.Pattern, params Params) *Index {
	if params.K1 <= 0 {
		params.K1 = DefaultK1
	}
	// b = 0 is a valid setting (length normalization off), so only
	// out-of-range values fall back
	if params.B < 0 || params.B > 1 {
		params.B = DefaultB
	}

	index := &Index{
		ids:             make([]string, len(patterns)),
		termFrequencies: make([]map[string]int, len(patterns)),
		documentLengths: make([]int, len(patterns)),
		idf:             make(map[string]float64),
		k1:              params.K1,
		b:               params.B,
	}

	// Track how many documents contain each term for IDF
	documentFrequency := make(map[string]int)

	var totalLength int
	for i := range patterns {
		index.ids[i] = patterns[i].ID

		tokens := compositeTokens(&patterns[i], params.FieldWeights)
		index.documentLengths[i] = len(tokens)
		totalLength += len(tokens)

		termFrequency := make(map[string]int)
		seen := make(map[string]bool)
		for _, token := range tokens {
			termFrequency[token]++
			if !seen[token] {
				seen[token] = true
				documentFrequency[token]++
			}
		}
		index.termFrequencies[i] = termFrequency
	}

	if len(patterns) > 0 {
		index.averageLength = float64(totalLength) / float64(len(patterns))
	}

	documentCount := float64(len(patterns))
	for term, frequency := range documentFrequency {
		idf := math.Log(1 + (documentCount-float64(frequency)+0.5)/(float64(frequency)+0.5))
		if idf < idfEpsilon {
			idf = idfEpsilon
		}
		index.idf[term] = idf
	}

	return index
}

// Len returns the number of indexed patterns
func (ix *Index) Len() int {
	return len(ix.ids)
}

// Search scores every pattern against the query and returns the full
// ranked list, descending by score. Zero-score patterns are included so
// callers can decide whether to truncate. Ties keep corpus insertion
// order. An empty query yields all patterns at score 0 in insertion order.
func (ix *Index) Search(query string) []Result {
	queryTokens := Tokenize(query)

	results := make([]Result, len(ix.ids))
	for i, id := range ix.ids {
		results[i] = Result{
			PatternID: id,
			Score:     ix.score(i, queryTokens),
		}
	}

	// Stable sort preserves insertion order among equal scores
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	return results
}

// score computes the BM25 score for one document against the query tokens
func (ix *Index) score(documentIndex int, queryTokens []string) float64 {
	termFrequency := ix.termFrequencies[documentIndex]
	documentLength := float64(ix.documentLengths[documentIndex])

	var score float64
	for _, token := range queryTokens {
		idf, exists := ix.idf[token]
		if !exists {
			continue
		}

		frequency := float64(termFrequency[token])
		if frequency == 0 {
			continue
		}

		// IDF * (tf * (k1 + 1)) / (tf + k1 * (1 - b + b * dl/avgdl))
		numerator := frequency * (ix.k1 + 1)
		denominator := frequency + ix.k1*(1-ix.b+ix.b*documentLength/ix.averageLength)
		score += idf * numerator / denominator
	}

	return score
}

// compositeTokens builds the weighted searchable document for a pattern
// by repeating each field's tokens per the field weights
func compositeTokens(p *types.Pattern, weights FieldWeights) []string {
	var tokens []string

	appendWeighted := func(text string, weight float64) {
		fieldTokens := Tokenize(text)
		if len(fieldTokens) == 0 {
			return
		}
		for i := 0; i < Repetitions(weight); i++ {
			tokens = append(tokens, fieldTokens...)
		}
	}

	appendWeighted(p.Name, weights.Name)
	appendWeighted(p.Category, weights.Category)
	appendWeighted(strings.Join(p.PropNames(), " "), weights.PropsVariants)
	appendWeighted(strings.Join(p.Metadata.Variants, " "), weights.PropsVariants)
	appendWeighted(strings.Join(p.Metadata.Sizes, " "), weights.PropsVariants)
	appendWeighted(strings.Join(p.Metadata.A11y, " "), weights.PropsVariants)
	appendWeighted(p.Description, weights.Description)

	return tokens
}

// Tokenize splits text into lowercase alphanumeric tokens, discarding
// single-character noise tokens
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	matches := tokenPattern.FindAllString(lower, -1)

	tokens := matches[:0]
	for _, match := range matches {
		if len(match) >= 2 {
			tokens = append(tokens, match)
		}
	}
	return tokens
}
