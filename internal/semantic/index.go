package semantic

import (
	"math"
	"sort"
)

// DefaultTopN is the number of nearest neighbors returned when the
// caller does not specify a cutoff
const DefaultTopN = 10

// Entry associates a pattern with its corpus embedding
type Entry struct {
	PatternID string
	Vector    []float32
}

// Result is a single semantic hit with its cosine similarity score
type Result struct {
	PatternID string
	Score     float64
}

// Index is a flat nearest-neighbor index over pattern embeddings. Like
// the lexical index it is built once and immutable, so concurrent
// searches are safe without locking. For small-to-medium corpora an
// exhaustive scan is faster than any approximate structure would be.
type Index struct {
	entries []Entry
}

// NewIndex builds a vector index from the given entries
func NewIndex(entries []Entry) *Index {
	return &Index{entries: entries}
}

// Len returns the number of indexed vectors
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Search returns the topN nearest patterns to the query vector by cosine
// similarity, descending. Ties break by pattern ID ascending for full
// determinism. topN <= 0 uses DefaultTopN.
func (ix *Index) Search(queryVector []float32, topN int) []Result {
	if topN <= 0 {
		topN = DefaultTopN
	}

	results := make([]Result, 0, len(ix.entries))
	for _, entry := range ix.entries {
		results = append(results, Result{
			PatternID: entry.PatternID,
			Score:     CosineSimilarity(queryVector, entry.Vector),
		})
	}

	sort.Slice(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].PatternID < results[b].PatternID
	})

	if len(results) > topN {
		results = results[:topN]
	}
	return results
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for mismatched lengths or zero vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
