package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/patternview/pkg/types"
)

func testCorpus() []types.Pattern {
	return []types.Pattern{
		{
			ID:          "shadcn-button",
			Name:        "Button",
			Category:    "form",
			Description: "A clickable action element with multiple visual styles",
			Metadata: types.PatternMetadata{
				Props: []types.PropSpec{
					{Name: "variant", Type: "string"},
					{Name: "size", Type: "string"},
					{Name: "disabled", Type: "boolean"},
				},
				Variants: []string{"primary", "secondary", "ghost"},
				A11y:     []string{"aria-label", "role"},
			},
		},
		{
			ID:          "shadcn-link",
			Name:        "Link",
			Category:    "navigation",
			Description: "A navigational anchor element",
			Metadata: types.PatternMetadata{
				Props:    []types.PropSpec{{Name: "href", Type: "string"}},
				Variants: []string{},
				A11y:     []string{"aria-label"},
			},
		},
		{
			ID:          "shadcn-card",
			Name:        "Card",
			Category:    "layout",
			Description: "A container grouping related content",
			Metadata: types.PatternMetadata{
				Props:    []types.PropSpec{{Name: "padding", Type: "string"}},
				Variants: []string{"outlined", "elevated"},
				A11y:     []string{},
			},
		},
	}
}

func TestNewIndex_Empty(t *testing.T) {
	ix := NewIndex(nil, DefaultParams())
	assert.Equal(t, 0, ix.Len())
	assert.Empty(t, ix.Search("button"))
}

func TestSearch_RanksExactNameMatchFirst(t *testing.T) {
	ix := NewIndex(testCorpus(), DefaultParams())

	results := ix.Search("button variant size primary ghost")

	require.Len(t, results, 3)
	assert.Equal(t, "shadcn-button", results[0].PatternID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearch_IncludesZeroScorePatterns(t *testing.T) {
	ix := NewIndex(testCorpus(), DefaultParams())

	results := ix.Search("button")

	// All patterns returned, including those scoring zero
	require.Len(t, results, 3)
	assert.Equal(t, "shadcn-button", results[0].PatternID)
	assert.Equal(t, 0.0, results[1].Score)
	assert.Equal(t, 0.0, results[2].Score)
}

func TestSearch_EmptyQueryKeepsInsertionOrder(t *testing.T) {
	ix := NewIndex(testCorpus(), DefaultParams())

	results := ix.Search("")

	require.Len(t, results, 3)
	assert.Equal(t, "shadcn-button", results[0].PatternID)
	assert.Equal(t, "shadcn-link", results[1].PatternID)
	assert.Equal(t, "shadcn-card", results[2].PatternID)
	for _, r := range results {
		assert.Equal(t, 0.0, r.Score)
	}
}

func TestSearch_TiesKeepInsertionOrder(t *testing.T) {
	// Two identical documents must tie, and the tie must resolve to
	// corpus insertion order
	patterns := []types.Pattern{
		{ID: "b-second", Name: "Toggle", Category: "form"},
		{ID: "a-first", Name: "Toggle", Category: "form"},
	}
	for i := range patterns {
		patterns[i].Normalize()
	}

	ix := NewIndex(patterns, DefaultParams())
	results := ix.Search("toggle")

	require.Len(t, results, 2)
	assert.Equal(t, results[0].Score, results[1].Score)
	assert.Equal(t, "b-second", results[0].PatternID)
	assert.Equal(t, "a-first", results[1].PatternID)
}

func TestFieldWeighting_NameMatchOutscoresDescriptionMatch(t *testing.T) {
	// Same token in the name field (x3) must outscore it in the
	// description field (x1), all else equal
	patterns := []types.Pattern{
		{ID: "p-name", Name: "Dropdown", Category: "form", Description: "menu"},
		{ID: "p-desc", Name: "Menu", Category: "form", Description: "dropdown"},
	}
	for i := range patterns {
		patterns[i].Normalize()
	}

	ix := NewIndex(patterns, DefaultParams())
	results := ix.Search("dropdown")

	require.Len(t, results, 2)
	assert.Equal(t, "p-name", results[0].PatternID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestFieldWeighting_RaisingNameWeightNeverLowersRelativeScore(t *testing.T) {
	patterns := testCorpus()

	baseline := NewIndex(patterns, Params{
		K1: DefaultK1, B: DefaultB,
		FieldWeights: FieldWeights{Name: 1, Category: 2, PropsVariants: 1.5, Description: 1},
	})
	boosted := NewIndex(patterns, Params{
		K1: DefaultK1, B: DefaultB,
		FieldWeights: FieldWeights{Name: 5, Category: 2, PropsVariants: 1.5, Description: 1},
	})

	// Relative ordering: the pattern whose name matches the query keeps
	// (or improves) its lead over one whose name does not
	baseResults := baseline.Search("button")
	boostResults := boosted.Search("button")

	require.Equal(t, "shadcn-button", baseResults[0].PatternID)
	require.Equal(t, "shadcn-button", boostResults[0].PatternID)
	assert.GreaterOrEqual(t,
		boostResults[0].Score-boostResults[1].Score,
		baseResults[0].Score-baseResults[1].Score)
}

func TestNewIndex_ZeroBDisablesLengthNormalization(t *testing.T) {
	// Same term frequency in a short and a long document: with length
	// normalization the short one wins, with b=0 they tie
	patterns := []types.Pattern{
		{ID: "short", Name: "Alpha", Category: "misc"},
		{ID: "long", Name: "Alpha", Category: "misc",
			Description: "filler prose stretching this record well beyond the short one in token count"},
	}

	normalized := NewIndex(patterns, Params{
		K1: DefaultK1, B: DefaultB, FieldWeights: DefaultFieldWeights(),
	})
	flat := NewIndex(patterns, Params{
		K1: DefaultK1, B: 0, FieldWeights: DefaultFieldWeights(),
	})

	withNorm := normalized.Search("alpha")
	require.Len(t, withNorm, 2)
	assert.Equal(t, "short", withNorm[0].PatternID)
	assert.Greater(t, withNorm[0].Score, withNorm[1].Score)

	noNorm := flat.Search("alpha")
	require.Len(t, noNorm, 2)
	assert.Equal(t, noNorm[0].Score, noNorm[1].Score)
}

func TestRepetitions(t *testing.T) {
	assert.Equal(t, 3, Repetitions(3))
	assert.Equal(t, 2, Repetitions(1.5))
	assert.Equal(t, 1, Repetitions(1))
	assert.Equal(t, 1, Repetitions(0.2))
	assert.Equal(t, 1, Repetitions(0))
	assert.Equal(t, 1, Repetitions(-1))
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Aria-Label, size: 2xl (ghost)")
	assert.Equal(t, []string{"aria", "label", "size", "2xl", "ghost"}, tokens)

	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("a b c"))
}
