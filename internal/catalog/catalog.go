// Package catalog loads and owns the pattern corpus. Patterns are read
// once from a directory of JSON files, validated, and frozen into an
// immutable Store; re-indexing is a full reload, never an in-place edit.
package catalog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/patternview/pkg/types"
)

// LoadStats summarizes a catalog load
type LoadStats struct {
	FilesScanned    int
	PatternsLoaded  int
	PatternsSkipped int
	SkipReasons     []string
}

// Store is the read-only pattern corpus. Insertion order (sorted file
// name order) is preserved because it is the deterministic tie-break
// used by the lexical retriever.
type Store struct {
	patterns []types.Pattern
	byID     map[string]int
}

// NewStore builds a store from pre-validated patterns, preserving order.
// Callers normally use Load; NewStore exists for tests and for corpora
// supplied by another collaborator.
func NewStore(patterns []types.Pattern) (*Store, error) {
	store := &Store{
		patterns: make([]types.Pattern, 0, len(patterns)),
		byID:     make(map[string]int, len(patterns)),
	}
	for _, p := range patterns {
		p.Normalize()
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p.ID, err)
		}
		if _, exists := store.byID[p.ID]; exists {
			return nil, fmt.Errorf("pattern %q: duplicate id", p.ID)
		}
		store.byID[p.ID] = len(store.patterns)
		store.patterns = append(store.patterns, p)
	}
	return store, nil
}

// Load reads every *.json file in dir as a pattern record. Malformed or
// invariant-violating records are catalog-authoring defects: they are
// skipped with a logged warning rather than aborting the whole load.
func Load(dir string) (*Store, *LoadStats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog dir: %w", err)
	}

	stats := &LoadStats{}
	store := &Store{byID: make(map[string]int)}

	// Sorted file names give a stable corpus insertion order
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		stats.FilesScanned++
		path := filepath.Join(dir, name)

		pattern, err := loadPatternFile(path)
		if err != nil {
			skip(stats, name, err)
			continue
		}

		if _, exists := store.byID[pattern.ID]; exists {
			skip(stats, name, fmt.Errorf("duplicate pattern id %q", pattern.ID))
			continue
		}

		store.byID[pattern.ID] = len(store.patterns)
		store.patterns = append(store.patterns, *pattern)
		stats.PatternsLoaded++
	}

	return store, stats, nil
}

// loadPatternFile reads, normalizes, and validates one pattern record
func loadPatternFile(path string) (*types.Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var pattern types.Pattern
	if err := json.Unmarshal(data, &pattern); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	pattern.Normalize()
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	return &pattern, nil
}

func skip(stats *LoadStats, name string, err error) {
	stats.PatternsSkipped++
	reason := fmt.Sprintf("%s: %v", name, err)
	stats.SkipReasons = append(stats.SkipReasons, reason)
	log.Printf("catalog: skipping %s", reason)
}

// Len returns the corpus size
func (s *Store) Len() int {
	return len(s.patterns)
}

// Patterns returns the corpus in insertion order. The returned slice is
// shared; callers must not mutate it.
func (s *Store) Patterns() []types.Pattern {
	return s.patterns
}

// Get returns the pattern with the given id
func (s *Store) Get(id string) (*types.Pattern, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, types.ErrPatternNotFound
	}
	return &s.patterns[i], nil
}

// SearchableText renders the plain (unweighted) text used for semantic
// embedding: a natural-language description assembled from name,
// category, description, and the metadata lists
func SearchableText(p *types.Pattern) string {
	var b strings.Builder
	b.WriteString(p.Name)
	if p.Category != "" {
		b.WriteString(" ")
		b.WriteString(p.Category)
	}
	b.WriteString(" component. ")
	if p.Description != "" {
		b.WriteString(p.Description)
		if !strings.HasSuffix(p.Description, ".") {
			b.WriteString(".")
		}
		b.WriteString(" ")
	}
	if names := p.PropNames(); len(names) > 0 {
		b.WriteString("Props: " + strings.Join(names, ", ") + ". ")
	}
	if len(p.Metadata.Variants) > 0 {
		b.WriteString("Variants: " + strings.Join(p.Metadata.Variants, ", ") + ". ")
	}
	if len(p.Metadata.Sizes) > 0 {
		b.WriteString("Sizes: " + strings.Join(p.Metadata.Sizes, ", ") + ". ")
	}
	if len(p.Metadata.A11y) > 0 {
		b.WriteString("Accessibility: " + strings.Join(p.Metadata.A11y, ", ") + ".")
	}
	return strings.TrimSpace(b.String())
}
