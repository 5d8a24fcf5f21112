package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/patternview/internal/embedder"
	"github.com/dshills/patternview/internal/semantic"
	"github.com/dshills/patternview/internal/storage"
)

// EmbedResult reports the outcome of a corpus embedding pass
type EmbedResult struct {
	Entries    []semantic.Entry
	CacheHits  int
	Embedded   int
	Failed     int
	FailReason string
}

// EmbedCorpus embeds every pattern's searchable text through the
// embedder, consulting the persistent cache by content hash first so a
// rebuild only re-embeds patterns whose text changed. Workers run
// concurrently via errgroup. A nil cache disables persistence.
//
// The returned entries keep corpus order. When the provider persistently
// fails the error is absorbed into the result (Failed count and
// FailReason set, Entries possibly empty) so the caller can still serve
// lexical-only retrieval; only context cancellation is a hard error.
func EmbedCorpus(ctx context.Context, store *Store, emb embedder.Embedder, cache storage.Store, workers int) (*EmbedResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	patterns := store.Patterns()
	result := &EmbedResult{}
	vectors := make([][]float32, len(patterns))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range patterns {
		g.Go(func() error {
			text := SearchableText(&patterns[i])
			hash := embedder.ComputeHash(text)

			if cache != nil {
				vector, err := cache.GetEmbedding(gctx, hash, emb.Provider(), emb.Model())
				if err == nil {
					mu.Lock()
					vectors[i] = vector
					result.CacheHits++
					mu.Unlock()
					return nil
				}
				if !errors.Is(err, storage.ErrNotFound) {
					log.Printf("catalog: embedding cache read failed for %s: %v", patterns[i].ID, err)
				}
			}

			embedding, err := emb.GenerateEmbedding(gctx, embedder.EmbeddingRequest{Text: text})
			if err != nil {
				// Provider failure degrades to lexical-only; don't kill
				// the whole build
				if gctx.Err() != nil {
					return gctx.Err()
				}
				mu.Lock()
				result.Failed++
				if result.FailReason == "" {
					result.FailReason = err.Error()
				}
				mu.Unlock()
				log.Printf("catalog: embedding failed for %s: %v", patterns[i].ID, err)
				return nil
			}

			mu.Lock()
			vectors[i] = embedding.Vector
			result.Embedded++
			mu.Unlock()

			if cache != nil {
				if err := cache.PutEmbedding(gctx, &storage.EmbeddingRecord{
					ContentHash: hash,
					PatternID:   patterns[i].ID,
					Provider:    emb.Provider(),
					Model:       emb.Model(),
					Dimension:   embedding.Dimension,
					Vector:      embedding.Vector,
				}); err != nil {
					log.Printf("catalog: embedding cache write failed for %s: %v", patterns[i].ID, err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("corpus embedding canceled: %w", err)
	}

	result.Entries = make([]semantic.Entry, 0, len(patterns))
	for i := range patterns {
		if vectors[i] == nil {
			continue
		}
		result.Entries = append(result.Entries, semantic.Entry{
			PatternID: patterns[i].ID,
			Vector:    vectors[i],
		})
	}

	return result, nil
}

// ContentHashes returns the embedding-cache keys for the current corpus,
// for use with storage.Store.PruneEmbeddings
func ContentHashes(store *Store) []string {
	patterns := store.Patterns()
	hashes := make([]string, len(patterns))
	for i := range patterns {
		hashes[i] = embedder.ComputeHash(SearchableText(&patterns[i]))
	}
	return hashes
}
