// Package engine owns the built retrieval indices and coordinates one
// retrieval call: query building, concurrent lexical and semantic
// scoring, weighted fusion, and explanation of the top-K results.
//
// An Engine is constructed once at startup and shared by all callers.
// The corpus and both indices live in an immutable snapshot published
// through an atomic pointer; Rebuild constructs a complete new snapshot
// before swapping it in, so concurrent readers never observe a
// half-built index.
package engine

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/patternview/internal/catalog"
	"github.com/dshills/patternview/internal/config"
	"github.com/dshills/patternview/internal/embedder"
	"github.com/dshills/patternview/internal/explainer"
	"github.com/dshills/patternview/internal/fusion"
	"github.com/dshills/patternview/internal/lexical"
	"github.com/dshills/patternview/internal/querybuilder"
	"github.com/dshills/patternview/internal/semantic"
	"github.com/dshills/patternview/internal/storage"
	"github.com/dshills/patternview/pkg/types"
)

// Retrieval methods reported in result metadata
const (
	MethodLexical  = "lexical"
	MethodSemantic = "semantic"
)

// ErrNotIndexed is returned when Retrieve is called before any catalog
// has been indexed
var ErrNotIndexed = fmt.Errorf("no catalog indexed")

// RetrieveOptions tunes a single retrieval call
type RetrieveOptions struct {
	TopK     int  // Result count; 0 uses the configured default
	UseCache bool // Whether to consult the query cache
}

// snapshot is one immutable generation of the corpus and its indices
type snapshot struct {
	store        *catalog.Store
	lexicalIndex *lexical.Index
	semIndex     *semantic.Index
	semDegraded  bool // corpus embedding failed entirely at build time
	builtAt      time.Time
}

// cacheEntry is a cached result set with expiration
type cacheEntry struct {
	resultSet *types.ResultSet
	expiresAt time.Time
}

// Engine is the hybrid pattern retrieval engine
type Engine struct {
	cfg      config.Config
	embedder embedder.Embedder
	cache    storage.Store // persistent embedding cache, may be nil

	current atomic.Pointer[snapshot]

	queryCache *lru.Cache[[32]byte, *cacheEntry]
	cacheMu    sync.RWMutex
}

// New creates an engine with no indexed catalog. Call Rebuild before
// Retrieve. embeddingCache may be nil to disable persistence.
func New(cfg config.Config, emb embedder.Embedder, embeddingCache storage.Store) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if emb == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	queryCache, err := lru.New[[32]byte, *cacheEntry](cfg.QueryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}

	return &Engine{
		cfg:        cfg,
		embedder:   emb,
		cache:      embeddingCache,
		queryCache: queryCache,
	}, nil
}

// Rebuild indexes the given corpus and atomically publishes the new
// snapshot. Existing retrieval calls continue against the old snapshot
// until the swap; the query cache is purged afterwards.
func (e *Engine) Rebuild(ctx context.Context, store *catalog.Store) error {
	lexIndex := lexical.NewIndex(store.Patterns(), e.cfg.LexicalParams())

	embedResult, err := catalog.EmbedCorpus(ctx, store, e.embedder, e.cache, 0)
	if err != nil {
		return fmt.Errorf("failed to build semantic index: %w", err)
	}

	semDegraded := store.Len() > 0 && len(embedResult.Entries) == 0
	if semDegraded {
		log.Printf("engine: corpus embedding unavailable (%s); serving lexical-only",
			embedResult.FailReason)
	} else if embedResult.Failed > 0 {
		log.Printf("engine: %d of %d patterns failed to embed", embedResult.Failed, store.Len())
	}

	next := &snapshot{
		store:        store,
		lexicalIndex: lexIndex,
		semIndex:     semantic.NewIndex(embedResult.Entries),
		semDegraded:  semDegraded,
		builtAt:      time.Now(),
	}
	e.current.Store(next)

	e.cacheMu.Lock()
	e.queryCache.Purge()
	e.cacheMu.Unlock()

	return nil
}

// Status describes the currently published snapshot
type Status struct {
	Indexed     bool
	CorpusSize  int
	Embedded    int
	SemDegraded bool
	BuiltAt     time.Time
	Provider    string
	Model       string
}

// Status reports on the current snapshot
func (e *Engine) Status() Status {
	snap := e.current.Load()
	if snap == nil {
		return Status{Provider: e.embedder.Provider(), Model: e.embedder.Model()}
	}
	return Status{
		Indexed:     true,
		CorpusSize:  snap.store.Len(),
		Embedded:    snap.semIndex.Len(),
		SemDegraded: snap.semDegraded,
		BuiltAt:     snap.builtAt,
		Provider:    e.embedder.Provider(),
		Model:       e.embedder.Model(),
	}
}

// Store returns the catalog behind the current snapshot, or nil if no
// catalog has been indexed
func (e *Engine) Store() *catalog.Store {
	snap := e.current.Load()
	if snap == nil {
		return nil
	}
	return snap.store
}

// branchResult carries one retriever branch's output across the join
type branchResult struct {
	lexical  []lexical.Result
	semantic []semantic.Result
	err      error
}

// Retrieve runs the full pipeline for one requirement query and returns
// the explained top-K result set.
//
// Invalid input is rejected immediately. Semantic-branch failure or
// timeout is absorbed: the call degrades to lexical-only ranking with
// Degraded set on the result set, never a hard error.
func (e *Engine) Retrieve(ctx context.Context, query types.RequirementQuery, opts RetrieveOptions) (*types.ResultSet, error) {
	startTime := time.Now()

	if err := query.Validate(); err != nil {
		return nil, err
	}

	snap := e.current.Load()
	if snap == nil {
		return nil, ErrNotIndexed
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = e.cfg.TopK
	}

	// Empty corpus is not an error
	if snap.store.Len() == 0 {
		return &types.ResultSet{
			Results: []types.RetrievalResult{},
			Metadata: types.RetrievalMetadata{
				LatencyMS:   time.Since(startTime).Milliseconds(),
				MethodsUsed: []string{},
				Weights:     types.FusionWeights{Lexical: e.cfg.Fusion.Lexical, Semantic: e.cfg.Fusion.Semantic},
			},
		}, nil
	}

	cacheKey := e.queryHash(query, topK)
	if opts.UseCache {
		if cached := e.checkCache(cacheKey); cached != nil {
			cached.Metadata.CacheHit = true
			cached.Metadata.LatencyMS = time.Since(startTime).Milliseconds()
			return cached, nil
		}
	}

	lexQuery, semQuery := querybuilder.Build(query, e.cfg.FieldWeights)

	lexChan := make(chan branchResult, 1)
	semChan := make(chan branchResult, 1)

	go e.runLexical(ctx, snap, lexQuery, lexChan)
	go e.runSemantic(ctx, snap, semQuery, semChan)

	// Fusion never starts before both branches resolve
	var lexRes, semRes branchResult
	var lexDone, semDone bool
	for !lexDone || !semDone {
		select {
		case lexRes = <-lexChan:
			lexDone = true
		case semRes = <-semChan:
			semDone = true
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if lexRes.err != nil {
		// The lexical branch is in-process and should not fail; if it
		// does, the whole call fails
		return nil, lexRes.err
	}
	if semRes.err != nil {
		log.Printf("engine: semantic search degraded: %v", semRes.err)
		semRes.semantic = nil
	}

	fused, degraded := fusion.Fuse(lexRes.lexical, semRes.semantic, e.cfg.Fusion)

	resultSet := e.explain(fused, degraded, query, snap, topK)
	resultSet.Metadata = types.RetrievalMetadata{
		LatencyMS:        time.Since(startTime).Milliseconds(),
		MethodsUsed:      methodsUsed(degraded),
		Weights:          fusionWeights(degraded, e.cfg.Fusion),
		PatternsSearched: snap.store.Len(),
		Query:            semQuery,
	}

	if opts.UseCache && len(resultSet.Results) > 0 {
		e.storeInCache(cacheKey, resultSet)
	}

	return resultSet, nil
}

// runLexical executes the lexical branch in its own goroutine
func (e *Engine) runLexical(ctx context.Context, snap *snapshot, query string, out chan<- branchResult) {
	var res branchResult
	res.lexical = snap.lexicalIndex.Search(query)
	select {
	case out <- res:
	case <-ctx.Done():
	}
}

// runSemantic executes the semantic branch under its own timeout. An
// error here is a degradation signal, not a failure of the call.
func (e *Engine) runSemantic(ctx context.Context, snap *snapshot, query string, out chan<- branchResult) {
	var res branchResult

	if snap.semDegraded || snap.semIndex.Len() == 0 {
		select {
		case out <- res:
		case <-ctx.Done():
		}
		return
	}

	semCtx, cancel := context.WithTimeout(ctx, e.cfg.SemanticTimeout)
	defer cancel()

	embedding, err := e.embedder.GenerateEmbedding(semCtx, embedder.EmbeddingRequest{Text: query})
	if err != nil {
		res.err = fmt.Errorf("failed to embed query: %w", err)
	} else {
		res.semantic = snap.semIndex.Search(embedding.Vector, e.cfg.SemanticTopN)
	}

	select {
	case out <- res:
	case <-ctx.Done():
	}
}

// explain annotates the top-K fused results with confidence,
// explanation, and match highlights
func (e *Engine) explain(fused []fusion.Fused, degraded bool, query types.RequirementQuery, snap *snapshot, topK int) *types.ResultSet {
	if topK > len(fused) {
		topK = len(fused)
	}

	results := make([]types.RetrievalResult, 0, topK)
	for i := 0; i < topK; i++ {
		f := fused[i]

		pattern, err := snap.store.Get(f.PatternID)
		if err != nil {
			// Fused IDs come from the same snapshot's indices, so this
			// indicates an index/corpus mismatch; skip defensively
			log.Printf("engine: fused pattern %s missing from store", f.PatternID)
			continue
		}

		var next *fusion.Fused
		if i+1 < len(fused) {
			next = &fused[i+1]
		}

		confidence, explanation, highlights := explainer.Explain(f, next, query, pattern, e.cfg.Confidence)

		results = append(results, types.RetrievalResult{
			PatternID:       f.PatternID,
			LexicalScore:    f.LexicalScore,
			LexicalRank:     f.LexicalRank,
			SemanticScore:   f.SemanticScore,
			SemanticRank:    f.SemanticRank,
			FinalScore:      f.FinalScore,
			FinalRank:       f.FinalRank,
			Confidence:      confidence,
			Explanation:     explanation,
			MatchHighlights: highlights,
		})
	}

	return &types.ResultSet{
		Results:  results,
		Degraded: degraded,
	}
}

// queryHash computes a stable cache key for a query + options
func (e *Engine) queryHash(query types.RequirementQuery, topK int) [32]byte {
	return sha256.Sum256([]byte(fmt.Sprintf("%s|k=%d", query.CacheKey(), topK)))
}

// checkCache returns a copy of a live cached result set, or nil
func (e *Engine) checkCache(key [32]byte) *types.ResultSet {
	now := time.Now()

	e.cacheMu.RLock()
	entry, found := e.queryCache.Get(key)
	if !found {
		e.cacheMu.RUnlock()
		return nil
	}
	if now.After(entry.expiresAt) {
		e.cacheMu.RUnlock()
		e.cacheMu.Lock()
		e.queryCache.Remove(key)
		e.cacheMu.Unlock()
		return nil
	}
	response := copyResultSet(entry.resultSet)
	e.cacheMu.RUnlock()

	return response
}

// storeInCache saves a result set copy with the configured TTL
func (e *Engine) storeInCache(key [32]byte, rs *types.ResultSet) {
	entry := &cacheEntry{
		resultSet: copyResultSet(rs),
		expiresAt: time.Now().Add(e.cfg.QueryCacheTTL),
	}

	e.cacheMu.Lock()
	e.queryCache.Add(key, entry)
	e.cacheMu.Unlock()
}

// copyResultSet deep-copies a result set so cached values are never
// shared with callers
func copyResultSet(src *types.ResultSet) *types.ResultSet {
	if src == nil {
		return nil
	}

	dst := &types.ResultSet{
		Degraded: src.Degraded,
		Metadata: src.Metadata,
		Results:  make([]types.RetrievalResult, len(src.Results)),
	}
	dst.Metadata.MethodsUsed = append([]string(nil), src.Metadata.MethodsUsed...)

	for i, r := range src.Results {
		copied := r
		copied.MatchHighlights = types.MatchHighlights{
			MatchedProps:    append([]string(nil), r.MatchHighlights.MatchedProps...),
			MatchedVariants: append([]string(nil), r.MatchHighlights.MatchedVariants...),
			MatchedA11y:     append([]string(nil), r.MatchHighlights.MatchedA11y...),
		}
		dst.Results[i] = copied
	}
	return dst
}

func methodsUsed(degraded bool) []string {
	if degraded {
		return []string{MethodLexical}
	}
	return []string{MethodLexical, MethodSemantic}
}

func fusionWeights(degraded bool, w fusion.Weights) types.FusionWeights {
	if degraded {
		return types.FusionWeights{Lexical: 1.0, Semantic: 0.0}
	}
	return types.FusionWeights{Lexical: w.Lexical, Semantic: w.Semantic}
}
