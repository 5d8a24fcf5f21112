// Package embedder generates vector embeddings for pattern text and
// requirement queries using various providers.
//
// The embedder supports multiple providers (Jina AI, OpenAI, local) and
// provides batching, caching, and retry handling for production use.
//
// # Basic Usage
//
//	// Create embedder (auto-detects provider from environment)
//	emb, err := embedder.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer emb.Close()
//
//	result, err := emb.GenerateEmbedding(ctx, embedder.EmbeddingRequest{
//	    Text: "Button component with variant, size props.",
//	})
//
// # Batch Processing
//
// Corpus indexing embeds all pattern texts in batches to reduce API
// round trips:
//
//	resp, err := emb.GenerateBatch(ctx, embedder.BatchEmbeddingRequest{
//	    Texts: patternTexts,
//	})
//
// # Provider Selection
//
// The factory selects a provider from environment variables:
//
//  1. If PATTERNVIEW_EMBEDDING_PROVIDER is set, use the named provider
//  2. Else if JINA_API_KEY is set, use Jina AI
//  3. Else if OPENAI_API_KEY is set, use OpenAI
//  4. Else fall back to the local provider (offline mode)
//
// The local provider hashes tokens into fixed buckets, which keeps the
// whole pipeline runnable (and testable) without network access.
//
// # Caching and Retries
//
// Embeddings are cached in-memory by SHA-256 content hash with LRU
// eviction. Transient API failures are retried with bounded exponential
// backoff (3 attempts, 100ms base, 5s cap); context cancellation stops
// the retry loop immediately.
package embedder
