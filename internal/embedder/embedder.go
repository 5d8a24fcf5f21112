package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Sentinel errors for provider and input failures
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrProviderFailed    = errors.New("embedding provider failed")
	ErrUnsupportedModel  = errors.New("unsupported model")
	ErrEmptyText         = errors.New("text cannot be empty")
	ErrBatchTooLarge     = errors.New("batch size exceeds limit")
	ErrNoProviderEnabled = errors.New("no embedding provider configured")
)

// Embedding is one generated vector with its provenance. Hash is the
// content hash of the embedded text, the same key the persistent store
// uses.
type Embedding struct {
	Vector    []float32
	Dimension int
	Provider  string
	Model     string
	Hash      string
}

// EmbeddingRequest asks for one text to be embedded. Model optionally
// overrides the provider's default.
type EmbeddingRequest struct {
	Text  string
	Model string
}

// BatchEmbeddingRequest asks for several texts in one provider call
type BatchEmbeddingRequest struct {
	Texts []string
	Model string
}

// BatchEmbeddingResponse carries the batch result with the provider and
// model that actually served it
type BatchEmbeddingResponse struct {
	Embeddings []*Embedding
	Provider   string
	Model      string
}

// Embedder generates vector embeddings for pattern text and queries
type Embedder interface {
	// GenerateEmbedding embeds a single text
	GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error)

	// GenerateBatch embeds multiple texts in one provider round trip
	GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error)

	// Dimension returns the vector width this provider produces
	Dimension() int

	// Provider returns the provider name
	Provider() string

	// Model returns the model name
	Model() string

	// Close releases any resources held by the embedder
	Close() error
}

// Cache is an in-memory LRU over generated embeddings, keyed by content
// hash. Entries are stored by value and the vector is copied on both
// insert and lookup, so neither the provider nor a caller can mutate a
// cached vector after the fact.
type Cache struct {
	entries *lru.Cache[string, Embedding]
}

// NewCache creates an embedding cache holding at most size entries
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, Embedding](size)
	if err != nil {
		entries, _ = lru.New[string, Embedding](DefaultCacheSize)
	}
	return &Cache{entries: entries}
}

// Get returns the cached embedding for a content hash
func (c *Cache) Get(hash string) (*Embedding, bool) {
	cached, ok := c.entries.Get(hash)
	if !ok {
		return nil, false
	}
	cached.Vector = append([]float32(nil), cached.Vector...)
	return &cached, true
}

// Set stores an embedding, evicting the least recently used entry when
// the cache is full
func (c *Cache) Set(hash string, emb *Embedding) {
	stored := *emb
	stored.Vector = append([]float32(nil), stored.Vector...)
	c.entries.Add(hash, stored)
}

// Size returns the current number of cached embeddings
func (c *Cache) Size() int {
	return c.entries.Len()
}

// Clear empties the cache
func (c *Cache) Clear() {
	c.entries.Purge()
}

// ComputeHash returns the SHA-256 hex digest of text. It is the cache
// key for both this in-memory cache and the persistent store.
func ComputeHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ValidateRequest rejects requests with nothing to embed
func ValidateRequest(req EmbeddingRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return ErrEmptyText
	}
	return nil
}

// ValidateBatchRequest rejects empty batches and batches containing an
// empty text
func ValidateBatchRequest(req BatchEmbeddingRequest) error {
	if len(req.Texts) == 0 {
		return fmt.Errorf("%w: no texts provided", ErrInvalidInput)
	}
	for i, text := range req.Texts {
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: text at index %d is empty", ErrInvalidInput, i)
		}
	}
	return nil
}
