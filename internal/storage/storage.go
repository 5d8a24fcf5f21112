package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// EmbeddingRecord is one cached corpus embedding, keyed by the SHA-256
// hash of the embedded text plus the provider/model that produced it
type EmbeddingRecord struct {
	ContentHash string
	PatternID   string
	Provider    string
	Model       string
	Dimension   int
	Vector      []float32
}

// Store persists pattern embeddings between catalog rebuilds so
// unchanged patterns are not re-embedded. Retrieval itself never reads
// from the store; it only serves index construction.
type Store interface {
	// GetEmbedding returns the cached vector for a content hash, or
	// ErrNotFound
	GetEmbedding(ctx context.Context, contentHash, provider, model string) ([]float32, error)

	// PutEmbedding stores or replaces a cached vector
	PutEmbedding(ctx context.Context, rec *EmbeddingRecord) error

	// CountEmbeddings reports how many vectors are cached
	CountEmbeddings(ctx context.Context) (int64, error)

	// PruneEmbeddings removes cached vectors whose content hash is not
	// in the keep set, reclaiming space after catalog changes
	PruneEmbeddings(ctx context.Context, keep []string) (int64, error)

	// Close releases the underlying database
	Close() error
}
