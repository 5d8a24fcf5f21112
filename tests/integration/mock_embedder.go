package integration

import (
	"context"
	"errors"

	"github.com/dshills/patternview/internal/embedder"
)

// failingEmbedder simulates an embedding provider that is unreachable,
// forcing the lexical-only degraded path
type failingEmbedder struct{}

func (f *failingEmbedder) GenerateEmbedding(ctx context.Context, req embedder.EmbeddingRequest) (*embedder.Embedding, error) {
	return nil, errors.New("provider unreachable")
}

func (f *failingEmbedder) GenerateBatch(ctx context.Context, req embedder.BatchEmbeddingRequest) (*embedder.BatchEmbeddingResponse, error) {
	return nil, errors.New("provider unreachable")
}

func (f *failingEmbedder) Dimension() int   { return 4 }
func (f *failingEmbedder) Provider() string { return "failing" }
func (f *failingEmbedder) Model() string    { return "none" }
func (f *failingEmbedder) Close() error     { return nil }
