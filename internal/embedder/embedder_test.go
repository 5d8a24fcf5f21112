package embedder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProvider_Deterministic(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)
	defer func() { _ = provider.Close() }()

	ctx := context.Background()
	req := EmbeddingRequest{Text: "button component with variant and size props"}

	first, err := provider.GenerateEmbedding(ctx, req)
	require.NoError(t, err)
	second, err := provider.GenerateEmbedding(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.Vector, second.Vector)
	assert.Equal(t, LocalDimension, first.Dimension)
	assert.Equal(t, ProviderLocal, first.Provider)
	assert.NotEmpty(t, first.Hash)
}

func TestLocalProvider_UnitLength(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)

	emb, err := provider.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: "toggle switch checked"})
	require.NoError(t, err)

	var sum float64
	for _, v := range emb.Vector {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}

func TestLocalProvider_SharedVocabularyScoresCloser(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)
	ctx := context.Background()

	a, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "button with primary and ghost variants"})
	require.NoError(t, err)
	b, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "button with primary variants"})
	require.NoError(t, err)
	c, err := provider.GenerateEmbedding(ctx, EmbeddingRequest{Text: "sqlite storage migration schema"})
	require.NoError(t, err)

	dot := func(x, y []float32) float64 {
		var s float64
		for i := range x {
			s += float64(x[i]) * float64(y[i])
		}
		return s
	}

	assert.Greater(t, dot(a.Vector, b.Vector), dot(a.Vector, c.Vector))
}

func TestLocalProvider_EmptyText(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)

	_, err = provider.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: ""})
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = provider.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestLocalProvider_Batch(t *testing.T) {
	provider, err := NewLocalProvider(nil)
	require.NoError(t, err)

	resp, err := provider.GenerateBatch(context.Background(), BatchEmbeddingRequest{
		Texts: []string{"first text", "second text"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Embeddings, 2)
	assert.Equal(t, ProviderLocal, resp.Provider)
	assert.NotEqual(t, resp.Embeddings[0].Vector, resp.Embeddings[1].Vector)

	_, err = provider.GenerateBatch(context.Background(), BatchEmbeddingRequest{Texts: nil})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = provider.GenerateBatch(context.Background(), BatchEmbeddingRequest{Texts: []string{"ok", ""}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCache_GetReturnsCopy(t *testing.T) {
	cache := NewCache(10)

	original := &Embedding{
		Vector:    []float32{1, 2, 3},
		Dimension: 3,
		Provider:  ProviderLocal,
		Hash:      "h1",
	}
	cache.Set("h1", original)

	got, ok := cache.Get("h1")
	require.True(t, ok)
	got.Vector[0] = 99

	again, ok := cache.Get("h1")
	require.True(t, ok)
	assert.Equal(t, float32(1), again.Vector[0])
}

func TestCache_SetCopiesVector(t *testing.T) {
	cache := NewCache(10)

	vector := []float32{1, 2, 3}
	cache.Set("h1", &Embedding{Vector: vector, Dimension: 3, Hash: "h1"})

	// Mutating the caller's slice after Set must not reach the cache
	vector[0] = 99

	got, ok := cache.Get("h1")
	require.True(t, ok)
	assert.Equal(t, float32(1), got.Vector[0])
}

func TestCache_MissAndEviction(t *testing.T) {
	cache := NewCache(2)

	_, ok := cache.Get("absent")
	assert.False(t, ok)

	cache.Set("a", &Embedding{Hash: "a"})
	cache.Set("b", &Embedding{Hash: "b"})
	cache.Set("c", &Embedding{Hash: "c"})

	assert.Equal(t, 2, cache.Size())
	_, ok = cache.Get("a")
	assert.False(t, ok)

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}

func TestLocalProvider_UsesCache(t *testing.T) {
	cache := NewCache(10)
	provider, err := NewLocalProvider(cache)
	require.NoError(t, err)

	_, err = provider.GenerateEmbedding(context.Background(), EmbeddingRequest{Text: "cached text"})
	require.NoError(t, err)

	assert.Equal(t, 1, cache.Size())
	cached, ok := cache.Get(ComputeHash("cached text"))
	require.True(t, ok)
	assert.Equal(t, LocalDimension, cached.Dimension)
}

func TestComputeHash(t *testing.T) {
	h1 := ComputeHash("some text")
	h2 := ComputeHash("some text")
	h3 := ComputeHash("other text")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}

func TestNormalizeVector_ZeroVectorUnchanged(t *testing.T) {
	v := []float32{0, 0, 0}
	assert.Equal(t, v, NormalizeVector(v))
}

func TestRetryWithBackoff_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	result, err := retryWithBackoff(context.Background(), 3, time.Millisecond, func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	attempts := 0
	_, err := retryWithBackoff(context.Background(), 2, time.Millisecond, func() (int, error) {
		attempts++
		return 0, errors.New("persistent")
	})

	assert.Error(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRetryWithBackoff_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	_, err := retryWithBackoff(ctx, 5, time.Millisecond, func() (int, error) {
		attempts++
		cancel()
		return 0, errors.New("fail")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestNewFromEnv_DefaultsToLocal(t *testing.T) {
	t.Setenv(EnvProvider, "")
	t.Setenv(EnvJinaAPIKey, "")
	t.Setenv(EnvOpenAIAPIKey, "")

	emb, err := NewFromEnv()
	require.NoError(t, err)
	defer func() { _ = emb.Close() }()

	assert.Equal(t, ProviderLocal, emb.Provider())
}

func TestDetectProvider(t *testing.T) {
	t.Setenv(EnvProvider, "")
	t.Setenv(EnvJinaAPIKey, "")
	t.Setenv(EnvOpenAIAPIKey, "")
	assert.Equal(t, ProviderLocal, DetectProvider())

	t.Setenv(EnvJinaAPIKey, "key")
	assert.Equal(t, ProviderJina, DetectProvider())

	t.Setenv(EnvProvider, ProviderOpenAI)
	assert.Equal(t, ProviderOpenAI, DetectProvider())
}
