package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvLexicalWeight, "")
	t.Setenv(EnvSemanticWeight, "")
	t.Setenv(EnvTopK, "")
	t.Setenv(EnvSemanticTimeout, "")
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.InDelta(t, 0.3, cfg.Fusion.Lexical, 1e-9)
	assert.InDelta(t, 0.7, cfg.Fusion.Semantic, 1e-9)
	assert.Equal(t, 1.5, cfg.BM25.K1)
	assert.Equal(t, 0.75, cfg.BM25.B)
	assert.Equal(t, 3, cfg.TopK)
	assert.Equal(t, 10, cfg.SemanticTopN)
	assert.Equal(t, 5*time.Second, cfg.SemanticTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fusion:
  lexical: 0.5
  semantic: 0.5
bm25:
  k1: 1.2
  b: 0.6
field_weights:
  name: 4
  category: 2
  props_variants: 1.5
  description: 1
top_k: 5
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Fusion.Lexical)
	assert.Equal(t, 0.5, cfg.Fusion.Semantic)
	assert.Equal(t, 1.2, cfg.BM25.K1)
	assert.Equal(t, 0.6, cfg.BM25.B)
	assert.Equal(t, 4.0, cfg.FieldWeights.Name)
	assert.Equal(t, 5, cfg.TopK)

	// Untouched values keep their defaults
	assert.Equal(t, DefaultSemanticTimeout, cfg.SemanticTimeout)
	assert.Equal(t, 0.5, cfg.Confidence.Score)
}

func TestLoad_MissingFileErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLexicalWeight, "0.4")
	t.Setenv(EnvSemanticWeight, "0.6")
	t.Setenv(EnvTopK, "7")
	t.Setenv(EnvSemanticTimeout, "2500")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 0.4, cfg.Fusion.Lexical)
	assert.Equal(t, 0.6, cfg.Fusion.Semantic)
	assert.Equal(t, 7, cfg.TopK)
	assert.Equal(t, 2500*time.Millisecond, cfg.SemanticTimeout)
}

func TestLoad_InvalidEnvValuesIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvTopK, "not-a-number")
	t.Setenv(EnvSemanticTimeout, "-5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultTopK, cfg.TopK)
	assert.Equal(t, DefaultSemanticTimeout, cfg.SemanticTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"fusion weights don't sum to one", func(c *Config) { c.Fusion.Lexical = 0.5 }},
		{"negative fusion weight", func(c *Config) { c.Fusion.Lexical = -0.3; c.Fusion.Semantic = 1.3 }},
		{"confidence weights don't sum to one", func(c *Config) { c.Confidence.Gap = 0.5 }},
		{"zero k1", func(c *Config) { c.BM25.K1 = 0 }},
		{"b above one", func(c *Config) { c.BM25.B = 1.5 }},
		{"zero top_k", func(c *Config) { c.TopK = 0 }},
		{"zero semantic_top_n", func(c *Config) { c.SemanticTopN = 0 }},
		{"zero semantic timeout", func(c *Config) { c.SemanticTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLexicalParams(t *testing.T) {
	cfg := Default()
	cfg.BM25.K1 = 2.0
	cfg.FieldWeights.Name = 5

	params := cfg.LexicalParams()
	assert.Equal(t, 2.0, params.K1)
	assert.Equal(t, cfg.BM25.B, params.B)
	assert.Equal(t, 5.0, params.FieldWeights.Name)
}
