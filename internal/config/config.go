// Package config holds the tunable policy surface of the retrieval
// engine: fusion weights, BM25 parameters, field weight multipliers,
// result count, semantic timeout, and confidence sub-weights. Values
// load from an optional YAML file with environment overrides on top.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/patternview/internal/explainer"
	"github.com/dshills/patternview/internal/fusion"
	"github.com/dshills/patternview/internal/lexical"
)

// Defaults
const (
	DefaultTopK            = 3
	DefaultSemanticTopN    = 10
	DefaultSemanticTimeout = 5 * time.Second
	DefaultCacheTTL        = 1 * time.Hour
	DefaultQueryCacheSize  = 1000
)

// Environment override variables
const (
	EnvLexicalWeight   = "PATTERNVIEW_LEXICAL_WEIGHT"
	EnvSemanticWeight  = "PATTERNVIEW_SEMANTIC_WEIGHT"
	EnvTopK            = "PATTERNVIEW_TOP_K"
	EnvSemanticTimeout = "PATTERNVIEW_SEMANTIC_TIMEOUT_MS"
)

// BM25 groups the ranking function parameters
type BM25 struct {
	K1 float64 `yaml:"k1"`
	B  float64 `yaml:"b"`
}

// Config is the full engine configuration
type Config struct {
	Fusion       fusion.Weights       `yaml:"fusion"`
	BM25         BM25                 `yaml:"bm25"`
	FieldWeights lexical.FieldWeights `yaml:"field_weights"`
	Confidence   explainer.Weights    `yaml:"confidence"`

	TopK            int           `yaml:"top_k"`
	SemanticTopN    int           `yaml:"semantic_top_n"`
	SemanticTimeout time.Duration `yaml:"semantic_timeout"`

	QueryCacheSize int           `yaml:"query_cache_size"`
	QueryCacheTTL  time.Duration `yaml:"query_cache_ttl"`
}

// Default returns the standard configuration
func Default() Config {
	return Config{
		Fusion:          fusion.DefaultWeights(),
		BM25:            BM25{K1: lexical.DefaultK1, B: lexical.DefaultB},
		FieldWeights:    lexical.DefaultFieldWeights(),
		Confidence:      explainer.DefaultWeights(),
		TopK:            DefaultTopK,
		SemanticTopN:    DefaultSemanticTopN,
		SemanticTimeout: DefaultSemanticTimeout,
		QueryCacheSize:  DefaultQueryCacheSize,
		QueryCacheTTL:   DefaultCacheTTL,
	}
}

// Load reads a YAML config file over the defaults and applies
// environment overrides. An empty path skips the file step.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays environment overrides
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvLexicalWeight); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Fusion.Lexical = f
		}
	}
	if v := os.Getenv(EnvSemanticWeight); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Fusion.Semantic = f
		}
	}
	if v := os.Getenv(EnvTopK); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.TopK = n
		}
	}
	if v := os.Getenv(EnvSemanticTimeout); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			c.SemanticTimeout = time.Duration(ms) * time.Millisecond
		}
	}
}

// Validate rejects configurations the engine cannot run with
func (c *Config) Validate() error {
	if c.Fusion.Lexical < 0 || c.Fusion.Semantic < 0 {
		return fmt.Errorf("fusion weights must be non-negative")
	}
	if !sumsToOne(c.Fusion.Lexical, c.Fusion.Semantic) {
		return fmt.Errorf("fusion weights must sum to 1.0, got %.3f",
			c.Fusion.Lexical+c.Fusion.Semantic)
	}
	if !sumsToOne(c.Confidence.Score, c.Confidence.Coverage, c.Confidence.Gap) {
		return fmt.Errorf("confidence weights must sum to 1.0, got %.3f",
			c.Confidence.Score+c.Confidence.Coverage+c.Confidence.Gap)
	}
	if c.BM25.K1 <= 0 {
		return fmt.Errorf("bm25 k1 must be positive")
	}
	if c.BM25.B < 0 || c.BM25.B > 1 {
		return fmt.Errorf("bm25 b must be in [0,1]")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive")
	}
	if c.SemanticTopN <= 0 {
		return fmt.Errorf("semantic_top_n must be positive")
	}
	if c.SemanticTimeout <= 0 {
		return fmt.Errorf("semantic_timeout must be positive")
	}
	return nil
}

// LexicalParams adapts the config for the lexical index
func (c *Config) LexicalParams() lexical.Params {
	return lexical.Params{
		K1:           c.BM25.K1,
		B:            c.BM25.B,
		FieldWeights: c.FieldWeights,
	}
}

func sumsToOne(values ...float64) bool {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return math.Abs(sum-1.0) < 1e-6
}
