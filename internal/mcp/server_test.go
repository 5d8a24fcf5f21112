package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/patternview/internal/config"
	"github.com/dshills/patternview/internal/embedder"
	"github.com/dshills/patternview/internal/engine"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func fixtureCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFixture(t, dir, "button.json", `{
		"id": "shadcn-button",
		"name": "Button",
		"category": "form",
		"description": "A clickable action element with multiple visual styles",
		"code": "export const Button = () => {}",
		"metadata": {
			"props": [
				{"name": "variant", "type": "string"},
				{"name": "size", "type": "string"}
			],
			"variants": ["primary", "secondary", "ghost"],
			"a11y": ["aria-label"]
		}
	}`)
	writeFixture(t, dir, "link.json", `{
		"id": "shadcn-link",
		"name": "Link",
		"category": "navigation",
		"description": "A navigational anchor element",
		"metadata": {
			"props": [{"name": "href", "type": "string"}],
			"a11y": ["aria-label"]
		}
	}`)
	return dir
}

// newTestServer wires a server around an in-process engine with the
// offline embedder, skipping the stdio and sqlite setup in NewServer
func newTestServer(t *testing.T) *Server {
	t.Helper()

	emb, err := embedder.NewLocalProvider(nil)
	require.NoError(t, err)

	eng, err := engine.New(config.Default(), emb, nil)
	require.NoError(t, err)

	s := &Server{
		engine:     eng,
		catalogDir: fixtureCatalog(t),
	}
	_, err = s.reindex(context.Background(), s.catalogDir)
	require.NoError(t, err)
	return s
}

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	return payload
}

func TestHandleSearchPatterns(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleSearchPatterns(context.Background(), toolRequest("search_patterns", map[string]interface{}{
		"requirements": map[string]interface{}{
			"component_type": "button",
			"props":          []interface{}{"variant", "size"},
			"variants":       []interface{}{"primary", "ghost"},
			"a11y":           []interface{}{"aria-label"},
		},
	}))
	require.NoError(t, err)

	payload := resultJSON(t, result)
	patterns, ok := payload["patterns"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, patterns)

	top, ok := patterns[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "shadcn-button", top["pattern_id"])
	assert.Equal(t, "Button", top["name"])
	assert.NotEmpty(t, top["explanation"])
	assert.NotNil(t, top["ranking_details"])

	assert.Equal(t, false, payload["degraded"])
	assert.NotNil(t, payload["retrieval_metadata"])
}

func TestHandleSearchPatterns_EmptyRequirements(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSearchPatterns(context.Background(), toolRequest("search_patterns", map[string]interface{}{
		"requirements": map[string]interface{}{},
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeEmptyRequirement, mcpErr.Code)
}

func TestHandleSearchPatterns_MissingRequirements(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSearchPatterns(context.Background(), toolRequest("search_patterns", map[string]interface{}{}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleSearchPatterns_TopKOutOfRange(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSearchPatterns(context.Background(), toolRequest("search_patterns", map[string]interface{}{
		"requirements": map[string]interface{}{"component_type": "button"},
		"top_k":        float64(50),
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleListPatterns(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleListPatterns(context.Background(), toolRequest("list_patterns", nil))
	require.NoError(t, err)

	payload := resultJSON(t, result)
	assert.Equal(t, float64(2), payload["total"])

	// Category filter is case-insensitive
	result, err = s.handleListPatterns(context.Background(), toolRequest("list_patterns", map[string]interface{}{
		"category": "FORM",
	}))
	require.NoError(t, err)

	payload = resultJSON(t, result)
	assert.Equal(t, float64(1), payload["total"])
}

func TestHandleReindexCatalog(t *testing.T) {
	s := newTestServer(t)

	newDir := t.TempDir()
	writeFixture(t, newDir, "card.json", `{"id": "shadcn-card", "name": "Card", "category": "layout"}`)
	writeFixture(t, newDir, "broken.json", `{broken`)

	result, err := s.handleReindexCatalog(context.Background(), toolRequest("reindex_catalog", map[string]interface{}{
		"catalog_dir": newDir,
	}))
	require.NoError(t, err)

	payload := resultJSON(t, result)
	assert.Equal(t, true, payload["indexed"])
	assert.Equal(t, float64(2), payload["files_scanned"])
	assert.Equal(t, float64(1), payload["patterns_loaded"])
	assert.Equal(t, float64(1), payload["patterns_skipped"])
	assert.NotEmpty(t, payload["skip_reasons"])

	// The engine now serves the new catalog
	assert.Equal(t, 1, s.engine.Store().Len())
	assert.Equal(t, newDir, s.catalogDir)
}

func TestHandleReindexCatalog_MissingDir(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleReindexCatalog(context.Background(), toolRequest("reindex_catalog", map[string]interface{}{
		"catalog_dir": filepath.Join(t.TempDir(), "nope"),
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeCatalogNotFound, mcpErr.Code)
}

func TestHandleGetCatalogStatus(t *testing.T) {
	s := newTestServer(t)

	result, err := s.handleGetCatalogStatus(context.Background(), toolRequest("get_catalog_status", nil))
	require.NoError(t, err)

	payload := resultJSON(t, result)
	assert.Equal(t, true, payload["indexed"])
	assert.Equal(t, float64(2), payload["corpus_size"])
	assert.Equal(t, float64(2), payload["embedded"])
	assert.Equal(t, false, payload["degraded"])
	assert.NotEmpty(t, payload["built_at"])

	embedding, ok := payload["embedding"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "local", embedding["provider"])
}

func TestParameterHelpers(t *testing.T) {
	args := map[string]interface{}{
		"flag":  true,
		"count": float64(7),
		"name":  "button",
		"list":  []interface{}{"a", 1, "b"},
	}

	assert.True(t, getBoolDefault(args, "flag", false))
	assert.False(t, getBoolDefault(args, "absent", false))
	assert.Equal(t, 7, getIntDefault(args, "count", 0))
	assert.Equal(t, 3, getIntDefault(args, "absent", 3))
	assert.Equal(t, "button", getStringDefault(args, "name", ""))
	assert.Equal(t, "x", getStringDefault(args, "absent", "x"))
	assert.Equal(t, []string{"a", "b"}, getStringList(args, "list"))
	assert.Nil(t, getStringList(args, "absent"))
}

func TestMCPError_Error(t *testing.T) {
	err := newMCPError(ErrorCodeNotIndexed, "no catalog indexed", nil)
	assert.Contains(t, err.Error(), "-32002")
	assert.Contains(t, err.Error(), "no catalog indexed")
}
