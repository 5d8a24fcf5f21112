package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/patternview/internal/engine"
	"github.com/dshills/patternview/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams    = -32602 // Invalid method parameters
	ErrorCodeInternalError    = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyRequirement = -32001 // Requirements object populated no field
	ErrorCodeNotIndexed       = -32002 // No catalog indexed yet
	ErrorCodeCatalogNotFound  = -32003 // Catalog directory missing or unreadable
)

// handleSearchPatterns handles the search_patterns tool invocation
func (s *Server) handleSearchPatterns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	reqObj, ok := args["requirements"].(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "requirements parameter is required", map[string]interface{}{
			"param":  "requirements",
			"reason": "missing or not an object",
		})
	}

	query := types.RequirementQuery{
		ComponentType: getStringDefault(reqObj, "component_type", ""),
		Props:         getStringList(reqObj, "props"),
		Variants:      getStringList(reqObj, "variants"),
		Events:        getStringList(reqObj, "events"),
		States:        getStringList(reqObj, "states"),
		A11y:          getStringList(reqObj, "a11y"),
	}

	topK := getIntDefault(args, "top_k", 0)
	if topK < 0 || topK > 20 {
		return nil, newMCPError(ErrorCodeInvalidParams, "top_k must be between 1 and 20", map[string]interface{}{
			"param": "top_k",
			"value": topK,
		})
	}
	useCache := getBoolDefault(args, "use_cache", true)

	resultSet, err := s.engine.Retrieve(ctx, query, engine.RetrieveOptions{
		TopK:     topK,
		UseCache: useCache,
	})
	if errors.Is(err, types.ErrEmptyQuery) {
		return nil, newMCPError(ErrorCodeEmptyRequirement, "requirements must populate at least one field", nil)
	}
	if errors.Is(err, engine.ErrNotIndexed) {
		return nil, newMCPError(ErrorCodeNotIndexed, "no catalog indexed; run reindex_catalog first", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "retrieval failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Join each result with the pattern record the caller will want to
	// present or generate from
	patterns := make([]map[string]interface{}, 0, len(resultSet.Results))
	for _, result := range resultSet.Results {
		entry := map[string]interface{}{
			"pattern_id":       result.PatternID,
			"confidence":       result.Confidence,
			"explanation":      result.Explanation,
			"match_highlights": result.MatchHighlights,
			"ranking_details": map[string]interface{}{
				"lexical_score":  result.LexicalScore,
				"lexical_rank":   result.LexicalRank,
				"semantic_score": result.SemanticScore,
				"semantic_rank":  result.SemanticRank,
				"final_score":    result.FinalScore,
				"final_rank":     result.FinalRank,
			},
		}
		if pattern, err := s.engine.Store().Get(result.PatternID); err == nil {
			entry["name"] = pattern.Name
			entry["category"] = pattern.Category
			entry["description"] = pattern.Description
			entry["framework"] = pattern.Framework
			entry["library"] = pattern.Library
			entry["code"] = pattern.Code
			entry["metadata"] = pattern.Metadata
		}
		patterns = append(patterns, entry)
	}

	response := map[string]interface{}{
		"patterns":           patterns,
		"degraded":           resultSet.Degraded,
		"retrieval_metadata": resultSet.Metadata,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListPatterns handles the list_patterns tool invocation
func (s *Server) handleListPatterns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	category := ""
	if args != nil {
		category = getStringDefault(args, "category", "")
	}

	store := s.engine.Store()
	if store == nil {
		return nil, newMCPError(ErrorCodeNotIndexed, "no catalog indexed; run reindex_catalog first", nil)
	}

	listed := make([]map[string]interface{}, 0, store.Len())
	for _, pattern := range store.Patterns() {
		if category != "" && !strings.EqualFold(pattern.Category, category) {
			continue
		}
		listed = append(listed, map[string]interface{}{
			"id":          pattern.ID,
			"name":        pattern.Name,
			"category":    pattern.Category,
			"description": pattern.Description,
			"props":       pattern.PropNames(),
			"variants":    pattern.Metadata.Variants,
			"a11y":        pattern.Metadata.A11y,
		})
	}

	response := map[string]interface{}{
		"patterns": listed,
		"total":    len(listed),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleReindexCatalog handles the reindex_catalog tool invocation
func (s *Server) handleReindexCatalog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	dir := s.catalogDir
	if args != nil {
		if override := getStringDefault(args, "catalog_dir", ""); override != "" {
			dir = override
		}
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, newMCPError(ErrorCodeCatalogNotFound, "catalog directory not found", map[string]interface{}{
			"catalog_dir": dir,
		})
	}

	stats, err := s.reindex(ctx, dir)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "reindex failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	status := s.engine.Status()
	response := map[string]interface{}{
		"indexed":          true,
		"catalog_dir":      dir,
		"files_scanned":    stats.FilesScanned,
		"patterns_loaded":  stats.PatternsLoaded,
		"patterns_skipped": stats.PatternsSkipped,
		"embedded":         status.Embedded,
		"degraded":         status.SemDegraded,
	}
	if len(stats.SkipReasons) > 0 {
		// Include first few skip reasons
		reasons := stats.SkipReasons
		if len(reasons) > 5 {
			response["skip_reasons"] = reasons[:5]
			response["skip_count"] = len(reasons)
		} else {
			response["skip_reasons"] = reasons
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetCatalogStatus handles the get_catalog_status tool invocation
func (s *Server) handleGetCatalogStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := s.engine.Status()

	response := map[string]interface{}{
		"indexed":     status.Indexed,
		"catalog_dir": s.catalogDir,
		"corpus_size": status.CorpusSize,
		"embedded":    status.Embedded,
		"degraded":    status.SemDegraded,
		"embedding": map[string]interface{}{
			"provider": status.Provider,
			"model":    status.Model,
		},
	}
	if status.Indexed {
		response["built_at"] = status.BuiltAt.Format("2006-01-02T15:04:05Z07:00")
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringList extracts a string array parameter, tolerating missing
// keys and non-string members
func getStringList(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	items := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			items = append(items, s)
		}
	}
	return items
}
