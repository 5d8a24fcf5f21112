package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchPatternsTool returns the tool definition for search_patterns
func searchPatternsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_patterns",
		Description: "Rank the component pattern catalog against structured requirements and return explained top matches",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"requirements": map[string]interface{}{
					"type":        "object",
					"description": "Structured component requirements; at least one field must be non-empty",
					"properties": map[string]interface{}{
						"component_type": map[string]interface{}{
							"type":        "string",
							"description": "Component classification (e.g. Button, Card, Input)",
						},
						"props": map[string]interface{}{
							"type":        "array",
							"description": "Requested prop names",
							"items":       map[string]interface{}{"type": "string"},
						},
						"variants": map[string]interface{}{
							"type":        "array",
							"description": "Requested visual variant names",
							"items":       map[string]interface{}{"type": "string"},
						},
						"events": map[string]interface{}{
							"type":        "array",
							"description": "Requested event handler names",
							"items":       map[string]interface{}{"type": "string"},
						},
						"states": map[string]interface{}{
							"type":        "array",
							"description": "Requested interaction states",
							"items":       map[string]interface{}{"type": "string"},
						},
						"a11y": map[string]interface{}{
							"type":        "array",
							"description": "Requested accessibility features",
							"items":       map[string]interface{}{"type": "string"},
						},
					},
				},
				"top_k": map[string]interface{}{
					"type":        "integer",
					"description": "Number of patterns to return (1-20)",
					"default":     3,
					"minimum":     1,
					"maximum":     20,
				},
				"use_cache": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, serve identical queries from the result cache",
					"default":     true,
				},
			},
			Required: []string{"requirements"},
		},
	}
}

// listPatternsTool returns the tool definition for list_patterns
func listPatternsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_patterns",
		Description: "List the indexed component patterns with their categories and metadata summaries",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Optional category filter (e.g. form, layout, feedback)",
				},
			},
		},
	}
}

// reindexCatalogTool returns the tool definition for reindex_catalog
func reindexCatalogTool() mcp.Tool {
	return mcp.Tool{
		Name:        "reindex_catalog",
		Description: "Reload the pattern catalog from disk and atomically rebuild both retrieval indices",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"catalog_dir": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the catalog directory; defaults to the currently configured one",
				},
			},
		},
	}
}

// getCatalogStatusTool returns the tool definition for get_catalog_status
func getCatalogStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_catalog_status",
		Description: "Report index state: corpus size, embedding coverage, provider, and degraded mode",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
