// Package mcp exposes the pattern retrieval engine over the Model
// Context Protocol on stdio.
//
// # Tools
//
// search_patterns ranks the catalog against structured requirements:
//
//	{
//	  "requirements": {
//	    "component_type": "Button",
//	    "props": ["variant", "size"],
//	    "variants": ["primary", "secondary", "ghost"],
//	    "a11y": ["aria-label"]
//	  },
//	  "top_k": 3
//	}
//
// The response carries, per pattern, the confidence, explanation, match
// highlights, and full ranking details (raw and fused scores and ranks),
// plus the pattern record itself for downstream code generation.
//
// list_patterns enumerates the corpus, optionally filtered by category.
//
// reindex_catalog reloads the catalog directory and atomically swaps in
// freshly built lexical and semantic indices; in-flight searches finish
// against the previous snapshot.
//
// get_catalog_status reports corpus size, embedding coverage, the active
// embedding provider, and whether retrieval is running degraded
// (lexical-only).
//
// # Errors
//
// Tool failures use JSON-RPC error codes: -32602 invalid params, -32001
// empty requirements, -32002 not indexed, -32003 catalog directory not
// found, -32603 internal. Semantic-branch degradation is never an error;
// it surfaces as "degraded": true on search responses.
package mcp
