package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/patternview/internal/catalog"
	"github.com/dshills/patternview/internal/config"
	"github.com/dshills/patternview/internal/embedder"
	"github.com/dshills/patternview/internal/engine"
	"github.com/dshills/patternview/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "patternview"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the embedding cache
	DefaultDBPath = "~/.patternview"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp        *server.MCPServer
	engine     *engine.Engine
	store      storage.Store
	catalogDir string
}

// NewServer creates an MCP server around a freshly built retrieval
// engine. catalogDir is indexed immediately; dbPath holds the persistent
// embedding cache.
func NewServer(catalogDir, dbPath string, cfg config.Config) (*Server, error) {
	if catalogDir == "" {
		return nil, fmt.Errorf("catalog directory is required")
	}

	if dbPath == "" || dbPath == DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".patternview")
	}
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStore(filepath.Join(dbPath, "embeddings.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding cache: %w", err)
	}

	emb, err := embedder.NewFromEnv()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	eng, err := engine.New(cfg, emb, store)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	s := &Server{
		mcp:        server.NewMCPServer(ServerName, ServerVersion),
		engine:     eng,
		store:      store,
		catalogDir: catalogDir,
	}

	// Initial index build
	if _, err := s.reindex(context.Background(), catalogDir); err != nil {
		_ = store.Close()
		return nil, err
	}

	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchPatternsTool(), s.handleSearchPatterns)
	s.mcp.AddTool(listPatternsTool(), s.handleListPatterns)
	s.mcp.AddTool(reindexCatalogTool(), s.handleReindexCatalog)
	s.mcp.AddTool(getCatalogStatusTool(), s.handleGetCatalogStatus)
}

// reindex loads the catalog directory and atomically publishes the new
// indices
func (s *Server) reindex(ctx context.Context, dir string) (*catalog.LoadStats, error) {
	store, stats, err := catalog.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if err := s.engine.Rebuild(ctx, store); err != nil {
		return nil, fmt.Errorf("failed to rebuild indices: %w", err)
	}
	s.catalogDir = dir
	return stats, nil
}
