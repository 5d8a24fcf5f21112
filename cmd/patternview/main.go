package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dshills/patternview/internal/config"
	"github.com/dshills/patternview/internal/embedder"
	"github.com/dshills/patternview/internal/mcp"
	"github.com/dshills/patternview/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("PatternView MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		fmt.Printf("Embedding Provider: %s\n", embedder.DetectProvider())
		os.Exit(0)
	}

	// Log startup info to stderr (stdout reserved for MCP protocol)
	log.SetOutput(os.Stderr)

	// Optional .env for API keys and paths
	_ = godotenv.Load()

	log.Printf("PatternView MCP Server v%s starting...", version)
	log.Printf("Build Mode: %s, Driver: %s, Embedding Provider: %s",
		storage.BuildMode, storage.DriverName, embedder.DetectProvider())

	catalogDir := os.Getenv("PATTERNVIEW_CATALOG_DIR")
	if catalogDir == "" {
		log.Fatal("PATTERNVIEW_CATALOG_DIR must point to the pattern catalog directory")
	}

	cfg, err := config.Load(os.Getenv("PATTERNVIEW_CONFIG"))
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	dbPath := os.Getenv("PATTERNVIEW_DB_PATH")

	server, err := mcp.NewServer(catalogDir, dbPath, cfg)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Println("MCP server ready, listening on stdio...")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}

	log.Println("Server stopped")
}
