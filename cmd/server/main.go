// ABOUTME: Main entry point for the sous MCP server with stdio transport
// ABOUTME: Initializes storage, the OpenAI client, retriever, and agent, then serves tools
package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/sous/internal/agent"
	"github.com/harper/sous/internal/config"
	"github.com/harper/sous/internal/llm"
	"github.com/harper/sous/internal/mcp"
	"github.com/harper/sous/internal/retriever"
	"github.com/harper/sous/internal/storage/sqlite"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// stdout carries the protocol, so structured logs go to stderr
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var store *sqlite.Storage
	if cfg.DBPath != "" {
		store, err = sqlite.NewStorageWithPath(cfg.DBPath)
	} else {
		store, err = sqlite.NewStorage()
	}
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()
	store.SetLogger(logger)
	store.SetVectorDimension(cfg.VectorDimension)

	deps := mcp.Deps{Recipes: store, Profiles: store.Profiles()}

	if cfg.OpenAIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set - search_recipes and ask_sous will not work")
	} else if client, err := llm.NewOpenAIClientWithConfig(llm.ConfigFrom(cfg)); err != nil {
		log.Printf("Warning: Failed to initialize OpenAI client: %v", err)
	} else {
		search := retriever.New(client, store, retriever.WithLogger(logger))
		tools := agent.NewToolExecutor(search, agent.ExecutorOptions{
			SearchLimit:   cfg.ToolSearchLimit,
			MinSimilarity: cfg.ToolMinSimilarity,
			Logger:        logger,
		})
		deps.Searcher = search
		deps.Agent = agent.New(client, tools, agent.Options{
			MaxIterations:     cfg.MaxIterations,
			ParallelToolCalls: cfg.ParallelToolCalls,
			Logger:            logger,
		})
	}

	server := mcpserver.NewMCPServer("sous", "0.1.0")

	handlers := mcp.NewHandlers(deps, mcp.Options{
		SearchLimit:         cfg.SearchLimit,
		SearchMinSimilarity: cfg.SearchMinSimilarity,
	})
	mcp.RegisterTools(server, handlers)

	log.Println("sous MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	handlers.Shutdown()
}
