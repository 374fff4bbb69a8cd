// ABOUTME: MCP command starts the Model Context Protocol server
// ABOUTME: Lets LLM agents like Claude search recipes and ask sous via stdio
package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/harper/sous/internal/mcp"
	"github.com/harper/sous/internal/metrics"
)

var (
	mcpMetricsAddr string
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs sous as an MCP (Model Context Protocol) server, enabling LLM
agents like Claude to search recipes, ask the assistant, and manage
user profiles via stdio.

Configure in Claude Desktop's config file to enable the recipe tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  sous mcp

  # Also expose Prometheus metrics
  sous mcp --metrics-addr 127.0.0.1:9464

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "sous": {
  #       "command": "sous",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	cmd.Flags().StringVar(&mcpMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}

	if a.client == nil {
		log.Println("Warning: OPENAI_API_KEY not set - search_recipes and ask_sous will not work")
	}

	reg := prometheus.NewRegistry()
	recorder := metrics.New(reg)

	deps := mcp.Deps{Recipes: a.store, Profiles: a.store.Profiles()}
	if a.client != nil {
		deps.Searcher = a.retriever(recorder)
		deps.Agent = a.agent(recorder)
	}

	handlers := mcp.NewHandlers(deps, mcp.Options{
		SearchLimit:         a.cfg.SearchLimit,
		SearchMinSimilarity: a.cfg.SearchMinSimilarity,
	})

	server := mcpserver.NewMCPServer("sous", versionInfo.Version)
	mcp.RegisterTools(server, handlers)

	var metricsServer *http.Server
	if mcpMetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:              mcpMetricsAddr,
			Handler:           metrics.Handler(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Warning: metrics server stopped: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("sous MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}
		handlers.Shutdown()
	case err = <-serverErr:
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsServer.Shutdown(shutdownCtx)
		cancel()
	}

	if closeErr := a.Close(); closeErr != nil {
		log.Printf("Warning: Error closing storage: %v", closeErr)
	}

	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	if !quiet {
		log.Println("Shutdown complete")
	}
	return nil
}
