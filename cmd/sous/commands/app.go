// ABOUTME: Shared wiring for CLI commands: config, storage, OpenAI client
// ABOUTME: Builds the retriever and agent from one configuration
package commands

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/harper/sous/internal/agent"
	"github.com/harper/sous/internal/config"
	"github.com/harper/sous/internal/llm"
	"github.com/harper/sous/internal/metrics"
	"github.com/harper/sous/internal/retriever"
	"github.com/harper/sous/internal/storage/sqlite"
)

// app bundles what a command needs. client is nil when no API key is set.
type app struct {
	cfg    *config.Config
	store  *sqlite.Storage
	client *llm.OpenAIClient
	logger *slog.Logger
}

// openApp loads configuration and opens storage. With requireLLM the
// command fails fast when no OpenAI client can be built.
func openApp(requireLLM bool) (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger()

	var store *sqlite.Storage
	if cfg.DBPath != "" {
		store, err = sqlite.NewStorageWithPath(cfg.DBPath)
	} else {
		store, err = sqlite.NewStorage()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	store.SetLogger(logger)
	store.SetVectorDimension(cfg.VectorDimension)

	a := &app{cfg: cfg, store: store, logger: logger}

	if cfg.OpenAIKey == "" {
		if requireLLM {
			_ = store.Close()
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		if verbose {
			log.Println("Warning: OPENAI_API_KEY not set - recipes will not be indexed")
		}
		return a, nil
	}

	client, err := llm.NewOpenAIClientWithConfig(llm.ConfigFrom(cfg))
	if err != nil {
		if requireLLM {
			_ = store.Close()
			return nil, fmt.Errorf("initializing OpenAI client: %w", err)
		}
		log.Printf("Warning: Could not initialize OpenAI client: %v", err)
		return a, nil
	}
	a.client = client

	return a, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) retriever(m *metrics.Recorder) *retriever.Retriever {
	return retriever.New(a.client, a.store,
		retriever.WithLogger(a.logger),
		retriever.WithMetrics(m))
}

func (a *app) agent(m *metrics.Recorder) *agent.Agent {
	tools := agent.NewToolExecutor(a.retriever(m), agent.ExecutorOptions{
		SearchLimit:   a.cfg.ToolSearchLimit,
		MinSimilarity: a.cfg.ToolMinSimilarity,
		Logger:        a.logger,
		Metrics:       m,
	})
	return agent.New(a.client, tools, agent.Options{
		MaxIterations:     a.cfg.MaxIterations,
		ParallelToolCalls: a.cfg.ParallelToolCalls,
		Logger:            a.logger,
		Metrics:           m,
	})
}

// newLogger returns a stderr logger whose level follows --verbose/--quiet
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
