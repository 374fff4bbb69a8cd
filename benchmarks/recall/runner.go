// ABOUTME: Benchmark runner - seeds an isolated corpus and plays scenarios through the agent
// ABOUTME: Carries history and shown recipe ids between turns the way a client would

package recall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/harper/sous/internal/agent"
	"github.com/harper/sous/internal/config"
	"github.com/harper/sous/internal/models"
	"github.com/harper/sous/internal/retriever"
	"github.com/harper/sous/internal/storage/sqlite"
)

// Model is the embedding and chat backend under test
type Model interface {
	retriever.Embedder
	agent.Completer
}

// BenchmarkRunner executes recall benchmark scenarios
type BenchmarkRunner struct {
	model   Model
	cfg     *config.Config
	scorer  *Scorer
	out     io.Writer
	verbose bool
}

// NewBenchmarkRunner creates a new benchmark runner
func NewBenchmarkRunner(model Model, cfg *config.Config, out io.Writer, verbose bool) *BenchmarkRunner {
	if out == nil {
		out = io.Discard
	}
	return &BenchmarkRunner{
		model:   model,
		cfg:     cfg,
		scorer:  NewScorer(),
		out:     out,
		verbose: verbose,
	}
}

// RunScenario executes a single scenario against a fresh in-memory corpus
func (r *BenchmarkRunner) RunScenario(ctx context.Context, scenario Scenario) (Result, error) {
	if r.verbose {
		fmt.Fprintf(r.out, "\n========================================\n")
		fmt.Fprintf(r.out, "RUNNING: %s\n", scenario.Name)
		fmt.Fprintf(r.out, "========================================\n")
		fmt.Fprintf(r.out, "Description: %s\n\n", scenario.Description)
	}

	store, err := sqlite.NewStorageInMemory()
	if err != nil {
		return Result{}, fmt.Errorf("failed to create test storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	logger := slog.New(slog.DiscardHandler)
	store.SetLogger(logger)

	if err := r.seed(ctx, store, scenario); err != nil {
		return Result{}, fmt.Errorf("setup failed: %w", err)
	}

	search := retriever.New(r.model, store, retriever.WithLogger(logger))
	tools := agent.NewToolExecutor(search, agent.ExecutorOptions{
		SearchLimit:   r.cfg.ToolSearchLimit,
		MinSimilarity: r.cfg.ToolMinSimilarity,
		Logger:        logger,
	})
	assistant := agent.New(r.model, tools, agent.Options{
		MaxIterations:     r.cfg.MaxIterations,
		ParallelToolCalls: r.cfg.ParallelToolCalls,
		Logger:            logger,
	})

	var (
		transcript Transcript
		history    []models.Message
		excludeIDs []string
	)

	for i, message := range scenario.Turns {
		if r.verbose {
			fmt.Fprintf(r.out, "[Turn %d] User: %s\n", i+1, message)
		}

		resp, err := assistant.Process(ctx, models.AgentRequest{
			Message:     message,
			History:     history,
			ExcludeIDs:  excludeIDs,
			UserProfile: scenario.Profile,
		})
		if err != nil {
			return Result{}, fmt.Errorf("turn %d failed: %w", i+1, err)
		}

		if r.verbose {
			fmt.Fprintf(r.out, "[Turn %d] Sous: %s\n", i+1, truncate(resp.FinalText, 150))
			for _, recipe := range resp.Recipes {
				fmt.Fprintf(r.out, "           • %s\n", recipe.Title)
			}
			fmt.Fprintln(r.out)
		}

		transcript.Responses = append(transcript.Responses, resp)

		if resp.TerminatedBy == models.TerminatedError {
			result := r.scorer.Evaluate(scenario, transcript)
			result.Status = "FAIL"
			result.ErrorMessage = fmt.Sprintf("turn %d ended with an assistant error", i+1)
			return result, nil
		}

		history = append(history,
			models.UserMessage(message),
			models.AssistantMessage(resp.FinalText))
		excludeIDs = append(excludeIDs, resp.SuggestedRecipeIDs...)
	}

	result := r.scorer.Evaluate(scenario, transcript)

	if r.verbose {
		fmt.Fprintf(r.out, "Recall: %.2f  No-repeat: %.2f  Faithfulness: %.2f  Intent: %v\n",
			result.RecallScore, result.NoRepeatScore, result.Faithfulness, result.IntentMatched)
		fmt.Fprintf(r.out, "Status: %s\n", result.Status)
	}

	return result, nil
}

// seed stores and embeds the scenario corpus and profile
func (r *BenchmarkRunner) seed(ctx context.Context, store *sqlite.Storage, scenario Scenario) error {
	corpus := scenario.Corpus
	if corpus == nil {
		corpus = DefaultCorpus()
	}

	for i := range corpus {
		recipe := corpus[i]
		if err := store.AddRecipe(ctx, &recipe); err != nil {
			return fmt.Errorf("adding %q: %w", recipe.Title, err)
		}
		if err := store.IndexRecipe(ctx, r.model, &recipe); err != nil {
			return fmt.Errorf("indexing %q: %w", recipe.Title, err)
		}
	}

	if scenario.Profile != nil {
		profile := *scenario.Profile
		if err := store.Profiles().Save(ctx, &profile); err != nil {
			return fmt.Errorf("failed to save user profile: %w", err)
		}
	}

	if r.verbose {
		fmt.Fprintf(r.out, "✓ Seeded %d recipes\n", len(corpus))
	}
	return nil
}

// RunAll executes every scenario in order
func (r *BenchmarkRunner) RunAll(ctx context.Context, scenarios []Scenario) ([]Result, error) {
	results := make([]Result, 0, len(scenarios))

	for _, scenario := range scenarios {
		result, err := r.RunScenario(ctx, scenario)
		if err != nil {
			return nil, fmt.Errorf("scenario %s failed: %w", scenario.ID, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// ExportResults writes a JSON summary of results
func ExportResults(results []Result, outputPath string) error {
	passed := 0
	for _, result := range results {
		if result.Status == "PASS" {
			passed++
		}
	}

	summary := map[string]interface{}{
		"timestamp":       time.Now().Format(time.RFC3339),
		"total_scenarios": len(results),
		"passed":          passed,
		"failed":          len(results) - passed,
		"results":         results,
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
