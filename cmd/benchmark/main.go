// ABOUTME: Command-line runner for the recall benchmarks
// ABOUTME: Plays scenarios against the live OpenAI models and writes JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/harper/sous/benchmarks/recall"
	"github.com/harper/sous/internal/config"
	"github.com/harper/sous/internal/llm"
)

func main() {
	scenarioID := flag.String("scenario", "", "Run one scenario (curry, follow-up, protein, small-talk). If empty, runs all.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (continuing anyway): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.OpenAIKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required for benchmarks")
	}

	client, err := llm.NewOpenAIClientWithConfig(llm.ConfigFrom(cfg))
	if err != nil {
		log.Fatalf("Failed to create OpenAI client: %v", err)
	}

	fmt.Println("========================================")
	fmt.Println("sous Recall Benchmarks")
	fmt.Println("========================================")

	scenarios := recall.GetAllScenarios()
	if *scenarioID != "" {
		scenario, ok := recall.GetScenario(*scenarioID)
		if !ok {
			log.Fatalf("Unknown scenario: %s (valid options: curry, follow-up, protein, small-talk)", *scenarioID)
		}
		scenarios = []recall.Scenario{scenario}
	}

	runner := recall.NewBenchmarkRunner(client, cfg, os.Stdout, *verbose)
	results, err := runner.RunAll(context.Background(), scenarios)
	if err != nil {
		log.Fatalf("Benchmark failed: %v", err)
	}

	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")

	failed := 0
	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.ScenarioID, result.ScenarioName)
		fmt.Printf("  Recall:       %.2f\n", result.RecallScore)
		fmt.Printf("  No-repeat:    %.2f\n", result.NoRepeatScore)
		fmt.Printf("  Faithfulness: %.2f\n", result.Faithfulness)
		fmt.Printf("  Intent:       %v\n", result.IntentMatched)
		fmt.Printf("  Status:       %s\n", result.Status)
		if result.ErrorMessage != "" {
			fmt.Printf("  Error:        %s\n", result.ErrorMessage)
		}
		if result.Status != "PASS" {
			failed++
		}
	}

	fmt.Println("\n========================================")
	fmt.Printf("Total: %d  Passed: %d  Failed: %d\n", len(results), len(results)-failed, failed)
	fmt.Println("========================================")

	if err := recall.ExportResults(results, *outputPath); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}
	fmt.Printf("✓ Results exported to: %s\n", *outputPath)

	if failed > 0 {
		os.Exit(1)
	}
}
