// ABOUTME: Tests for argument parsing and the tool executor
// ABOUTME: Failures must come back as error observations, never as Go errors
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/harper/sous/internal/llm"
	"github.com/harper/sous/internal/metrics"
	"github.com/harper/sous/internal/models"
	"github.com/harper/sous/internal/retriever"
	"github.com/harper/sous/internal/vecmath"
)

func TestParseSearchRecipesArgs(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		want    SearchRecipesArgs
	}{
		{
			name: "full",
			raw:  `{"query":" curry ","ingredients":["chickpeas"," ","spinach"],"exclude_recipe_ids":["r1"]}`,
			want: SearchRecipesArgs{Query: "curry", Ingredients: []string{"chickpeas", "spinach"}, ExcludeRecipeIDs: []string{"r1"}},
		},
		{name: "query only", raw: `{"query":"tacos"}`, want: SearchRecipesArgs{Query: "tacos"}},
		{name: "extra fields ignored", raw: `{"query":"tacos","mood":"hungry"}`, want: SearchRecipesArgs{Query: "tacos"}},
		{name: "empty", raw: "", wantErr: true},
		{name: "not json", raw: "tacos please", wantErr: true},
		{name: "missing query", raw: `{"ingredients":["eggs"]}`, wantErr: true},
		{name: "blank query", raw: `{"query":"   "}`, wantErr: true},
		{name: "wrong query type", raw: `{"query":42}`, wantErr: true},
		{name: "wrong list type", raw: `{"query":"x","ingredients":"eggs"}`, wantErr: true},
		{name: "array", raw: `["query"]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSearchRecipesArgs(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedToolArguments) {
					t.Errorf("error = %v, want ErrMalformedToolArguments", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error = %v", err)
			}
			if got.Query != tt.want.Query ||
				fmt.Sprint(got.Ingredients) != fmt.Sprint(tt.want.Ingredients) ||
				fmt.Sprint(got.ExcludeRecipeIDs) != fmt.Sprint(tt.want.ExcludeRecipeIDs) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSearchText(t *testing.T) {
	args := SearchRecipesArgs{Query: "stew", Ingredients: []string{"beef", "carrot"}}
	if got := args.SearchText(); got != "stew. Ingredients: beef, carrot" {
		t.Errorf("SearchText() = %q", got)
	}
	if got := (SearchRecipesArgs{Query: "stew"}).SearchText(); got != "stew" {
		t.Errorf("SearchText() = %q", got)
	}
}

func decodeObservation(t *testing.T, content string) map[string]any {
	t.Helper()
	var obs map[string]any
	if err := json.Unmarshal([]byte(content), &obs); err != nil {
		t.Fatalf("observation is not JSON: %v (%s)", err, content)
	}
	return obs
}

func TestExecuteSearchRecipes(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]retriever.Result{
		"soup": {result("r1", "Tomato Soup", 0.9), result("r2", "Pea Soup", 0.7)},
	}}
	exec := NewToolExecutor(searcher, ExecutorOptions{SearchLimit: 4, MinSimilarity: 0.3})

	outcome := exec.Execute(context.Background(),
		searchCallMsg("c1", `{"query":"soup","exclude_recipe_ids":["r9","r8"]}`),
		[]string{"r8", "r7"})

	if outcome.Status != StatusSuccess {
		t.Fatalf("Status = %q", outcome.Status)
	}
	if len(outcome.Recipes) != 2 || outcome.Recipes[0].ID != "r1" {
		t.Errorf("Recipes = %+v", outcome.Recipes)
	}

	obs := decodeObservation(t, outcome.Content)
	if obs["status"] != "success" || obs["count"] != float64(2) {
		t.Errorf("observation = %v", obs)
	}
	if recipes, ok := obs["recipes"].([]any); !ok || len(recipes) != 2 {
		t.Errorf("observation recipes = %v", obs["recipes"])
	}

	if len(searcher.calls) != 1 {
		t.Fatalf("search calls = %d", len(searcher.calls))
	}
	got := searcher.calls[0]
	if got.limit != 4 || got.min != 0.3 {
		t.Errorf("limit/min = %d/%v", got.limit, got.min)
	}
	if fmt.Sprint(got.excludeIDs) != "[r9 r8 r7]" {
		t.Errorf("excludeIDs = %v, want merged set [r9 r8 r7]", got.excludeIDs)
	}
}

func TestExecuteErrorObservations(t *testing.T) {
	tests := []struct {
		name      string
		call      models.ToolCall
		searchErr error
		wantCode  string
	}{
		{"malformed arguments", searchCallMsg("c1", `{"query":`), nil, CodeMalformedArguments},
		{"unknown tool", models.ToolCall{ID: "c1", Name: "order_pizza", Arguments: "{}"}, nil, CodeUnknownFunction},
		{"embedding unavailable", searchCallMsg("c1", `{"query":"x"}`), fmt.Errorf("embedding query: %w", llm.ErrEmbeddingUnavailable), CodeEmbeddingUnavailable},
		{"embedding quota", searchCallMsg("c1", `{"query":"x"}`), llm.ErrEmbeddingQuotaExceeded, CodeEmbeddingQuota},
		{"dimension mismatch", searchCallMsg("c1", `{"query":"x"}`), fmt.Errorf("scoring item r1: %w", vecmath.ErrDimensionMismatch), CodeDimensionMismatch},
		{"datastore", searchCallMsg("c1", `{"query":"x"}`), retriever.ErrSourceFailed, CodeSearchFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := NewToolExecutor(&fakeSearcher{err: tt.searchErr}, ExecutorOptions{})
			outcome := exec.Execute(context.Background(), tt.call, nil)

			if outcome.Status != tt.wantCode {
				t.Errorf("Status = %q, want %q", outcome.Status, tt.wantCode)
			}
			obs := decodeObservation(t, outcome.Content)
			if obs["error"] != tt.wantCode {
				t.Errorf("observation = %v, want error %q", obs, tt.wantCode)
			}
			if len(outcome.Recipes) != 0 {
				t.Errorf("failed call returned recipes: %v", outcome.Recipes)
			}
		})
	}
}

func TestExecuteRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)
	exec := NewToolExecutor(&fakeSearcher{}, ExecutorOptions{Metrics: rec})

	exec.Execute(context.Background(), searchCallMsg("c1", `{"query":"x"}`), nil)
	exec.Execute(context.Background(), searchCallMsg("c2", `nope`), nil)

	got, err := testutil.GatherAndCount(reg, "sous_tool_calls_total")
	if err != nil {
		t.Fatalf("GatherAndCount() error = %v", err)
	}
	if got != 2 {
		t.Errorf("tool call series = %d, want 2", got)
	}
}

func TestRegistryDefinitions(t *testing.T) {
	exec := NewToolExecutor(&fakeSearcher{}, ExecutorOptions{})
	defs := exec.Definitions()

	if len(defs) != 1 || defs[0].Name != SearchRecipesTool {
		t.Fatalf("Definitions() = %+v", defs)
	}
	props, ok := defs[0].Parameters["properties"].(map[string]any)
	if !ok {
		t.Fatal("parameters missing properties")
	}
	for _, key := range []string{"query", "ingredients", "exclude_recipe_ids"} {
		if _, ok := props[key]; !ok {
			t.Errorf("parameters missing %q", key)
		}
	}

	reg := NewRegistry()
	reg.Register(Tool{Definition: models.ToolDefinition{Name: "b"}})
	reg.Register(Tool{Definition: models.ToolDefinition{Name: "a"}})
	reg.Register(Tool{Definition: models.ToolDefinition{Name: "b", Description: "replaced"}})
	got := reg.Definitions()
	if len(got) != 2 || got[0].Name != "b" || got[0].Description != "replaced" || got[1].Name != "a" {
		t.Errorf("Definitions() order = %+v", got)
	}
	if _, ok := reg.Lookup("missing"); ok {
		t.Error("Lookup(missing) should fail")
	}
}
