// ABOUTME: Tool registry and executor for model-issued tool calls
// ABOUTME: Failures become short {"error": code} observations so the loop can continue
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/harper/sous/internal/llm"
	"github.com/harper/sous/internal/metrics"
	"github.com/harper/sous/internal/models"
	"github.com/harper/sous/internal/retriever"
	"github.com/harper/sous/internal/vecmath"
)

// SearchRecipesTool is the name the model uses to search the corpus
const SearchRecipesTool = "search_recipes"

// Observation codes returned to the model
const (
	StatusSuccess            = "success"
	CodeMalformedArguments   = "malformed_arguments"
	CodeEmbeddingUnavailable = "embedding_unavailable"
	CodeEmbeddingQuota       = "embedding_quota_exceeded"
	CodeDimensionMismatch    = "dimension_mismatch"
	CodeSearchFailed         = "search_failed"
	CodeUnknownFunction      = "unknown_function"
)

// ErrMalformedToolArguments is returned when tool arguments fail to parse or validate
var ErrMalformedToolArguments = errors.New("malformed tool arguments")

// RecipeSearcher is the retrieval dependency of the executor
type RecipeSearcher interface {
	SearchByQuery(ctx context.Context, query string, limit int, minSimilarity float64, excludeIDs []string) ([]retriever.Result, error)
}

// SearchRecipesArgs are the validated arguments of a search_recipes call
type SearchRecipesArgs struct {
	Query            string   `json:"query"`
	Ingredients      []string `json:"ingredients,omitempty"`
	ExcludeRecipeIDs []string `json:"exclude_recipe_ids,omitempty"`
}

// ParseSearchRecipesArgs decodes and validates raw JSON arguments.
// A query is required; blank list entries are dropped.
func ParseSearchRecipesArgs(raw string) (SearchRecipesArgs, error) {
	var args SearchRecipesArgs
	if strings.TrimSpace(raw) == "" {
		return args, fmt.Errorf("%w: empty arguments", ErrMalformedToolArguments)
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return SearchRecipesArgs{}, fmt.Errorf("%w: %v", ErrMalformedToolArguments, err)
	}

	args.Query = strings.TrimSpace(args.Query)
	if args.Query == "" {
		return SearchRecipesArgs{}, fmt.Errorf("%w: query is required", ErrMalformedToolArguments)
	}
	args.Ingredients = compact(args.Ingredients)
	args.ExcludeRecipeIDs = compact(args.ExcludeRecipeIDs)
	return args, nil
}

// SearchText is the text embedded for the search
func (a SearchRecipesArgs) SearchText() string {
	if len(a.Ingredients) == 0 {
		return a.Query
	}
	return a.Query + ". Ingredients: " + strings.Join(a.Ingredients, ", ")
}

// ToolOutcome is the result of one tool call
type ToolOutcome struct {
	Status  string
	Content string
	Recipes []models.Recipe
}

// ToolHandler executes a call. requestExcludeIDs are the ids the caller already showed the user.
type ToolHandler func(ctx context.Context, arguments string, requestExcludeIDs []string) ToolOutcome

// Tool pairs a declaration with its handler
type Tool struct {
	Definition models.ToolDefinition
	Handler    ToolHandler
}

// Registry holds the declared tools in registration order
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds or replaces a tool
func (r *Registry) Register(tool Tool) {
	name := tool.Definition.Name
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Lookup returns the tool registered under name
func (r *Registry) Lookup(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// Definitions returns the declarations sent to the model
func (r *Registry) Definitions() []models.ToolDefinition {
	defs := make([]models.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition)
	}
	return defs
}

// ExecutorOptions tune the search_recipes tool
type ExecutorOptions struct {
	SearchLimit   int
	MinSimilarity float64
	Logger        *slog.Logger
	Metrics       *metrics.Recorder
}

// ToolExecutor dispatches tool calls and contains their failures
type ToolExecutor struct {
	registry      *Registry
	searcher      RecipeSearcher
	searchLimit   int
	minSimilarity float64
	logger        *slog.Logger
	metrics       *metrics.Recorder
}

// NewToolExecutor creates an executor with search_recipes registered
func NewToolExecutor(searcher RecipeSearcher, opts ExecutorOptions) *ToolExecutor {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 5
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	e := &ToolExecutor{
		registry:      NewRegistry(),
		searcher:      searcher,
		searchLimit:   opts.SearchLimit,
		minSimilarity: opts.MinSimilarity,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
	}
	e.registry.Register(Tool{Definition: searchRecipesDefinition(), Handler: e.searchRecipes})
	return e
}

// Definitions returns the tool declarations for the model
func (e *ToolExecutor) Definitions() []models.ToolDefinition {
	return e.registry.Definitions()
}

// Execute runs one call and always produces an observation
func (e *ToolExecutor) Execute(ctx context.Context, call models.ToolCall, requestExcludeIDs []string) ToolOutcome {
	ctx, span := otel.Tracer("sous/agent").Start(ctx, "tool."+call.Name)
	defer span.End()
	span.SetAttributes(
		attribute.String("tool.name", call.Name),
		attribute.String("tool.call_id", call.ID),
	)

	var outcome ToolOutcome
	tool, ok := e.registry.Lookup(call.Name)
	if !ok {
		e.logger.Warn("model called unknown tool", "tool", call.Name, "call_id", call.ID)
		outcome = errorOutcome(CodeUnknownFunction)
	} else {
		outcome = tool.Handler(ctx, call.Arguments, requestExcludeIDs)
	}

	if outcome.Status != StatusSuccess {
		span.SetStatus(codes.Error, outcome.Status)
	}
	span.SetAttributes(
		attribute.String("tool.status", outcome.Status),
		attribute.Int("tool.recipes", len(outcome.Recipes)),
	)
	e.metrics.ObserveToolCall(call.Name, outcome.Status)
	return outcome
}

type searchObservation struct {
	Status  string                    `json:"status"`
	Count   int                       `json:"count"`
	Recipes []retriever.CompactRecipe `json:"recipes"`
}

func (e *ToolExecutor) searchRecipes(ctx context.Context, arguments string, requestExcludeIDs []string) ToolOutcome {
	args, err := ParseSearchRecipesArgs(arguments)
	if err != nil {
		e.logger.Warn("rejected search_recipes arguments", "error", err)
		return errorOutcome(CodeMalformedArguments)
	}

	exclude := mergeIDs(args.ExcludeRecipeIDs, requestExcludeIDs)
	results, err := e.searcher.SearchByQuery(ctx, args.SearchText(), e.searchLimit, e.minSimilarity, exclude)
	if err != nil {
		code := observationCode(err)
		e.logger.Warn("recipe search failed", "code", code, "error", err)
		return errorOutcome(code)
	}

	recipes := make([]models.Recipe, 0, len(results))
	for _, res := range results {
		recipes = append(recipes, res.Payload)
	}

	body, err := json.Marshal(searchObservation{
		Status:  StatusSuccess,
		Count:   len(results),
		Recipes: retriever.FormatForModel(results),
	})
	if err != nil {
		return errorOutcome(CodeSearchFailed)
	}

	return ToolOutcome{Status: StatusSuccess, Content: string(body), Recipes: recipes}
}

func observationCode(err error) string {
	switch {
	case errors.Is(err, llm.ErrEmbeddingQuotaExceeded):
		return CodeEmbeddingQuota
	case errors.Is(err, llm.ErrEmbeddingUnavailable):
		return CodeEmbeddingUnavailable
	case errors.Is(err, vecmath.ErrDimensionMismatch):
		return CodeDimensionMismatch
	case errors.Is(err, retriever.ErrEmptyQuery):
		return CodeMalformedArguments
	}
	return CodeSearchFailed
}

func errorOutcome(code string) ToolOutcome {
	body, _ := json.Marshal(map[string]string{"error": code})
	return ToolOutcome{Status: code, Content: string(body)}
}

func searchRecipesDefinition() models.ToolDefinition {
	return models.ToolDefinition{
		Name:        SearchRecipesTool,
		Description: "Search the recipe collection by meaning. Returns up to a handful of matching recipes with id, title, description and main ingredients.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "What the user wants to eat: dish, cuisine, mood or occasion",
				},
				"ingredients": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Ingredients the user has or wants to use",
				},
				"exclude_recipe_ids": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Recipe ids already shown to the user",
				},
			},
			"required": []string{"query"},
		},
	}
}

// mergeIDs unions id lists, keeping first-seen order
func mergeIDs(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, id := range list {
			id = strings.TrimSpace(id)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func compact(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
