// ABOUTME: MCP tool handler implementations for the sous server
// ABOUTME: Handlers return JSON text results or tool errors, never Go errors
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/sous/internal/models"
	"github.com/harper/sous/internal/retriever"
)

// DefaultUserID is used when a tool call does not name a user
const DefaultUserID = "local"

// Searcher runs direct semantic search
type Searcher interface {
	SearchByQuery(ctx context.Context, query string, limit int, minSimilarity float64, excludeIDs []string) ([]retriever.Result, error)
}

// Asker runs one agent turn
type Asker interface {
	Process(ctx context.Context, req models.AgentRequest) (*models.AgentResponse, error)
}

// RecipeGetter looks up a single recipe
type RecipeGetter interface {
	GetRecipe(ctx context.Context, id string) (*models.Recipe, error)
}

// ProfileRepository loads and saves user profiles
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	Save(ctx context.Context, profile *models.UserProfile) error
}

// Deps are the collaborators behind the tools. Searcher and Agent may be nil
// when no OpenAI key is configured; their tools then report an error.
type Deps struct {
	Searcher Searcher
	Agent    Asker
	Recipes  RecipeGetter
	Profiles ProfileRepository
}

// Options tune direct search
type Options struct {
	SearchLimit         int
	SearchMinSimilarity float64
}

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	deps       Deps
	opts       Options
	shutdownWg *sync.WaitGroup // in-flight agent turns
}

// NewHandlers creates handlers over deps
func NewHandlers(deps Deps, opts Options) *Handlers {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 3
	}
	return &Handlers{deps: deps, opts: opts, shutdownWg: &sync.WaitGroup{}}
}

// SearchRecipes handles the search_recipes tool
func (h *Handlers) SearchRecipes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	if h.deps.Searcher == nil {
		return mcp.NewToolResultError("search is unavailable: OPENAI_API_KEY not set"), nil
	}

	limit := request.GetInt("limit", h.opts.SearchLimit)
	if limit <= 0 {
		limit = h.opts.SearchLimit
	}

	results, err := h.deps.Searcher.SearchByQuery(ctx, query, limit, h.opts.SearchMinSimilarity, stringSliceArg(request, "exclude_ids"))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recipe search failed: %v", err)), nil
	}

	profile, err := h.loadProfile(ctx, request)
	if err != nil {
		log.Printf("Warning: could not load profile for search rationale: %v", err)
	}

	return jsonResult(retriever.FormatForUI(results, profile))
}

// AskSous handles the ask_sous tool
func (h *Handlers) AskSous(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("message argument is required and must be a string"), nil
	}
	if h.deps.Agent == nil {
		return mcp.NewToolResultError("assistant is unavailable: OPENAI_API_KEY not set"), nil
	}

	h.shutdownWg.Add(1)
	defer h.shutdownWg.Done()

	profile, err := h.loadProfile(ctx, request)
	if err != nil {
		log.Printf("Warning: could not load profile, answering without personalization: %v", err)
	}

	resp, err := h.deps.Agent.Process(ctx, models.AgentRequest{
		Message:     message,
		ExcludeIDs:  stringSliceArg(request, "exclude_ids"),
		UserProfile: profile,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid request: %v", err)), nil
	}

	return jsonResult(resp)
}

// GetRecipe handles the get_recipe tool
func (h *Handlers) GetRecipe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required and must be a string"), nil
	}

	recipe, err := h.deps.Recipes.GetRecipe(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get recipe: %v", err)), nil
	}
	if recipe == nil {
		return mcp.NewToolResultError(fmt.Sprintf("recipe %s not found", id)), nil
	}

	return jsonResult(map[string]interface{}{"recipe": recipe})
}

// GetUserProfile handles the get_user_profile tool
func (h *Handlers) GetUserProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profile, err := h.loadProfile(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load profile: %v", err)), nil
	}
	if profile == nil {
		profile = emptyProfile(userIDArg(request))
	}

	return jsonResult(map[string]interface{}{"profile": profileView(profile)})
}

// UpdateUserProfile handles the update_user_profile tool
func (h *Handlers) UpdateUserProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profile, err := h.loadProfile(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load profile: %v", err)), nil
	}
	if profile == nil {
		profile = emptyProfile(userIDArg(request))
	}

	updateInfo := make(map[string]interface{})
	if args, ok := request.Params.Arguments.(map[string]any); ok {
		for _, key := range []string{"name", "subscription_type", "daily_calories", "protein_target",
			"fitness_goal", "dietary_preferences", "allergies"} {
			if val, exists := args[key]; exists {
				updateInfo[key] = val
			}
		}
	}

	profile.Merge(updateInfo)

	if err := h.deps.Profiles.Save(ctx, profile); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save profile: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"success": true,
		"profile": profileView(profile),
	})
}

// Shutdown waits for in-flight agent turns to finish
func (h *Handlers) Shutdown() {
	log.Println("Waiting for in-flight requests to complete...")
	h.shutdownWg.Wait()
	log.Println("All requests completed")
}

func (h *Handlers) loadProfile(ctx context.Context, request mcp.CallToolRequest) (*models.UserProfile, error) {
	if h.deps.Profiles == nil {
		return nil, nil
	}
	return h.deps.Profiles.Get(ctx, userIDArg(request))
}

func userIDArg(request mcp.CallToolRequest) string {
	if id := request.GetString("user_id", ""); id != "" {
		return id
	}
	return DefaultUserID
}

func emptyProfile(userID string) *models.UserProfile {
	return &models.UserProfile{
		UserID:             userID,
		SubscriptionType:   models.SubscriptionFree,
		DietaryPreferences: []string{},
		Allergies:          []string{},
		LastUpdated:        time.Now(),
	}
}

func profileView(profile *models.UserProfile) map[string]interface{} {
	return map[string]interface{}{
		"user_id":             profile.UserID,
		"name":                profile.Name,
		"subscription_type":   profile.SubscriptionType,
		"daily_calories":      profile.DailyCalories,
		"protein_target":      profile.ProteinTarget,
		"fitness_goal":        profile.FitnessGoal,
		"dietary_preferences": nonNil(profile.DietaryPreferences),
		"allergies":           nonNil(profile.Allergies),
		"last_updated":        profile.LastUpdated.Format(time.RFC3339),
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// stringSliceArg extracts a string array argument, ignoring non-string items
func stringSliceArg(request mcp.CallToolRequest, key string) []string {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil
	}
	arr, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, 0, len(arr))
	for _, item := range arr {
		if str, ok := item.(string); ok {
			result = append(result, str)
		}
	}
	return result
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
