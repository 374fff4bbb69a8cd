// ABOUTME: MCP tool definitions and registration for the sous server
// ABOUTME: Exposes direct search, the agent, recipe lookup and profile tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Tool names
const (
	ToolSearchRecipes     = "search_recipes"
	ToolAskSous           = "ask_sous"
	ToolGetRecipe         = "get_recipe"
	ToolGetUserProfile    = "get_user_profile"
	ToolUpdateUserProfile = "update_user_profile"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, handlers *Handlers) {
	stringArray := func(description string) map[string]interface{} {
		return map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": description,
		}
	}
	userID := map[string]interface{}{
		"type":        "string",
		"description": "User whose profile personalizes the result (default: the configured local user)",
	}

	// 1. search_recipes - direct semantic search with the user's own words
	server.AddTool(mcp.Tool{
		Name:        ToolSearchRecipes,
		Description: "Search the recipe collection by meaning. Returns recipe cards with nutrition, timing and a similarity score.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "What to cook, e.g. 'quick high protein breakfast'",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of recipes to return (default: 3)",
					"default":     3,
				},
				"exclude_ids": stringArray("Recipe ids already shown to the user"),
				"user_id":     userID,
			},
			Required: []string{"query"},
		},
	}, handlers.SearchRecipes)

	// 2. ask_sous - run the conversational agent for one turn
	server.AddTool(mcp.Tool{
		Name:        ToolAskSous,
		Description: "Ask the Sous cooking assistant. It searches recipes when useful and answers in natural language. Pass back suggested_recipe_ids as exclude_ids on follow-ups to avoid repeats.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"message": map[string]interface{}{
					"type":        "string",
					"description": "The user's message",
				},
				"exclude_ids": stringArray("Recipe ids already shown in this conversation"),
				"user_id":     userID,
			},
			Required: []string{"message"},
		},
	}, handlers.AskSous)

	// 3. get_recipe - full recipe by id
	server.AddTool(mcp.Tool{
		Name:        ToolGetRecipe,
		Description: "Get the full recipe, including instructions, for a recipe id.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Recipe id",
				},
			},
			Required: []string{"id"},
		},
	}, handlers.GetRecipe)

	// 4. get_user_profile
	server.AddTool(mcp.Tool{
		Name:        ToolGetUserProfile,
		Description: "Get the user's nutrition profile: subscription, calorie and protein targets, fitness goal, preferences and allergies.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userID,
			},
		},
	}, handlers.GetUserProfile)

	// 5. update_user_profile - partial update, only provided fields change
	server.AddTool(mcp.Tool{
		Name:        ToolUpdateUserProfile,
		Description: "Update the user's nutrition profile. All fields are optional - only provided fields will be updated. List fields are added to, not replaced.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userID,
				"name": map[string]interface{}{
					"type":        "string",
					"description": "User's name",
				},
				"subscription_type": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"free", "premium"},
					"description": "Subscription tier",
				},
				"daily_calories": map[string]interface{}{
					"type":        "number",
					"description": "Daily calorie target in kcal",
				},
				"protein_target": map[string]interface{}{
					"type":        "number",
					"description": "Daily protein target in grams",
				},
				"fitness_goal": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"lose_weight", "build_muscle", "maintain", "improve_health"},
					"description": "Fitness goal",
				},
				"dietary_preferences": stringArray("Dietary preferences to add (e.g., 'vegetarian', 'low carb')"),
				"allergies":           stringArray("Allergies to add (e.g., 'peanuts')"),
			},
		},
	}, handlers.UpdateUserProfile)
}
