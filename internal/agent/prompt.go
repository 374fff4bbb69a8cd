// ABOUTME: Builds the system prompt from the user's profile and already-shown recipes
// ABOUTME: Pure text assembly with no I/O
package agent

import (
	"fmt"
	"strings"

	"github.com/harper/sous/internal/models"
)

const baseInstructions = `You are Sous, a friendly and practical cooking assistant.

When the user asks for meal ideas, mentions ingredients they have, or wants something different from
what they have seen, call the search_recipes tool. Put the dish, cuisine or mood in "query" and any
ingredients the user mentioned in "ingredients".

Only recommend recipes returned by search_recipes. Never invent recipes, ids, or nutrition numbers.
If a search fails or finds nothing, say so plainly and suggest a different angle.
For general cooking questions (techniques, substitutions, timing) answer directly without searching.
Keep replies short: a sentence or two of context, then the recipe titles with one line each.`

var goalLabels = map[string]string{
	models.GoalLoseWeight:    "lose weight",
	models.GoalBuildMuscle:   "build muscle",
	models.GoalMaintain:      "maintain current weight",
	models.GoalImproveHealth: "improve overall health",
}

// BuildSystemPrompt assembles the system prompt. The nutrition block needs a
// premium profile with a calorie target. Every excluded id is listed.
func BuildSystemPrompt(profile *models.UserProfile, excludeIDs []string) string {
	var b strings.Builder
	b.WriteString(baseInstructions)

	if profile.IsPremium() && profile.DailyCalories > 0 {
		b.WriteString("\n\n")
		writeNutritionBlock(&b, profile)
	}

	if len(excludeIDs) > 0 {
		b.WriteString("\n\nThe user has already been shown these recipes. Do not suggest them again, ")
		b.WriteString("and pass all of these ids in exclude_recipe_ids whenever you call search_recipes:\n")
		b.WriteString(strings.Join(excludeIDs, ", "))
	}

	return b.String()
}

func writeNutritionBlock(b *strings.Builder, profile *models.UserProfile) {
	b.WriteString("Nutrition profile for this user:\n")
	if profile.Name != "" {
		fmt.Fprintf(b, "- Name: %s\n", profile.Name)
	}
	fmt.Fprintf(b, "- Daily calorie target: %d kcal\n", profile.DailyCalories)
	if profile.ProteinTarget > 0 {
		fmt.Fprintf(b, "- Daily protein target: %dg\n", profile.ProteinTarget)
	}
	if label, ok := goalLabels[profile.FitnessGoal]; ok {
		fmt.Fprintf(b, "- Fitness goal: %s\n", label)
	}
	if len(profile.DietaryPreferences) > 0 {
		fmt.Fprintf(b, "- Dietary preferences: %s\n", strings.Join(profile.DietaryPreferences, ", "))
	}
	if len(profile.Allergies) > 0 {
		fmt.Fprintf(b, "- Allergies (never suggest recipes containing these): %s\n", strings.Join(profile.Allergies, ", "))
	}
	b.WriteString("Prefer recipes that fit these targets and mention calories and protein when you recommend one.")
}
