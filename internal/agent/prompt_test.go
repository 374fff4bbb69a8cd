// ABOUTME: Tests for system prompt assembly
// ABOUTME: Premium gating of the nutrition block and the full exclusion list
package agent

import (
	"fmt"
	"strings"
	"testing"

	"github.com/harper/sous/internal/models"
)

func TestBuildSystemPrompt_Base(t *testing.T) {
	prompt := BuildSystemPrompt(nil, nil)

	if !strings.Contains(prompt, "search_recipes") {
		t.Error("base prompt should mention the search tool")
	}
	if strings.Contains(prompt, "Nutrition profile") {
		t.Error("nutrition block without a profile")
	}
	if strings.Contains(prompt, "already been shown") {
		t.Error("exclusion block without exclusions")
	}
	if prompt != BuildSystemPrompt(nil, nil) {
		t.Error("prompt must be deterministic")
	}
}

func TestBuildSystemPrompt_NutritionGating(t *testing.T) {
	premium := &models.UserProfile{
		Name:               "Sam",
		SubscriptionType:   models.SubscriptionPremium,
		DailyCalories:      1800,
		ProteinTarget:      120,
		FitnessGoal:        models.GoalLoseWeight,
		DietaryPreferences: []string{"vegetarian"},
		Allergies:          []string{"peanuts"},
	}

	tests := []struct {
		name    string
		profile *models.UserProfile
		want    bool
	}{
		{"premium with calories", premium, true},
		{"free tier", &models.UserProfile{SubscriptionType: models.SubscriptionFree, DailyCalories: 1800}, false},
		{"premium without calories", &models.UserProfile{SubscriptionType: models.SubscriptionPremium}, false},
		{"nil profile", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := BuildSystemPrompt(tt.profile, nil)
			if got := strings.Contains(prompt, "Nutrition profile"); got != tt.want {
				t.Errorf("nutrition block present = %v, want %v", got, tt.want)
			}
		})
	}

	prompt := BuildSystemPrompt(premium, nil)
	for _, want := range []string{"1800 kcal", "120g", "lose weight", "vegetarian", "peanuts", "Sam"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildSystemPrompt_ExclusionsNotTruncated(t *testing.T) {
	ids := make([]string, 200)
	for i := range ids {
		ids[i] = fmt.Sprintf("recipe-%03d", i)
	}

	prompt := BuildSystemPrompt(nil, ids)
	for _, id := range ids {
		if !strings.Contains(prompt, id) {
			t.Fatalf("prompt missing excluded id %s", id)
		}
	}
	if !strings.Contains(prompt, "exclude_recipe_ids") {
		t.Error("exclusion block should tell the model to pass exclude_recipe_ids")
	}
}
