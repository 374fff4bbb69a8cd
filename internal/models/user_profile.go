// ABOUTME: UserProfile carries the nutrition and fitness context used for personalization
// ABOUTME: Supports partial updates merged from loosely typed maps
package models

import (
	"strconv"
	"strings"
	"time"
)

// Subscription tiers
const (
	SubscriptionFree    = "free"
	SubscriptionPremium = "premium"
)

// Fitness goals understood by the prompt builder and UI formatter
const (
	GoalLoseWeight    = "lose_weight"
	GoalBuildMuscle   = "build_muscle"
	GoalMaintain      = "maintain"
	GoalImproveHealth = "improve_health"
)

// UserProfile represents user context and preferences
type UserProfile struct {
	UserID             string    `json:"user_id"`
	Name               string    `json:"name"`
	SubscriptionType   string    `json:"subscription_type"`
	DailyCalories      int       `json:"daily_calories,omitempty"`
	ProteinTarget      int       `json:"protein_target,omitempty"`
	FitnessGoal        string    `json:"fitness_goal,omitempty"`
	DietaryPreferences []string  `json:"dietary_preferences,omitempty"`
	Allergies          []string  `json:"allergies,omitempty"`
	LastUpdated        time.Time `json:"last_updated"`
}

// IsPremium reports whether personalization features are unlocked
func (up *UserProfile) IsPremium() bool {
	return up != nil && up.SubscriptionType == SubscriptionPremium
}

// ValidFitnessGoal reports whether goal is a known fitness goal
func ValidFitnessGoal(goal string) bool {
	switch goal {
	case GoalLoseWeight, GoalBuildMuscle, GoalMaintain, GoalImproveHealth:
		return true
	}
	return false
}

// Merge applies the fields present in newInfo to the profile.
// List fields are appended without duplicates; unknown or badly typed
// values are ignored.
func (up *UserProfile) Merge(newInfo map[string]interface{}) {
	if name, ok := newInfo["name"].(string); ok && name != "" {
		up.Name = name
	}

	if sub, ok := newInfo["subscription_type"].(string); ok {
		sub = strings.ToLower(strings.TrimSpace(sub))
		if sub == SubscriptionFree || sub == SubscriptionPremium {
			up.SubscriptionType = sub
		}
	}

	if n, ok := toInt(newInfo["daily_calories"]); ok && n >= 0 {
		up.DailyCalories = n
	}

	if n, ok := toInt(newInfo["protein_target"]); ok && n >= 0 {
		up.ProteinTarget = n
	}

	if goal, ok := newInfo["fitness_goal"].(string); ok && ValidFitnessGoal(goal) {
		up.FitnessGoal = goal
	}

	up.DietaryPreferences = mergeStrings(up.DietaryPreferences, newInfo["dietary_preferences"])
	up.Allergies = mergeStrings(up.Allergies, newInfo["allergies"])

	up.LastUpdated = time.Now()
}

func mergeStrings(existing []string, raw interface{}) []string {
	var items []string
	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	case []string:
		items = v
	}

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" && !contains(existing, item) {
			existing = append(existing, item)
		}
	}
	return existing
}

func toInt(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// contains checks if a string slice contains a specific string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
