// ABOUTME: Formats ranked recipes for the model (compact) and for the UI (rich)
// ABOUTME: The UI view adds a goal-specific rationale for premium personalization
package retriever

import (
	"fmt"
	"math"

	"github.com/harper/sous/internal/models"
)

// maxModelIngredients bounds the ingredient list sent back to the model
const maxModelIngredients = 5

// NoMatchesMessage is shown when a search returns nothing
const NoMatchesMessage = "I couldn't find any recipes matching that. Try different ingredients or a broader description."

// CompactRecipe is the token-lean view returned to the model as a tool observation
type CompactRecipe struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
}

// UIRecipe is the full card shown to the user
type UIRecipe struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Calories     int      `json:"calories"`
	Protein      float64  `json:"protein"`
	Carbs        float64  `json:"carbs"`
	Fat          float64  `json:"fat"`
	PrepMinutes  int      `json:"prep_minutes"`
	CookMinutes  int      `json:"cook_minutes"`
	TotalMinutes int      `json:"total_minutes"`
	Servings     int      `json:"servings"`
	Author       string   `json:"author,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	Similarity   int      `json:"similarity"`
}

// UIResult bundles the cards with the text shown above them
type UIResult struct {
	Message   string     `json:"message"`
	Rationale string     `json:"rationale,omitempty"`
	Recipes   []UIRecipe `json:"recipes"`
}

// FormatForModel trims results to id, title, description and the first few ingredients
func FormatForModel(results []Result) []CompactRecipe {
	out := make([]CompactRecipe, 0, len(results))
	for _, res := range results {
		out = append(out, CompactRecipe{
			ID:          res.Payload.ID,
			Title:       res.Payload.Title,
			Description: res.Payload.Description,
			Ingredients: firstN(res.Payload.Ingredients, maxModelIngredients),
		})
	}
	return out
}

// FormatForUI builds recipe cards. When the profile names a fitness goal a short
// rationale about the top result is attached. Zero results is not an error.
func FormatForUI(results []Result, profile *models.UserProfile) UIResult {
	if len(results) == 0 {
		return UIResult{Message: NoMatchesMessage, Recipes: []UIRecipe{}}
	}

	cards := make([]UIRecipe, 0, len(results))
	for _, res := range results {
		r := res.Payload
		cards = append(cards, UIRecipe{
			ID:           r.ID,
			Title:        r.Title,
			Description:  r.Description,
			Ingredients:  r.Ingredients,
			Instructions: r.Instructions,
			Tags:         r.Tags,
			Calories:     r.Calories,
			Protein:      r.Protein,
			Carbs:        r.Carbs,
			Fat:          r.Fat,
			PrepMinutes:  r.PrepMinutes,
			CookMinutes:  r.CookMinutes,
			TotalMinutes: r.TotalMinutes(),
			Servings:     r.Servings,
			Author:       r.Author,
			ImageURL:     r.ImageURL,
			Similarity:   similarityPercent(res.Score),
		})
	}

	message := fmt.Sprintf("Found %d recipes for you.", len(cards))
	if len(cards) == 1 {
		message = "Found 1 recipe for you."
	}

	result := UIResult{Message: message, Recipes: cards}
	if profile != nil && profile.FitnessGoal != "" {
		result.Rationale = Rationale(profile.FitnessGoal, &results[0].Payload)
	}
	return result
}

// Rationale returns the goal-specific sentence for a recipe, or "" for an unknown goal
func Rationale(goal string, top *models.Recipe) string {
	switch goal {
	case models.GoalLoseWeight:
		return fmt.Sprintf("%s comes in at %d calories with %.0fg of protein, a lighter pick that keeps you on track to lose weight.",
			top.Title, top.Calories, top.Protein)
	case models.GoalBuildMuscle:
		return fmt.Sprintf("%s packs %.0fg of protein for %d calories, which helps you hit the protein you need to build muscle.",
			top.Title, top.Protein, top.Calories)
	case models.GoalMaintain:
		return fmt.Sprintf("%s (%d calories, %.0fg protein) fits a balanced day for maintaining your current weight.",
			top.Title, top.Calories, top.Protein)
	case models.GoalImproveHealth:
		return fmt.Sprintf("%s offers %.0fg of protein at %d calories, a wholesome choice for improving your overall health.",
			top.Title, top.Protein, top.Calories)
	}
	return ""
}

// similarityPercent maps a cosine score onto 0-100
func similarityPercent(score float64) int {
	pct := int(math.Round(score * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func firstN(values []string, n int) []string {
	if len(values) <= n {
		out := make([]string, len(values))
		copy(out, values)
		return out
	}
	out := make([]string, n)
	copy(out, values[:n])
	return out
}
