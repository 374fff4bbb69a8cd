// ABOUTME: Benchmark scenarios and the seeded recipe corpus they run against
// ABOUTME: Each scenario is a short conversation with ground truth for scoring

package recall

import (
	"github.com/harper/sous/internal/models"
)

// Scenario is one benchmark conversation
type Scenario struct {
	ID          string
	Name        string
	Description string
	Corpus      []models.Recipe // nil uses DefaultCorpus
	Profile     *models.UserProfile
	Turns       []string
	GroundTruth GroundTruth
}

// GroundTruth defines what a good run of a scenario looks like
type GroundTruth struct {
	// Titles that must be suggested somewhere in the conversation
	ExpectedRecipes []string

	// Checked against the final turn's response text
	ExpectedInResponse  []string
	ForbiddenInResponse []string

	// Intent of the final turn; empty skips the check
	ExpectedIntent models.Intent

	// Later turns must not repeat recipes suggested earlier
	NoRepeat bool
}

// Result is the scored outcome of one scenario
type Result struct {
	ScenarioID    string                 `json:"scenario_id"`
	ScenarioName  string                 `json:"scenario_name"`
	RecallScore   float64                `json:"recall_score"`
	NoRepeatScore float64                `json:"no_repeat_score"`
	Faithfulness  float64                `json:"faithfulness_score"`
	IntentMatched bool                   `json:"intent_matched"`
	OverallScore  float64                `json:"overall_score"`
	Status        string                 `json:"status"` // "PASS" or "FAIL"
	Details       map[string]interface{} `json:"details,omitempty"`
	ErrorMessage  string                 `json:"error_message,omitempty"`
}

// DefaultCorpus returns a fresh copy of the seeded recipes
func DefaultCorpus() []models.Recipe {
	return []models.Recipe{
		{
			Title:       "Chickpea Curry",
			Description: "Creamy vegan curry with chickpeas simmered in coconut milk and warm spices",
			Ingredients: []string{"chickpeas", "coconut milk", "onion", "garlic", "garam masala", "spinach"},
			Tags:        []string{"vegan", "dinner", "indian"},
			Calories:    520, Protein: 18, Carbs: 62, Fat: 22, PrepMinutes: 10, CookMinutes: 25, Servings: 4,
		},
		{
			Title:       "Spaghetti Carbonara",
			Description: "Roman pasta with eggs, pecorino, black pepper and crisp guanciale",
			Ingredients: []string{"spaghetti", "eggs", "pecorino romano", "guanciale", "black pepper"},
			Tags:        []string{"italian", "pasta", "dinner"},
			Calories:    710, Protein: 29, Carbs: 78, Fat: 31, PrepMinutes: 10, CookMinutes: 15, Servings: 2,
		},
		{
			Title:       "Pasta Primavera",
			Description: "Light spring pasta tossed with seasonal vegetables and parmesan",
			Ingredients: []string{"penne", "zucchini", "asparagus", "peas", "parmesan", "olive oil"},
			Tags:        []string{"vegetarian", "pasta", "spring"},
			Calories:    540, Protein: 19, Carbs: 80, Fat: 16, PrepMinutes: 15, CookMinutes: 15, Servings: 4,
		},
		{
			Title:       "Mushroom Risotto",
			Description: "Slow-stirred arborio rice with mixed mushrooms, white wine and thyme",
			Ingredients: []string{"arborio rice", "mushrooms", "shallot", "white wine", "vegetable stock", "thyme"},
			Tags:        []string{"vegetarian", "italian", "comfort"},
			Calories:    610, Protein: 14, Carbs: 88, Fat: 20, PrepMinutes: 10, CookMinutes: 35, Servings: 4,
		},
		{
			Title:       "Red Lentil Soup",
			Description: "Hearty soup of red lentils, carrots and cumin finished with lemon",
			Ingredients: []string{"red lentils", "carrots", "onion", "cumin", "vegetable stock", "lemon"},
			Tags:        []string{"vegan", "soup", "budget"},
			Calories:    340, Protein: 18, Carbs: 52, Fat: 6, PrepMinutes: 10, CookMinutes: 30, Servings: 6,
		},
		{
			Title:       "Grilled Chicken Quinoa Bowl",
			Description: "High-protein bowl with grilled chicken breast, quinoa, black beans and avocado",
			Ingredients: []string{"chicken breast", "quinoa", "black beans", "avocado", "lime", "cilantro"},
			Tags:        []string{"high-protein", "meal-prep", "lunch"},
			Calories:    620, Protein: 52, Carbs: 54, Fat: 19, PrepMinutes: 15, CookMinutes: 20, Servings: 2,
		},
		{
			Title:       "Greek Yogurt Protein Pancakes",
			Description: "Fluffy high-protein pancakes made with greek yogurt, oats and eggs",
			Ingredients: []string{"greek yogurt", "rolled oats", "eggs", "banana", "baking powder"},
			Tags:        []string{"high-protein", "breakfast"},
			Calories:    410, Protein: 34, Carbs: 46, Fat: 9, PrepMinutes: 5, CookMinutes: 10, Servings: 2,
		},
		{
			Title:       "Salmon with Roasted Vegetables",
			Description: "Sheet-pan salmon fillets roasted with broccoli, peppers and sweet potato",
			Ingredients: []string{"salmon fillets", "broccoli", "bell pepper", "sweet potato", "olive oil", "lemon"},
			Tags:        []string{"gluten-free", "dinner", "omega-3"},
			Calories:    560, Protein: 41, Carbs: 38, Fat: 26, PrepMinutes: 10, CookMinutes: 25, Servings: 2,
		},
		{
			Title:       "Black Bean Tacos",
			Description: "Smoky black bean tacos with pickled onions and lime crema",
			Ingredients: []string{"black beans", "corn tortillas", "red onion", "chipotle", "lime", "sour cream"},
			Tags:        []string{"vegetarian", "mexican", "quick"},
			Calories:    480, Protein: 17, Carbs: 64, Fat: 15, PrepMinutes: 10, CookMinutes: 10, Servings: 3,
		},
		{
			Title:       "Overnight Oats",
			Description: "No-cook oats soaked overnight with milk, chia seeds and berries",
			Ingredients: []string{"rolled oats", "milk", "chia seeds", "berries", "honey"},
			Tags:        []string{"breakfast", "make-ahead", "vegetarian"},
			Calories:    350, Protein: 13, Carbs: 55, Fat: 9, PrepMinutes: 5, Servings: 1,
		},
	}
}

// GetVeganCurry returns the single-turn ingredient match scenario
func GetVeganCurry() Scenario {
	return Scenario{
		ID:          "curry",
		Name:        "Vegan curry by ingredient",
		Description: "A specific ingredient-led request should surface the matching recipe by name",
		Turns:       []string{"I want a vegan curry with chickpeas tonight"},
		GroundTruth: GroundTruth{
			ExpectedRecipes:    []string{"Chickpea Curry"},
			ExpectedInResponse: []string{"Chickpea Curry"},
			ExpectedIntent:     models.IntentSearchRecipes,
		},
	}
}

// GetPastaFollowUp returns the two-turn no-repeat scenario
func GetPastaFollowUp() Scenario {
	return Scenario{
		ID:          "follow-up",
		Name:        "Pasta follow-up without repeats",
		Description: "Asking for something else must not resurface recipes from the first answer",
		Turns: []string{
			"Give me a pasta recipe for dinner",
			"Show me something else",
		},
		GroundTruth: GroundTruth{
			ExpectedRecipes: []string{"Spaghetti Carbonara", "Pasta Primavera"},
			NoRepeat:        true,
		},
	}
}

// GetHighProtein returns the premium-profile personalization scenario
func GetHighProtein() Scenario {
	return Scenario{
		ID:          "protein",
		Name:        "High protein for a premium user",
		Description: "A muscle-building premium profile asking for post-workout food",
		Profile: &models.UserProfile{
			UserID:           "bench",
			Name:             "Sam",
			SubscriptionType: models.SubscriptionPremium,
			DailyCalories:    2600,
			ProteinTarget:    170,
			FitnessGoal:      models.GoalBuildMuscle,
			Allergies:        []string{"shellfish"},
		},
		Turns: []string{"Something high in protein to eat after the gym"},
		GroundTruth: GroundTruth{
			ExpectedRecipes:     []string{"Grilled Chicken Quinoa Bowl", "Greek Yogurt Protein Pancakes"},
			ForbiddenInResponse: []string{"shrimp", "prawn"},
			ExpectedIntent:      models.IntentSearchRecipes,
		},
	}
}

// GetSmallTalk returns the scenario where no search should happen
func GetSmallTalk() Scenario {
	return Scenario{
		ID:          "small-talk",
		Name:        "Cooking question without search",
		Description: "A technique question is answered directly without suggesting recipes",
		Turns:       []string{"What does it mean to braise something?"},
		GroundTruth: GroundTruth{
			ExpectedIntent: models.IntentGeneralChat,
		},
	}
}

// GetAllScenarios returns every built-in scenario
func GetAllScenarios() []Scenario {
	return []Scenario{
		GetVeganCurry(),
		GetPastaFollowUp(),
		GetHighProtein(),
		GetSmallTalk(),
	}
}

// GetScenario looks up a built-in scenario by id
func GetScenario(id string) (Scenario, bool) {
	for _, sc := range GetAllScenarios() {
		if sc.ID == id {
			return sc, true
		}
	}
	return Scenario{}, false
}
