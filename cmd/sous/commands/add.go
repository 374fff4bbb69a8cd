// ABOUTME: CLI command to add a recipe to the corpus
// ABOUTME: Builds the recipe from flags or a YAML file and indexes it when possible
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harper/sous/internal/models"
)

var (
	addFile         string
	addDescription  string
	addIngredients  []string
	addInstructions []string
	addTags         []string
	addCalories     int
	addProtein      float64
	addPrep         int
	addCook         int
	addServings     int
	addNoIndex      bool
)

// NewAddCmd creates add command
func NewAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a recipe",
		Long: `Add a recipe from flags or a YAML file.

The recipe is embedded right away when OPENAI_API_KEY is set; otherwise
run "sous reindex" later to make it searchable.

Examples:
  sous add "Chickpea Curry" --ingredient chickpeas --ingredient "coconut milk" --tags vegan,dinner
  sous add "Overnight Oats" --calories 350 --protein 14 --prep 5
  sous add --file shakshuka.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAdd,
	}

	cmd.Flags().StringVar(&addFile, "file", "", "Read the recipe from a YAML file")
	cmd.Flags().StringVar(&addDescription, "description", "", "Short description")
	cmd.Flags().StringArrayVar(&addIngredients, "ingredient", nil, "Add an ingredient (can be repeated)")
	cmd.Flags().StringArrayVar(&addInstructions, "step", nil, "Add an instruction step (can be repeated)")
	cmd.Flags().StringSliceVar(&addTags, "tags", []string{}, "Tags for the recipe (comma-separated)")
	cmd.Flags().IntVar(&addCalories, "calories", 0, "Calories per serving")
	cmd.Flags().Float64Var(&addProtein, "protein", 0, "Protein grams per serving")
	cmd.Flags().IntVar(&addPrep, "prep", 0, "Prep time in minutes")
	cmd.Flags().IntVar(&addCook, "cook", 0, "Cook time in minutes")
	cmd.Flags().IntVar(&addServings, "servings", 0, "Number of servings")
	cmd.Flags().BoolVar(&addNoIndex, "no-index", false, "Skip computing the embedding")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	recipe, err := recipeFromInput(args)
	if err != nil {
		return err
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.store.AddRecipe(cmd.Context(), recipe); err != nil {
		return fmt.Errorf("storing recipe: %w", err)
	}

	indexed := false
	if a.client != nil && !addNoIndex {
		if err := a.store.IndexRecipe(cmd.Context(), a.client, recipe); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not index recipe: %v\n", err)
		} else {
			indexed = true
		}
	}

	if !quiet {
		if indexed {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Added recipe %s (%s), indexed\n", recipe.Title, recipe.ID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Added recipe %s (%s), not indexed yet\n", recipe.Title, recipe.ID)
		}
	}
	return nil
}

// recipeFromInput builds a recipe from --file or the title argument and flags
func recipeFromInput(args []string) (*models.Recipe, error) {
	if addFile != "" {
		// #nosec G304 -- recipe path is provided by the user
		data, err := os.ReadFile(addFile)
		if err != nil {
			return nil, fmt.Errorf("reading file: %w", err)
		}
		var recipe models.Recipe
		if err := yaml.Unmarshal(data, &recipe); err != nil {
			return nil, fmt.Errorf("parsing recipe file: %w", err)
		}
		if strings.TrimSpace(recipe.Title) == "" {
			return nil, fmt.Errorf("recipe file has no title")
		}
		return &recipe, nil
	}

	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return nil, fmt.Errorf("no title provided")
	}

	return &models.Recipe{
		Title:        strings.TrimSpace(args[0]),
		Description:  addDescription,
		Ingredients:  addIngredients,
		Instructions: addInstructions,
		Tags:         addTags,
		Calories:     addCalories,
		Protein:      addProtein,
		PrepMinutes:  addPrep,
		CookMinutes:  addCook,
		Servings:     addServings,
	}, nil
}
