// ABOUTME: CLI commands to list and remove recipes
// ABOUTME: Shows the corpus with indexing status, newest first
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/sous/internal/models"
	"github.com/harper/sous/internal/storage/sqlite"
)

var (
	listLimit   int
	listOffset  int
	listMissing bool
)

// NewListCmd creates list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recipes",
		Long: `List recipes in the corpus, newest first.

Recipes without an embedding are not searchable yet; --missing shows
only those.

Examples:
  sous list
  sous list --limit 50 --offset 50
  sous list --missing
  sous list --format json`,
		Args: cobra.NoArgs,
		RunE: runList,
	}

	cmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum recipes to show (0 for all)")
	cmd.Flags().IntVar(&listOffset, "offset", 0, "Skip this many recipes")
	cmd.Flags().BoolVar(&listMissing, "missing", false, "Only recipes without an embedding")

	return cmd
}

// NewRemoveCmd creates remove command
func NewRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a recipe",
		Long:  `Remove a recipe and its embedding from the corpus.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runRemove,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	if listLimit < 0 || listOffset < 0 {
		return fmt.Errorf("limit and offset must not be negative")
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	var recipes []models.Recipe
	if listMissing {
		recipes, err = a.store.Recipes().ListMissingEmbeddings(cmd.Context())
	} else {
		recipes, err = a.store.Recipes().List(cmd.Context(), listLimit, listOffset)
	}
	if err != nil {
		return fmt.Errorf("listing recipes: %w", err)
	}

	if len(recipes) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No recipes found\n")
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(recipes, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TITLE\tKCAL\tTIME\tINDEXED\tADDED\tID\n")
	fmt.Fprintf(w, "-----\t----\t----\t-------\t-----\t--\n")
	for i := range recipes {
		r := &recipes[i]
		indexed := "no"
		if r.HasEmbedding() {
			indexed = "yes"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
			truncate(r.Title, 36),
			r.Calories,
			formatMinutes(r.TotalMinutes()),
			indexed,
			formatTime(r.CreatedAt),
			r.ID)
	}
	_ = w.Flush()

	if !quiet {
		total, withEmbedding, err := a.store.Recipes().Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("counting recipes: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d recipe(s), %d indexed\n", total, withEmbedding)
	}

	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.store.Recipes().Delete(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, sqlite.ErrRecipeNotFound) {
			return fmt.Errorf("recipe %s not found", args[0])
		}
		return fmt.Errorf("removing recipe: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed recipe %s\n", args[0])
	}
	return nil
}
