// ABOUTME: CLI commands to import a recipe corpus and embed missing recipes
// ABOUTME: Import accepts YAML or JSON exports and plain recipe lists
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	importNoIndex bool
)

// NewImportCmd creates import command
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import recipes from YAML or JSON",
		Long: `Import recipes from a YAML or JSON file.

Accepts a sous export or a plain list of recipes. Imported recipes get
new ids and are embedded when OPENAI_API_KEY is set.

Examples:
  sous import recipes.yaml
  sous import --no-index backup.json`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolVar(&importNoIndex, "no-index", false, "Skip computing embeddings")

	return cmd
}

// NewReindexCmd creates reindex command
func NewReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Embed recipes that have no embedding yet",
		Long: `Compute embeddings for every recipe that is not searchable yet.

Requires OPENAI_API_KEY. Recipes that fail are reported and left for the
next run.`,
		Args: cobra.NoArgs,
		RunE: runReindex,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	// #nosec G304 -- import path is provided by the user
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening import file: %w", err)
	}
	defer func() { _ = f.Close() }()

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	report, err := a.store.ImportRecipes(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("importing recipes: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d recipe(s), skipped %d\n", report.Imported, report.Skipped)
	}

	if a.client == nil || importNoIndex {
		return nil
	}
	return reindex(cmd, a)
}

func runReindex(cmd *cobra.Command, args []string) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return reindex(cmd, a)
}

func reindex(cmd *cobra.Command, a *app) error {
	report, err := a.store.ReindexMissing(cmd.Context(), a.client)
	if err != nil {
		return fmt.Errorf("indexing recipes: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Indexed %d recipe(s)\n", report.Indexed)
	}
	if report.Failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %d recipe(s) could not be indexed\n", report.Failed)
		if verbose {
			for _, indexErr := range report.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  • %v\n", indexErr)
			}
		}
	}
	return nil
}
