// ABOUTME: CLI command for direct semantic recipe search
// ABOUTME: Uses the strict direct-search threshold and prints a table or JSON
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/sous/internal/retriever"
)

var (
	searchLimit   int
	searchExclude []string
	searchUser    string
)

// NewSearchCmd creates search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search recipes by meaning",
		Long: `Search recipes by semantic similarity to a description.

Only close matches are shown (SOUS_SEARCH_MIN_SIMILARITY, default 0.6).
Use chat for a looser, conversational search.

Examples:
  sous search "creamy tomato pasta"
  sous search --limit 5 "post-workout breakfast"
  sous search --exclude r1,r2 --format json "lentil soup"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum results (default SOUS_SEARCH_LIMIT)")
	cmd.Flags().StringSliceVar(&searchExclude, "exclude", []string{}, "Recipe ids to leave out (comma-separated)")
	cmd.Flags().StringVar(&searchUser, "user", "local", "User id whose fitness goal shapes the rationale")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("limit") {
		if err := validatePositiveInt(searchLimit, "limit"); err != nil {
			return err
		}
	}

	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	limit := searchLimit
	if limit <= 0 {
		limit = a.cfg.SearchLimit
	}

	results, err := a.retriever(nil).SearchByQuery(cmd.Context(), args[0], limit, a.cfg.SearchMinSimilarity, searchExclude)
	if err != nil {
		return fmt.Errorf("searching recipes: %w", err)
	}

	profile, err := a.store.Profiles().Get(cmd.Context(), searchUser)
	if err != nil && verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Could not load profile: %v\n", err)
	}

	ui := retriever.FormatForUI(results, profile)

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(ui, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if len(ui.Recipes) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", ui.Message)
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "MATCH\tTITLE\tKCAL\tTIME\tID\n")
	fmt.Fprintf(w, "-----\t-----\t----\t----\t--\n")
	for _, r := range ui.Recipes {
		fmt.Fprintf(w, "%d%%\t%s\t%d\t%s\t%s\n",
			r.Similarity,
			truncate(r.Title, 40),
			r.Calories,
			formatMinutes(r.TotalMinutes),
			r.ID)
	}
	_ = w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", ui.Message)
		if ui.Rationale != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", ui.Rationale)
		}
	}

	return nil
}
