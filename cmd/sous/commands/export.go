// ABOUTME: CLI command to export the recipe corpus
// ABOUTME: Writes YAML for backup and re-import, or Markdown recipe cards
package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportAs     string
)

// NewExportCmd creates export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recipes to YAML or Markdown",
		Long: `Export the whole recipe corpus.

YAML exports can be imported again with "sous import". Markdown exports
are readable recipe cards.

Examples:
  sous export
  sous export --as markdown --output cookbook.md`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default sous-export-<date>.<ext>)")
	cmd.Flags().StringVar(&exportAs, "as", "yaml", "Export format (yaml, markdown)")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	kind := strings.ToLower(exportAs)
	ext := ""
	switch kind {
	case "yaml", "yml":
		kind, ext = "yaml", "yaml"
	case "markdown", "md":
		kind, ext = "markdown", "md"
	default:
		return fmt.Errorf("unknown export format %q (use yaml or markdown)", exportAs)
	}

	output := exportOutput
	if output == "" {
		output = fmt.Sprintf("sous-export-%s.%s", time.Now().Format("2006-01-02"), ext)
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if kind == "yaml" {
		err = a.store.ExportToYAML(cmd.Context(), output)
	} else {
		err = a.store.ExportToMarkdown(cmd.Context(), output)
	}
	if err != nil {
		return fmt.Errorf("exporting recipes: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported recipes to %s\n", filepath.Clean(output))
	}
	return nil
}
