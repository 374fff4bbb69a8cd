// ABOUTME: Export and import of the recipe corpus
// ABOUTME: YAML and Markdown export; YAML or JSON import
package sqlite

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/sous/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportVersion is written into every export document
const ExportVersion = "1.0"

// ExportData represents the complete exportable data structure
type ExportData struct {
	Version    string          `yaml:"version" json:"version"`
	ExportedAt string          `yaml:"exported_at" json:"exported_at"`
	Tool       string          `yaml:"tool" json:"tool"`
	Recipes    []models.Recipe `yaml:"recipes" json:"recipes"`
}

// ImportReport summarizes an import run
type ImportReport struct {
	Imported int
	Skipped  int
	IDs      []string
}

// Export collects every recipe. Embeddings are not exported.
func (s *Storage) Export(ctx context.Context) (*ExportData, error) {
	recipes, err := s.recipes.List(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	if recipes == nil {
		recipes = []models.Recipe{}
	}
	return &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       "sous",
		Recipes:    recipes,
	}, nil
}

// ExportToYAML exports data to a YAML file
func (s *Storage) ExportToYAML(ctx context.Context, outputPath string) error {
	data, err := s.Export(ctx)
	if err != nil {
		return err
	}

	file, err := createOutput(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// ExportToMarkdown writes the corpus as a set of recipe cards
func (s *Storage) ExportToMarkdown(ctx context.Context, outputPath string) error {
	data, err := s.Export(ctx)
	if err != nil {
		return err
	}

	file, err := createOutput(outputPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	_, _ = fmt.Fprintf(file, "# Recipe Export - %s\n\n", time.Now().Format("2006-01-02"))
	_, _ = fmt.Fprintf(file, "Generated: %s\n\n", data.ExportedAt)

	for _, recipe := range data.Recipes {
		_, _ = fmt.Fprintf(file, "## %s\n\n", recipe.Title)
		if recipe.Description != "" {
			_, _ = fmt.Fprintf(file, "%s\n\n", recipe.Description)
		}
		_, _ = fmt.Fprintf(file, "*%d kcal | %.0fg protein | %.0fg carbs | %.0fg fat | %d min*\n\n",
			recipe.Calories, recipe.Protein, recipe.Carbs, recipe.Fat, recipe.TotalMinutes())
		if len(recipe.Ingredients) > 0 {
			_, _ = fmt.Fprintln(file, "### Ingredients")
			_, _ = fmt.Fprintln(file)
			for _, ing := range recipe.Ingredients {
				_, _ = fmt.Fprintf(file, "- %s\n", ing)
			}
			_, _ = fmt.Fprintln(file)
		}
		if len(recipe.Instructions) > 0 {
			_, _ = fmt.Fprintln(file, "### Instructions")
			_, _ = fmt.Fprintln(file)
			for i, step := range recipe.Instructions {
				_, _ = fmt.Fprintf(file, "%d. %s\n", i+1, step)
			}
			_, _ = fmt.Fprintln(file)
		}
		if len(recipe.Tags) > 0 {
			_, _ = fmt.Fprintf(file, "*Tags: %s*\n\n", strings.Join(recipe.Tags, ", "))
		}
		_, _ = fmt.Fprintln(file, "---")
		_, _ = fmt.Fprintln(file)
	}

	return nil
}

// ImportRecipes reads an export document, or a bare list of recipes, in YAML or JSON.
// Recipes without a title are skipped. Existing IDs are updated in place.
func (s *Storage) ImportRecipes(ctx context.Context, r io.Reader) (*ImportReport, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import data: %w", err)
	}

	recipes, err := decodeRecipes(raw)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{}
	for i := range recipes {
		recipe := &recipes[i]
		if strings.TrimSpace(recipe.Title) == "" {
			report.Skipped++
			continue
		}
		if err := s.AddRecipe(ctx, recipe); err != nil {
			return report, fmt.Errorf("failed to import recipe %q: %w", recipe.Title, err)
		}
		report.Imported++
		report.IDs = append(report.IDs, recipe.ID)
	}
	return report, nil
}

// JSON is a subset of YAML, so a single decoder covers both formats
func decodeRecipes(raw []byte) ([]models.Recipe, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' || trimmed[0] == '-' {
		var list []models.Recipe
		if err := yaml.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("failed to parse recipe list: %w", err)
		}
		return list, nil
	}

	var data ExportData
	if err := yaml.Unmarshal(trimmed, &data); err != nil {
		return nil, fmt.Errorf("failed to parse export document: %w", err)
	}
	return data.Recipes, nil
}

func createOutput(outputPath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, nil
}
