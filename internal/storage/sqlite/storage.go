// ABOUTME: Unified Storage layer that wraps the recipe and profile stores
// ABOUTME: Owns recipe creation and embedding indexing on top of SQLite
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harper/sous/internal/models"
)

// Embedder produces an embedding vector for a piece of text
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// Storage manages all persistent recipe data using SQLite
type Storage struct {
	db       *DB
	recipes  *RecipeStore
	profiles *ProfileStore
	logger   *slog.Logger
}

// IndexReport summarizes a bulk indexing run
type IndexReport struct {
	Indexed int
	Failed  int
	Errors  []error
}

// NewStorage initializes storage at the default database path
func NewStorage() (*Storage, error) {
	return NewStorageWithPath(DefaultDBPath())
}

// NewStorageWithPath initializes storage with a custom database path
func NewStorageWithPath(dbPath string) (*Storage, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStorage(db), nil
}

// NewStorageInMemory creates an in-memory storage (for testing)
func NewStorageInMemory() (*Storage, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return newStorage(db), nil
}

func newStorage(db *DB) *Storage {
	return &Storage{
		db:       db,
		recipes:  NewRecipeStore(db, 0),
		profiles: NewProfileStore(db),
		logger:   slog.Default(),
	}
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SetLogger replaces the logger used for indexing warnings
func (s *Storage) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetVectorDimension enforces a fixed embedding length on writes. Zero disables the check.
func (s *Storage) SetVectorDimension(dimension int) {
	s.recipes.dimension = dimension
}

// Recipes exposes the recipe store
func (s *Storage) Recipes() *RecipeStore {
	return s.recipes
}

// Profiles exposes the profile store
func (s *Storage) Profiles() *ProfileStore {
	return s.profiles
}

// LoadRecipesWithEmbeddings returns every searchable recipe
func (s *Storage) LoadRecipesWithEmbeddings(ctx context.Context) ([]models.Recipe, error) {
	return s.recipes.LoadWithEmbeddings(ctx)
}

// GetRecipe retrieves a recipe by ID, returning nil if not found
func (s *Storage) GetRecipe(ctx context.Context, id string) (*models.Recipe, error) {
	return s.recipes.Get(ctx, id)
}

// AddRecipe stores a new recipe, assigning an ID when none is set
func (s *Storage) AddRecipe(ctx context.Context, recipe *models.Recipe) error {
	if recipe == nil {
		return fmt.Errorf("%w: nil recipe", ErrInvalidRecipe)
	}
	recipe.Title = strings.TrimSpace(recipe.Title)
	if recipe.ID == "" {
		recipe.ID = uuid.New().String()
	}
	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = time.Now()
	}
	return s.recipes.Save(ctx, recipe)
}

// IndexRecipe embeds the recipe text and stores the resulting vector
func (s *Storage) IndexRecipe(ctx context.Context, embedder Embedder, recipe *models.Recipe) error {
	if embedder == nil {
		return errors.New("no embedder configured")
	}
	vector, err := embedder.GenerateEmbedding(ctx, recipe.EmbeddingText())
	if err != nil {
		return fmt.Errorf("failed to embed recipe %s: %w", recipe.ID, err)
	}
	if err := s.recipes.SaveEmbedding(ctx, recipe.ID, vector); err != nil {
		return err
	}
	recipe.Embedding = vector
	return nil
}

// ReindexMissing embeds every recipe that has no stored vector yet.
// Individual failures are collected; a cancelled context stops the run.
func (s *Storage) ReindexMissing(ctx context.Context, embedder Embedder) (*IndexReport, error) {
	pending, err := s.recipes.ListMissingEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unindexed recipes: %w", err)
	}

	report := &IndexReport{}
	for i := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.IndexRecipe(ctx, embedder, &pending[i]); err != nil {
			s.logger.Warn("failed to index recipe", "recipe_id", pending[i].ID, "error", err)
			report.Failed++
			report.Errors = append(report.Errors, err)
			continue
		}
		report.Indexed++
	}
	return report, nil
}
