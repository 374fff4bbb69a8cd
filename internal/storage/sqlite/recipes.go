// ABOUTME: Recipe storage operations for SQLite
// ABOUTME: Handles CRUD, embedding persistence and bulk loads for the retriever
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harper/sous/internal/models"
)

var (
	// ErrRecipeNotFound is returned when an operation targets a missing recipe
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrInvalidRecipe is returned when a recipe is missing required fields
	ErrInvalidRecipe = errors.New("invalid recipe")
	// ErrEmptyEmbedding is returned when saving a zero-length vector
	ErrEmptyEmbedding = errors.New("empty embedding")
	// ErrDimensionMismatch is returned when a vector does not match the configured dimension
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

const recipeColumns = `id, title, description, ingredients, instructions, tags,
	calories, protein, carbs, fat, prep_minutes, cook_minutes, servings,
	author, image_url, embedding, created_at, updated_at`

// RecipeStore handles recipe persistence
type RecipeStore struct {
	db        *DB
	dimension int
}

// NewRecipeStore creates a new RecipeStore. A dimension of 0 disables vector length checks.
func NewRecipeStore(db *DB, dimension int) *RecipeStore {
	return &RecipeStore{db: db, dimension: dimension}
}

// Save inserts or updates a recipe. A nil embedding keeps whatever vector is already stored.
func (s *RecipeStore) Save(ctx context.Context, recipe *models.Recipe) error {
	if recipe == nil || recipe.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRecipe)
	}
	if recipe.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRecipe)
	}

	// nil binds as NULL so the upsert keeps an existing vector
	var embeddingBlob any
	if len(recipe.Embedding) > 0 {
		if err := s.checkDimension(recipe.Embedding); err != nil {
			return err
		}
		embeddingBlob = vectorToBlob(recipe.Embedding)
	}

	ingredients, err := marshalList(recipe.Ingredients)
	if err != nil {
		return err
	}
	instructions, err := marshalList(recipe.Instructions)
	if err != nil {
		return err
	}
	tags, err := marshalList(recipe.Tags)
	if err != nil {
		return err
	}

	now := time.Now()
	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = now
	}
	recipe.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recipes (`+recipeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			ingredients = excluded.ingredients,
			instructions = excluded.instructions,
			tags = excluded.tags,
			calories = excluded.calories,
			protein = excluded.protein,
			carbs = excluded.carbs,
			fat = excluded.fat,
			prep_minutes = excluded.prep_minutes,
			cook_minutes = excluded.cook_minutes,
			servings = excluded.servings,
			author = excluded.author,
			image_url = excluded.image_url,
			embedding = COALESCE(excluded.embedding, recipes.embedding),
			updated_at = excluded.updated_at
	`, recipe.ID, recipe.Title, recipe.Description, ingredients, instructions, tags,
		recipe.Calories, recipe.Protein, recipe.Carbs, recipe.Fat,
		recipe.PrepMinutes, recipe.CookMinutes, recipe.Servings,
		recipe.Author, recipe.ImageURL, embeddingBlob, recipe.CreatedAt, recipe.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save recipe %s: %w", recipe.ID, err)
	}
	return nil
}

// Get retrieves a recipe by ID, returning nil if not found
func (s *RecipeStore) Get(ctx context.Context, id string) (*models.Recipe, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = ?`, id)
	recipe, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// List returns recipes ordered by creation time, newest first
func (s *RecipeStore) List(ctx context.Context, limit, offset int) ([]models.Recipe, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recipeColumns+` FROM recipes
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectRecipes(rows)
}

// LoadWithEmbeddings returns every recipe that has a stored vector
func (s *RecipeStore) LoadWithEmbeddings(ctx context.Context) ([]models.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recipeColumns+` FROM recipes
		WHERE embedding IS NOT NULL AND length(embedding) > 0
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	return collectRecipes(rows)
}

// ListMissingEmbeddings returns recipes that have not been indexed yet
func (s *RecipeStore) ListMissingEmbeddings(ctx context.Context) ([]models.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recipeColumns+` FROM recipes
		WHERE embedding IS NULL OR length(embedding) = 0
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	return collectRecipes(rows)
}

// SaveEmbedding stores the vector for an existing recipe
func (s *RecipeStore) SaveEmbedding(ctx context.Context, id string, vector []float64) error {
	if len(vector) == 0 {
		return ErrEmptyEmbedding
	}
	if err := s.checkDimension(vector); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE recipes SET embedding = ?, updated_at = ? WHERE id = ?
	`, vectorToBlob(vector), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to save embedding for %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRecipeNotFound, id)
	}
	return nil
}

// Delete removes a recipe
func (s *RecipeStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRecipeNotFound, id)
	}
	return nil
}

// Count returns the total number of recipes and how many of them are indexed
func (s *RecipeStore) Count(ctx context.Context) (total int, indexed int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN embedding IS NOT NULL AND length(embedding) > 0 THEN 1 ELSE 0 END), 0)
		FROM recipes
	`).Scan(&total, &indexed)
	return total, indexed, err
}

func (s *RecipeStore) checkDimension(vector []float64) error {
	if s.dimension > 0 && len(vector) != s.dimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), s.dimension)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (*models.Recipe, error) {
	var (
		recipe                          models.Recipe
		description, author, imageURL   sql.NullString
		ingredients, instructions, tags sql.NullString
		embedding                       []byte
		createdAt, updatedAt            time.Time
	)

	err := row.Scan(&recipe.ID, &recipe.Title, &description, &ingredients, &instructions, &tags,
		&recipe.Calories, &recipe.Protein, &recipe.Carbs, &recipe.Fat,
		&recipe.PrepMinutes, &recipe.CookMinutes, &recipe.Servings,
		&author, &imageURL, &embedding, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	recipe.Description = description.String
	recipe.Author = author.String
	recipe.ImageURL = imageURL.String
	recipe.Ingredients = unmarshalList(ingredients)
	recipe.Instructions = unmarshalList(instructions)
	recipe.Tags = unmarshalList(tags)
	recipe.Embedding = blobToVector(embedding)
	recipe.CreatedAt = createdAt
	recipe.UpdatedAt = updatedAt

	return &recipe, nil
}

func collectRecipes(rows *sql.Rows) ([]models.Recipe, error) {
	defer func() { _ = rows.Close() }()

	var recipes []models.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *recipe)
	}
	return recipes, rows.Err()
}

func marshalList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalList(value sql.NullString) []string {
	if !value.Valid || value.String == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(value.String), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}
