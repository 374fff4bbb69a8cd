// ABOUTME: Recipe is the corpus record searched by the retrieval agent
// ABOUTME: Carries text fields, nutrition, timing, and an optional stored embedding
package models

import (
	"strings"
	"time"
)

// Recipe represents a single recipe in the corpus
type Recipe struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Description  string    `json:"description" yaml:"description"`
	Ingredients  []string  `json:"ingredients" yaml:"ingredients"`
	Instructions []string  `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Tags         []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	Calories     int       `json:"calories" yaml:"calories"`
	Protein      float64   `json:"protein" yaml:"protein"`
	Carbs        float64   `json:"carbs" yaml:"carbs"`
	Fat          float64   `json:"fat" yaml:"fat"`
	PrepMinutes  int       `json:"prep_minutes" yaml:"prep_minutes"`
	CookMinutes  int       `json:"cook_minutes" yaml:"cook_minutes"`
	Servings     int       `json:"servings" yaml:"servings"`
	Author       string    `json:"author,omitempty" yaml:"author,omitempty"`
	ImageURL     string    `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Embedding    []float64 `json:"-" yaml:"-"`
	CreatedAt    time.Time `json:"created_at" yaml:"-"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"-"`
}

// HasEmbedding reports whether the recipe can take part in semantic search
func (r *Recipe) HasEmbedding() bool {
	return len(r.Embedding) > 0
}

// TotalMinutes returns prep plus cook time
func (r *Recipe) TotalMinutes() int {
	return r.PrepMinutes + r.CookMinutes
}

// EmbeddingText builds the text that is embedded for this recipe
func (r *Recipe) EmbeddingText() string {
	var b strings.Builder
	b.WriteString(r.Title)
	if r.Description != "" {
		b.WriteString(". ")
		b.WriteString(r.Description)
	}
	if len(r.Ingredients) > 0 {
		b.WriteString(". Ingredients: ")
		b.WriteString(strings.Join(r.Ingredients, ", "))
	}
	if len(r.Tags) > 0 {
		b.WriteString(". Tags: ")
		b.WriteString(strings.Join(r.Tags, ", "))
	}
	return b.String()
}
