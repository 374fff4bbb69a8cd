// ABOUTME: RecipeRetriever embeds a query and ranks stored recipes by cosine similarity
// ABOUTME: A fresh k-NN index is built for every search and discarded afterwards
package retriever

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/harper/sous/internal/knn"
	"github.com/harper/sous/internal/metrics"
	"github.com/harper/sous/internal/models"
)

// Similarity floors for the two call sites
const (
	// ToolMinSimilarity applies when the model searches on the user's behalf
	ToolMinSimilarity = 0.3
	// DirectMinSimilarity applies when the user's raw text is the query
	DirectMinSimilarity = 0.6
)

var (
	// ErrEmptyQuery is returned when there is nothing to embed
	ErrEmptyQuery = errors.New("empty search query")
	// ErrSourceFailed wraps datastore failures while loading the corpus
	ErrSourceFailed = errors.New("recipe source failed")
)

// Embedder produces an embedding vector for a piece of text
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// RecipeSource loads the searchable corpus
type RecipeSource interface {
	LoadRecipesWithEmbeddings(ctx context.Context) ([]models.Recipe, error)
}

// Result is one ranked recipe with its cosine similarity
type Result = knn.SearchResult[models.Recipe]

// Retriever runs semantic recipe search
type Retriever struct {
	embedder Embedder
	source   RecipeSource
	logger   *slog.Logger
	metrics  *metrics.Recorder
}

// Option configures a Retriever
type Option func(*Retriever)

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records retrieval latency and result counts
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Retriever) {
		r.metrics = m
	}
}

// New creates a Retriever over the given collaborators
func New(embedder Embedder, source RecipeSource, opts ...Option) *Retriever {
	r := &Retriever{
		embedder: embedder,
		source:   source,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SearchByQuery returns up to limit recipes ordered by similarity to query,
// skipping excluded ids and anything scoring below minSimilarity.
// Embedding errors are returned wrapped so callers can match the llm sentinels.
func (r *Retriever) SearchByQuery(ctx context.Context, query string, limit int, minSimilarity float64, excludeIDs []string) ([]Result, error) {
	ctx, span := otel.Tracer("sous/retriever").Start(ctx, "retriever.search")
	defer span.End()
	span.SetAttributes(
		attribute.Int("retriever.limit", limit),
		attribute.Float64("retriever.min_similarity", minSimilarity),
		attribute.Int("retriever.excluded", len(excludeIDs)),
	)

	start := time.Now()
	results, err := r.search(ctx, query, limit, minSimilarity, excludeIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("retriever.results", len(results)))
	r.metrics.ObserveRetrieval(time.Since(start), len(results))
	return results, nil
}

func (r *Retriever) search(ctx context.Context, query string, limit int, minSimilarity float64, excludeIDs []string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	queryVector, err := r.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	recipes, err := r.source.LoadRecipesWithEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceFailed, err)
	}

	index := knn.New[models.Recipe](limit, knn.Cosine, knn.WithLogger(r.logger))
	for _, recipe := range recipes {
		// recipes without a vector are not searchable
		if !recipe.HasEmbedding() {
			continue
		}
		index.Add(recipe, recipe.Embedding, recipe.ID)
	}

	ranked, err := index.Search(queryVector, excludeIDs)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(ranked))
	for _, res := range ranked {
		if res.Score < minSimilarity {
			continue
		}
		results = append(results, res)
	}

	r.logger.Debug("recipe search complete",
		"candidates", index.Len(),
		"ranked", len(ranked),
		"returned", len(results),
		"min_similarity", minSimilarity)

	return results, nil
}
