// ABOUTME: In-memory brute-force k-nearest-neighbor index over embedding vectors
// ABOUTME: Linear scan with exclusion set, cosine or Euclidean ordering
package knn

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/harper/sous/internal/vecmath"
)

// DefaultK is the number of neighbors returned when none is configured
const DefaultK = 3

// Metric selects how candidates are scored and ordered
type Metric string

const (
	// Cosine scores in [-1, 1], higher is more similar
	Cosine Metric = "cosine"
	// Euclidean scores >= 0, lower is closer
	Euclidean Metric = "euclidean"
)

// Item is a single indexed vector with its payload
type Item[T any] struct {
	ID      string
	Vector  []float64
	Payload T
}

// SearchResult pairs a payload with its score under the index metric
type SearchResult[T any] struct {
	ID      string
	Payload T
	Score   float64
}

// Searcher is the query side of an index. Callers that only search depend on
// this so an approximate index can replace the linear scan.
type Searcher[T any] interface {
	Search(query []float64, excludeIDs []string) ([]SearchResult[T], error)
}

// Index is an append-only collection owned by a single search call.
// It is not safe for concurrent use.
type Index[T any] struct {
	k      int
	metric Metric
	items  []Item[T]
	logger *slog.Logger
}

// Option configures an Index
type Option func(*indexOptions)

type indexOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for dropped-item warnings
func WithLogger(logger *slog.Logger) Option {
	return func(o *indexOptions) {
		o.logger = logger
	}
}

// New creates an empty index returning up to k results ordered by metric.
// k <= 0 falls back to DefaultK and an unknown metric falls back to Cosine.
func New[T any](k int, metric Metric, opts ...Option) *Index[T] {
	o := indexOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if k <= 0 {
		k = DefaultK
	}
	if metric != Euclidean {
		metric = Cosine
	}
	return &Index[T]{
		k:      k,
		metric: metric,
		logger: o.logger,
	}
}

// K returns the configured neighbor count
func (idx *Index[T]) K() int {
	return idx.k
}

// Metric returns the configured metric
func (idx *Index[T]) Metric() Metric {
	return idx.metric
}

// Len returns the number of indexed items
func (idx *Index[T]) Len() int {
	return len(idx.items)
}

// Add appends payload under id. Items with an empty vector are dropped with a
// warning; the return value reports whether the item was indexed.
func (idx *Index[T]) Add(payload T, vector []float64, id string) bool {
	if len(vector) == 0 {
		idx.logger.Warn("knn: dropping item with empty vector", "id", id)
		return false
	}
	idx.items = append(idx.items, Item[T]{ID: id, Vector: vector, Payload: payload})
	return true
}

// AddAll adds each item in order
func (idx *Index[T]) AddAll(items []Item[T]) int {
	added := 0
	for _, it := range items {
		if idx.Add(it.Payload, it.Vector, it.ID) {
			added++
		}
	}
	return added
}

// Clear removes all items
func (idx *Index[T]) Clear() {
	idx.items = nil
}

// Search scores every item not in excludeIDs against query and returns the
// best k. Equal scores keep insertion order. A dimension mismatch against any
// candidate fails the whole search.
func (idx *Index[T]) Search(query []float64, excludeIDs []string) ([]SearchResult[T], error) {
	excluded := make(map[string]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	results := make([]SearchResult[T], 0, len(idx.items))
	for _, it := range idx.items {
		if _, skip := excluded[it.ID]; skip {
			continue
		}

		score, err := idx.score(query, it.Vector)
		if err != nil {
			return nil, fmt.Errorf("scoring item %s: %w", it.ID, err)
		}

		results = append(results, SearchResult[T]{
			ID:      it.ID,
			Payload: it.Payload,
			Score:   score,
		})
	}

	if idx.metric == Euclidean {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score < results[j].Score
		})
	} else {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}

	if len(results) > idx.k {
		results = results[:idx.k]
	}

	return results, nil
}

func (idx *Index[T]) score(query, vector []float64) (float64, error) {
	if idx.metric == Euclidean {
		return vecmath.EuclideanDistance(query, vector)
	}
	return vecmath.CosineSimilarity(query, vector)
}
