// ABOUTME: Tests for vector math primitives
// ABOUTME: Covers symmetry, self-similarity, zero vectors, and dimension errors
package vecmath

import (
	"errors"
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"scaled", []float64{1, 1}, []float64{3, 3}, 1.0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0.0},
		{"both zero", []float64{0, 0}, []float64{0, 0}, 0.0},
		{"empty", []float64{}, []float64{}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			if err != nil {
				t.Fatalf("CosineSimilarity() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	pairs := [][2][]float64{
		{{0.1, 0.7, -0.3}, {0.5, -0.2, 0.9}},
		{{3, 4}, {4, 3}},
		{{-1, -2, -3, -4}, {1, 0, 1, 0}},
	}

	for i, p := range pairs {
		ab, err := CosineSimilarity(p[0], p[1])
		if err != nil {
			t.Fatalf("pair %d: error = %v", i, err)
		}
		ba, err := CosineSimilarity(p[1], p[0])
		if err != nil {
			t.Fatalf("pair %d: error = %v", i, err)
		}
		if math.Abs(ab-ba) > 1e-12 {
			t.Errorf("pair %d: cos(a,b) = %v, cos(b,a) = %v", i, ab, ba)
		}
		if ab < -1-1e-9 || ab > 1+1e-9 {
			t.Errorf("pair %d: similarity %v outside [-1, 1]", i, ab)
		}
	}
}

func TestEuclideanDistance(t *testing.T) {
	got, err := EuclideanDistance([]float64{0, 0}, []float64{3, 4})
	if err != nil {
		t.Fatalf("EuclideanDistance() error = %v", err)
	}
	if got != 5 {
		t.Errorf("EuclideanDistance() = %v, want 5", got)
	}

	same, err := EuclideanDistance([]float64{1.5, -2}, []float64{1.5, -2})
	if err != nil {
		t.Fatalf("EuclideanDistance() error = %v", err)
	}
	if same != 0 {
		t.Errorf("distance to self = %v, want 0", same)
	}
}

func TestDimensionMismatch(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{1, 2}

	if _, err := CosineSimilarity(a, b); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("CosineSimilarity() error = %v, want ErrDimensionMismatch", err)
	}
	if _, err := EuclideanDistance(a, b); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("EuclideanDistance() error = %v, want ErrDimensionMismatch", err)
	}
}
