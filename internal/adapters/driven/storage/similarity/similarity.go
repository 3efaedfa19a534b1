// Package similarity implements brute-force cosine ranking shared by the
// local vector stores.
package similarity

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
)

// ErrDimensionMismatch indicates vectors of different lengths were compared.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Cosine returns the cosine similarity of a and b.
// A zero-length or all-zero vector has similarity 0 with everything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// Candidate is a stored record and its embedding, in insertion order.
type Candidate struct {
	Record    domain.Record
	Embedding []float32
}

// TopK ranks candidates against query and returns the k best.
// Equal scores keep insertion order.
func TopK(candidates []Candidate, query []float32, k int) ([]domain.ScoredRecord, error) {
	if k <= 0 || len(candidates) == 0 {
		return []domain.ScoredRecord{}, nil
	}

	scored := make([]domain.ScoredRecord, 0, len(candidates))
	for _, c := range candidates {
		score, err := Cosine(query, c.Embedding)
		if err != nil {
			return nil, err
		}
		scored = append(scored, domain.ScoredRecord{Record: c.Record, Score: score})
	}

	slices.SortStableFunc(scored, func(a, b domain.ScoredRecord) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}
