// Package vectorstore holds the ranking logic shared by the index
// implementations. Similarity is cosine; results are ordered best first
// with ties resolved by insertion order.
package vectorstore

import (
	"errors"
	"math"
	"sort"

	"docsqa/internal/domain"
)

// ErrInvalidK is returned when a search is requested with k < 1.
var ErrInvalidK = errors.New("k must be at least 1")

// Cosine returns the cosine similarity of two vectors. Zero-magnitude
// vectors score 0.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores records against the query vector and returns the top k,
// best first. Records are assumed to be in insertion order; the stable
// sort keeps that order between equal scores. Fewer than k records
// returns all of them.
func Rank(records []domain.Record, vector []float32, k int) ([]domain.SearchResult, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	results := make([]domain.SearchResult, len(records))
	for i, rec := range records {
		results[i] = domain.SearchResult{Chunk: rec.Chunk, Score: Cosine(rec.Vector, vector)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}
