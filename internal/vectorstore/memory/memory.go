// Package memory provides an in-process index with the same search
// semantics as the persisted one. It backs unit tests and acts as the
// reference implementation of the ranking contract.
package memory

import (
	"context"
	"errors"
	"sync"

	"docsqa/internal/domain"
	"docsqa/internal/vectorstore"
)

// Store is a brute-force cosine index held in memory.
type Store struct {
	mu      sync.RWMutex
	records []domain.Record
}

// NewStore returns an empty in-memory store.
func NewStore() *Store { return &Store{} }

// Add appends records in order. Vectors must share one dimension.
func (s *Store) Add(records ...domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		if len(rec.Vector) == 0 {
			return errors.New("record has empty vector")
		}
		if len(s.records) > 0 && len(rec.Vector) != len(s.records[0].Vector) {
			return errors.New("vector dimension mismatch")
		}
		s.records = append(s.records, rec)
	}
	return nil
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Search returns the k nearest records, best first, ties by insertion order.
func (s *Store) Search(_ context.Context, vector []float32, k int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return vectorstore.Rank(s.records, vector, k)
}

var _ domain.Searcher = (*Store)(nil)
