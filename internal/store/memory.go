// Package store provides thread-safe, in-memory storage for completed
// analyses.
//
// Design rationale: analysis history exists so the dashboard can show past
// reports without re-querying upstreams; for that, an in-memory store with a
// by-document index is sufficient. Results are immutable once saved, so
// handing out shared pointers is safe. A production deployment would swap
// this for a document store keyed the same way.
package store

import (
	"errors"
	"sort"
	"sync"

	"veridian/diligence-api/internal/domain"
)

// ErrDuplicateAnalysis is returned when an analysis ID is saved twice.
var ErrDuplicateAnalysis = errors.New("analysis already exists")

// Store is a thread-safe in-memory data store.
type Store struct {
	mu sync.RWMutex

	analyses map[string]*domain.AnalysisResult

	// Secondary index: clean document digits → analysis IDs in save order.
	byDocument map[string][]string
}

// New creates an empty, ready-to-use Store.
func New() *Store {
	return &Store{
		analyses:   make(map[string]*domain.AnalysisResult),
		byDocument: make(map[string][]string),
	}
}

// SaveAnalysis persists a completed analysis and updates the document index.
func (s *Store) SaveAnalysis(res *domain.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.analyses[res.ID]; exists {
		return ErrDuplicateAnalysis
	}
	s.analyses[res.ID] = res
	s.byDocument[res.Document] = append(s.byDocument[res.Document], res.ID)
	return nil
}

// GetAnalysis retrieves a single analysis by ID.
func (s *Store) GetAnalysis(id string) (*domain.AnalysisResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.analyses[id]
	return res, ok
}

// ListByDocument returns every stored analysis for a document, newest first.
func (s *Store) ListByDocument(document string) []*domain.AnalysisResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byDocument[document]
	result := make([]*domain.AnalysisResult, 0, len(ids))
	for _, id := range ids {
		if res, ok := s.analyses[id]; ok {
			result = append(result, res)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].GeneratedAt.After(result[j].GeneratedAt)
	})
	return result
}

// Count returns the number of stored analyses.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.analyses)
}
