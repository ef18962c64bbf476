// Package memory is the in-memory decision store used by unit tests and
// local development.
package memory

import (
	"context"
	"sync"

	"patra/internal/eligibility/models"
)

// Store keeps determinations in memory, newest last.
type Store struct {
	mu      sync.RWMutex
	records []*models.DecisionRecord
}

// New creates an empty in-memory decision store.
func New() *Store {
	return &Store{}
}

// Save appends one determination.
func (s *Store) Save(_ context.Context, record *models.DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// ListBySubject returns determinations for one subject hash, newest first.
func (s *Store) ListBySubject(_ context.Context, subjectHash string, limit int) ([]*models.DecisionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.DecisionRecord
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		if s.records[i].SubjectHash == subjectHash {
			out = append(out, s.records[i])
		}
	}
	return out, nil
}

// Len reports how many determinations are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
