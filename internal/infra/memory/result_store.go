package memory

import (
	"context"
	"sync"

	"portal-quiz-service/internal/domain"
)

// ResultStore keeps completed results per learner in memory.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string][]domain.StoredResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string][]domain.StoredResult)}
}

func (s *ResultStore) SaveResult(_ context.Context, result domain.StoredResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.UserID] = append(s.results[result.UserID], result)
	return nil
}

// ListResults returns a learner's results, most recent first.
func (s *ResultStore) ListResults(_ context.Context, userID string) ([]domain.StoredResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.results[userID]
	out := make([]domain.StoredResult, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
	}
	return out, nil
}
