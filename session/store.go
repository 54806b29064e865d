package session

import (
	"sync"

	"issue-triage-pipeline/models"
)

// DefaultCapacity is the number of runs kept before the oldest is evicted.
const DefaultCapacity = 20

// Store keeps completed runs in memory for the lifetime of the process.
// Nothing is persisted; restarting the service discards all runs. Safe for
// concurrent use.
type Store struct {
	mu       sync.RWMutex
	capacity int
	runs     map[string]*models.RunResult
	order    []string
}

// NewStore creates a store holding at most capacity runs; capacity <= 0
// selects DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		runs:     make(map[string]*models.RunResult),
	}
}

// Put stores a run, evicting the oldest run when the store is full.
func (s *Store) Put(result *models.RunResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[result.ID]; !exists {
		s.order = append(s.order, result.ID)
	}
	s.runs[result.ID] = result

	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.runs, oldest)
	}
}

// Get returns the run with the given id, or false when it is unknown or
// already evicted.
func (s *Store) Get(id string) (*models.RunResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.runs[id]
	return result, ok
}

// Len returns the number of runs currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
