package store

import (
	"errors"
	"sync"

	"github.com/i474232898/weather-log/internal/runner"
)

var (
	// ErrNotFound is returned when no run has been recorded yet.
	ErrNotFound = errors.New("no runs recorded")
)

// MemoryStore is a concurrency-safe in-memory history of run results.
type MemoryStore struct {
	mu sync.RWMutex

	// oldest first
	runs []runner.Result

	// max number of results kept; <= 0 means unlimited
	maxHistory int
}

// NewMemoryStore creates a new MemoryStore.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int) *MemoryStore {
	return &MemoryStore{maxHistory: maxHistory}
}

// SaveRun appends a result and enforces retention by count.
func (s *MemoryStore) SaveRun(res runner.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, res)

	if s.maxHistory > 0 && len(s.runs) > s.maxHistory {
		over := len(s.runs) - s.maxHistory
		s.runs = append([]runner.Result(nil), s.runs[over:]...)
	}
}

// Latest returns the most recent run.
func (s *MemoryStore) Latest() (runner.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return runner.Result{}, ErrNotFound
	}
	return s.runs[len(s.runs)-1], nil
}

// Recent returns up to limit runs, newest first. limit <= 0 returns all.
func (s *MemoryStore) Recent(limit int) []runner.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.runs)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]runner.Result, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.runs[i])
	}
	return out
}

// Len returns the number of runs held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
