package store

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no generation run has been recorded.
	ErrNotFound = errors.New("no generation runs recorded")
)

// Run describes one completed generation run.
type Run struct {
	ID          string        `json:"id"`
	StartedAt   time.Time     `json:"startedAt"`
	Duration    time.Duration `json:"durationNs"`
	Cities      int           `json:"cities"`
	FailedCount int           `json:"failedCities"`
	CSVPath     string        `json:"csvPath,omitempty"`
	ChartPath   string        `json:"chartPath,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// MemoryStore is a concurrency-safe in-memory history of generation runs,
// oldest first.
type MemoryStore struct {
	mu   sync.RWMutex
	runs []Run

	// retention configuration
	maxHistory int           // max number of runs kept
	maxAge     time.Duration // optional max age for runs
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveRun appends a run and enforces retention.
func (s *MemoryStore) SaveRun(run Run) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, run)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.runs) > s.maxHistory {
		over := len(s.runs) - s.maxHistory
		s.runs = append([]Run(nil), s.runs[over:]...)
	}

	// Enforce retention by age; the newest run is always kept.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.runs)-1; i++ {
			if !s.runs[i].StartedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			s.runs = append([]Run(nil), s.runs[i:]...)
		}
	}
}

// Latest returns the most recent run.
func (s *MemoryStore) Latest() (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return Run{}, ErrNotFound
	}
	return s.runs[len(s.runs)-1], nil
}

// List returns a copy of the retained runs, newest first.
func (s *MemoryStore) List() []Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Run, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0; i-- {
		out = append(out, s.runs[i])
	}
	return out
}
