// Package progress holds the volatile, process-wide view of running
// generations. It is a best-effort status cache for pollers; the durable
// generation record stays authoritative.
package progress

import (
	"context"
	"sync"
	"time"

	"github.com/tomtomjskim/blog-automation-sub001/internal/domain"
)

// Entry is the pollable state of one job.
type Entry struct {
	Status    domain.GenerationStatus
	Message   string
	Error     string
	UpdatedAt time.Time
}

// Store maps job ids to progress entries. Entries are written by the
// orchestrator only; any number of pollers may read concurrently. Terminal
// entries are evicted after a retention window.
type Store struct {
	mu        sync.Mutex
	entries   map[string]Entry
	retention time.Duration
	now       func() time.Time
}

const (
	defaultRetention = 10 * time.Minute
	sweepInterval    = time.Minute
)

// NewStore creates an empty store with the given terminal-entry retention.
// A non-positive retention falls back to the default.
func NewStore(retention time.Duration) *Store {
	if retention <= 0 {
		retention = defaultRetention
	}
	return &Store{
		entries:   make(map[string]Entry),
		retention: retention,
		now:       time.Now,
	}
}

// Begin registers a job as running.
func (s *Store) Begin(id string) {
	s.set(id, Entry{Status: domain.StatusRunning, Message: "생성 준비 중..."})
}

// Update replaces the progress message of a running job. Terminal entries are
// never moved back to running.
func (s *Store) Update(id, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.entries[id]
	if ok && cur.Status.Terminal() {
		return
	}
	s.entries[id] = Entry{Status: domain.StatusRunning, Message: message, UpdatedAt: s.now()}
}

// Complete marks a job completed.
func (s *Store) Complete(id, message string) {
	s.set(id, Entry{Status: domain.StatusCompleted, Message: message})
}

// Fail marks a job failed with the captured diagnostic.
func (s *Store) Fail(id, message, errText string) {
	s.set(id, Entry{Status: domain.StatusFailed, Message: message, Error: errText})
}

// Get returns the entry for a job id, if present.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	return e, ok
}

// RunningCount reports how many jobs are currently in the running state.
// The admission check reads this without holding any lock across the
// subsequent insert, which is the documented soft-guarantee.
func (s *Store) RunningCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.Status == domain.StatusRunning {
			n++
		}
	}
	return n
}

// Sweep evicts terminal entries older than the retention window and returns
// how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.retention)
	removed := 0
	for id, e := range s.entries {
		if e.Status.Terminal() && e.UpdatedAt.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on a timer until ctx is cancelled.
func (s *Store) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

func (s *Store) set(id string, e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.UpdatedAt = s.now()
	s.entries[id] = e
}
