package service

import (
	"context"
	"sync"
	"time"

	"github.com/filmflow/shootplan-api/internal/optimizer"
)

// RunState is the lifecycle phase of an optimization run.
type RunState string

const (
	RunStateQueued    RunState = "queued"
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateFailed    RunState = "failed"
	RunStateCancelled RunState = "cancelled"
)

// Finished reports whether the run reached a terminal state.
func (s RunState) Finished() bool {
	return s == RunStateCompleted || s == RunStateFailed || s == RunStateCancelled
}

// optimizeRun tracks one submitted optimization through its lifecycle.
// The snapshot is retained so the worker and the save path see exactly
// the data the caller submitted.
type optimizeRun struct {
	ID           string
	ProductionID string
	State        RunState
	SubmittedAt  time.Time
	FinishedAt   time.Time
	Err          string
	Result       *optimizer.ScheduleResult
	Snapshot     *optimizer.Snapshot

	ctx    context.Context
	cancel context.CancelFunc
}

// runStore is an in-memory TTL registry of optimization runs.
type runStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]*optimizeRun
}

func newRunStore(ttl time.Duration) *runStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &runStore{
		ttl:   ttl,
		items: make(map[string]*optimizeRun),
	}
}

func (s *runStore) Save(run *optimizeRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[run.ID] = run
}

// Get returns a copy of the run so readers never race the worker. Only
// terminal runs are evicted on expiry; an active solve must never be
// cancelled by a poll.
func (s *runStore) Get(id string) (optimizeRun, bool) {
	s.mu.RLock()
	run, ok := s.items[id]
	if !ok {
		s.mu.RUnlock()
		return optimizeRun{}, false
	}
	if run.State.Finished() && time.Since(run.SubmittedAt) > s.ttl {
		s.mu.RUnlock()
		s.Delete(id)
		return optimizeRun{}, false
	}
	copied := *run
	s.mu.RUnlock()
	return copied, true
}

// Update applies fn to the stored run under the lock.
func (s *runStore) Update(id string, fn func(run *optimizeRun)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.items[id]
	if !ok {
		return false
	}
	fn(run)
	return true
}

func (s *runStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.items[id]; ok && run.cancel != nil {
		run.cancel()
	}
	delete(s.items, id)
}
