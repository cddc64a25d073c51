package store

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/skilltree/pkg/observability"
)

// MemoryStore keeps runs in a map.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*Run)}
}

func (s *MemoryStore) Save(ctx context.Context, run *Run) error {
	if err := checkRun(run); err != nil {
		return err
	}
	start := time.Now()
	cp := *run
	s.mu.Lock()
	s.runs[run.ID] = &cp
	s.mu.Unlock()
	observability.Store().OnRunSaved(ctx, run.ID, time.Since(start))
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *run
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	out := make([]*Run, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, header(r))
	}
	s.mu.RUnlock()
	newestFirst(out)
	return out[:min(len(out), listLimit(limit))], nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[id]; !ok {
		return notFound(id)
	}
	delete(s.runs, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
