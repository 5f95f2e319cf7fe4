package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/taxomap/pkg/taxomap/internalerr"
	"github.com/cognicore/taxomap/pkg/taxomap/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu   sync.RWMutex
	runs map[string]store.Run
	rows map[string][]store.Row
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs: make(map[string]store.Run),
		rows: make(map[string][]store.Row),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun stores a copy of the run and its rows.
func (s *Store) SaveRun(ctx context.Context, run store.Run, rows []store.Row) error {
	if run.ID == "" {
		return fmt.Errorf("%w: run id is empty", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	s.rows[run.ID] = append([]store.Row(nil), rows...)
	return nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID > runs[j].ID
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// RunRows returns a copy of the rows stored for a run.
func (s *Store) RunRows(ctx context.Context, id string) ([]store.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return append([]store.Row(nil), rows...), nil
}
