package store

import (
	"context"
	"maps"
	"sort"
	"sync"
)

// MemStore is an in-memory implementation of Store.
//
// It keeps every run's records in a map keyed by run ID. Data is lost when
// the process exits. MemStore is safe for concurrent use.
type MemStore struct {
	mu     sync.RWMutex
	runs   map[string][]Record
	closed bool
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		runs: make(map[string][]Record),
	}
}

// SaveStep stores rec, replacing any record with the same run and step.
func (m *MemStore) SaveStep(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	rec.State = maps.Clone(rec.State)
	records := m.runs[rec.RunID]
	for i := range records {
		if records[i].Step == rec.Step {
			records[i] = rec
			return nil
		}
	}
	m.runs[rec.RunID] = append(records, rec)
	return nil
}

// LoadSteps returns a copy of the run's records sorted by step.
func (m *MemStore) LoadSteps(_ context.Context, runID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	records := m.runs[runID]
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	out := make([]Record, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool { return out[i].Step < out[j].Step })
	return out, nil
}

// LoadLatest returns the record with the highest step number.
// Out-of-order saves are handled.
func (m *MemStore) LoadLatest(_ context.Context, runID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Record{}, ErrClosed
	}

	records := m.runs[runID]
	if len(records) == 0 {
		return Record{}, ErrNotFound
	}
	latest := records[0]
	for _, r := range records[1:] {
		if r.Step > latest.Step {
			latest = r
		}
	}
	return latest, nil
}

// Runs returns the IDs of all recorded runs, sorted.
func (m *MemStore) Runs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	ids := make([]string, 0, len(m.runs))
	for id := range m.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close marks the store closed. Further operations return ErrClosed.
func (m *MemStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
