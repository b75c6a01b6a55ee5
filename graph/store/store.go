// Package store records the step history of graph runs for later inspection.
//
// A Store is a write-mostly journal: the engine appends one Record per step
// and tools read a run's history back. Runs are never resumed from it.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested run ID has no recorded steps.
var ErrNotFound = errors.New("not found")

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Store persists per-step records of graph runs.
//
// Implementations:
//   - MemStore: in-process, for tests and single sessions
//   - SQLStore: SQLite or MySQL via database/sql
type Store interface {
	// SaveStep appends the record for one executed step.
	// Saving the same (RunID, Step) twice replaces the earlier record.
	SaveStep(ctx context.Context, rec Record) error

	// LoadSteps returns a run's records ordered by step.
	// Returns ErrNotFound if the run has none.
	LoadSteps(ctx context.Context, runID string) ([]Record, error)

	// LoadLatest returns the record with the highest step number for a run.
	// Returns ErrNotFound if the run has none.
	LoadLatest(ctx context.Context, runID string) (Record, error)

	// Runs lists the IDs of all recorded runs in sorted order.
	Runs(ctx context.Context) ([]string, error)

	// Close releases resources held by the store.
	Close() error
}

// Record is the journal entry for one executed step.
type Record struct {
	// RunID identifies the run.
	RunID string `json:"run_id"`

	// Step is the 1-indexed step number.
	Step int `json:"step"`

	// NodeID is the node that ran in this step.
	NodeID string `json:"node_id"`

	// Label is the router label chosen after the step; empty for static edges.
	Label string `json:"label,omitempty"`

	// Next is the resolved next target ("END" for the terminal target).
	Next string `json:"next"`

	// State is the post-merge snapshot as plain values.
	State map[string]any `json:"state"`

	// At is when the step finished.
	At time.Time `json:"at"`
}
