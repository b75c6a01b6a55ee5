package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// dialect holds the statements that differ between SQL backends.
type dialect struct {
	name   string
	schema []string
	upsert string
}

// SQLStore is a database/sql implementation of Store shared by the SQLite
// and MySQL backends. States are stored as JSON, so values read back are
// plain JSON types (map[string]any, []any, float64, string, bool).
//
// Schema:
//   - run_steps: one row per (run_id, step)
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	mu      sync.RWMutex
	closed  bool
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: d}
	for _, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to create %s schema: %w", d.name, err)
		}
	}
	return s, nil
}

// Open opens a store for the named driver ("sqlite" or "mysql").
func Open(driver, dsn string) (*SQLStore, error) {
	switch driver {
	case "sqlite":
		return NewSQLiteStore(dsn)
	case "mysql":
		return NewMySQLStore(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}

func (s *SQLStore) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// SaveStep upserts rec keyed by (RunID, Step).
func (s *SQLStore) SaveStep(ctx context.Context, rec Record) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	stateJSON, err := json.Marshal(rec.State)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.dialect.upsert,
		rec.RunID, rec.Step, rec.NodeID, rec.Label, rec.Next, string(stateJSON), rec.At.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save step: %w", err)
	}
	return nil
}

// LoadSteps returns all records of a run ordered by step.
func (s *SQLStore) LoadSteps(ctx context.Context, runID string) ([]Record, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, step, node_id, label, next_target, state, at_unix_nano
		FROM run_steps
		WHERE run_id = ?
		ORDER BY step ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query steps: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate steps: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records, nil
}

// LoadLatest returns the highest-numbered record of a run.
func (s *SQLStore) LoadLatest(ctx context.Context, runID string) (Record, error) {
	if err := s.checkOpen(); err != nil {
		return Record{}, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, step, node_id, label, next_target, state, at_unix_nano
		FROM run_steps
		WHERE run_id = ?
		ORDER BY step DESC
		LIMIT 1
	`, runID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

// Runs lists distinct run IDs in sorted order.
func (s *SQLStore) Runs(ctx context.Context) ([]string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT run_id FROM run_steps ORDER BY run_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the underlying database. It is safe to call more than once.
func (s *SQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		rec       Record
		stateJSON string
		atNano    int64
	)
	if err := sc.Scan(&rec.RunID, &rec.Step, &rec.NodeID, &rec.Label, &rec.Next, &stateJSON, &atNano); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("failed to scan step: %w", err)
	}
	if err := json.Unmarshal([]byte(stateJSON), &rec.State); err != nil {
		return Record{}, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	rec.At = time.Unix(0, atNano).UTC()
	return rec, nil
}
