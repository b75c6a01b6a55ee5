package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Snapshot is an immutable view of workflow state: one value per declared
// field. A new Snapshot is produced by Schema.Merge on every step; existing
// snapshots are never modified, so they can be kept for inspection.
//
// Accumulate fields are always stored as []any and are copied on read.
type Snapshot struct {
	schema *Schema
	values []any
}

// Schema returns the schema the snapshot conforms to, or nil for the zero Snapshot.
func (s Snapshot) Schema() *Schema {
	return s.schema
}

// IsZero reports whether s is the zero Snapshot.
func (s Snapshot) IsZero() bool {
	return s.schema == nil
}

// Get returns the value of the named field.
func (s Snapshot) Get(name string) (any, bool) {
	if s.schema == nil {
		return nil, false
	}
	i, ok := s.schema.index[name]
	if !ok {
		return nil, false
	}
	if seq, ok := s.values[i].([]any); ok {
		return slices.Clone(seq), true
	}
	return s.values[i], true
}

// Len returns the length of an Accumulate field's sequence, or 0 if the field
// is unknown or not a sequence.
func (s Snapshot) Len(name string) int {
	if s.schema == nil {
		return 0
	}
	i, ok := s.schema.index[name]
	if !ok {
		return 0
	}
	seq, _ := s.values[i].([]any)
	return len(seq)
}

// Values returns a copy of the snapshot as a plain map.
func (s Snapshot) Values() map[string]any {
	out := make(map[string]any, len(s.values))
	if s.schema == nil {
		return out
	}
	for i, f := range s.schema.fields {
		if seq, ok := s.values[i].([]any); ok {
			out[f.Name] = slices.Clone(seq)
			continue
		}
		out[f.Name] = s.values[i]
	}
	return out
}

// MarshalJSON encodes the snapshot as an object with keys in schema order.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if s.schema != nil {
		for i, f := range s.schema.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Name)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(s.values[i])
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String renders the snapshot as name=value pairs in schema order.
func (s Snapshot) String() string {
	if s.schema == nil {
		return "{}"
	}
	parts := make([]string, len(s.values))
	for i, f := range s.schema.fields {
		parts[i] = fmt.Sprintf("%s=%v", f.Name, s.values[i])
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Value returns the named field converted to T.
// ok is false if the field is missing or holds a different type.
//
// Example:
//
//	lang, _ := graph.Value[string](state, "language")
func Value[T any](s Snapshot, name string) (T, bool) {
	var zero T
	v, ok := s.Get(name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Sequence returns an Accumulate field's elements as []T.
// ok is false if the field is missing, not a sequence, or holds an element
// that is not a T.
func Sequence[T any](s Snapshot, name string) ([]T, bool) {
	v, ok := s.Get(name)
	if !ok {
		return nil, false
	}
	seq, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]T, 0, len(seq))
	for _, item := range seq {
		t, ok := item.(T)
		if !ok {
			return nil, false
		}
		out = append(out, t)
	}
	return out, true
}
