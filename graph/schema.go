// Package graph provides the core graph execution engine for jokegraph.
package graph

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
)

// Policy selects how a field's new value combines with its previous value.
type Policy int

const (
	// Replace overwrites the previous value with the newest one.
	Replace Policy = iota

	// Accumulate appends the update's sequence to the previous sequence,
	// preserving arrival order. Only valid for sequence-typed fields.
	Accumulate
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case Replace:
		return "replace"
	case Accumulate:
		return "accumulate"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Field declares one named state field and its merge policy.
//
// Default is the field's value in a fresh snapshot. For Accumulate fields it
// must be nil (an empty sequence) or a slice/array.
type Field struct {
	Name    string
	Policy  Policy
	Default any
}

// Update is a partial state update returned by a node. Keys must be declared
// field names.
type Update map[string]any

// overwrite marks an update value that replaces the field wholesale,
// regardless of its policy.
type overwrite struct {
	value any
}

// Overwrite wraps v so that Merge stores it as the field's new value even when
// the field's policy is Accumulate. For Accumulate fields v must still be a
// sequence. It is how a node clears an accumulated history:
//
//	return graph.Update{"jokes": graph.Overwrite([]Joke{})}, nil
func Overwrite(v any) any {
	return overwrite{value: v}
}

// Schema is the ordered set of state fields a graph operates on.
// It is immutable once created and safe to share between engines.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema validates fields and returns a Schema preserving their order.
//
// Returns a GraphConfigError if a name is empty or repeated, a policy is
// unknown, or an Accumulate default is not a sequence.
func NewSchema(fields ...Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, &GraphConfigError{Reason: "schema declares no fields"}
	}

	s := &Schema{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Name == "" {
			return nil, &GraphConfigError{Reason: fmt.Sprintf("field %d has an empty name", i)}
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, &GraphConfigError{Reason: "duplicate state field " + f.Name}
		}
		switch f.Policy {
		case Replace:
		case Accumulate:
			seq, err := toSequence(f.Default, true)
			if err != nil {
				return nil, &GraphConfigError{Reason: fmt.Sprintf("accumulate field %s: default must be a sequence, got %T", f.Name, f.Default)}
			}
			f.Default = seq
		default:
			return nil, &GraphConfigError{Reason: fmt.Sprintf("field %s has unknown policy %s", f.Name, f.Policy)}
		}
		s.fields[i] = f
		s.index[f.Name] = i
	}
	return s, nil
}

// Fields returns the declared fields in order.
func (s *Schema) Fields() []Field {
	return slices.Clone(s.fields)
}

// Field looks up a declared field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Defaults returns a snapshot holding every field's default value.
func (s *Schema) Defaults() Snapshot {
	values := make([]any, len(s.fields))
	for i, f := range s.fields {
		if f.Policy == Accumulate {
			values[i] = slices.Clone(f.Default.([]any))
			continue
		}
		values[i] = f.Default
	}
	return Snapshot{schema: s, values: values}
}

// NewSnapshot builds a snapshot from the defaults overlaid with values.
// Values for Accumulate fields replace the default sequence; they are not appended.
func (s *Schema) NewSnapshot(values map[string]any) (Snapshot, error) {
	snap := s.Defaults()
	for _, name := range sortedKeys(values) {
		i, ok := s.index[name]
		if !ok {
			return Snapshot{}, &UnknownFieldError{Field: name}
		}
		v := values[name]
		if s.fields[i].Policy == Accumulate {
			seq, err := toSequence(v, true)
			if err != nil {
				return Snapshot{}, &FieldTypeError{Field: name, Got: fmt.Sprintf("%T", v)}
			}
			v = seq
		}
		snap.values[i] = v
	}
	return snap, nil
}

// Merge applies update to old and returns the resulting snapshot.
//
// For each named field: Replace stores the update's value; Accumulate appends
// the update's sequence to the old one. Fields not named are carried over.
// old is never modified.
//
// Returns UnknownFieldError if update names an undeclared field and
// FieldTypeError if an Accumulate field receives a non-sequence. Keys are
// checked in sorted order so the reported field is deterministic.
func (s *Schema) Merge(old Snapshot, update Update) (Snapshot, error) {
	if old.schema != s {
		return Snapshot{}, &EngineError{
			Message: "snapshot was not created from this schema",
			Code:    "SCHEMA_MISMATCH",
		}
	}

	next := Snapshot{schema: s, values: slices.Clone(old.values)}
	for _, name := range sortedKeys(update) {
		i, ok := s.index[name]
		if !ok {
			return Snapshot{}, &UnknownFieldError{Field: name}
		}
		f := s.fields[i]
		v := update[name]

		if ow, ok := v.(overwrite); ok {
			if f.Policy == Accumulate {
				seq, err := toSequence(ow.value, false)
				if err != nil {
					return Snapshot{}, &FieldTypeError{Field: name, Got: fmt.Sprintf("%T", ow.value)}
				}
				next.values[i] = seq
				continue
			}
			next.values[i] = ow.value
			continue
		}

		switch f.Policy {
		case Replace:
			next.values[i] = v
		case Accumulate:
			add, err := toSequence(v, false)
			if err != nil {
				return Snapshot{}, &FieldTypeError{Field: name, Got: fmt.Sprintf("%T", v)}
			}
			prev := next.values[i].([]any)
			merged := make([]any, 0, len(prev)+len(add))
			merged = append(merged, prev...)
			merged = append(merged, add...)
			next.values[i] = merged
		}
	}
	return next, nil
}

// toSequence copies any slice or array into a fresh []any.
// Untyped nil is accepted as an empty sequence only when allowNil is set.
func toSequence(v any, allowNil bool) ([]any, error) {
	if v == nil {
		if allowNil {
			return []any{}, nil
		}
		return nil, errNotSequence
	}
	if seq, ok := v.([]any); ok {
		return append(make([]any, 0, len(seq)), seq...), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	default:
		return nil, errNotSequence
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
