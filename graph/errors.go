// Package graph provides the core graph execution engine for jokegraph.
package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStepBoundExceeded indicates that a run performed as many steps as its
// bound allowed without reaching End. It protects against non-terminating
// cycles; a hung node is not covered.
var ErrStepBoundExceeded = errors.New("execution exceeded step bound")

var errNotSequence = errors.New("value is not a sequence")

// GraphConfigError reports a structural problem in a graph definition:
// a dangling edge, a duplicate node, a missing entry point, or a router label
// with nowhere to go. It is returned by Builder.Finalize, and by Run when a
// router returns an undeclared label on an edge without a default target.
type GraphConfigError struct {
	// Node is the offending node ID, if any.
	Node string

	// Edge describes the offending edge ("from -> to" or "from [label]"), if any.
	Edge string

	Reason string
}

func (e *GraphConfigError) Error() string {
	var b strings.Builder
	b.WriteString("graph config")
	if e.Node != "" {
		b.WriteString(": node " + e.Node)
	}
	if e.Edge != "" {
		b.WriteString(": edge " + e.Edge)
	}
	b.WriteString(": " + e.Reason)
	return b.String()
}

// UnknownFieldError reports an update naming a field outside the schema.
// It is a contract violation by the node and aborts the run.
type UnknownFieldError struct {
	Field  string
	NodeID string
}

func (e *UnknownFieldError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("node %s: unknown state field %q", e.NodeID, e.Field)
	}
	return fmt.Sprintf("unknown state field %q", e.Field)
}

// FieldTypeError reports a non-sequence value sent to an Accumulate field.
type FieldTypeError struct {
	Field  string
	NodeID string
	Got    string
}

func (e *FieldTypeError) Error() string {
	msg := fmt.Sprintf("accumulate field %q requires a sequence, got %s", e.Field, e.Got)
	if e.NodeID != "" {
		return "node " + e.NodeID + ": " + msg
	}
	return msg
}

// StepBoundExceededError is returned when a run reaches its step bound.
// It matches ErrStepBoundExceeded with errors.Is.
type StepBoundExceededError struct {
	Bound int

	// Steps is the number of node invocations performed (always equal to Bound).
	Steps int

	// NodeID is the node that would have run next.
	NodeID string
}

func (e *StepBoundExceededError) Error() string {
	return fmt.Sprintf("%s: %d steps performed, next node %s", ErrStepBoundExceeded, e.Steps, e.NodeID)
}

// Is makes errors.Is(err, ErrStepBoundExceeded) succeed.
func (e *StepBoundExceededError) Is(target error) bool {
	return target == ErrStepBoundExceeded
}

// EngineError represents an invalid Engine invocation.
type EngineError struct {
	Message string
	Code    string
}

func (e *EngineError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}
