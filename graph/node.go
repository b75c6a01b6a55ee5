package graph

import "context"

// Node is a named processing step in the workflow graph.
//
// Run receives the current snapshot and returns a partial update naming only
// declared fields. It may perform side effects (console output, network calls)
// before returning, and may block; the engine waits. It must not retain or
// modify the snapshot's sequences.
//
// A non-nil error aborts the run with a NodeError.
type Node interface {
	Run(ctx context.Context, state Snapshot) (Update, error)
}

// NodeFunc is a function adapter that implements the Node interface.
//
// Example:
//
//	menu := graph.NodeFunc(func(ctx context.Context, s graph.Snapshot) (graph.Update, error) {
//	    return graph.Update{"choice": "q"}, nil
//	})
type NodeFunc func(ctx context.Context, state Snapshot) (Update, error)

// Run implements the Node interface for NodeFunc.
func (f NodeFunc) Run(ctx context.Context, state Snapshot) (Update, error) {
	return f(ctx, state)
}

// NodeError represents an error that occurred during node execution.
type NodeError struct {
	// Message is the human-readable error description.
	Message string

	// Code is a machine-readable error code for programmatic handling.
	Code string

	// NodeID identifies which node produced this error.
	NodeID string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	if e.NodeID != "" {
		return "node " + e.NodeID + ": " + e.Message
	}
	return e.Message
}

// Unwrap returns the underlying cause error for error wrapping support.
func (e *NodeError) Unwrap() error {
	return e.Cause
}
