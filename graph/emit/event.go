// Package emit provides event emission and observability for graph execution.
package emit

// Event messages emitted by the engine.
const (
	MsgRunStart  = "run_start"
	MsgNodeStart = "node_start"
	MsgNodeEnd   = "node_end"
	MsgRoute     = "route"
	MsgRunEnd    = "run_end"
	MsgRunAbort  = "run_abort"
)

// Event represents an observability event emitted during graph execution.
//
// Common Meta keys:
//   - "duration_ms": node execution duration in milliseconds
//   - "label": router label chosen after a step
//   - "target": next node, or "END"
//   - "fallback": true when an undeclared label used the default target
//   - "steps": steps performed, on run_end and run_abort
//   - "error": error text, on run_abort
type Event struct {
	// RunID identifies the run that emitted this event.
	RunID string

	// Step is the 1-indexed step number. Zero for run-level events.
	Step int

	// NodeID identifies the node the event concerns; empty for run-level events.
	NodeID string

	// Msg names the event, one of the Msg* constants.
	Msg string

	// Meta contains additional structured data specific to this event.
	Meta map[string]interface{}

	// Err is the error behind a run_abort event. Its text is also in
	// Meta["error"]; emitters that can keep the value itself (spans) use Err.
	Err error
}
