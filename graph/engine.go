package graph

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/jokegraph/graph/emit"
	"github.com/dshills/jokegraph/graph/store"
)

// Engine executes a finalized Graph.
//
// Each step invokes the current node with the current snapshot, merges the
// returned update through the schema, asks the node's outgoing edge for the
// next target, and stops when that target is End. A run is bounded by a step
// count checked before every invocation.
//
// Example:
//
//	engine := graph.New(g, graph.WithEmitter(emit.NewLogEmitter(os.Stderr, false)))
//	final, err := engine.Run(ctx, graph.Snapshot{}, 100)
//	if errors.Is(err, graph.ErrStepBoundExceeded) {
//	    // the workflow did not terminate within 100 steps
//	}
//
// An Engine is stateless between runs and may execute several runs
// concurrently provided its nodes allow it.
type Engine struct {
	graph    *Graph
	emitter  emit.Emitter
	metrics  *PrometheusMetrics
	store    store.Store
	newRunID func() string
}

// Result describes a finished run.
type Result struct {
	RunID string

	// State is the last snapshot produced. On abort it is the state after the
	// last successful step.
	State Snapshot

	// Steps counts completed node invocations.
	Steps int

	// Path lists the nodes invoked, in order.
	Path []string
}

// New creates an Engine for g.
func New(g *Graph, opts ...Option) *Engine {
	e := &Engine{
		graph:    g,
		emitter:  emit.NewNullEmitter(),
		newRunID: defaultRunID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the graph the engine executes.
func (e *Engine) Graph() *Graph {
	return e.graph
}

// Run executes the graph from its entry node and returns the final state.
//
// A zero initial snapshot starts from the schema defaults. stepBound must be
// positive; when the run has performed stepBound steps without reaching End
// it stops with a *StepBoundExceededError. On any error the returned snapshot
// is the state after the last completed step.
func (e *Engine) Run(ctx context.Context, initial Snapshot, stepBound int) (Snapshot, error) {
	res, err := e.Execute(ctx, initial, stepBound)
	return res.State, err
}

// Execute is Run with the full run record.
func (e *Engine) Execute(ctx context.Context, initial Snapshot, stepBound int) (Result, error) {
	if e.graph == nil {
		return Result{State: initial}, &EngineError{Message: "graph is required", Code: "MISSING_GRAPH"}
	}
	if stepBound <= 0 {
		return Result{State: initial}, &EngineError{Message: "step bound must be positive", Code: "INVALID_STEP_BOUND"}
	}

	schema := e.graph.schema
	state := initial
	if state.IsZero() {
		state = schema.Defaults()
	} else if state.Schema() != schema {
		return Result{State: initial}, &EngineError{Message: "initial state was built from a different schema", Code: "SCHEMA_MISMATCH"}
	}

	res := Result{RunID: e.newRunID(), State: state}
	e.metrics.RunStarted()
	e.emit(res.RunID, 0, "", emit.MsgRunStart, map[string]interface{}{
		"entry":      e.graph.Entry(),
		"step_bound": stepBound,
	})

	current := e.graph.entry
	for {
		node := &e.graph.nodes[current]
		if res.Steps >= stepBound {
			return e.abort(res, &StepBoundExceededError{Bound: stepBound, Steps: res.Steps, NodeID: node.id})
		}
		step := res.Steps + 1

		e.emit(res.RunID, step, node.id, emit.MsgNodeStart, nil)
		start := time.Now()
		update, err := node.run.Run(ctx, res.State)
		latency := time.Since(start)
		if err != nil {
			e.metrics.RecordStep(node.id, latency, "error")
			return e.abort(res, asNodeError(node.id, err))
		}

		next, err := schema.Merge(res.State, update)
		if err != nil {
			e.metrics.RecordStep(node.id, latency, "error")
			return e.abort(res, attachNode(node.id, err))
		}
		res.State = next
		res.Steps = step
		res.Path = append(res.Path, node.id)
		e.metrics.RecordStep(node.id, latency, "success")
		e.emit(res.RunID, step, node.id, emit.MsgNodeEnd, map[string]interface{}{
			"duration_ms": latency.Milliseconds(),
		})

		r, err := node.next.resolve(res.State)
		if err != nil {
			return e.abort(res, err)
		}
		target := e.targetName(r.to)
		if r.fallback {
			e.metrics.RecordFallback(node.id)
		}
		e.emit(res.RunID, step, node.id, emit.MsgRoute, map[string]interface{}{
			"label":    r.label,
			"target":   target,
			"fallback": r.fallback,
		})

		if e.store != nil {
			rec := store.Record{
				RunID:  res.RunID,
				Step:   step,
				NodeID: node.id,
				Label:  r.label,
				Next:   target,
				State:  res.State.Values(),
				At:     time.Now().UTC(),
			}
			if err := e.store.SaveStep(ctx, rec); err != nil {
				return e.abort(res, &EngineError{Message: "failed to save step: " + err.Error(), Code: "STORE_ERROR"})
			}
		}

		if r.to == endIndex {
			e.metrics.RunFinished(OutcomeCompleted)
			e.emit(res.RunID, 0, "", emit.MsgRunEnd, map[string]interface{}{"steps": res.Steps})
			return res, nil
		}
		current = r.to
	}
}

func (e *Engine) abort(res Result, err error) (Result, error) {
	e.metrics.RunFinished(outcomeOf(err))
	e.emitter.Emit(emit.Event{
		RunID: res.RunID,
		Msg:   emit.MsgRunAbort,
		Meta: map[string]interface{}{
			"steps": res.Steps,
			"error": err.Error(),
		},
		Err: err,
	})
	return res, err
}

func (e *Engine) emit(runID string, step int, nodeID, msg string, meta map[string]interface{}) {
	e.emitter.Emit(emit.Event{RunID: runID, Step: step, NodeID: nodeID, Msg: msg, Meta: meta})
}

func (e *Engine) targetName(idx int) string {
	if idx == endIndex {
		return End().String()
	}
	return e.graph.nodes[idx].id
}

func asNodeError(nodeID string, err error) error {
	var nodeErr *NodeError
	if errors.As(err, &nodeErr) {
		if nodeErr.NodeID != "" {
			return nodeErr
		}
		// The node may return a shared value; tag a copy.
		tagged := *nodeErr
		tagged.NodeID = nodeID
		return &tagged
	}
	return &NodeError{Message: err.Error(), Code: "NODE_FAILED", NodeID: nodeID, Cause: err}
}

func attachNode(nodeID string, err error) error {
	var unknown *UnknownFieldError
	if errors.As(err, &unknown) {
		unknown.NodeID = nodeID
	}
	var typeErr *FieldTypeError
	if errors.As(err, &typeErr) {
		typeErr.NodeID = nodeID
	}
	return err
}

func outcomeOf(err error) string {
	var (
		nodeErr   *NodeError
		configErr *GraphConfigError
		engineErr *EngineError
	)
	switch {
	case errors.Is(err, ErrStepBoundExceeded):
		return OutcomeStepBound
	case errors.As(err, &nodeErr):
		return OutcomeNodeError
	case errors.As(err, &configErr):
		return OutcomeConfig
	case errors.As(err, &engineErr) && engineErr.Code == "STORE_ERROR":
		return OutcomeStoreError
	default:
		return OutcomeStateError
	}
}
