// Package graph provides the core graph execution engine for jokegraph.
package graph

// Target is the destination of an edge: either a node ID or the terminal
// marker returned by End.
//
// The terminal case is a separate variant rather than a reserved node name,
// so no node ID can ever collide with it.
//
// Example:
//
//	b.AddEdge("fetch", graph.To("menu"))
//	b.AddEdge("exit", graph.End())
type Target struct {
	node     string
	terminal bool
}

// To returns a Target that routes to the node with the given ID.
func To(nodeID string) Target {
	return Target{node: nodeID}
}

// End returns the terminal Target. Reaching it is the only normal way a run ends.
func End() Target {
	return Target{terminal: true}
}

// IsEnd reports whether t is the terminal Target.
func (t Target) IsEnd() bool {
	return t.terminal
}

// Node returns the destination node ID, or "" for the terminal Target.
func (t Target) Node() string {
	if t.terminal {
		return ""
	}
	return t.node
}

// String renders the target for logs and error messages.
func (t Target) String() string {
	if t.terminal {
		return "END"
	}
	return t.node
}
