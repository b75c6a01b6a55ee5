// Package graph provides the core graph execution engine for jokegraph.
package graph

import (
	"sort"
	"strings"
)

// Router maps a post-update snapshot to one label of a conditional edge.
//
// Routers should only read state. A router that returns a label outside the
// edge's declared set is not an error: the edge's default target is used
// instead (see WithDefault).
type Router func(state Snapshot) string

// EdgeOption configures a conditional edge.
type EdgeOption func(*edgeSpec)

// WithDefault sets the target used when the router returns an undeclared label.
func WithDefault(t Target) EdgeOption {
	return func(e *edgeSpec) {
		e.fallback = &t
	}
}

// edgeSpec is the builder-side description of one node's outgoing edge set.
type edgeSpec struct {
	from        string
	conditional bool

	// static edge
	to Target

	// conditional edge
	router   Router
	routes   map[string]Target
	fallback *Target
}

func (e *edgeSpec) describe() string {
	if !e.conditional {
		return e.from + " -> " + e.to.String()
	}
	return e.from + " [" + strings.Join(sortedLabels(e.routes), ",") + "]"
}

func sortedLabels(routes map[string]Target) []string {
	labels := make([]string, 0, len(routes))
	for l := range routes {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// EdgeInfo describes a finalized edge set for inspection and rendering.
type EdgeInfo struct {
	From string

	// Conditional is false for a static edge.
	Conditional bool

	// To is the target of a static edge.
	To Target

	// Labels lists a conditional edge's declared labels in sorted order,
	// and Routes maps each of them to its target.
	Labels []string
	Routes map[string]Target

	// Default is the fallback target of a conditional edge, if declared.
	Default *Target
}
