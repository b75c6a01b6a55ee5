package graph

import (
	"fmt"
	"maps"
	"strings"
)

const (
	// endIndex is the compiled form of End.
	endIndex = -1

	// noFallback marks a conditional edge without a default target.
	noFallback = -2
)

// Graph is a validated, immutable workflow definition produced by
// Builder.Finalize. Node functions and edge targets are resolved to slice
// positions at finalize time, so execution does no lookups by name.
//
// A Graph is safe to share between engines and runs.
type Graph struct {
	schema *Schema
	entry  int
	nodes  []compiledNode
}

type compiledNode struct {
	id   string
	run  Node
	next compiledEdge
}

type compiledEdge struct {
	spec        *edgeSpec
	conditional bool
	to          int
	routes      map[string]int
	fallback    int
}

// route is the outcome of resolving an edge after a step.
type route struct {
	to       int
	label    string
	fallback bool
}

// resolve picks the next node for the post-update state.
func (e *compiledEdge) resolve(state Snapshot) (route, error) {
	if !e.conditional {
		return route{to: e.to}, nil
	}
	label := e.spec.router(state)
	if to, ok := e.routes[label]; ok {
		return route{to: to, label: label}, nil
	}
	if e.fallback == noFallback {
		return route{label: label}, &GraphConfigError{
			Node:   e.spec.from,
			Edge:   e.spec.describe(),
			Reason: fmt.Sprintf("router returned undeclared label %q and no default target is set", label),
		}
	}
	return route{to: e.fallback, label: label, fallback: true}, nil
}

// Schema returns the state schema the graph operates on.
func (g *Graph) Schema() *Schema {
	return g.schema
}

// Entry returns the entry node ID.
func (g *Graph) Entry() string {
	return g.nodes[g.entry].id
}

// Nodes returns node IDs in registration order.
func (g *Graph) Nodes() []string {
	ids := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		ids[i] = n.id
	}
	return ids
}

// Edges returns every node's outgoing edge set in registration order.
func (g *Graph) Edges() []EdgeInfo {
	out := make([]EdgeInfo, 0, len(g.nodes))
	for _, n := range g.nodes {
		spec := n.next.spec
		info := EdgeInfo{From: n.id, Conditional: spec.conditional}
		if !spec.conditional {
			info.To = spec.to
		} else {
			info.Labels = sortedLabels(spec.routes)
			info.Routes = maps.Clone(spec.routes)
			if spec.fallback != nil {
				d := *spec.fallback
				info.Default = &d
			}
		}
		out = append(out, info)
	}
	return out
}

// Mermaid renders the graph as a Mermaid flowchart.
func (g *Graph) Mermaid() string {
	var b strings.Builder
	b.WriteString("graph TD\n")
	b.WriteString("    __start__([START]) --> " + g.Entry() + "\n")
	usesEnd := false
	target := func(t Target) string {
		if t.IsEnd() {
			usesEnd = true
			return "__end__"
		}
		return t.Node()
	}
	for _, e := range g.Edges() {
		if !e.Conditional {
			fmt.Fprintf(&b, "    %s --> %s\n", e.From, target(e.To))
			continue
		}
		for _, label := range e.Labels {
			fmt.Fprintf(&b, "    %s -.->|%s| %s\n", e.From, label, target(e.Routes[label]))
		}
		if e.Default != nil {
			fmt.Fprintf(&b, "    %s -.->|default| %s\n", e.From, target(*e.Default))
		}
	}
	if usesEnd {
		b.WriteString("    __end__([END])\n")
	}
	return b.String()
}
