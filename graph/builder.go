package graph

import (
	"errors"
	"fmt"
	"maps"
)

// Builder accumulates nodes and edges for a graph over one Schema.
//
// Builder methods never fail on their own; problems are recorded and reported
// together by Finalize, which is the only way to obtain an executable Graph.
//
// Example:
//
//	b := graph.NewBuilder(schema)
//	b.AddNode("menu", menuNode).
//	    AddNode("fetch", fetchNode).
//	    AddConditionalEdges("menu", route, map[string]graph.Target{
//	        "n": graph.To("fetch"),
//	        "q": graph.End(),
//	    }, graph.WithDefault(graph.End())).
//	    AddEdge("fetch", graph.To("menu")).
//	    SetEntryPoint("menu")
//
//	g, err := b.Finalize()
type Builder struct {
	schema *Schema
	entry  string

	order []string
	nodes map[string]Node
	edges []*edgeSpec

	errs []error
}

// NewBuilder creates a Builder for graphs over schema.
func NewBuilder(schema *Schema) *Builder {
	return &Builder{
		schema: schema,
		nodes:  make(map[string]Node),
	}
}

// AddNode registers a node under a unique ID.
func (b *Builder) AddNode(id string, node Node) *Builder {
	switch {
	case id == "":
		b.errs = append(b.errs, &GraphConfigError{Reason: "node ID cannot be empty"})
	case node == nil:
		b.errs = append(b.errs, &GraphConfigError{Node: id, Reason: "node cannot be nil"})
	default:
		if _, exists := b.nodes[id]; exists {
			b.errs = append(b.errs, &GraphConfigError{Node: id, Reason: "duplicate node ID"})
			return b
		}
		b.nodes[id] = node
		b.order = append(b.order, id)
	}
	return b
}

// AddEdge adds an unconditional edge from one node to a target.
func (b *Builder) AddEdge(from string, to Target) *Builder {
	b.edges = append(b.edges, &edgeSpec{from: from, to: to})
	return b
}

// AddConditionalEdges adds a routed edge set: after from runs, router picks a
// label and routes maps it to the next target. Use WithDefault to declare
// where undeclared labels go.
func (b *Builder) AddConditionalEdges(from string, router Router, routes map[string]Target, opts ...EdgeOption) *Builder {
	e := &edgeSpec{
		from:        from,
		conditional: true,
		router:      router,
		routes:      maps.Clone(routes),
	}
	for _, opt := range opts {
		opt(e)
	}
	b.edges = append(b.edges, e)
	return b
}

// SetEntryPoint sets the node executed first.
func (b *Builder) SetEntryPoint(id string) *Builder {
	b.entry = id
	return b
}

// Finalize validates the definition and compiles it into an immutable Graph.
//
// It checks that:
//   - node IDs are non-empty and unique
//   - the entry point is set and names a node
//   - every edge starts at a known node, and each node has exactly one
//     outgoing edge set
//   - every static or labeled target, and every default, is End or a known node
//   - conditional edges have a router and at least one label
//
// All violations are joined into the returned error; each is a *GraphConfigError.
func (b *Builder) Finalize() (*Graph, error) {
	errs := append([]error(nil), b.errs...)

	if b.schema == nil {
		errs = append(errs, &GraphConfigError{Reason: "schema is required"})
	}

	if b.entry == "" {
		errs = append(errs, &GraphConfigError{Reason: "entry point not set"})
	} else if _, ok := b.nodes[b.entry]; !ok {
		errs = append(errs, &GraphConfigError{Node: b.entry, Reason: "entry point does not exist"})
	}

	index := make(map[string]int, len(b.order))
	for i, id := range b.order {
		index[id] = i
	}

	resolve := func(e *edgeSpec, t Target, what string) (int, error) {
		if t.IsEnd() {
			return endIndex, nil
		}
		if t.Node() == "" {
			return 0, &GraphConfigError{Edge: e.describe(), Reason: what + " is empty"}
		}
		i, ok := index[t.Node()]
		if !ok {
			return 0, &GraphConfigError{Edge: e.describe(), Reason: what + " names unknown node " + t.Node()}
		}
		return i, nil
	}

	compiled := make([]compiledNode, len(b.order))
	for i, id := range b.order {
		compiled[i] = compiledNode{id: id, run: b.nodes[id]}
	}
	seen := make(map[string]bool, len(b.edges))

	for _, e := range b.edges {
		src, ok := index[e.from]
		if !ok {
			errs = append(errs, &GraphConfigError{Node: e.from, Edge: e.describe(), Reason: "edge source does not exist"})
			continue
		}
		if seen[e.from] {
			errs = append(errs, &GraphConfigError{Node: e.from, Edge: e.describe(), Reason: "node already has an outgoing edge set"})
			continue
		}
		seen[e.from] = true

		out := compiledEdge{spec: e}
		if !e.conditional {
			to, err := resolve(e, e.to, "target")
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out.to = to
			compiled[src].next = out
			continue
		}

		if e.router == nil {
			errs = append(errs, &GraphConfigError{Node: e.from, Edge: e.describe(), Reason: "conditional edge has no router"})
		}
		if len(e.routes) == 0 {
			errs = append(errs, &GraphConfigError{Node: e.from, Edge: e.describe(), Reason: "conditional edge declares no labels"})
		}
		out.conditional = true
		out.routes = make(map[string]int, len(e.routes))
		for _, label := range sortedLabels(e.routes) {
			to, err := resolve(e, e.routes[label], fmt.Sprintf("target for label %q", label))
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out.routes[label] = to
		}
		out.fallback = noFallback
		if e.fallback != nil {
			to, err := resolve(e, *e.fallback, "default target")
			if err != nil {
				errs = append(errs, err)
			} else {
				out.fallback = to
			}
		}
		compiled[src].next = out
	}

	for _, id := range b.order {
		if !seen[id] {
			errs = append(errs, &GraphConfigError{Node: id, Reason: "node has no outgoing edge"})
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Graph{
		schema: b.schema,
		entry:  index[b.entry],
		nodes:  compiled,
	}, nil
}
