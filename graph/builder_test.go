package graph

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func noop() Node {
	return NodeFunc(func(context.Context, Snapshot) (Update, error) { return nil, nil })
}

func choiceSchema(t *testing.T) *Schema {
	t.Helper()
	return mustSchema(t,
		Field{Name: "choice", Policy: Replace, Default: "n"},
		Field{Name: "visits", Policy: Accumulate},
	)
}

func choiceRouter(s Snapshot) string {
	c, _ := Value[string](s, "choice")
	return c
}

func configErrors(t *testing.T, err error) []*GraphConfigError {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("expected joined errors, got %T", err)
	}
	var out []*GraphConfigError
	for _, e := range joined.Unwrap() {
		var cfgErr *GraphConfigError
		if !errors.As(e, &cfgErr) {
			t.Fatalf("expected GraphConfigError, got %T: %v", e, e)
		}
		out = append(out, cfgErr)
	}
	return out
}

func TestFinalize_Valid(t *testing.T) {
	g, err := NewBuilder(choiceSchema(t)).
		AddNode("menu", noop()).
		AddNode("fetch", noop()).
		AddConditionalEdges("menu", choiceRouter, map[string]Target{"n": To("fetch"), "q": End()}, WithDefault(End())).
		AddEdge("fetch", To("menu")).
		SetEntryPoint("menu").
		Finalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Entry() != "menu" {
		t.Errorf("expected entry menu, got %q", g.Entry())
	}
	if got := strings.Join(g.Nodes(), ","); got != "menu,fetch" {
		t.Errorf("expected registration order, got %s", got)
	}
}

func TestFinalize_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		build  func(b *Builder)
		reason string
	}{
		{
			name: "missing entry",
			build: func(b *Builder) {
				b.AddNode("a", noop()).AddEdge("a", End())
			},
			reason: "entry point not set",
		},
		{
			name: "unknown entry",
			build: func(b *Builder) {
				b.AddNode("a", noop()).AddEdge("a", End()).SetEntryPoint("zzz")
			},
			reason: "entry point does not exist",
		},
		{
			name: "duplicate node",
			build: func(b *Builder) {
				b.AddNode("a", noop()).AddNode("a", noop()).AddEdge("a", End()).SetEntryPoint("a")
			},
			reason: "duplicate node ID",
		},
		{
			name: "empty node ID",
			build: func(b *Builder) {
				b.AddNode("", noop()).AddNode("a", noop()).AddEdge("a", End()).SetEntryPoint("a")
			},
			reason: "node ID cannot be empty",
		},
		{
			name: "nil node",
			build: func(b *Builder) {
				b.AddNode("b", nil).AddNode("a", noop()).AddEdge("a", End()).SetEntryPoint("a")
			},
			reason: "node cannot be nil",
		},
		{
			name: "edge from unknown node",
			build: func(b *Builder) {
				b.AddNode("a", noop()).AddEdge("a", End()).AddEdge("ghost", To("a")).SetEntryPoint("a")
			},
			reason: "edge source does not exist",
		},
		{
			name: "edge to unknown node",
			build: func(b *Builder) {
				b.AddNode("a", noop()).AddEdge("a", To("ghost")).SetEntryPoint("a")
			},
			reason: "names unknown node ghost",
		},
		{
			name: "label to unknown node",
			build: func(b *Builder) {
				b.AddNode("a", noop()).
					AddConditionalEdges("a", choiceRouter, map[string]Target{"x": To("ghost")}).
					SetEntryPoint("a")
			},
			reason: `target for label "x" names unknown node ghost`,
		},
		{
			name: "default to unknown node",
			build: func(b *Builder) {
				b.AddNode("a", noop()).
					AddConditionalEdges("a", choiceRouter, map[string]Target{"x": End()}, WithDefault(To("ghost"))).
					SetEntryPoint("a")
			},
			reason: "default target names unknown node ghost",
		},
		{
			name: "empty target",
			build: func(b *Builder) {
				b.AddNode("a", noop()).AddEdge("a", To("")).SetEntryPoint("a")
			},
			reason: "target is empty",
		},
		{
			name: "node without edges",
			build: func(b *Builder) {
				b.AddNode("a", noop()).AddNode("b", noop()).AddEdge("a", End()).SetEntryPoint("a")
			},
			reason: "node has no outgoing edge",
		},
		{
			name: "two edge sets",
			build: func(b *Builder) {
				b.AddNode("a", noop()).AddEdge("a", End()).AddEdge("a", End()).SetEntryPoint("a")
			},
			reason: "node already has an outgoing edge set",
		},
		{
			name: "conditional without router",
			build: func(b *Builder) {
				b.AddNode("a", noop()).AddConditionalEdges("a", nil, map[string]Target{"x": End()}).SetEntryPoint("a")
			},
			reason: "conditional edge has no router",
		},
		{
			name: "conditional without labels",
			build: func(b *Builder) {
				b.AddNode("a", noop()).AddConditionalEdges("a", choiceRouter, nil, WithDefault(End())).SetEntryPoint("a")
			},
			reason: "conditional edge declares no labels",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(choiceSchema(t))
			tt.build(b)
			g, err := b.Finalize()
			if g != nil {
				t.Error("expected nil graph on error")
			}
			found := false
			for _, e := range configErrors(t, err) {
				if strings.Contains(e.Reason, tt.reason) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected a GraphConfigError with reason %q, got %v", tt.reason, err)
			}
		})
	}
}

func TestFinalize_ReportsEveryProblem(t *testing.T) {
	_, err := NewBuilder(choiceSchema(t)).
		AddNode("a", noop()).
		AddNode("b", noop()).
		AddEdge("a", To("ghost")).
		Finalize()

	if got := len(configErrors(t, err)); got != 3 {
		t.Errorf("expected 3 problems (entry, dangling edge, no edge on b), got %d: %v", got, err)
	}
}

func TestFinalize_NilSchema(t *testing.T) {
	_, err := NewBuilder(nil).AddNode("a", noop()).AddEdge("a", End()).SetEntryPoint("a").Finalize()
	var cfgErr *GraphConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Reason != "schema is required" {
		t.Errorf("expected schema error, got %v", err)
	}
}

func TestGraphConfigError_Message(t *testing.T) {
	err := &GraphConfigError{Node: "a", Edge: "a -> b", Reason: "broken"}
	if got, want := err.Error(), "graph config: node a: edge a -> b: broken"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
