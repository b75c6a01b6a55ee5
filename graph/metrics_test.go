package graph

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetrics_Run(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewPrometheusMetrics(registry)

	menu := &countingNode{id: "menu", extra: Update{"choice": "zzz"}}
	g, err := NewBuilder(choiceSchema(t)).
		AddNode("menu", menu).
		AddConditionalEdges("menu", choiceRouter, map[string]Target{"n": To("menu")}, WithDefault(End())).
		SetEntryPoint("menu").
		Finalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := New(g, WithMetrics(metrics)).Run(context.Background(), Snapshot{}, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := testutil.ToFloat64(metrics.steps.WithLabelValues("menu")); got != 1 {
		t.Errorf("expected 1 step, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.fallbacks.WithLabelValues("menu")); got != 1 {
		t.Errorf("expected 1 fallback, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.runs.WithLabelValues(OutcomeCompleted)); got != 1 {
		t.Errorf("expected 1 completed run, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.inflightRuns); got != 0 {
		t.Errorf("expected no in-flight runs, got %v", got)
	}
}

func TestPrometheusMetrics_Outcomes(t *testing.T) {
	metrics := NewPrometheusMetrics(prometheus.NewRegistry())

	g, err := NewBuilder(choiceSchema(t)).
		AddNode("a", noop()).
		AddEdge("a", To("a")).
		SetEntryPoint("a").
		Finalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _ = New(g, WithMetrics(metrics)).Run(context.Background(), Snapshot{}, 3)
	if got := testutil.ToFloat64(metrics.runs.WithLabelValues(OutcomeStepBound)); got != 1 {
		t.Errorf("expected 1 step_bound run, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.steps.WithLabelValues("a")); got != 3 {
		t.Errorf("expected 3 steps, got %v", got)
	}
}

func TestPrometheusMetrics_Disable(t *testing.T) {
	metrics := NewPrometheusMetrics(prometheus.NewRegistry())
	metrics.Disable()
	metrics.RecordStep("a", time.Millisecond, "success")
	metrics.RunStarted()
	if got := testutil.ToFloat64(metrics.steps.WithLabelValues("a")); got != 0 {
		t.Errorf("expected disabled metrics to record nothing, got %v", got)
	}

	metrics.Enable()
	metrics.RecordStep("a", time.Millisecond, "success")
	metrics.RecordStep("a", time.Millisecond, "error")
	if got := testutil.ToFloat64(metrics.steps.WithLabelValues("a")); got != 1 {
		t.Errorf("expected only successful steps counted, got %v", got)
	}

	metrics.Reset()
	if got := testutil.ToFloat64(metrics.steps.WithLabelValues("a")); got != 0 {
		t.Errorf("expected reset counter, got %v", got)
	}
}

func TestPrometheusMetrics_Nil(t *testing.T) {
	var metrics *PrometheusMetrics
	metrics.RecordStep("a", time.Millisecond, "success")
	metrics.RecordFallback("a")
	metrics.RunStarted()
	metrics.RunFinished(OutcomeCompleted)
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&StepBoundExceededError{}, OutcomeStepBound},
		{&NodeError{}, OutcomeNodeError},
		{&GraphConfigError{}, OutcomeConfig},
		{&EngineError{Code: "STORE_ERROR"}, OutcomeStoreError},
		{&UnknownFieldError{}, OutcomeStateError},
	}
	for _, tt := range tests {
		if got := outcomeOf(tt.err); got != tt.want {
			t.Errorf("expected %s for %T, got %s", tt.want, tt.err, got)
		}
	}
}
