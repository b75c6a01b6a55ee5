package graph

import (
	"github.com/google/uuid"

	"github.com/dshills/jokegraph/graph/emit"
	"github.com/dshills/jokegraph/graph/store"
)

// Option configures an Engine.
//
//	engine := graph.New(g,
//	    graph.WithEmitter(emit.NewLogEmitter(os.Stderr, false)),
//	    graph.WithMetrics(graph.NewPrometheusMetrics(registry)),
//	)
type Option func(*Engine)

// WithEmitter sends execution events to emitter. Default: emit.NullEmitter.
func WithEmitter(emitter emit.Emitter) Option {
	return func(e *Engine) {
		if emitter != nil {
			e.emitter = emitter
		}
	}
}

// WithMetrics records Prometheus metrics for every run.
func WithMetrics(metrics *PrometheusMetrics) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// WithStore journals every completed step to st. The journal is for
// inspection only; runs are never resumed from it.
func WithStore(st store.Store) Option {
	return func(e *Engine) {
		e.store = st
	}
}

// WithRunID overrides run ID generation. Default: random UUIDs.
func WithRunID(next func() string) Option {
	return func(e *Engine) {
		if next != nil {
			e.newRunID = next
		}
	}
}

func defaultRunID() string {
	return uuid.NewString()
}
