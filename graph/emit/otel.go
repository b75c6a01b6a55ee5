package emit

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter turns each event into an OpenTelemetry span.
//
// The span is named after event.Msg and carries the run ID, step and node ID
// as attributes, plus one attribute per Meta entry. A Meta "error" entry marks
// the span status as an error.
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	emitter := emit.NewOTelEmitter(tp.Tracer("jokegraph"))
type OTelEmitter struct {
	tracer trace.Tracer
}

// NewOTelEmitter creates an OTelEmitter. A nil tracer uses the global provider.
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	if tracer == nil {
		tracer = otel.Tracer("jokegraph")
	}
	return &OTelEmitter{tracer: tracer}
}

// Emit records event as a completed span.
func (o *OTelEmitter) Emit(event Event) {
	_, span := o.tracer.Start(context.Background(), event.Msg)
	defer span.End()

	span.SetAttributes(
		attribute.String("jokegraph.run_id", event.RunID),
		attribute.Int("jokegraph.step", event.Step),
	)
	if event.NodeID != "" {
		span.SetAttributes(attribute.String("jokegraph.node_id", event.NodeID))
	}

	for k, v := range event.Meta {
		span.SetAttributes(metaAttribute("jokegraph."+k, v))
	}

	errVal, hasText := event.Meta["error"]
	if !hasText && event.Err == nil {
		return
	}
	err := event.Err
	if err == nil {
		err, _ = errVal.(error)
	}
	msg := fmt.Sprint(errVal)
	if !hasText {
		msg = err.Error()
	}
	span.SetStatus(codes.Error, msg)
	if err != nil {
		span.RecordError(err)
	}
}

func metaAttribute(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case time.Duration:
		return attribute.Int64(key, v.Milliseconds())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
