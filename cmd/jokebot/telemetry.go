package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/dshills/jokegraph/config"
)

const tracerName = "github.com/dshills/jokegraph"

// telemetry owns the optional trace exporter and metrics server of a session.
type telemetry struct {
	provider *sdktrace.TracerProvider
	server   *http.Server
	listener net.Listener
}

// startTelemetry starts OTLP trace export and the Prometheus endpoint when
// configured. The returned value is usable even when both are disabled.
func startTelemetry(ctx context.Context, cfg config.Config, registry *prometheus.Registry, logger *zap.Logger) (*telemetry, error) {
	t := &telemetry{}

	if endpoint := cfg.Tracing.OTLPEndpoint; endpoint != "" {
		exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
		if err != nil {
			return nil, fmt.Errorf("create OTLP exporter: %w", err)
		}
		t.provider = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		logger.Debug("trace export enabled", zap.String("endpoint", endpoint))
	}

	if addr := cfg.Metrics.Addr; addr != "" {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			_ = t.Shutdown(ctx)
			return nil, fmt.Errorf("listen for metrics: %w", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		t.listener = ln
		t.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := t.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
		logger.Debug("metrics endpoint enabled", zap.String("addr", ln.Addr().String()))
	}

	return t, nil
}

// Tracer returns the session tracer, or nil when tracing is off.
func (t *telemetry) Tracer() trace.Tracer {
	if t.provider == nil {
		return nil
	}
	return t.provider.Tracer(tracerName)
}

// MetricsAddr returns the address the metrics server listens on, or "".
func (t *telemetry) MetricsAddr() string {
	if t.listener == nil {
		return ""
	}
	return t.listener.Addr().String()
}

// Shutdown flushes pending spans and stops the metrics server.
func (t *telemetry) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var errs []error
	if t.provider != nil {
		errs = append(errs, t.provider.Shutdown(ctx))
	}
	if t.server != nil {
		errs = append(errs, t.server.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
