// Package telemetry wires the OpenTelemetry SDK around a decision
// run. It is deliberately thin: two constructors (NewNoop, NewStdout)
// that each return a Provider holding a tracer and a shutdown func, so
// callers that don't enable tracing pay nothing beyond a no-op tracer.
package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "arbac-reach"

// Provider wraps a tracer and the teardown for its exporter.
type Provider struct {
	tracer   trace.Tracer
	shutdown func(context.Context) error
}

// NewNoop returns a Provider backed by a fresh no-op tracer, used
// when tracing is disabled so call sites never need a nil check.
func NewNoop() *Provider {
	return &Provider{
		tracer:   noop.NewTracerProvider().Tracer(tracerName),
		shutdown: func(context.Context) error { return nil },
	}
}

// NewStdout returns a Provider that writes completed spans as JSON to w.
func NewStdout(w io.Writer) (*Provider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create stdout trace exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(semconv.ServiceName(tracerName)),
	)
	if err != nil {
		return nil, fmt.Errorf("build trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	return &Provider{
		tracer:   tp.Tracer(tracerName),
		shutdown: tp.Shutdown,
	}, nil
}

// Start begins a span. Callers must call End on the returned span.
func (p *Provider) Start(ctx context.Context, name string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, name)
}

// Shutdown flushes and releases exporter resources.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.shutdown(ctx)
}
