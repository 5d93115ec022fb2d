// Package telemetry wraps OpenTelemetry tracer provider setup. When
// telemetry is disabled the engine uses the global no-op tracer, so
// instrumented code never needs to branch on whether tracing is live.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Providers owns the process-wide TracerProvider. Shutdown flushes any
// batched spans; safe to call on a disabled Providers.
type Providers struct {
	tp *sdktrace.TracerProvider
}

// Init builds a TracerProvider that exports spans through exporter. When
// exporter is nil, tracing stays disabled and Tracer() returns the global
// no-op tracer.
func Init(serviceName string, exporter sdktrace.SpanExporter) (*Providers, error) {
	if exporter == nil {
		return &Providers{}, nil
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &Providers{tp: tp}, nil
}

// Shutdown flushes and releases the tracer provider, if one was created.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}

// Tracer returns the engine's named tracer, backed by the global provider
// (no-op until Init is called with a real exporter).
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
