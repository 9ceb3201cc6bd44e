// Package tracing adapts the OpenTelemetry API to the gateway's Tracer port.
// Spans go to whatever provider is registered globally; with none
// registered they are dropped.
package tracing

import (
	"context"

	"marketdata-gateway/internal/application"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ application.Tracer = (*Tracer)(nil)

type Tracer struct {
	tracer trace.Tracer
}

// New uses the globally registered provider.
func New(name string) *Tracer {
	return NewWithProvider(otel.GetTracerProvider(), name)
}

func NewWithProvider(tp trace.TracerProvider, name string) *Tracer {
	return &Tracer{tracer: tp.Tracer(name)}
}

func (t *Tracer) Start(ctx context.Context, op string) (context.Context, application.Span) {
	ctx, span := t.tracer.Start(ctx, op, trace.WithSpanKind(trace.SpanKindInternal))
	return ctx, otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s otelSpan) Event(name string, attrs ...application.Attr) {
	if len(attrs) == 0 {
		s.span.AddEvent(name)
		return
	}
	kv := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		kv = append(kv, attribute.String(a.Key, a.Value))
	}
	s.span.AddEvent(name, trace.WithAttributes(kv...))
}

func (s otelSpan) End() { s.span.End() }
