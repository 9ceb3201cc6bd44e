package application

import "context"

// Tracer is the observability side channel used by the pipeline. It keeps
// the gateway free of any particular tracing backend.
type Tracer interface {
	Start(ctx context.Context, op string) (context.Context, Span)
}

type Span interface {
	Event(name string, attrs ...Attr)
	End()
}

type Attr struct {
	Key   string
	Value string
}

func A(key, value string) Attr { return Attr{Key: key, Value: value} }

type NoopTracer struct{}

func (NoopTracer) Start(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) Event(string, ...Attr) {}
func (noopSpan) End()                  {}
