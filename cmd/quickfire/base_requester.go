package main

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/torosent/quickfire/internal/tracing"
)

// baseRequesterHelper provides shared functionality for both engines.
type baseRequesterHelper struct {
	worker  int
	method  string
	target  string
	tracing *tracing.Provider
}

// tracer returns the OTel tracer, or a no-op if tracing is not configured.
func (b *baseRequesterHelper) tracer() trace.Tracer {
	if b.tracing == nil {
		return noop.NewTracerProvider().Tracer("quickfire")
	}
	return b.tracing.Tracer()
}

// shouldPropagate returns whether W3C trace headers should be injected.
func (b *baseRequesterHelper) shouldPropagate() bool {
	if b.tracing == nil {
		return false
	}
	return b.tracing.ShouldPropagate()
}

// startExchange ensures ctx is usable and opens the exchange span.
func (b *baseRequesterHelper) startExchange(ctx context.Context) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return tracing.StartExchangeSpan(ctx, b.tracer(), b.method, b.target, b.worker)
}
