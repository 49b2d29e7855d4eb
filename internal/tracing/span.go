package tracing

import (
	"context"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// StartExchangeSpan starts a client span for one benchmark exchange.
func StartExchangeSpan(ctx context.Context, tracer trace.Tracer, method, target string, worker int) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "HTTP "+method,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", target),
		attribute.Int("quickfire.worker", worker),
	)
	return ctx, span
}

// StatusCode returns the span attribute for an HTTP response status.
func StatusCode(code int) attribute.KeyValue {
	return attribute.Int("http.response.status_code", code)
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// InjectHTTPHeaders injects W3C trace context into HTTP headers.
func InjectHTTPHeaders(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}

// fastHTTPHeaderCarrier adapts a fasthttp request header to the OTel TextMapCarrier interface.
type fastHTTPHeaderCarrier struct {
	h *fasthttp.RequestHeader
}

func (c fastHTTPHeaderCarrier) Get(key string) string {
	return string(c.h.Peek(key))
}

func (c fastHTTPHeaderCarrier) Set(key, value string) {
	c.h.Set(key, value)
}

func (c fastHTTPHeaderCarrier) Keys() []string {
	var keys []string
	c.h.VisitAll(func(k, _ []byte) {
		keys = append(keys, string(k))
	})
	return keys
}

// InjectFastHTTPHeaders injects W3C trace context into a fasthttp request header.
func InjectFastHTTPHeaders(ctx context.Context, headers *fasthttp.RequestHeader) {
	otel.GetTextMapPropagator().Inject(ctx, fastHTTPHeaderCarrier{h: headers})
}

