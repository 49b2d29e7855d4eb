package tracing_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/quickfire/internal/config"
	"github.com/torosent/quickfire/internal/tracing"
)

// recordingProvider returns a provider whose spans land in memory.
func recordingProvider(t *testing.T) (*tracing.Provider, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	sdk := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { _ = sdk.Shutdown(context.Background()) })
	return tracing.NewProvider(sdk, true), exporter
}

func TestDisabledProviderTracesNothing(t *testing.T) {
	p, err := tracing.Init(context.Background(), config.TracingConfig{}, tracing.Run{ID: "run"})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if p.ShouldPropagate() {
		t.Error("disabled provider propagates trace headers")
	}

	ctx, span := tracing.StartExchangeSpan(context.Background(), p.Tracer(), "GET", "http://example.com", 0)
	tracing.EndSpan(span, nil, tracing.StatusCode(200))
	if span.SpanContext().IsValid() {
		t.Error("disabled provider produced a real span")
	}

	headers := http.Header{}
	tracing.InjectHTTPHeaders(ctx, headers)
	if headers.Get("Traceparent") != "" {
		t.Errorf("traceparent injected without a span: %q", headers.Get("Traceparent"))
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNilProviderIsDisabled(t *testing.T) {
	var p *tracing.Provider
	if p.ShouldPropagate() {
		t.Error("nil provider propagates trace headers")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	_, span := p.Tracer().Start(context.Background(), "exchange")
	span.End()
}

func TestInitWithCollectorPropagates(t *testing.T) {
	// Exporters dial lazily; no collector has to be listening.
	for _, protocol := range []string{"grpc", "http"} {
		t.Run(protocol, func(t *testing.T) {
			p, err := tracing.Init(context.Background(), config.TracingConfig{
				Endpoint:   "localhost:4317",
				Protocol:   protocol,
				SampleRate: 1,
				Insecure:   true,
			}, tracing.Run{ID: "01J0RUNID0000000000000000", Engine: "nethttp"})
			if err != nil {
				t.Fatalf("Init() error = %v", err)
			}
			t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
			if !p.ShouldPropagate() {
				t.Error("enabled provider does not propagate trace headers")
			}
		})
	}
}

func TestExchangeSpanForSuccessfulRequest(t *testing.T) {
	p, exporter := recordingProvider(t)

	_, span := tracing.StartExchangeSpan(context.Background(), p.Tracer(), "POST", "http://example.com/items", 3)
	tracing.EndSpan(span, nil, tracing.StatusCode(503))

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	got := spans[0]
	if got.Name != "HTTP POST" || got.SpanKind != trace.SpanKindClient {
		t.Errorf("span = %q kind %v", got.Name, got.SpanKind)
	}
	// A 5xx answer is a completed exchange, not a failed one.
	if got.Status.Code != codes.Ok {
		t.Errorf("status = %v, want Ok", got.Status.Code)
	}

	want := map[string]string{
		"http.request.method":       "POST",
		"url.full":                  "http://example.com/items",
		"quickfire.worker":          "3",
		"http.response.status_code": "503",
	}
	for _, attr := range got.Attributes {
		if v, ok := want[string(attr.Key)]; ok {
			if attr.Value.Emit() != v {
				t.Errorf("%s = %q, want %q", attr.Key, attr.Value.Emit(), v)
			}
			delete(want, string(attr.Key))
		}
	}
	for key := range want {
		t.Errorf("attribute %s missing", key)
	}
}

func TestExchangeSpanForTransportError(t *testing.T) {
	p, exporter := recordingProvider(t)

	_, span := tracing.StartExchangeSpan(context.Background(), p.Tracer(), "GET", "http://127.0.0.1:1", 0)
	tracing.EndSpan(span, context.DeadlineExceeded)

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error || len(spans[0].Events) == 0 {
		t.Errorf("span status = %v events = %d, want an error with its event", spans[0].Status.Code, len(spans[0].Events))
	}
}

func TestInjectionMatchesTheExchangeSpan(t *testing.T) {
	p, _ := recordingProvider(t)
	ctx, span := tracing.StartExchangeSpan(context.Background(), p.Tracer(), "GET", "http://example.com", 1)
	defer span.End()
	traceID := span.SpanContext().TraceID().String()

	headers := http.Header{}
	tracing.InjectHTTPHeaders(ctx, headers)

	var req fasthttp.Request
	tracing.InjectFastHTTPHeaders(ctx, &req.Header)

	for engine, got := range map[string]string{
		"nethttp":  headers.Get("Traceparent"),
		"fasthttp": string(req.Header.Peek("traceparent")),
	} {
		if len(got) != 55 || got[3:35] != traceID {
			t.Errorf("%s traceparent = %q, want trace id %s", engine, got, traceID)
		}
	}
}
